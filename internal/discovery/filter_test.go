package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()
	names := []string{
		"lib.tb_uart.test_tx",
		"lib.tb_uart.test_rx",
		"lib.tb_fifo.test_full",
		"other.tb_fifo.test_empty",
	}

	tests := []struct {
		name     string
		pattern  string
		expected []string
	}{
		{
			name:     "empty pattern returns all",
			pattern:  "",
			expected: names,
		},
		{
			name:     "testbench wildcard",
			pattern:  "lib.tb_uart.*",
			expected: []string{"lib.tb_uart.test_tx", "lib.tb_uart.test_rx"},
		},
		{
			name:     "substring wildcard",
			pattern:  "*fifo*",
			expected: []string{"lib.tb_fifo.test_full", "other.tb_fifo.test_empty"},
		},
		{
			name:     "simple contains match",
			pattern:  "test_rx",
			expected: []string{"lib.tb_uart.test_rx"},
		},
		{
			name:     "ordered parts",
			pattern:  "*fifo*empty",
			expected: []string{"other.tb_fifo.test_empty"},
		},
		{
			name:     "parts out of order do not match",
			pattern:  "*empty*fifo*",
			expected: nil,
		},
		{
			name:     "no matches",
			pattern:  "*spi*",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, filter.FilterByName(names, tt.pattern))
		})
	}
}
