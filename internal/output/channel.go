package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Channel is the log sink for invocation banners and raw tool output.
// Writes are serialized, so concurrent runner invocations never interleave
// within a line. Write errors are dropped.
type Channel struct {
	mu     sync.Mutex
	file   *os.File
	mirror io.Writer
}

// Open creates the channel backed by the file at path (appending) and an
// optional mirror writer. An empty path keeps only the mirror.
func Open(path string, mirror io.Writer) (*Channel, error) {
	c := &Channel{mirror: mirror}
	if path == "" {
		return c, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output log: %w", err)
	}
	c.file = file
	return c, nil
}

// Discard returns a channel that writes nowhere.
func Discard() *Channel {
	return &Channel{}
}

// Append writes text as is.
func (c *Channel) Append(text string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.write(text)
}

// AppendLine writes text followed by a newline.
func (c *Channel) AppendLine(text string) {
	if c == nil {
		return
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	c.Append(text)
}

func (c *Channel) write(text string) {
	if c.file != nil {
		_, _ = c.file.WriteString(text)
	}
	if c.mirror != nil {
		_, _ = io.WriteString(c.mirror, text)
	}
}

// Close closes the backing file.
func (c *Channel) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}
