package discovery

import (
	"os"
	"sync"
	"unicode/utf8"

	"vtp/internal/domain"
)

// Locate converts a character offset into a zero-based line and column. The
// offset counts decoded characters, not bytes, and the column does too.
// A "\r\n" break counts as one line break. Offsets past the end are clamped.
func Locate(content []byte, offset int) (line, column int) {
	for i, n := 0, 0; i < len(content) && n < offset; n++ {
		r, size := utf8.DecodeRune(content[i:])
		i += size
		if r == '\n' {
			line++
			column = 0
			continue
		}
		column++
	}
	return line, column
}

// Locator resolves source locations to positions, reading each file once.
type Locator struct {
	mu    sync.Mutex
	files map[string][]byte
	read  func(string) ([]byte, error)
}

// NewLocator creates a Locator with an empty file cache
func NewLocator() *Locator {
	return &Locator{files: make(map[string][]byte), read: os.ReadFile}
}

// Position returns the position of loc, or false when the file is unreadable.
func (l *Locator) Position(loc domain.SourceLocation) (domain.Position, bool) {
	if loc.FileName == "" {
		return domain.Position{}, false
	}
	content, ok := l.content(loc.FileName)
	if !ok {
		return domain.Position{}, false
	}
	line, col := Locate(content, loc.Offset)
	return domain.Position{File: loc.FileName, Line: line, Column: col}, true
}

func (l *Locator) content(path string) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.files[path]; ok {
		return c, c != nil
	}
	c, err := l.read(path)
	if err != nil {
		c = nil
	}
	l.files[path] = c
	return c, c != nil
}
