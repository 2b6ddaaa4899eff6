package diagnostics

import (
	"sort"
	"sync"

	"vtp/internal/domain"
)

// Aggregator collects diagnostics per file in emission order. Entries with
// the same line, column and message are merged.
type Aggregator struct {
	mu    sync.Mutex
	files map[string][]domain.Diagnostic
	order []string
}

// NewAggregator creates an empty Aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{files: make(map[string][]domain.Diagnostic)}
}

// Merge appends d to its file unless an entry with the same range and
// message exists. It reports whether d was added.
func (a *Aggregator) Merge(d domain.Diagnostic) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, known := a.files[d.File]
	for _, e := range existing {
		if e.SameRange(d) {
			return false
		}
	}
	if !known {
		a.order = append(a.order, d.File)
	}
	a.files[d.File] = append(existing, d)
	return true
}

// Clear drops every diagnostic
func (a *Aggregator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.files = make(map[string][]domain.Diagnostic)
	a.order = nil
}

// EntriesFor returns a copy of the diagnostics of file
func (a *Aggregator) EntriesFor(file string) []domain.Diagnostic {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Diagnostic(nil), a.files[file]...)
}

// Files returns the files with diagnostics, sorted
func (a *Aggregator) Files() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	files := append([]string(nil), a.order...)
	sort.Strings(files)
	return files
}

// All returns every diagnostic, grouped by file in first-seen order
func (a *Aggregator) All() []domain.Diagnostic {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.Diagnostic
	for _, f := range a.order {
		out = append(out, a.files[f]...)
	}
	return out
}

// Len returns the number of diagnostics
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, list := range a.files {
		n += len(list)
	}
	return n
}
