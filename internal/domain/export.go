package domain

// ExportData is the content of the file written by `run.py --list --export-json`.
type ExportData struct {
	FormatVersion FormatVersion  `json:"export_format_version"`
	Files         []ExportedFile `json:"files"`
	Tests         []ExportedTest `json:"tests"`
}

// FormatVersion is the semantic version of the export format.
type FormatVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// ExportedFile is a source file known to the VUnit project.
type ExportedFile struct {
	FileName    string `json:"file_name"`
	LibraryName string `json:"library_name"`
}

// ExportedTest is one enumerated test case.
type ExportedTest struct {
	Name       QualifiedName  `json:"name"`
	Location   SourceLocation `json:"location"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// SourceLocation points at the test case declaration inside its testbench.
type SourceLocation struct {
	FileName string `json:"file_name"`
	Offset   int    `json:"offset"`
	Length   int    `json:"length"`
}

// IsEmpty reports whether the export holds no tests.
func (e ExportData) IsEmpty() bool {
	return len(e.Tests) == 0
}
