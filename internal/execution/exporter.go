package execution

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"vtp/internal/config"
	"vtp/internal/domain"
	"vtp/internal/logger"
)

// Exporter enumerates the tests of a script through --list --export-json
type Exporter struct {
	config *config.Config
	runner Executor
	log    logger.Logger
}

// NewExporter creates a new Exporter
func NewExporter(cfg *config.Config, runner Executor, log logger.Logger) *Exporter {
	return &Exporter{config: cfg, runner: runner, log: log}
}

// ListTests returns the export of script. Failures are logged and yield an
// empty export, which may mean the tool is unavailable rather than that the
// script has no tests.
func (e *Exporter) ListTests(ctx context.Context, script string) domain.ExportData {
	if err := os.MkdirAll(e.config.ExportDir, 0755); err != nil {
		e.log.Errorf("failed to create export directory %s: %v", e.config.ExportDir, err)
		return domain.ExportData{}
	}
	tmp := filepath.Join(e.config.ExportDir, uuid.NewString()+".json")
	defer os.Remove(tmp)

	args := []string{"--list", "--export-json", Quote(tmp)}
	if opts := strings.TrimSpace(e.config.ListOptions); opts != "" {
		args = append(args, opts)
	}

	if _, err := e.runner.Execute(ctx, script, args, nil); err != nil {
		e.log.Warnf("failed to list tests of %s, treating as empty: %v", script, err)
		return domain.ExportData{}
	}

	data, err := ReadExport(tmp)
	if err != nil {
		e.log.Warnf("treating export of %s as empty: %v", script, err)
		return domain.ExportData{}
	}
	if data.IsEmpty() {
		e.log.Infof("export of %s contains no tests", script)
	}
	return data
}

// ReadExport reads and decodes an export file. Errors are *domain.ParseError.
func ReadExport(path string) (domain.ExportData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.ExportData{}, &domain.ParseError{Path: path, Err: err}
	}
	var data domain.ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.ExportData{}, &domain.ParseError{Path: path, Err: err}
	}
	return data, nil
}
