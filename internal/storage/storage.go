package storage

import (
	"vtp/internal/config"
	"vtp/internal/domain"
)

// Storage persists and loads the record of the last run (e.g. for the problems viewer).
type Storage interface {
	Save(record *domain.RunRecord) error
	Load() (*domain.RunRecord, error)
}

// JSONStorage stores the run record in a JSON file under the workspace state directory.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's last run path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
