package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/clinicroute/clinicroute/internal/config"
	"github.com/clinicroute/clinicroute/internal/domain"
)

// AuditWriter appends audit entries as JSON lines to a single log file.
type AuditWriter struct {
	mu   sync.Mutex
	file *os.File
}

func NewAuditWriter(cfg config.StorageConfig) (*AuditWriter, error) {
	path := filepath.Join(cfg.DataDir, cfg.AuditFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &AuditWriter{file: f}, nil
}

func (w *AuditWriter) Create(ctx context.Context, entry *domain.AuditLog) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling audit entry: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = w.file.Write(append(line, '\n'))
	return err
}

func (w *AuditWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
