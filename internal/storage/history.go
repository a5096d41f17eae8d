package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicroute/clinicroute/internal/config"
)

// HistoryStore keeps one append-only text file of medical history records
// per patient. Records are plain lines; there is no structure to migrate.
type HistoryStore struct {
	dir string
}

func NewHistoryStore(cfg config.StorageConfig) (*HistoryStore, error) {
	dir := filepath.Join(cfg.DataDir, "history")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}
	return &HistoryStore{dir: dir}, nil
}

func (h *HistoryStore) path(patientID uuid.UUID) string {
	return filepath.Join(h.dir, fmt.Sprintf("medical_history_%s.txt", patientID))
}

// Append adds one record line to the patient's history file.
func (h *HistoryStore) Append(patientID uuid.UUID, record string) error {
	record = strings.TrimSpace(record)
	if record == "" {
		return fmt.Errorf("empty record not allowed")
	}

	f, err := os.OpenFile(h.path(patientID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, record); err != nil {
		return fmt.Errorf("appending history record: %w", err)
	}
	return nil
}

// List returns the patient's history records in the order they were
// appended. A patient with no file has an empty history.
func (h *HistoryStore) List(patientID uuid.UUID) ([]string, error) {
	f, err := os.Open(h.path(patientID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	var records []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			records = append(records, line)
		}
	}
	return records, scanner.Err()
}
