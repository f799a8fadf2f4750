package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RecordKey names the calibration record inside the store file.
const RecordKey = "calibration/model"

// record is the on-disk form of a fitted model.
type record struct {
	ScaleX   float64   `json:"scaleX"`
	ScaleY   float64   `json:"scaleY"`
	OffsetX  float64   `json:"offsetX"`
	OffsetY  float64   `json:"offsetY"`
	Fitted   bool      `json:"fitted"`
	FittedAt time.Time `json:"fittedAt"`
}

// Store persists the calibration model as a single named record in a
// JSON key-value file. Absence of the file or the record is the valid
// unfitted default, not an error. Saves replace the file atomically so
// an aborted write can never corrupt a previously saved model.
type Store struct {
	FilePath string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{FilePath: path}
}

// Save writes the model record, replacing any previous one atomically.
func (s *Store) Save(m Model) error {
	records, err := s.readAll()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(record{
		ScaleX:   m.ScaleX,
		ScaleY:   m.ScaleY,
		OffsetX:  m.OffsetX,
		OffsetY:  m.OffsetY,
		Fitted:   m.Fitted,
		FittedAt: m.FittedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	records[RecordKey] = raw

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	dir := filepath.Dir(s.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".calibration-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.FilePath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// Load reads the persisted model. A missing file or record yields the
// identity model with no error.
func (s *Store) Load() (Model, error) {
	records, err := s.readAll()
	if err != nil {
		return Identity(), err
	}

	raw, ok := records[RecordKey]
	if !ok {
		return Identity(), nil
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Identity(), fmt.Errorf("decode record: %w", err)
	}
	if !rec.Fitted {
		return Identity(), nil
	}

	return Model{
		ScaleX:   rec.ScaleX,
		ScaleY:   rec.ScaleY,
		OffsetX:  rec.OffsetX,
		OffsetY:  rec.OffsetY,
		Fitted:   true,
		FittedAt: rec.FittedAt,
	}, nil
}

// readAll loads the whole key-value file, tolerating absence.
func (s *Store) readAll() (map[string]json.RawMessage, error) {
	records := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return records, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode store file: %w", err)
	}
	return records, nil
}
