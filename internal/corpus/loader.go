package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/askcatalog/askcatalog/internal/errors"
)

// Load reads a corpus file: a JSON array of records, each carrying
// doc_id, type, content, and metadata.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeCorpusNotFound,
				fmt.Sprintf("corpus file not found: %s", path), err)
		}
		return nil, errors.New(errors.ErrCodeCorpusInvalid,
			fmt.Sprintf("failed to read corpus file: %s", path), err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.New(errors.ErrCodeCorpusInvalid,
			fmt.Sprintf("failed to parse corpus file: %s", path), err)
	}

	return records, nil
}

// Save writes records to a corpus file as indented JSON.
func Save(path string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal corpus: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write corpus file: %w", err)
	}
	return nil
}
