package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PredictionError is one disconfirming narrative outcome. Fixed catalog
// entries keep their YAML ids; user-authored entries get a millisecond
// timestamp id so they can never collide with the catalog.
type PredictionError struct {
	ID          int64  `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// NewCustomPredictionError builds a user-authored entry. The caller is
// responsible for rejecting blank text before calling this.
func NewCustomPredictionError(title, description string) PredictionError {
	if strings.TrimSpace(title) == "" {
		title = "Custom prediction error"
	}
	return PredictionError{
		ID:          time.Now().UnixMilli(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
	}
}

// PredictionErrorList is stored as a jsonb column so the selection order
// survives a round trip to the database.
type PredictionErrorList []PredictionError

func (l PredictionErrorList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *PredictionErrorList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into PredictionErrorList", value)
	}
}

// Catalog holds the fixed set of candidate prediction errors.
type Catalog struct {
	Errors []PredictionError `yaml:"prediction_errors"`
}

// Find returns the catalog entry with the given id.
func (c *Catalog) Find(id int64) (PredictionError, bool) {
	for _, pe := range c.Errors {
		if pe.ID == id {
			return pe, true
		}
	}
	return PredictionError{}, false
}

// LoadCatalog reads and parses the prediction_errors.yaml file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog YAML: %w", err)
	}

	return &catalog, nil
}
