package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Validator is implemented by every persisted artifact struct.
type Validator interface {
	Validate() error
}

// WriteJSON validates v, then writes it as indented JSON to path,
// creating parent directories as needed. Every stage boundary in the
// pipeline writes its artifact through this helper so "validated at
// write" (spec.md §4.17) holds uniformly.
func WriteJSON(path string, v Validator) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadJSON reads and unmarshals path into v, then validates it. Invalid
// JSON or a failed validation both surface as ErrArtifactInvalid.
// Config files are not read through ReadJSON; internal/config loads
// them through viper.
func ReadJSON(path string, v Validator) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArtifactInvalid, path, err)
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArtifactInvalid, path, err)
	}
	return nil
}
