package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// FormatJSON renders any report payload as indented JSON.
func FormatJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// WriteJSON writes any report payload to a JSON file, creating parent
// directories as needed.
func WriteJSON(v interface{}, path string) error {
	data, err := FormatJSON(v)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0644)
}
