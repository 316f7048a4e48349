package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"oss-activity/apperr"
)

// WriteJSON writes v as indented JSON. The data goes to a temporary file in
// the same directory and is renamed into place, so readers never observe a
// partially written snapshot.
func WriteJSON(path string, v interface{}) error {
	data, err := MarshalIndent(v)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// WriteFile atomically replaces path with data, creating parent directories.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// MarshalIndent encodes v with two-space indentation and without HTML
// escaping, keeping non-ASCII text readable.
func MarshalIndent(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ReadJSON decodes the file at path into v.
func ReadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperr.Wrap(apperr.ErrParse, fmt.Errorf("%s: %w", path, err))
	}
	return nil
}

// ReadArray reads a JSON array of objects. A single top-level object is
// returned as a one-element array; any other value yields an empty result.
func ReadArray(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeArray(data)
}

// DecodeArray is ReadArray over bytes already in memory.
func DecodeArray(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, apperr.Wrap(apperr.ErrParse, fmt.Errorf("empty JSON document"))
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, apperr.Wrap(apperr.ErrParse, err)
		}
		return items, nil
	case '{':
		if !json.Valid(trimmed) {
			return nil, apperr.Wrap(apperr.ErrParse, fmt.Errorf("invalid JSON object"))
		}
		return []json.RawMessage{json.RawMessage(trimmed)}, nil
	default:
		if !json.Valid(trimmed) {
			return nil, apperr.Wrap(apperr.ErrParse, fmt.Errorf("invalid JSON document"))
		}
		return nil, nil
	}
}
