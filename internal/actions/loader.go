// Package actions loads and validates the declarative action document
// (config.yaml) that binds key chords to Home Assistant service calls.
package actions

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the action document name inside the config directory.
const FileName = "config.yaml"

// Loader handles loading and validating config.yaml
type Loader struct {
	filePath string
}

// NewLoader creates a new loader for the given file
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the file this loader reads.
func (l *Loader) Path() string { return l.filePath }

// Load reads, decodes and validates the document.
//
// When the file does not exist a template is written in its place and a
// *FirstRunError is returned. No partial document is ever returned.
func (l *Loader) Load() (*Document, error) {
	doc, err := l.Check()
	var loadErr *LoadError
	if errors.As(err, &loadErr) && errors.Is(loadErr.Err, fs.ErrNotExist) {
		if werr := WriteTemplate(l.filePath); werr != nil {
			return nil, &LoadError{Path: l.filePath, Op: "read", Err: werr}
		}
		return nil, &FirstRunError{Path: l.filePath}
	}
	return doc, err
}

// Check is Load without the first-run template: a missing file is a
// *LoadError wrapping fs.ErrNotExist.
func (l *Loader) Check() (*Document, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, &LoadError{Path: l.filePath, Op: "read", Err: err}
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Path: l.filePath, Op: "parse", Err: err}
	}

	if err := Validate(doc); err != nil {
		return nil, fmt.Errorf("validate %s: %w", l.filePath, err)
	}
	return doc, nil
}

// Decode parses a document without validating it.
func Decode(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config file is empty")
		}
		return nil, err
	}
	return &doc, nil
}

// DefaultDir returns the per-user config directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(base, "hass_hotkeys"), nil
}

// Locate returns the config.yaml path inside dir, creating dir when needed.
func Locate(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("can't create config dir %s: %w", dir, err)
	}
	return filepath.Join(dir, FileName), nil
}
