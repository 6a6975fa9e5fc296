package diagram

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for file extensions and format names that are
// neither JSON nor YAML.
var ErrUnknownFormat = errors.New("unknown document format")

// ParseFormat accepts "json", "yaml" and "yml", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Read decodes a document from r. Read does not close r.
func Read(r io.Reader, f Format) (*Document, error) {
	var doc Document
	if err := decode(r, f, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Write encodes v, usually a [Document] or a planner result, to w.
func Write(w io.Writer, v any, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func decode(r io.Reader, f Format, v any) error {
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(v); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		return nil
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Load reads the document at path, choosing the format from the extension.
func Load(path string) (*Document, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	doc, err := Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Save writes v to path, choosing the format from the extension.
func Save(path string, v any) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(file, v, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
