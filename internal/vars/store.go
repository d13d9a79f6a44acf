// Package vars resolves named configuration variables for posting tools.
// A value comes from the process environment first, then from a JSON input
// file (input.json by default, overridable through INPUT_FILE). File values
// keep their JSON types until lookup, when they convert through the same
// canonical stringification the placeholder engine uses: lists become
// comma-joined, booleans become true/false, null becomes the empty string.
package vars

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/postcraft/contentpipe/internal/value"
)

// DefaultFileName is the JSON input file consulted when INPUT_FILE is unset.
const DefaultFileName = "input.json"

// Store looks up variables env-first with a JSON file fallback. The file is
// read and parsed once per Store; create a fresh Store to observe changes.
type Store struct {
	getenv func(string) string
	logger *slog.Logger

	loaded bool
	doc    value.Value
}

// NewStore creates a store around the given environment lookup.
func NewStore(getenv func(string) string, logger *slog.Logger) *Store {
	if getenv == nil {
		getenv = os.Getenv
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{getenv: getenv, logger: logger}
}

// Lookup resolves a variable. Environment values win over file values; the
// bool reports whether the name was found in either place.
func (s *Store) Lookup(name string) (string, bool) {
	if v := s.getenv(name); v != "" {
		return v, true
	}
	doc := s.document()
	field, ok := doc.Field(name)
	if !ok {
		return "", false
	}
	return field.String(), true
}

// Get resolves a variable with a default for misses.
func (s *Store) Get(name, fallback string) string {
	if v, ok := s.Lookup(name); ok {
		return v
	}
	return fallback
}

// Require resolves a variable or returns an error naming it.
func (s *Store) Require(name string) (string, error) {
	v, ok := s.Lookup(name)
	if !ok || v == "" {
		return "", fmt.Errorf("required variable %s not found in environment or input file", name)
	}
	return v, nil
}

// document lazily loads the input file. A missing file is normal; an
// unreadable or invalid one logs a warning and behaves as absent.
func (s *Store) document() value.Value {
	if s.loaded {
		return s.doc
	}
	s.loaded = true
	s.doc = value.Null()

	path := s.getenv("INPUT_FILE")
	if path == "" {
		path = DefaultFileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read input file", "path", path, "error", err)
		}
		return s.doc
	}
	doc, err := value.DecodeBytes(data)
	if err != nil {
		s.logger.Warn("invalid JSON in input file", "path", path, "error", err)
		return s.doc
	}
	if doc.Kind() != value.KindMap {
		s.logger.Warn("input file is not a JSON object", "path", path)
		return s.doc
	}
	s.doc = doc
	s.logger.Debug("loaded input file", "path", path)
	return s.doc
}
