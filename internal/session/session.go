// Package session holds the presentation-layer state: the loaded catalog,
// the current filter criteria, and the last good transform result. The
// engine stays a pure function of its arguments; everything stateful about
// a user's working set lives here.
package session

import (
	"catalogctl/internal/engine"
	"catalogctl/internal/model"
	"catalogctl/internal/schema"
)

// Session is one user's working state. Not safe for concurrent use; callers
// serialize access, matching the one-transform-in-flight model.
type Session struct {
	catalog    *model.Catalog
	criteria   engine.Criteria
	lastResult []engine.Row
}

// New returns a session with no catalog loaded.
func New() *Session {
	return &Session{}
}

// SetCatalog replaces the loaded catalog wholesale. The previous result is
// kept: stale results stay visible until a new transform succeeds.
func (s *Session) SetCatalog(cat *model.Catalog) {
	s.catalog = cat
}

// Catalog returns the loaded catalog, or nil.
func (s *Session) Catalog() *model.Catalog {
	return s.catalog
}

// SetCriteria replaces the current filter criteria.
func (s *Session) SetCriteria(c engine.Criteria) {
	s.criteria = c
}

// Filtered returns the loaded records after applying the current criteria.
func (s *Session) Filtered() []model.Record {
	if s.catalog == nil {
		return nil
	}
	return engine.Filter(s.catalog.Services, s.criteria)
}

// Transform evaluates schema source against the current filtered set.
// On success the result becomes the session's last good result; on any
// failure the previous result is left untouched so callers can keep showing
// it.
func (s *Session) Transform(src string, opts schema.Options) ([]engine.Row, error) {
	filtered := s.Filtered()
	if len(filtered) == 0 {
		return nil, engine.Validationf("no records to transform: catalog empty or filters match nothing")
	}

	rows, err := schema.Evaluate(filtered, src, opts)
	if err != nil {
		return nil, err
	}
	s.lastResult = rows
	return rows, nil
}

// Project restricts the current filtered set to the given keys.
func (s *Session) Project(keys []string) ([]engine.Row, error) {
	if len(keys) == 0 {
		return nil, engine.Validationf("pick at least one field")
	}
	filtered := s.Filtered()
	if len(filtered) == 0 {
		return nil, engine.Validationf("no records to project: catalog empty or filters match nothing")
	}
	rows := engine.Project(filtered, keys)
	s.lastResult = rows
	return rows, nil
}

// LastResult returns the most recent good result, or nil.
func (s *Session) LastResult() []engine.Row {
	return s.lastResult
}
