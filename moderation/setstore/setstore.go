// Package setstore provides named wordlist sets used by the content analyzer
// and the baseline word filter.
//
// Wordlists are data, not code: operators can replace or extend any of the
// built-in lists from a JSON file ({"set-name": ["word", ...], ...}) without
// recompiling.
package setstore

import (
	"context"
	"encoding/json"
	"io"
	"os"
)

type SetStore interface {
	InSet(ctx context.Context, name, val string) (bool, error)
	// Returns the full membership of a named set. Empty slice when the set
	// does not exist.
	GetSet(ctx context.Context, name string) ([]string, error)
}

type MemSetStore struct {
	Sets map[string]map[string]bool
}

func NewMemSetStore() *MemSetStore {
	return &MemSetStore{
		Sets: make(map[string]map[string]bool),
	}
}

func (s *MemSetStore) InSet(ctx context.Context, name, val string) (bool, error) {
	set, ok := s.Sets[name]
	if !ok {
		// NOTE: returns false when the entire set isn't found
		return false, nil
	}
	_, ok = set[val]
	return ok, nil
}

func (s *MemSetStore) GetSet(ctx context.Context, name string) ([]string, error) {
	set, ok := s.Sets[name]
	if !ok {
		return []string{}, nil
	}
	out := make([]string, 0, len(set))
	for val := range set {
		out = append(out, val)
	}
	return out, nil
}

func (s *MemSetStore) AddToSet(name string, vals []string) {
	m, ok := s.Sets[name]
	if !ok {
		m = make(map[string]bool, len(vals))
		s.Sets[name] = m
	}
	for _, val := range vals {
		m[val] = true
	}
}

// Replaces any same-named sets with the contents of a JSON file.
func (s *MemSetStore) LoadFromFileJSON(p string) error {

	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var lists map[string][]string
	if err := json.Unmarshal(raw, &lists); err != nil {
		return err
	}

	for name, l := range lists {
		m := make(map[string]bool, len(l))
		for _, val := range l {
			m[val] = true
		}
		s.Sets[name] = m
	}
	return nil
}
