// Package dataset loads the mobilisation dataset from its configured source
// and serves it as an immutable in-memory store.
package dataset

import (
	"fmt"
	"sort"

	"github.com/fireline/fireline/internal/types"
	"github.com/fireline/fireline/pkg/config"
)

// Store holds the loaded mobilisation records plus the selector values
// derived from them. It is frozen after construction and safe for concurrent
// readers.
type Store struct {
	records  []types.Record
	columns  types.ColumnSet
	years    []int
	groups   []string
	boroughs []string
	minYear  int
	maxYear  int
}

// NewStore freezes a record set into a Store, deriving the distinct years,
// incident groups and borough names used to populate the filter selectors.
func NewStore(records []types.Record, columns types.ColumnSet) (*Store, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset contains no records")
	}

	yearSet := make(map[int]struct{})
	groupSet := make(map[string]struct{})
	boroughSet := make(map[string]struct{})
	for i := range records {
		r := &records[i]
		yearSet[r.Year] = struct{}{}
		if r.IncidentGroup != "" {
			groupSet[r.IncidentGroup] = struct{}{}
		}
		if r.BoroughName != "" {
			boroughSet[r.BoroughName] = struct{}{}
		}
	}

	s := &Store{records: records, columns: columns}
	for y := range yearSet {
		s.years = append(s.years, y)
	}
	sort.Ints(s.years)
	s.minYear = s.years[0]
	s.maxYear = s.years[len(s.years)-1]

	for g := range groupSet {
		s.groups = append(s.groups, g)
	}
	sort.Strings(s.groups)
	for b := range boroughSet {
		s.boroughs = append(s.boroughs, b)
	}
	sort.Strings(s.boroughs)
	return s, nil
}

// Records returns the full record set. Callers must treat it as read-only.
func (s *Store) Records() []types.Record { return s.records }

// Columns reports which optional columns the loaded dataset carried.
func (s *Store) Columns() types.ColumnSet { return s.columns }

// Years returns the distinct calendar years in the dataset, ascending.
func (s *Store) Years() []int { return s.years }

// IncidentGroups returns the distinct incident groups, sorted.
func (s *Store) IncidentGroups() []string { return s.groups }

// Boroughs returns the distinct borough names, sorted.
func (s *Store) Boroughs() []string { return s.boroughs }

// YearSpan returns the first and last calendar year covered by the dataset.
func (s *Store) YearSpan() (int, int) { return s.minYear, s.maxYear }

// Len returns the number of mobilisation records.
func (s *Store) Len() int { return len(s.records) }

// Load reads the dataset from the configured source and freezes it into a
// Store.
func Load(cfg config.DatasetData) (*Store, error) {
	var (
		records []types.Record
		columns types.ColumnSet
		err     error
	)
	switch cfg.Source {
	case "csv":
		records, columns, err = LoadCSV(cfg.Path)
	case "sqlite":
		records, columns, err = LoadSQLite(cfg.Path, cfg.Table)
	case "postgres":
		records, columns, err = LoadPostgres(cfg.ConnectionString, cfg.Table)
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Source)
	}
	if err != nil {
		return nil, err
	}
	return NewStore(records, columns)
}
