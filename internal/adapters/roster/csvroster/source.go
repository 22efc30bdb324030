// Package csvroster loads the duty roster from a CSV file maintained by
// the host application.
package csvroster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/duty-agent/internal/domain"
	"github.com/bnema/duty-agent/internal/ports"
)

const utf8BOM = "\uFEFF"

// Source reads `id,name,active` rows. Header order is free; unknown
// columns are ignored. A missing active column means active.
type Source struct {
	rosterPath string
}

var _ ports.RosterSource = (*Source)(nil)

func NewSource(rosterPath string) (*Source, error) {
	if rosterPath == "" {
		return nil, errors.New("roster path is empty")
	}

	absPath, err := filepath.Abs(rosterPath)
	if err != nil {
		return nil, fmt.Errorf("resolve roster path: %w", err)
	}

	return &Source{rosterPath: filepath.Clean(absPath)}, nil
}

func (s *Source) Load(ctx context.Context) (*domain.Roster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.rosterPath)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse roster file: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("roster file is empty")
	}

	columns, err := headerColumns(records[0])
	if err != nil {
		return nil, err
	}

	people := make([]domain.Person, 0, len(records)-1)
	for _, record := range records[1:] {
		person, ok := parseRow(record, columns)
		if !ok {
			continue
		}
		people = append(people, person)
	}

	roster, err := domain.NewRoster(people)
	if err != nil {
		return nil, fmt.Errorf("build roster: %w", err)
	}

	return roster, nil
}

type columnIndexes struct {
	id     int
	name   int
	active int
}

func headerColumns(header []string) (columnIndexes, error) {
	columns := columnIndexes{id: -1, name: -1, active: -1}
	for idx, field := range header {
		switch strings.ToLower(strings.TrimSpace(field)) {
		case "id":
			columns.id = idx
		case "name":
			columns.name = idx
		case "active":
			columns.active = idx
		}
	}

	if columns.id == -1 || columns.name == -1 {
		return columnIndexes{}, errors.New("roster header must contain id and name columns")
	}
	return columns, nil
}

func parseRow(record []string, columns columnIndexes) (domain.Person, bool) {
	if columns.id >= len(record) || columns.name >= len(record) {
		return domain.Person{}, false
	}

	id, err := strconv.Atoi(strings.TrimSpace(record[columns.id]))
	if err != nil || id <= 0 {
		return domain.Person{}, false
	}

	name := strings.TrimSpace(record[columns.name])
	if name == "" {
		return domain.Person{}, false
	}

	active := true
	if columns.active != -1 && columns.active < len(record) {
		active = parseActive(record[columns.active])
	}

	return domain.Person{ID: id, DisplayName: name, Active: active}, true
}

func parseActive(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
