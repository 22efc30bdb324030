package domain

import (
	"fmt"
	"sort"
	"strings"
)

type Person struct {
	ID          int
	DisplayName string
	Active      bool
}

// Roster is the full set of known people for one run. IDs are assigned by
// the roster source and never change for the process lifetime.
type Roster struct {
	NameToID map[string]int
	IDToName map[int]string

	activeIDs []int
	allIDs    []int
}

// NewRoster builds a roster from raw rows. Duplicate display names are made
// unique by appending an occurrence counter, so name lookups stay
// unambiguous in both directions.
func NewRoster(people []Person) (*Roster, error) {
	roster := &Roster{
		NameToID: make(map[string]int, len(people)),
		IDToName: make(map[int]string, len(people)),
	}

	seenNames := make(map[string]int, len(people))
	seenIDs := make(map[int]struct{}, len(people))

	for _, person := range people {
		if person.ID <= 0 {
			continue
		}

		name := uniqueName(person.DisplayName, seenNames)
		if name == "" {
			continue
		}

		roster.NameToID[name] = person.ID
		roster.IDToName[person.ID] = name

		if _, ok := seenIDs[person.ID]; !ok {
			seenIDs[person.ID] = struct{}{}
			roster.allIDs = append(roster.allIDs, person.ID)
			if person.Active {
				roster.activeIDs = append(roster.activeIDs, person.ID)
			}
		}
	}

	sort.Ints(roster.allIDs)
	sort.Ints(roster.activeIDs)

	if len(roster.activeIDs) == 0 {
		return nil, ErrNoActivePeople
	}

	return roster, nil
}

func uniqueName(raw string, seenCounts map[string]int) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}

	seenCounts[base]++
	if seenCounts[base] == 1 {
		return base
	}
	return fmt.Sprintf("%s%d", base, seenCounts[base])
}

// ActiveIDs returns the sorted ids that may be scheduled.
func (r *Roster) ActiveIDs() []int {
	return r.activeIDs
}

// AllIDs returns every known id, active or not, sorted.
func (r *Roster) AllIDs() []int {
	return r.allIDs
}

// IDRange returns the lowest and highest known id.
func (r *Roster) IDRange() (int, int) {
	return r.allIDs[0], r.allIDs[len(r.allIDs)-1]
}

// DisabledIDs returns the sorted ids present in the roster but not active.
func (r *Roster) DisabledIDs() []int {
	active := make(map[int]struct{}, len(r.activeIDs))
	for _, id := range r.activeIDs {
		active[id] = struct{}{}
	}

	disabled := make([]int, 0, len(r.allIDs)-len(r.activeIDs))
	for _, id := range r.allIDs {
		if _, ok := active[id]; !ok {
			disabled = append(disabled, id)
		}
	}
	return disabled
}

// ActiveSet returns the active ids as a membership set.
func (r *Roster) ActiveSet() map[int]struct{} {
	set := make(map[int]struct{}, len(r.activeIDs))
	for _, id := range r.activeIDs {
		set[id] = struct{}{}
	}
	return set
}
