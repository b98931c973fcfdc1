// Package bill holds the allocation state of one receipt-splitting session
// and the mutation rules that keep it consistent.
//
// Every mutation is a pure function from the previous snapshot to a new
// one: touched substructures are copied, untouched ones are shared, and a
// snapshot that has been handed out is never modified again. Invalid
// arguments make a mutation a no-op rather than an error, so the snapshot
// is always in a valid state.
package bill

import (
	"math"

	"github.com/fairshare/fairshare/internal/models"
)

// Store owns the current snapshot of one bill and serializes writers.
type Store struct {
	ids  IDGenerator
	bill *models.Bill
}

// NewStore creates a store around an already-sanitized snapshot.
func NewStore(b *models.Bill, ids IDGenerator) *Store {
	return &Store{ids: ids, bill: b}
}

// Snapshot returns the current snapshot. Callers must treat it as
// read-only; mutations never modify a published snapshot in place.
func (s *Store) Snapshot() *models.Bill {
	return s.bill
}

// SetAllocationWeight sets participantID's weight on itemID. A weight that
// is not a finite non-negative number is ignored. Writing a weight of zero
// removes the allocation; removing the last allocation leaves an empty
// entry, which the calculator treats as unassigned.
func (s *Store) SetAllocationWeight(itemID, participantID string, weight float64) *models.Bill {
	if !ValidWeight(weight) {
		return s.bill
	}

	next := *s.bill
	idx := entryIndex(next.SplitEntries, itemID)

	if idx == -1 {
		if weight > 0 {
			next.SplitEntries = append(copyEntries(next.SplitEntries), models.SplitEntry{
				ItemID: itemID,
				Method: models.SplitRatio,
				Allocations: []models.Allocation{
					{ParticipantID: participantID, Weight: weight},
				},
			})
			s.bill = &next
		}
		return s.bill
	}

	entries := copyEntries(next.SplitEntries)
	entry := entries[idx]
	allocs := append([]models.Allocation(nil), entry.Allocations...)

	pos := -1
	for i, a := range allocs {
		if a.ParticipantID == participantID {
			pos = i
			break
		}
	}

	switch {
	case pos >= 0 && weight <= 0:
		allocs = append(allocs[:pos], allocs[pos+1:]...)
	case pos >= 0:
		allocs[pos].Weight = weight
	case weight > 0:
		allocs = append(allocs, models.Allocation{ParticipantID: participantID, Weight: weight})
	default:
		// Removing an allocation that does not exist.
		return s.bill
	}

	entry.Allocations = allocs
	entries[idx] = entry
	next.SplitEntries = entries
	s.bill = &next
	return s.bill
}

// SetModifierType sets the type of the named modifier. Unknown keys and
// unknown types are ignored.
func (s *Store) SetModifierType(key models.ModifierKey, typ models.ModifierType) *models.Bill {
	if typ != models.ModifierFixed && typ != models.ModifierPercentage {
		return s.bill
	}
	return s.updateModifier(key, func(m *models.Modifier) {
		m.Type = typ
	})
}

// SetModifierValue sets the value of the named modifier. Non-finite values
// and unknown keys are ignored; anything else is structural, so no further
// validation applies.
func (s *Store) SetModifierValue(key models.ModifierKey, value float64) *models.Bill {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return s.bill
	}
	return s.updateModifier(key, func(m *models.Modifier) {
		m.Value = value
		m.Source = "user"
	})
}

func (s *Store) updateModifier(key models.ModifierKey, apply func(*models.Modifier)) *models.Bill {
	next := *s.bill
	switch key {
	case models.ModifierKeyTax:
		apply(&next.Modifiers.Tax)
	case models.ModifierKeyTip:
		apply(&next.Modifiers.Tip)
	default:
		return s.bill
	}
	s.bill = &next
	return s.bill
}

// RenameParticipant replaces a participant's name. The name is trimmed and
// capped; an empty result leaves the snapshot unchanged.
func (s *Store) RenameParticipant(id, name string) *models.Bill {
	sanitized := SanitizeName(name)
	if sanitized == "" {
		return s.bill
	}

	next := *s.bill
	participants := append([]models.Participant(nil), next.Participants...)
	changed := false
	for i, p := range participants {
		if p.ID == id {
			participants[i].Name = sanitized
			changed = true
			break
		}
	}
	if !changed {
		return s.bill
	}
	next.Participants = participants
	s.bill = &next
	return s.bill
}

// AddParticipant creates a participant with a fresh id and a placeholder
// name and returns it, so callers can immediately prompt for a real name.
func (s *Store) AddParticipant() (models.Participant, *models.Bill) {
	participant := models.Participant{
		ID:   s.ids.NewID(),
		Name: DefaultParticipantName,
	}

	next := *s.bill
	next.Participants = append(copyParticipants(next.Participants), participant)
	s.bill = &next
	return participant, s.bill
}

// DeleteParticipant removes a participant and strips every allocation that
// references them. Deleting the sole remaining participant is a no-op:
// a bill always has at least one.
func (s *Store) DeleteParticipant(id string) *models.Bill {
	if len(s.bill.Participants) <= 1 {
		return s.bill
	}

	participants := make([]models.Participant, 0, len(s.bill.Participants)-1)
	found := false
	for _, p := range s.bill.Participants {
		if p.ID == id {
			found = true
			continue
		}
		participants = append(participants, p)
	}
	if !found {
		return s.bill
	}

	entries := make([]models.SplitEntry, len(s.bill.SplitEntries))
	for i, entry := range s.bill.SplitEntries {
		allocs := make([]models.Allocation, 0, len(entry.Allocations))
		for _, a := range entry.Allocations {
			if a.ParticipantID != id {
				allocs = append(allocs, a)
			}
		}
		entry.Allocations = allocs
		entries[i] = entry
	}

	next := *s.bill
	next.Participants = participants
	next.SplitEntries = entries
	s.bill = &next
	return s.bill
}

// UpsertLineItem validates and stores a line item. When the id matches an
// existing item it is replaced in place; otherwise a new item is appended
// under a fresh id. The total price is authoritative; the unit price
// mirrors it and quantity is floored at 1. Invalid input is a no-op.
func (s *Store) UpsertLineItem(item models.LineItem) (models.LineItem, *models.Bill) {
	item.Description = SanitizeDescription(item.Description)
	if item.Description == "" || !ValidPrice(item.TotalPrice) {
		return models.LineItem{}, s.bill
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.UnitPrice = item.TotalPrice

	next := *s.bill
	items := copyItems(next.LineItems)

	if item.ID != "" {
		for i := range items {
			if items[i].ID == item.ID {
				items[i] = item
				next.LineItems = items
				s.bill = &next
				return item, s.bill
			}
		}
	}

	item.ID = s.ids.NewID()
	next.LineItems = append(items, item)
	s.bill = &next
	return item, s.bill
}

// DeleteLineItem removes an item together with its split entry, so no
// orphaned entry is ever left behind.
func (s *Store) DeleteLineItem(id string) *models.Bill {
	next := *s.bill

	items := make([]models.LineItem, 0, len(next.LineItems))
	found := false
	for _, item := range next.LineItems {
		if item.ID == id {
			found = true
			continue
		}
		items = append(items, item)
	}
	if !found {
		return s.bill
	}

	entries := make([]models.SplitEntry, 0, len(next.SplitEntries))
	for _, entry := range next.SplitEntries {
		if entry.ItemID != id {
			entries = append(entries, entry)
		}
	}

	next.LineItems = items
	next.SplitEntries = entries
	s.bill = &next
	return s.bill
}

func entryIndex(entries []models.SplitEntry, itemID string) int {
	for i, e := range entries {
		if e.ItemID == itemID {
			return i
		}
	}
	return -1
}

func copyEntries(entries []models.SplitEntry) []models.SplitEntry {
	return append([]models.SplitEntry(nil), entries...)
}

func copyItems(items []models.LineItem) []models.LineItem {
	return append([]models.LineItem(nil), items...)
}

func copyParticipants(participants []models.Participant) []models.Participant {
	return append([]models.Participant(nil), participants...)
}
