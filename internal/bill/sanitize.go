package bill

import (
	"math"
	"strings"

	"github.com/fairshare/fairshare/internal/models"
)

const (
	// MaxNameLength caps participant names.
	MaxNameLength = 50

	// MaxDescriptionLength caps line item descriptions.
	MaxDescriptionLength = 200

	// DefaultParticipantName is the placeholder for newly added or
	// nameless participants.
	DefaultParticipantName = "New Person"

	// DefaultItemDescription is the placeholder for nameless items.
	DefaultItemDescription = "Item"
)

// ValidWeight reports whether w is a usable allocation weight:
// finite and non-negative.
func ValidWeight(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0) && w >= 0
}

// ValidPrice reports whether p is a usable price: finite and non-negative.
func ValidPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0
}

// SanitizeName trims a participant name and caps it at MaxNameLength runes.
func SanitizeName(name string) string {
	return truncate(strings.TrimSpace(name), MaxNameLength)
}

// SanitizeDescription trims an item description and caps it at
// MaxDescriptionLength runes.
func SanitizeDescription(description string) string {
	return truncate(strings.TrimSpace(description), MaxDescriptionLength)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Sanitize normalizes a candidate bill in place so it satisfies the data
// model invariants: every participant and item gets an id and a non-empty
// name/description, numeric fields are clamped, duplicate and dangling
// split references are dropped, and at least one participant exists.
//
// Parser output passes through here before a store will accept it.
func Sanitize(b *models.Bill, ids IDGenerator) {
	seenParticipants := make(map[string]bool, len(b.Participants))
	participants := b.Participants[:0]
	for _, p := range b.Participants {
		if p.ID == "" {
			p.ID = ids.NewID()
		}
		if seenParticipants[p.ID] {
			continue
		}
		seenParticipants[p.ID] = true
		p.Name = SanitizeName(p.Name)
		if p.Name == "" {
			p.Name = DefaultParticipantName
		}
		participants = append(participants, p)
	}
	if len(participants) == 0 {
		participants = append(participants, models.Participant{
			ID:   ids.NewID(),
			Name: DefaultParticipantName,
		})
	}
	b.Participants = participants

	seenItems := make(map[string]bool, len(b.LineItems))
	items := b.LineItems[:0]
	for _, item := range b.LineItems {
		if item.ID == "" {
			item.ID = ids.NewID()
		}
		if seenItems[item.ID] {
			continue
		}
		seenItems[item.ID] = true
		item.Description = SanitizeDescription(item.Description)
		if item.Description == "" {
			item.Description = DefaultItemDescription
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		item.UnitPrice = clampPrice(item.UnitPrice)
		item.TotalPrice = clampPrice(item.TotalPrice)
		items = append(items, item)
	}
	b.LineItems = items

	seenEntries := make(map[string]bool, len(b.SplitEntries))
	entries := b.SplitEntries[:0]
	for _, entry := range b.SplitEntries {
		if !seenItems[entry.ItemID] || seenEntries[entry.ItemID] {
			continue
		}
		seenEntries[entry.ItemID] = true

		allocs := make([]models.Allocation, 0, len(entry.Allocations))
		for _, alloc := range entry.Allocations {
			// Zero or invalid weights are equivalent to absence and are
			// never stored.
			if !seenParticipants[alloc.ParticipantID] || !ValidWeight(alloc.Weight) || alloc.Weight == 0 {
				continue
			}
			allocs = append(allocs, alloc)
		}
		entry.Allocations = allocs
		entries = append(entries, entry)
	}
	b.SplitEntries = entries
}

func clampPrice(p float64) float64 {
	if !ValidPrice(p) {
		return 0
	}
	return p
}
