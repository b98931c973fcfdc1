package bill

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairshare/fairshare/internal/models"
)

func newTestStore() *Store {
	return NewStore(Demo(), &SequenceGenerator{Prefix: "id"})
}

func TestSetAllocationWeight(t *testing.T) {
	t.Run("updates an existing allocation", func(t *testing.T) {
		s := newTestStore()
		next := s.SetAllocationWeight("i3", "p2", 5)

		entry, ok := next.SplitEntryFor("i3")
		require.True(t, ok)
		assert.Equal(t, []models.Allocation{
			{ParticipantID: "p2", Weight: 5},
			{ParticipantID: "p3", Weight: 1},
		}, entry.Allocations)
	})

	t.Run("creates an entry for an item without one", func(t *testing.T) {
		s := NewStore(&models.Bill{
			Participants: []models.Participant{{ID: "p1", Name: "Alex"}},
			LineItems:    []models.LineItem{{ID: "i1", Description: "Fries", Quantity: 1, TotalPrice: 4}},
		}, &SequenceGenerator{})

		next := s.SetAllocationWeight("i1", "p1", 1)

		entry, ok := next.SplitEntryFor("i1")
		require.True(t, ok)
		assert.Equal(t, models.SplitRatio, entry.Method)
		assert.Equal(t, []models.Allocation{{ParticipantID: "p1", Weight: 1}}, entry.Allocations)
	})

	t.Run("zero weight removes the allocation", func(t *testing.T) {
		s := newTestStore()
		next := s.SetAllocationWeight("i3", "p2", 0)

		entry, ok := next.SplitEntryFor("i3")
		require.True(t, ok)
		assert.Equal(t, []models.Allocation{{ParticipantID: "p3", Weight: 1}}, entry.Allocations)
	})

	t.Run("zeroing every allocation leaves an empty entry, not a pruned one", func(t *testing.T) {
		s := newTestStore()
		s.SetAllocationWeight("i3", "p2", 0)
		next := s.SetAllocationWeight("i3", "p3", 0)

		entry, ok := next.SplitEntryFor("i3")
		require.True(t, ok, "entry stays in the list once emptied")
		assert.Empty(t, entry.Allocations)
	})

	t.Run("zero weight on a missing allocation is a no-op", func(t *testing.T) {
		s := newTestStore()
		before := s.Snapshot()
		next := s.SetAllocationWeight("i2", "p3", 0)
		assert.Same(t, before, next)
	})

	t.Run("invalid weights are ignored", func(t *testing.T) {
		s := newTestStore()
		before := s.Snapshot()

		for _, w := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
			next := s.SetAllocationWeight("i1", "p1", w)
			assert.Same(t, before, next, "weight %v should be rejected", w)
		}
	})

	t.Run("does not mutate the previous snapshot", func(t *testing.T) {
		s := newTestStore()
		before := s.Snapshot()
		beforeEntry, _ := before.SplitEntryFor("i3")
		require.Equal(t, 2.0, beforeEntry.Allocations[0].Weight)

		s.SetAllocationWeight("i3", "p2", 9)

		afterEntry, _ := before.SplitEntryFor("i3")
		assert.Equal(t, 2.0, afterEntry.Allocations[0].Weight, "old snapshot changed")
	})
}

func TestModifierSetters(t *testing.T) {
	t.Run("sets type and value through the narrow operations", func(t *testing.T) {
		s := newTestStore()
		s.SetModifierType(models.ModifierKeyTip, models.ModifierFixed)
		next := s.SetModifierValue(models.ModifierKeyTip, 12)

		assert.Equal(t, models.ModifierFixed, next.Modifiers.Tip.Type)
		assert.Equal(t, 12.0, next.Modifiers.Tip.Value)
		assert.Equal(t, "user", next.Modifiers.Tip.Source)
	})

	t.Run("rejects unknown keys and types", func(t *testing.T) {
		s := newTestStore()
		before := s.Snapshot()

		assert.Same(t, before, s.SetModifierType("discount", models.ModifierFixed))
		assert.Same(t, before, s.SetModifierType(models.ModifierKeyTax, "halved"))
		assert.Same(t, before, s.SetModifierValue("discount", 1))
		assert.Same(t, before, s.SetModifierValue(models.ModifierKeyTax, math.NaN()))
	})
}

func TestRenameParticipant(t *testing.T) {
	t.Run("trims and applies the new name", func(t *testing.T) {
		s := newTestStore()
		next := s.RenameParticipant("p1", "  Alexandra  ")

		p, ok := next.Participant("p1")
		require.True(t, ok)
		assert.Equal(t, "Alexandra", p.Name)
	})

	t.Run("caps the name at fifty runes", func(t *testing.T) {
		s := newTestStore()
		long := make([]rune, 0, 60)
		for i := 0; i < 60; i++ {
			long = append(long, 'ü')
		}
		next := s.RenameParticipant("p1", string(long))

		p, _ := next.Participant("p1")
		assert.Len(t, []rune(p.Name), MaxNameLength)
	})

	t.Run("whitespace-only names are ignored", func(t *testing.T) {
		s := newTestStore()
		before := s.Snapshot()
		assert.Same(t, before, s.RenameParticipant("p1", "   "))
	})
}

func TestAddParticipant(t *testing.T) {
	s := newTestStore()
	added, next := s.AddParticipant()

	assert.Equal(t, "id1", added.ID)
	assert.Equal(t, DefaultParticipantName, added.Name)
	assert.Len(t, next.Participants, 4)

	got, ok := next.Participant(added.ID)
	require.True(t, ok)
	assert.Equal(t, added, got)
}

func TestDeleteParticipant(t *testing.T) {
	t.Run("removes the participant and strips their allocations", func(t *testing.T) {
		s := newTestStore()
		next := s.DeleteParticipant("p2")

		_, ok := next.Participant("p2")
		assert.False(t, ok)

		for _, entry := range next.SplitEntries {
			for _, a := range entry.Allocations {
				assert.NotEqual(t, "p2", a.ParticipantID)
			}
		}

		// i3 was split Sam:Jordan, so Jordan keeps it alone.
		entry, _ := next.SplitEntryFor("i3")
		assert.Equal(t, []models.Allocation{{ParticipantID: "p3", Weight: 1}}, entry.Allocations)
	})

	t.Run("item allocated solely to the deleted participant becomes unassigned", func(t *testing.T) {
		s := newTestStore()
		next := s.DeleteParticipant("p1")

		entry, ok := next.SplitEntryFor("i2")
		require.True(t, ok)
		assert.Empty(t, entry.Allocations)
	})

	t.Run("the sole remaining participant cannot be deleted", func(t *testing.T) {
		s := NewStore(&models.Bill{
			Participants: []models.Participant{{ID: "p1", Name: "Alex"}},
		}, &SequenceGenerator{})

		before := s.Snapshot()
		next := s.DeleteParticipant("p1")

		assert.Same(t, before, next)
		assert.Len(t, next.Participants, 1)
	})

	t.Run("unknown ids are ignored", func(t *testing.T) {
		s := newTestStore()
		before := s.Snapshot()
		assert.Same(t, before, s.DeleteParticipant("nope"))
	})
}

func TestUpsertLineItem(t *testing.T) {
	t.Run("appends a new item under a fresh id", func(t *testing.T) {
		s := newTestStore()
		item, next := s.UpsertLineItem(models.LineItem{Description: " Espresso ", TotalPrice: 3.5})

		assert.Equal(t, "id1", item.ID)
		assert.Equal(t, "Espresso", item.Description)
		assert.Equal(t, 1, item.Quantity)
		assert.Equal(t, 3.5, item.UnitPrice)
		assert.Len(t, next.LineItems, 4)
	})

	t.Run("replaces an existing item in place", func(t *testing.T) {
		s := newTestStore()
		item, next := s.UpsertLineItem(models.LineItem{ID: "i2", Description: "Veggie Burger", Quantity: 2, TotalPrice: 15})

		assert.Equal(t, "i2", item.ID)
		require.Len(t, next.LineItems, 3)
		assert.Equal(t, "Veggie Burger", next.LineItems[1].Description, "item keeps its position")
		assert.Equal(t, 15.0, next.LineItems[1].TotalPrice)
	})

	t.Run("an unknown id still appends, under a fresh id", func(t *testing.T) {
		s := newTestStore()
		item, next := s.UpsertLineItem(models.LineItem{ID: "stale", Description: "Cake", TotalPrice: 7})

		assert.Equal(t, "id1", item.ID)
		assert.Len(t, next.LineItems, 4)
	})

	t.Run("rejects empty descriptions and invalid prices", func(t *testing.T) {
		s := newTestStore()
		before := s.Snapshot()

		_, next := s.UpsertLineItem(models.LineItem{Description: "   ", TotalPrice: 5})
		assert.Same(t, before, next)

		_, next = s.UpsertLineItem(models.LineItem{Description: "Cake", TotalPrice: -5})
		assert.Same(t, before, next)

		_, next = s.UpsertLineItem(models.LineItem{Description: "Cake", TotalPrice: math.NaN()})
		assert.Same(t, before, next)
	})
}

func TestDeleteLineItem(t *testing.T) {
	t.Run("removes the item and its split entry together", func(t *testing.T) {
		s := newTestStore()
		next := s.DeleteLineItem("i1")

		assert.Len(t, next.LineItems, 2)
		_, ok := next.SplitEntryFor("i1")
		assert.False(t, ok, "split entry must not be orphaned")
	})

	t.Run("unknown ids are ignored", func(t *testing.T) {
		s := newTestStore()
		before := s.Snapshot()
		assert.Same(t, before, s.DeleteLineItem("nope"))
	})
}
