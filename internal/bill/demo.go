package bill

import (
	"github.com/fairshare/fairshare/internal/models"
)

// Demo returns the built-in example bill: three friends, a shared platter,
// one personal item, and a pitcher split 2:1. Useful for trying the editor
// without parsing a receipt.
func Demo() *models.Bill {
	return &models.Bill{
		Meta: models.Meta{Currency: "USD", Notes: "Generated example"},
		Participants: []models.Participant{
			{ID: "p1", Name: "Alex"},
			{ID: "p2", Name: "Sam"},
			{ID: "p3", Name: "Jordan"},
		},
		LineItems: []models.LineItem{
			{ID: "i1", Description: "Shared Appetizer Platter", Quantity: 1, UnitPrice: 18.0, TotalPrice: 18.0},
			{ID: "i2", Description: "Alex's Burger", Quantity: 1, UnitPrice: 16.5, TotalPrice: 16.5},
			{ID: "i3", Description: "Pitcher of Beer", Quantity: 1, UnitPrice: 24.0, TotalPrice: 24.0},
		},
		SplitEntries: []models.SplitEntry{
			{
				ItemID: "i1",
				Method: models.SplitEqual,
				Allocations: []models.Allocation{
					{ParticipantID: "p1", Weight: 1},
					{ParticipantID: "p2", Weight: 1},
					{ParticipantID: "p3", Weight: 1},
				},
			},
			{
				ItemID: "i2",
				Method: models.SplitExplicit,
				Allocations: []models.Allocation{
					{ParticipantID: "p1", Weight: 1},
				},
			},
			{
				ItemID: "i3",
				Method: models.SplitRatio,
				Allocations: []models.Allocation{
					{ParticipantID: "p2", Weight: 2},
					{ParticipantID: "p3", Weight: 1},
				},
			},
		},
		Modifiers: models.Modifiers{
			Tax: models.Modifier{Source: "receipt", Type: models.ModifierFixed, Value: 5.85},
			Tip: models.Modifier{Source: "user_prompt", Type: models.ModifierPercentage, Value: 20},
		},
	}
}
