package calculator

import (
	"math"
	"testing"

	"github.com/fairshare/fairshare/internal/models"
)

const tolerance = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func demoBill() *models.Bill {
	return &models.Bill{
		Meta: models.Meta{Currency: "USD"},
		Participants: []models.Participant{
			{ID: "p1", Name: "Alex"},
			{ID: "p2", Name: "Sam"},
			{ID: "p3", Name: "Jordan"},
		},
		LineItems: []models.LineItem{
			{ID: "i1", Description: "Shared Appetizer Platter", Quantity: 1, UnitPrice: 18, TotalPrice: 18},
			{ID: "i2", Description: "Alex's Burger", Quantity: 1, UnitPrice: 16.5, TotalPrice: 16.5},
			{ID: "i3", Description: "Pitcher of Beer", Quantity: 1, UnitPrice: 24, TotalPrice: 24},
		},
		SplitEntries: []models.SplitEntry{
			{ItemID: "i1", Method: models.SplitEqual, Allocations: []models.Allocation{
				{ParticipantID: "p1", Weight: 1},
				{ParticipantID: "p2", Weight: 1},
				{ParticipantID: "p3", Weight: 1},
			}},
			{ItemID: "i2", Method: models.SplitExplicit, Allocations: []models.Allocation{
				{ParticipantID: "p1", Weight: 1},
			}},
			{ItemID: "i3", Method: models.SplitRatio, Allocations: []models.Allocation{
				{ParticipantID: "p2", Weight: 2},
				{ParticipantID: "p3", Weight: 1},
			}},
		},
		Modifiers: models.Modifiers{
			Tax: models.Modifier{Source: "receipt", Type: models.ModifierFixed, Value: 5.85},
			Tip: models.Modifier{Source: "user_prompt", Type: models.ModifierPercentage, Value: 20},
		},
	}
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name         string
		bill         *models.Bill
		validateFunc func(t *testing.T, result *models.Settlement)
	}{
		{
			name: "restaurant bill with fixed tax and percentage tip",
			bill: demoBill(),
			validateFunc: func(t *testing.T, result *models.Settlement) {
				if !approx(result.Subtotal, 58.50) {
					t.Errorf("subtotal = %v, want 58.50", result.Subtotal)
				}
				if !approx(result.TotalTax, 5.85) {
					t.Errorf("total tax = %v, want 5.85", result.TotalTax)
				}
				if !approx(result.TotalTip, 11.70) {
					t.Errorf("total tip = %v, want 11.70", result.TotalTip)
				}
				if !approx(result.GrandTotal, 76.05) {
					t.Errorf("grand total = %v, want 76.05", result.GrandTotal)
				}

				// Alex: 18/3 + 16.50 = 22.50; Sam: 6 + 16 = 22; Jordan: 6 + 8 = 14.
				wantBase := map[string]float64{"p1": 22.5, "p2": 22, "p3": 14}
				for pid, want := range wantBase {
					user := result.PerUser[pid]
					if user == nil {
						t.Fatalf("missing user %s", pid)
					}
					if !approx(user.BaseAmount, want) {
						t.Errorf("%s base amount = %v, want %v", pid, user.BaseAmount, want)
					}
					spendShare := want / 58.50
					if !approx(user.TaxShare, 5.85*spendShare) {
						t.Errorf("%s tax share = %v, want %v", pid, user.TaxShare, 5.85*spendShare)
					}
					if !approx(user.TipShare, 11.70*spendShare) {
						t.Errorf("%s tip share = %v, want %v", pid, user.TipShare, 11.70*spendShare)
					}
				}

				if unassigned := result.PerUser[models.UnassignedID]; !approx(unassigned.Total, 0) {
					t.Errorf("unassigned total = %v, want 0", unassigned.Total)
				}
			},
		},
		{
			name: "weights two to one give exact share fractions",
			bill: &models.Bill{
				Participants: []models.Participant{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
				LineItems:    []models.LineItem{{ID: "i1", Description: "Wine", TotalPrice: 30}},
				SplitEntries: []models.SplitEntry{
					{ItemID: "i1", Method: models.SplitRatio, Allocations: []models.Allocation{
						{ParticipantID: "a", Weight: 2},
						{ParticipantID: "b", Weight: 1},
					}},
				},
			},
			validateFunc: func(t *testing.T, result *models.Settlement) {
				a, b := result.PerUser["a"], result.PerUser["b"]
				if !approx(a.Items[0].ShareFraction, 2.0/3.0) {
					t.Errorf("a share fraction = %v, want 2/3", a.Items[0].ShareFraction)
				}
				if !approx(b.Items[0].ShareFraction, 1.0/3.0) {
					t.Errorf("b share fraction = %v, want 1/3", b.Items[0].ShareFraction)
				}
				if !approx(a.BaseAmount, 20) || !approx(b.BaseAmount, 10) {
					t.Errorf("base amounts = %v/%v, want 20/10", a.BaseAmount, b.BaseAmount)
				}
			},
		},
		{
			name: "missing entry and empty entry both route to unassigned",
			bill: &models.Bill{
				Participants: []models.Participant{{ID: "a", Name: "A"}},
				LineItems: []models.LineItem{
					{ID: "i1", Description: "No entry", TotalPrice: 10},
					{ID: "i2", Description: "Empty entry", TotalPrice: 5},
				},
				SplitEntries: []models.SplitEntry{
					{ItemID: "i2", Method: models.SplitRatio, Allocations: []models.Allocation{}},
				},
			},
			validateFunc: func(t *testing.T, result *models.Settlement) {
				unassigned := result.PerUser[models.UnassignedID]
				if !approx(unassigned.BaseAmount, 15) {
					t.Errorf("unassigned base = %v, want 15", unassigned.BaseAmount)
				}
				if len(unassigned.Items) != 2 {
					t.Fatalf("unassigned items = %d, want 2", len(unassigned.Items))
				}
				for _, item := range unassigned.Items {
					if item.ShareFraction != 1 {
						t.Errorf("%s share fraction = %v, want 1", item.Description, item.ShareFraction)
					}
				}
				if !approx(result.PerUser["a"].Total, 0) {
					t.Errorf("participant total = %v, want 0", result.PerUser["a"].Total)
				}
			},
		},
		{
			name: "zero subtotal yields zero shares not NaN",
			bill: &models.Bill{
				Participants: []models.Participant{{ID: "a", Name: "A"}},
				Modifiers: models.Modifiers{
					Tax: models.Modifier{Type: models.ModifierFixed, Value: 5},
					Tip: models.Modifier{Type: models.ModifierPercentage, Value: 20},
				},
			},
			validateFunc: func(t *testing.T, result *models.Settlement) {
				if !approx(result.Subtotal, 0) {
					t.Errorf("subtotal = %v, want 0", result.Subtotal)
				}
				// A fixed tax still applies even with no items.
				if !approx(result.TotalTax, 5) {
					t.Errorf("total tax = %v, want 5", result.TotalTax)
				}
				if !approx(result.TotalTip, 0) {
					t.Errorf("total tip = %v, want 0", result.TotalTip)
				}
				for pid, user := range result.PerUser {
					if math.IsNaN(user.TaxShare) || math.IsNaN(user.TipShare) || math.IsNaN(user.Total) {
						t.Errorf("%s has NaN shares: %+v", pid, user)
					}
					if !approx(user.TaxShare, 0) || !approx(user.TipShare, 0) {
						t.Errorf("%s shares = %v/%v, want 0/0", pid, user.TaxShare, user.TipShare)
					}
				}
			},
		},
		{
			name: "dangling allocation is skipped",
			bill: &models.Bill{
				Participants: []models.Participant{{ID: "a", Name: "A"}},
				LineItems:    []models.LineItem{{ID: "i1", Description: "Soup", TotalPrice: 9}},
				SplitEntries: []models.SplitEntry{
					{ItemID: "i1", Method: models.SplitEqual, Allocations: []models.Allocation{
						{ParticipantID: "a", Weight: 1},
						{ParticipantID: "ghost", Weight: 2},
					}},
				},
			},
			validateFunc: func(t *testing.T, result *models.Settlement) {
				// The ghost's weight still dilutes the fractions; its cost
				// share simply lands nowhere.
				if !approx(result.PerUser["a"].BaseAmount, 3) {
					t.Errorf("a base = %v, want 3", result.PerUser["a"].BaseAmount)
				}
				if _, ok := result.PerUser["ghost"]; ok {
					t.Error("ghost participant should not appear in results")
				}
			},
		},
		{
			name: "empty bill",
			bill: &models.Bill{},
			validateFunc: func(t *testing.T, result *models.Settlement) {
				if !approx(result.GrandTotal, 0) {
					t.Errorf("grand total = %v, want 0", result.GrandTotal)
				}
				if len(result.PerUser) != 1 {
					t.Errorf("per user size = %d, want just the unassigned bucket", len(result.PerUser))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Settle(tt.bill)
			tt.validateFunc(t, result)
		})
	}
}

// TestSettle_Conservation checks that per-user amounts always sum back to
// the bill-level totals.
func TestSettle_Conservation(t *testing.T) {
	bills := []*models.Bill{
		demoBill(),
		{
			Participants: []models.Participant{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
			LineItems: []models.LineItem{
				{ID: "i1", Description: "Unassigned thing", TotalPrice: 12.34},
				{ID: "i2", Description: "Shared thing", TotalPrice: 56.78},
			},
			SplitEntries: []models.SplitEntry{
				{ItemID: "i2", Method: models.SplitRatio, Allocations: []models.Allocation{
					{ParticipantID: "a", Weight: 3},
					{ParticipantID: "b", Weight: 7},
				}},
			},
			Modifiers: models.Modifiers{
				Tax: models.Modifier{Type: models.ModifierPercentage, Value: 8.875},
				Tip: models.Modifier{Type: models.ModifierPercentage, Value: 18},
			},
		},
	}

	for _, bill := range bills {
		result := Settle(bill)

		var sumBase, sumTotal float64
		for _, user := range result.PerUser {
			sumBase += user.BaseAmount
			sumTotal += user.Total
		}
		if !approx(sumBase, result.Subtotal) {
			t.Errorf("sum of base amounts = %v, want subtotal %v", sumBase, result.Subtotal)
		}
		if !approx(sumTotal, result.GrandTotal) {
			t.Errorf("sum of totals = %v, want grand total %v", sumTotal, result.GrandTotal)
		}
	}
}

// TestSettle_NoTipCompounding verifies tip is based on the subtotal, not a
// tax-inclusive basis.
func TestSettle_NoTipCompounding(t *testing.T) {
	bill := &models.Bill{
		Participants: []models.Participant{{ID: "a", Name: "A"}},
		LineItems:    []models.LineItem{{ID: "i1", Description: "Steak", TotalPrice: 100}},
		SplitEntries: []models.SplitEntry{
			{ItemID: "i1", Method: models.SplitExplicit, Allocations: []models.Allocation{
				{ParticipantID: "a", Weight: 1},
			}},
		},
		Modifiers: models.Modifiers{
			Tax: models.Modifier{Type: models.ModifierPercentage, Value: 10},
			Tip: models.Modifier{Type: models.ModifierPercentage, Value: 20},
		},
	}

	result := Settle(bill)
	if !approx(result.TotalTip, 20) {
		t.Errorf("total tip = %v, want 20 (20%% of 100, not of 110)", result.TotalTip)
	}
	if !approx(result.GrandTotal, 130) {
		t.Errorf("grand total = %v, want 130", result.GrandTotal)
	}
}
