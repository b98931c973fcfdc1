// Package calculator computes per-person settlements from a bill snapshot.
//
// Surcharges are apportioned by spend share, not head count: someone who
// ordered more pays proportionally more tax and tip. Tax and tip are both
// resolved against the same pre-surcharge subtotal, so tip never compounds
// on top of tax.
package calculator

import (
	"math"

	"github.com/fairshare/fairshare/internal/models"
)

// Settle computes the settlement for a bill. It is a pure total function:
// no error cases, no side effects, safe on empty bills. An item whose split
// entry is missing, empty, or carries no positive weight lands in the
// unassigned bucket in full.
func Settle(bill *models.Bill) *models.Settlement {
	perUser := make(map[string]*models.UserTotal, len(bill.Participants)+1)
	for _, p := range bill.Participants {
		perUser[p.ID] = &models.UserTotal{Name: p.Name, Items: []models.ItemShare{}}
	}
	perUser[models.UnassignedID] = &models.UserTotal{
		Name:  models.UnassignedName,
		Items: []models.ItemShare{},
	}

	entries := make(map[string]models.SplitEntry, len(bill.SplitEntries))
	for _, e := range bill.SplitEntries {
		entries[e.ItemID] = e
	}

	var subtotal float64
	for _, item := range bill.LineItems {
		subtotal += item.TotalPrice

		entry := entries[item.ID]
		weightSum := totalWeight(entry.Allocations)
		if weightSum <= 0 {
			// The store never writes non-positive weights, so a zero sum
			// means the item has no allocations at all.
			unassigned := perUser[models.UnassignedID]
			unassigned.BaseAmount += item.TotalPrice
			unassigned.Items = append(unassigned.Items, models.ItemShare{
				Description:   item.Description,
				TotalPrice:    item.TotalPrice,
				ShareFraction: 1,
			})
			continue
		}

		for _, alloc := range entry.Allocations {
			user, ok := perUser[alloc.ParticipantID]
			if !ok {
				// Dangling participant reference; skip rather than fault.
				continue
			}
			fraction := alloc.Weight / weightSum
			user.BaseAmount += item.TotalPrice * fraction
			user.Items = append(user.Items, models.ItemShare{
				Description:   item.Description,
				TotalPrice:    item.TotalPrice,
				ShareFraction: fraction,
			})
		}
	}

	totalTax := modifierAmount(bill.Modifiers.Tax, subtotal)
	totalTip := modifierAmount(bill.Modifiers.Tip, subtotal)

	for _, user := range perUser {
		var spendShare float64
		if subtotal > 0 {
			spendShare = user.BaseAmount / subtotal
		}
		user.TaxShare = totalTax * spendShare
		user.TipShare = totalTip * spendShare
		user.Total = user.BaseAmount + user.TaxShare + user.TipShare
	}

	return &models.Settlement{
		Subtotal:   subtotal,
		TotalTax:   totalTax,
		TotalTip:   totalTip,
		GrandTotal: subtotal + totalTax + totalTip,
		PerUser:    perUser,
	}
}

func totalWeight(allocs []models.Allocation) float64 {
	var sum float64
	for _, a := range allocs {
		sum += a.Weight
	}
	return sum
}

// modifierAmount resolves a modifier to an absolute amount against the
// subtotal. A missing or non-finite value contributes nothing.
func modifierAmount(mod models.Modifier, subtotal float64) float64 {
	if math.IsNaN(mod.Value) || math.IsInf(mod.Value, 0) {
		return 0
	}
	if mod.Type == models.ModifierPercentage {
		return subtotal * mod.Value / 100
	}
	return mod.Value
}
