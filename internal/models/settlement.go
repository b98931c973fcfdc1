package models

const (
	// UnassignedID keys the sentinel bucket that collects cost from items
	// nobody has been allocated yet. Reserved; never a real participant id.
	UnassignedID = "unassigned"

	// UnassignedName is the display name of the sentinel bucket.
	UnassignedName = "Unassigned"
)

// ItemShare records one participant's share of a single line item.
type ItemShare struct {
	Description string `json:"description"`

	// TotalPrice is the full price of the item, not this person's part.
	TotalPrice float64 `json:"total_price"`

	// ShareFraction is this person's fraction of the item, in [0, 1].
	ShareFraction float64 `json:"share_fraction"`
}

// UserTotal is one person's calculated share of the bill.
type UserTotal struct {
	// Name is the participant's display name at the time of calculation.
	Name string `json:"name"`

	// BaseAmount is the summed item shares before surcharges.
	BaseAmount float64 `json:"base_amount"`

	// TaxShare and TipShare are this person's spend-proportional parts of
	// the bill-level tax and tip.
	TaxShare float64 `json:"tax_share"`
	TipShare float64 `json:"tip_share"`

	// Total is BaseAmount + TaxShare + TipShare.
	Total float64 `json:"total"`

	// Items lists the line items contributing to BaseAmount, in bill order.
	Items []ItemShare `json:"items"`
}

// Settlement is the derived result of splitting a bill. It is recomputed
// from scratch on every read and owned by the caller; nothing retains it.
type Settlement struct {
	Subtotal   float64 `json:"subtotal"`
	TotalTax   float64 `json:"total_tax"`
	TotalTip   float64 `json:"total_tip"`
	GrandTotal float64 `json:"grand_total"`

	// PerUser maps participant id to that person's totals. It always
	// contains UnassignedID; consumers should surface that bucket only
	// when its total is nonzero.
	PerUser map[string]*UserTotal `json:"per_user"`
}
