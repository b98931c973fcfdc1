package models

// Participant is one person splitting the bill.
// Identity is the ID; the name is editable display text.
type Participant struct {
	// ID is the unique identifier for the participant.
	// Parser-supplied ids are kept when present; missing ids are filled in
	// during sanitation.
	ID string `json:"id"`

	// Name is the display name, trimmed and capped at 50 characters.
	// Always non-empty after sanitation.
	Name string `json:"name"`
}

// LineItem is a single line on the receipt.
type LineItem struct {
	// ID is the unique identifier for the item.
	ID string `json:"id"`

	// Description is the item text from the receipt, trimmed and capped
	// at 200 characters.
	Description string `json:"description"`

	// Quantity is informational only; it is never below 1.
	Quantity int `json:"quantity"`

	// UnitPrice is informational only. It is not required that
	// UnitPrice*Quantity equals TotalPrice.
	UnitPrice float64 `json:"unit_price"`

	// TotalPrice is the authoritative cost used for splitting.
	TotalPrice float64 `json:"total_price"`
}

// Allocation assigns a relative share of one item to a participant.
// Only the relative magnitude among an item's allocations matters.
type Allocation struct {
	ParticipantID string `json:"participant_id"`

	// Weight is non-negative. A stored allocation always has a positive
	// weight; writing a weight of zero removes the allocation instead.
	Weight float64 `json:"weight"`
}

// SplitMethod tags how a split entry was produced. It is informational;
// the calculator only reads the allocation weights.
type SplitMethod string

const (
	SplitExplicit SplitMethod = "explicit"
	SplitEqual    SplitMethod = "equal"
	SplitRatio    SplitMethod = "ratio"
)

// SplitEntry holds the split instructions for one line item.
// A bill has at most one entry per item id. An item with no entry, or an
// entry with no allocations, is unassigned.
type SplitEntry struct {
	ItemID      string       `json:"item_id"`
	Method      SplitMethod  `json:"method"`
	Allocations []Allocation `json:"allocations"`
}

// ModifierType selects how a modifier value is interpreted.
type ModifierType string

const (
	// ModifierFixed is an absolute surcharge amount.
	ModifierFixed ModifierType = "fixed"

	// ModifierPercentage is a percentage of the bill subtotal, expressed
	// as a whole number (20 means 20%).
	ModifierPercentage ModifierType = "percentage"
)

// ModifierKey names one of the two bill modifiers.
type ModifierKey string

const (
	ModifierKeyTax ModifierKey = "tax"
	ModifierKeyTip ModifierKey = "tip"
)

// Modifier is a shared surcharge (tax or tip) applied on top of the
// subtotal.
type Modifier struct {
	// Source records where the value came from (e.g. "receipt", "user").
	// Provenance only; not consumed by the calculation.
	Source string `json:"source"`

	Type  ModifierType `json:"type"`
	Value float64      `json:"value"`
}

// Modifiers holds the two surcharges of a bill.
type Modifiers struct {
	Tax Modifier `json:"tax"`
	Tip Modifier `json:"tip"`
}

// Meta carries display metadata for a bill.
type Meta struct {
	Currency string `json:"currency"`
	Notes    string `json:"notes"`
}

// Bill is the aggregate snapshot of one receipt-splitting session.
//
// Invariants maintained by the bill package: participant ids are unique,
// line item ids are unique, every split entry refers to an existing item,
// every allocation refers to an existing participant, and at least one
// participant exists.
type Bill struct {
	Meta         Meta          `json:"meta"`
	Participants []Participant `json:"participants"`
	LineItems    []LineItem    `json:"line_items"`
	SplitEntries []SplitEntry  `json:"split_entries"`
	Modifiers    Modifiers     `json:"modifiers"`
}

// Participant returns the participant with the given id, if present.
func (b *Bill) Participant(id string) (Participant, bool) {
	for _, p := range b.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// SplitEntryFor returns the split entry for the given item id, if present.
func (b *Bill) SplitEntryFor(itemID string) (SplitEntry, bool) {
	for _, e := range b.SplitEntries {
		if e.ItemID == itemID {
			return e, true
		}
	}
	return SplitEntry{}, false
}
