// Package parser is the boundary to the receipt-parsing collaborator.
//
// The AI model returns an untrusted candidate bill. Decode enforces the
// shape contract and runs sanitation, so the rest of the system only ever
// sees a valid snapshot or no snapshot at all.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fairshare/fairshare/internal/bill"
	"github.com/fairshare/fairshare/internal/models"
)

// ErrInvalidStructure reports that a candidate bill does not satisfy the
// shape contract: array-typed participants, line_items, and split_entries,
// and object-typed modifiers and meta.
var ErrInvalidStructure = errors.New("invalid bill structure")

// candidate mirrors the wire shape with pointer sections, so missing or
// mistyped parts are detectable after unmarshaling.
type candidate struct {
	Meta         *models.Meta         `json:"meta"`
	Participants []models.Participant `json:"participants"`
	LineItems    []models.LineItem    `json:"line_items"`
	SplitEntries []models.SplitEntry  `json:"split_entries"`
	Modifiers    *models.Modifiers    `json:"modifiers"`
}

// Decode validates a raw candidate against the shape contract and returns
// a sanitized bill. Ids are filled from the given generator when missing.
func Decode(raw []byte, ids bill.IDGenerator) (*models.Bill, error) {
	var c candidate
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	if c.Participants == nil || c.LineItems == nil || c.SplitEntries == nil ||
		c.Modifiers == nil || c.Meta == nil {
		return nil, ErrInvalidStructure
	}

	b := &models.Bill{
		Meta:         *c.Meta,
		Participants: c.Participants,
		LineItems:    c.LineItems,
		SplitEntries: c.SplitEntries,
		Modifiers:    *c.Modifiers,
	}
	bill.Sanitize(b, ids)
	return b, nil
}
