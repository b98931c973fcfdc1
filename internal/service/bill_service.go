// Package service wires the allocation store, calculator, and receipt
// parser together behind a single-writer API. Each live bill is an
// in-memory editing session; mutations are serialized per registry and the
// settlement is re-derived after every change.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fairshare/fairshare/internal/bill"
	"github.com/fairshare/fairshare/internal/calculator"
	"github.com/fairshare/fairshare/internal/models"
	"github.com/fairshare/fairshare/internal/parser"
	"github.com/fairshare/fairshare/internal/payment"
)

var (
	// ErrBillNotFound reports an unknown or already-discarded bill id.
	ErrBillNotFound = errors.New("bill not found")

	// ErrParticipantNotFound reports an unknown participant id.
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrLastParticipant reports an attempt to delete the sole remaining
	// participant.
	ErrLastParticipant = errors.New("cannot delete the last participant")
)

// ReceiptParser is the collaborator that turns a receipt image plus
// instructions into a sanitized candidate bill.
type ReceiptParser interface {
	ParseReceipt(ctx context.Context, imageBase64, instructions string) (*models.Bill, error)
}

// BillService owns the registry of live bills.
type BillService struct {
	mu     sync.Mutex
	bills  map[string]*bill.Store
	parser ReceiptParser
	ids    bill.IDGenerator
}

// New creates a BillService. The id generator is shared with the stores it
// creates, so all ids in the system come from one source.
func New(receiptParser ReceiptParser, ids bill.IDGenerator) *BillService {
	return &BillService{
		bills:  make(map[string]*bill.Store),
		parser: receiptParser,
		ids:    ids,
	}
}

// Result bundles a snapshot with its freshly derived settlement. Every
// read and every mutation returns one, keeping the recompute-on-change
// contract in one place.
type Result struct {
	BillID     string
	Bill       *models.Bill
	Settlement *models.Settlement
}

func (s *BillService) register(b *models.Bill) Result {
	id := s.ids.NewID()

	s.mu.Lock()
	store := bill.NewStore(b, s.ids)
	s.bills[id] = store
	s.mu.Unlock()

	slog.Info("Bill created",
		"bill_id", id,
		"participants", len(b.Participants),
		"items", len(b.LineItems),
	)
	return Result{BillID: id, Bill: b, Settlement: calculator.Settle(b)}
}

// CreateFromReceipt runs the parsing collaborator and registers the
// resulting bill. The existing registry is untouched on failure.
func (s *BillService) CreateFromReceipt(ctx context.Context, imageBase64, instructions string) (Result, error) {
	parsed, err := s.parser.ParseReceipt(ctx, imageBase64, instructions)
	if err != nil {
		slog.Error("Receipt parsing failed", "error", err)
		return Result{}, fmt.Errorf("failed to process receipt: %w", err)
	}
	return s.register(parsed), nil
}

// CreateFromCandidate validates and registers a caller-supplied candidate
// snapshot, bypassing the AI collaborator.
func (s *BillService) CreateFromCandidate(raw []byte) (Result, error) {
	candidate, err := parser.Decode(raw, s.ids)
	if err != nil {
		return Result{}, err
	}
	return s.register(candidate), nil
}

// CreateDemo registers the built-in example bill.
func (s *BillService) CreateDemo() Result {
	return s.register(bill.Demo())
}

// Get returns the current snapshot and settlement for a bill.
func (s *BillService) Get(billID string) (Result, error) {
	store, err := s.store(billID)
	if err != nil {
		return Result{}, err
	}
	snapshot := store.Snapshot()
	return Result{BillID: billID, Bill: snapshot, Settlement: calculator.Settle(snapshot)}, nil
}

// Delete discards a bill session entirely.
func (s *BillService) Delete(billID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[billID]; !ok {
		return ErrBillNotFound
	}
	delete(s.bills, billID)
	slog.Info("Bill discarded", "bill_id", billID)
	return nil
}

// SetAllocationWeight adjusts one participant's weight on one item.
func (s *BillService) SetAllocationWeight(billID, itemID, participantID string, weight float64) (Result, error) {
	return s.mutate(billID, func(store *bill.Store) *models.Bill {
		return store.SetAllocationWeight(itemID, participantID, weight)
	})
}

// SetModifierType switches a modifier between fixed and percentage.
func (s *BillService) SetModifierType(billID string, key models.ModifierKey, typ models.ModifierType) (Result, error) {
	return s.mutate(billID, func(store *bill.Store) *models.Bill {
		return store.SetModifierType(key, typ)
	})
}

// SetModifierValue updates a modifier's value.
func (s *BillService) SetModifierValue(billID string, key models.ModifierKey, value float64) (Result, error) {
	return s.mutate(billID, func(store *bill.Store) *models.Bill {
		return store.SetModifierValue(key, value)
	})
}

// RenameParticipant updates a participant's display name.
func (s *BillService) RenameParticipant(billID, participantID, name string) (Result, error) {
	return s.mutate(billID, func(store *bill.Store) *models.Bill {
		return store.RenameParticipant(participantID, name)
	})
}

// AddParticipant creates a participant with a placeholder name and returns
// it alongside the new snapshot.
func (s *BillService) AddParticipant(billID string) (models.Participant, Result, error) {
	store, err := s.store(billID)
	if err != nil {
		return models.Participant{}, Result{}, err
	}

	s.mu.Lock()
	participant, snapshot := store.AddParticipant()
	s.mu.Unlock()

	return participant, Result{BillID: billID, Bill: snapshot, Settlement: calculator.Settle(snapshot)}, nil
}

// DeleteParticipant removes a participant and their allocations. Deleting
// the sole remaining participant is rejected.
func (s *BillService) DeleteParticipant(billID, participantID string) (Result, error) {
	store, err := s.store(billID)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	snapshot := store.Snapshot()
	if _, ok := snapshot.Participant(participantID); !ok {
		s.mu.Unlock()
		return Result{}, ErrParticipantNotFound
	}
	if len(snapshot.Participants) <= 1 {
		s.mu.Unlock()
		return Result{}, ErrLastParticipant
	}
	next := store.DeleteParticipant(participantID)
	s.mu.Unlock()

	return Result{BillID: billID, Bill: next, Settlement: calculator.Settle(next)}, nil
}

// UpsertLineItem validates and stores a line item, returning the stored
// form (with its assigned id) alongside the new snapshot.
func (s *BillService) UpsertLineItem(billID string, item models.LineItem) (models.LineItem, Result, error) {
	store, err := s.store(billID)
	if err != nil {
		return models.LineItem{}, Result{}, err
	}

	s.mu.Lock()
	stored, snapshot := store.UpsertLineItem(item)
	s.mu.Unlock()

	return stored, Result{BillID: billID, Bill: snapshot, Settlement: calculator.Settle(snapshot)}, nil
}

// DeleteLineItem removes an item and its split entry.
func (s *BillService) DeleteLineItem(billID, itemID string) (Result, error) {
	return s.mutate(billID, func(store *bill.Store) *models.Bill {
		return store.DeleteLineItem(itemID)
	})
}

// PaymentLink builds a Venmo request link for one participant's settled
// total, with a display-formatted amount. The unassigned bucket has no
// payer, so it is treated as not found.
func (s *BillService) PaymentLink(billID, participantID string) (link, formattedAmount string, err error) {
	result, err := s.Get(billID)
	if err != nil {
		return "", "", err
	}
	if participantID == models.UnassignedID {
		return "", "", ErrParticipantNotFound
	}

	user, ok := result.Settlement.PerUser[participantID]
	if !ok {
		return "", "", ErrParticipantNotFound
	}

	return payment.VenmoLink(user), payment.FormatMoney(user.Total, result.Bill.Meta.Currency), nil
}

func (s *BillService) store(billID string) (*bill.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	store, ok := s.bills[billID]
	if !ok {
		return nil, ErrBillNotFound
	}
	return store, nil
}

func (s *BillService) mutate(billID string, apply func(*bill.Store) *models.Bill) (Result, error) {
	store, err := s.store(billID)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	snapshot := apply(store)
	s.mu.Unlock()

	return Result{BillID: billID, Bill: snapshot, Settlement: calculator.Settle(snapshot)}, nil
}
