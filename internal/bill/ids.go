package bill

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces ids for participants and line items. It is injected
// so store operations are deterministic under test without mocking time.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the production generator.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequenceGenerator yields "<prefix>1", "<prefix>2", ... in order.
// Safe for concurrent use.
type SequenceGenerator struct {
	Prefix string
	n      atomic.Int64
}

func (g *SequenceGenerator) NewID() string {
	return g.Prefix + strconv.FormatInt(g.n.Add(1), 10)
}
