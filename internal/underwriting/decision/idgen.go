// internal/underwriting/decision/idgen.go
package decision

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces condition IDs. Injected into each evaluation so the
// decision path stays pure and testable; IDs must be unique within a call
// even when several conditions are generated in the same millisecond.
type IDGenerator interface {
	Next() string
}

// IDFactory builds a fresh generator per evaluation call.
type IDFactory func() IDGenerator

// timestampSeq is the default generator: millisecond timestamp plus a
// per-call sequence counter to separate same-millisecond conditions.
type timestampSeq struct {
	clock func() time.Time
	seq   int
}

func (g *timestampSeq) Next() string {
	g.seq++
	return fmt.Sprintf("cond-%d-%d", g.clock().UnixMilli(), g.seq)
}

// NewTimestampIDs is the default IDFactory.
func NewTimestampIDs() IDGenerator {
	return &timestampSeq{clock: time.Now}
}

// NewFixedClockIDs pins the timestamp; the sequence counter still separates
// conditions created in the same call.
func NewFixedClockIDs(at time.Time) IDGenerator {
	return &timestampSeq{clock: func() time.Time { return at }}
}

// uuidGen backs condition IDs with random UUIDs for service-side wiring
// where global uniqueness matters more than readability.
type uuidGen struct{}

func (uuidGen) Next() string { return uuid.NewString() }

// NewUUIDs returns a UUID-backed generator.
func NewUUIDs() IDGenerator { return uuidGen{} }
