package request

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind is a resource kind with its own request slot.
type Kind int

const (
	Entries Kind = iota
	Tags
	numKinds
)

// Kinds lists every kind in start order.
var Kinds = []Kind{Entries, Tags}

func (k Kind) String() string {
	switch k {
	case Entries:
		return "entries"
	case Tags:
		return "tags"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Handle identifies one started request. Gen increases per kind with every
// start; ID only correlates log lines.
type Handle struct {
	Kind  Kind
	Gen   uint64
	ID    uuid.UUID
	Query string
}

func (h Handle) String() string {
	return fmt.Sprintf("%s#%d", h.Kind, h.Gen)
}

// Policy decides what happens to completions that are no longer tracked.
type Policy int

const (
	// DiscardStale applies a completion only if its generation is the
	// latest started for its kind.
	DiscardStale Policy = iota
	// LastWriterWins applies every completion; a superseded one can
	// overwrite fresher data.
	LastWriterWins
)

func (p Policy) String() string {
	if p == LastWriterWins {
		return "last-writer-wins"
	}
	return "discard"
}

// ParsePolicy accepts "discard" or "last-writer-wins".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "discard", "discard-stale":
		return DiscardStale, nil
	case "last-writer-wins", "lww":
		return LastWriterWins, nil
	default:
		return DiscardStale, fmt.Errorf("unknown stale policy %q", s)
	}
}

// Tracker holds at most one live handle per kind. It is a value type so
// that it copies along with the state that owns it.
type Tracker struct {
	Policy Policy

	gens [numKinds]uint64
	live [numKinds]Handle // Gen 0 means no tracked handle
}

// Start replaces the tracked handle for kind. The superseded request is
// not cancelled here; its completion is judged by Complete.
func (t *Tracker) Start(kind Kind, q string) Handle {
	t.gens[kind]++
	h := Handle{Kind: kind, Gen: t.gens[kind], ID: uuid.New(), Query: q}
	t.live[kind] = h
	return h
}

// Complete records that h finished and reports whether its result should
// be applied. The slot is cleared only when h is the tracked handle.
func (t *Tracker) Complete(h Handle) bool {
	if t.live[h.Kind].Gen != 0 && t.live[h.Kind].Gen == h.Gen {
		t.live[h.Kind] = Handle{}
	}
	if t.Policy == LastWriterWins {
		return true
	}
	return h.Gen == t.gens[h.Kind]
}

// Current returns the tracked handle for kind.
func (t Tracker) Current(kind Kind) (Handle, bool) {
	h := t.live[kind]
	return h, h.Gen != 0
}

// InFlight reports whether kind has a tracked handle.
func (t Tracker) InFlight(kind Kind) bool {
	return t.live[kind].Gen != 0
}

// Pending reports whether any kind has a tracked handle.
func (t Tracker) Pending() bool {
	for _, h := range t.live {
		if h.Gen != 0 {
			return true
		}
	}
	return false
}

// Stale reports whether a newer request of the same kind has started.
func (t Tracker) Stale(h Handle) bool {
	return h.Gen != t.gens[h.Kind]
}
