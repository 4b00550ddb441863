package model

import (
    "errors"
    "strings"
)

// Segment classifies the audience a prize is offered to.  Customers are
// either subscribers or non-subscribers, and every prize targets one of
// the two pools or both at once.  The value is stored in the database as
// an enum column, so only the three constants below are ever valid.
// Free-form segment strings are rejected at every write boundary to keep
// the two chance pools consistent.
type Segment string

const (
    SegmentSubscriber    Segment = "SUBSCRIBER"     // prize visible to subscribers only
    SegmentNonSubscriber Segment = "NON_SUBSCRIBER" // prize visible to non-subscribers only
    SegmentBoth          Segment = "BOTH"           // prize counts toward both pools
)

// ErrInvalidSegment is returned by ParseSegment for unknown values.
var ErrInvalidSegment = errors.New("invalid audience segment")

// ParseSegment normalizes raw input into a Segment.  Input is upper-cased
// and trimmed so clients may send lower-case values.
func ParseSegment(raw string) (Segment, error) {
    s := Segment(strings.ToUpper(strings.TrimSpace(raw)))
    switch s {
    case SegmentSubscriber, SegmentNonSubscriber, SegmentBoth:
        return s, nil
    }
    return "", ErrInvalidSegment
}

// SegmentFor returns the pool a customer draws from based on their
// subscription flag.  BOTH is never a customer-side segment.
func SegmentFor(isSubscriber bool) Segment {
    if isSubscriber {
        return SegmentSubscriber
    }
    return SegmentNonSubscriber
}

// Pools returns the customer-facing pools this segment contributes to.
// A BOTH prize belongs to both pools, which is why its chance is summed
// into each pool's total when the 100% invariant is checked.
func (s Segment) Pools() []Segment {
    if s == SegmentBoth {
        return []Segment{SegmentSubscriber, SegmentNonSubscriber}
    }
    return []Segment{s}
}
