// Package status holds the lifecycle shared by travel requests and bookings.
package status

import "fmt"

type Status string

const (
	Draft     Status = "draft"
	Pending   Status = "pending"
	Confirmed Status = "confirmed"
	Cancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	Draft:     {Pending, Cancelled},
	Pending:   {Confirmed, Cancelled},
	Confirmed: {Cancelled},
	Cancelled: {},
}

// All lists the statuses in lifecycle order.
var All = []Status{Draft, Pending, Confirmed, Cancelled}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal is true for cancelled and for unknown statuses.
func (s Status) IsTerminal() bool {
	allowed, ok := transitions[s]
	if !ok {
		return true
	}
	return len(allowed) == 0
}

// Allowed returns the targets reachable from s, excluding s itself.
func Allowed(from Status) []Status {
	out := make([]Status, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

// IsValidTransition reports whether from may move to to. Staying put is
// always allowed for known statuses.
func IsValidTransition(from, to Status) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func Parse(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid status: %q", s)
	}
	return st, nil
}
