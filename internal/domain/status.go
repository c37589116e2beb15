package domain

import "strings"

// Status classifies how urgent a reorder is.
type Status string

const (
	StatusRed   Status = "RED"
	StatusAmber Status = "AMBER"
	StatusGreen Status = "GREEN"
)

var statusPriorities = map[Status]int{
	StatusRed:   0,
	StatusAmber: 1,
	StatusGreen: 2,
}

// Priority returns the sort rank for a status; RED sorts first.
// Unknown statuses sort after all known ones.
func (s Status) Priority() int {
	if p, ok := statusPriorities[s]; ok {
		return p
	}

	return 9
}

// ParseStatus returns the status for a given label (case-insensitive).
func ParseStatus(label string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(label)))
	_, ok := statusPriorities[s]

	return s, ok
}
