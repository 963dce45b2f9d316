package event

import (
	"fmt"
	"strings"
)

// Priority is an ordinal importance level; larger values are more important.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var priorityNames = [...]string{"low", "medium", "high", "critical"}

// String implements fmt.Stringer.
func (p Priority) String() string {
	if p < PriorityLow || p > PriorityCritical {
		return fmt.Sprintf("priority(%d)", int(p))
	}
	return priorityNames[p]
}

// ParsePriority resolves a priority name case-insensitively.
func ParsePriority(value string) (Priority, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for i, name := range priorityNames {
		if name == normalized {
			return Priority(i), true
		}
	}
	return PriorityLow, false
}

// MarshalText encodes the priority by name.
func (p Priority) MarshalText() ([]byte, error) {
	if p < PriorityLow || p > PriorityCritical {
		return nil, fmt.Errorf("event: invalid priority %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a priority name.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, ok := ParsePriority(string(text))
	if !ok {
		return fmt.Errorf("event: unknown priority %q", string(text))
	}
	*p = parsed
	return nil
}
