package event

import (
	"maps"
	"slices"
)

// Flag is a user-controlled marker attached to an event from the outside.
type Flag uint8

const (
	FlagFavorite Flag = 1 << iota
	FlagSaved
	FlagRegistered
)

// FlagSet is a bitmask of flags.
type FlagSet uint8

// Has reports whether f is set.
func (s FlagSet) Has(f Flag) bool {
	return s&FlagSet(f) != 0
}

// Names lists the set flags as lowercase words in a fixed order.
func (s FlagSet) Names() []string {
	var names []string
	if s.Has(FlagFavorite) {
		names = append(names, "favorite")
	}
	if s.Has(FlagSaved) {
		names = append(names, "saved")
	}
	if s.Has(FlagRegistered) {
		names = append(names, "registered")
	}
	return names
}

// Overlay maps event ids to the flags a user set on them. It is kept apart
// from CalendarEvent so events stay immutable; With and Without return a new
// overlay and leave the receiver untouched.
type Overlay struct {
	flags map[string]FlagSet
}

// NewOverlay builds an overlay from an initial id → flags mapping.
func NewOverlay(initial map[string]FlagSet) Overlay {
	if len(initial) == 0 {
		return Overlay{}
	}
	flags := make(map[string]FlagSet, len(initial))
	for id, set := range initial {
		if set != 0 {
			flags[id] = set
		}
	}
	return Overlay{flags: flags}
}

// Flags returns the flags recorded for id.
func (o Overlay) Flags(id string) FlagSet {
	return o.flags[id]
}

// Has reports whether id carries f.
func (o Overlay) Has(id string, f Flag) bool {
	return o.flags[id].Has(f)
}

// Len returns the number of ids with at least one flag.
func (o Overlay) Len() int {
	return len(o.flags)
}

// IDs returns the flagged ids in sorted order.
func (o Overlay) IDs() []string {
	return slices.Sorted(maps.Keys(o.flags))
}

// With returns a copy of the overlay with f set on id.
func (o Overlay) With(id string, f Flag) Overlay {
	out := o.clone()
	out.flags[id] |= FlagSet(f)
	return out
}

// Without returns a copy of the overlay with f cleared on id.
func (o Overlay) Without(id string, f Flag) Overlay {
	out := o.clone()
	set := out.flags[id] &^ FlagSet(f)
	if set == 0 {
		delete(out.flags, id)
	} else {
		out.flags[id] = set
	}
	return out
}

func (o Overlay) clone() Overlay {
	flags := make(map[string]FlagSet, len(o.flags)+1)
	for id, set := range o.flags {
		flags[id] = set
	}
	return Overlay{flags: flags}
}
