package query

import "slices"

// Slot is a named, optionally filled value extracted by the NLU model.
type Slot struct {
	Name  string
	Value *string
}

// SlotMap is the ordered set of slots returned for one utterance, in declaration order.
type SlotMap []Slot

// Filled returns a slot with the given value.
func Filled(name, value string) Slot {
	return Slot{Name: name, Value: &value}
}

// Empty returns an unfilled slot.
func Empty(name string) Slot {
	return Slot{Name: name}
}

// Keywords returns the non-empty slot values in slot order.
// Duplicates are kept: two slots with the same value yield two keywords.
func (m SlotMap) Keywords() []string {
	keywords := make([]string, 0, len(m))
	for _, s := range m {
		if s.Value == nil || *s.Value == "" {
			continue
		}
		keywords = append(keywords, *s.Value)
	}
	return keywords
}

// Order arranges raw slot values by the declared slot names.
// Declared slots come first in declaration order (unfilled when missing from raw);
// undeclared slots follow in lexical order.
func Order(declared []string, raw map[string]*string) SlotMap {
	out := make(SlotMap, 0, len(raw)+len(declared))
	seen := make(map[string]bool, len(declared))
	for _, name := range declared {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, Slot{Name: name, Value: raw[name]})
	}

	var extra []string
	for name := range raw {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	for _, name := range extra {
		out = append(out, Slot{Name: name, Value: raw[name]})
	}
	return out
}
