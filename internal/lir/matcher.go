package lir

// TemplateSlot is one position in a Template: either a wildcard (matches
// any instruction) or a concrete instruction value to match against.
type TemplateSlot struct {
	wildcard bool
	value    Instruction
}

// Wildcard returns a template slot that matches any instruction.
func Wildcard() TemplateSlot {
	return TemplateSlot{wildcard: true}
}

// Slot returns a template slot that matches the given concrete
// instruction, under the matching mode (strict/non-strict) in effect
// when the template is applied.
func Slot(instr Instruction) TemplateSlot {
	return TemplateSlot{value: instr}
}

// Template is a fixed-length rewrite pattern: a sequence of template
// slots matched against a window of the same length in an LIR sequence.
type Template []TemplateSlot

// MatchAt reports whether template matches the window of items starting
// at index i. In strict mode, a non-wildcard slot must be value-equal to
// the corresponding instruction. In non-strict mode, a non-wildcard slot
// additionally matches when both sides are LiteralPush instructions
// (regardless of data) or both are SmallIntPush instructions (regardless
// of value).
func (t Template) MatchAt(items []Instruction, i int, strict bool) bool {
	for j, slot := range t {
		if slot.wildcard {
			continue
		}
		candidate := items[i+j]
		if slot.value.Equal(candidate) {
			continue
		}
		if strict {
			return false
		}
		if slot.value.IsLiteralPush() && candidate.IsLiteralPush() {
			continue
		}
		if slot.value.IsSmallIntPush() && candidate.IsSmallIntPush() {
			continue
		}
		return false
	}
	return true
}

// Match reports whether template matches items exactly (same length,
// matching from index 0).
func (t Template) Match(items []Instruction, strict bool) bool {
	return len(items) == len(t) && t.MatchAt(items, 0, strict)
}
