package lir

// LInstructions is a mutable ordered sequence of Instruction. A
// compilation run exclusively owns its LInstructions; slices handed out
// by CopySlice or to ReplaceTemplate callbacks are always deep copies so
// in-place rewrites cannot alias into a live sequence.
type LInstructions struct {
	items []Instruction
}

// New returns an empty LIR sequence.
func New() *LInstructions {
	return &LInstructions{}
}

// FromSlice builds an LIR sequence from a slice of instructions, copying
// it so the caller's backing array cannot alias the result.
func FromSlice(items []Instruction) *LInstructions {
	cp := make([]Instruction, len(items))
	copy(cp, items)
	return &LInstructions{items: cp}
}

// Append adds instr to the end of the sequence.
func (l *LInstructions) Append(instr Instruction) {
	l.items = append(l.items, instr)
}

// PopLast removes and returns the last instruction. Panics if empty.
func (l *LInstructions) PopLast() Instruction {
	if len(l.items) == 0 {
		panic("lir: PopLast on empty sequence")
	}
	last := l.items[len(l.items)-1]
	l.items = l.items[:len(l.items)-1]
	return last
}

// Len returns the number of instructions.
func (l *LInstructions) Len() int { return len(l.items) }

// Get returns the instruction at index i. Panics if out of range.
func (l *LInstructions) Get(i int) Instruction {
	return l.items[i]
}

// CopySlice returns a deep copy of the half-open range [start, end).
func (l *LInstructions) CopySlice(start, end int) *LInstructions {
	if start < 0 || end > len(l.items) || start > end {
		panic("lir: CopySlice range out of bounds")
	}
	out := make([]Instruction, end-start)
	copy(out, l.items[start:end])
	return &LInstructions{items: out}
}

// ReplaceSlice replaces the half-open range [start, end) in place with
// values.
func (l *LInstructions) ReplaceSlice(start, end int, values []Instruction) {
	if start < 0 || end > len(l.items) || start > end {
		panic("lir: ReplaceSlice range out of bounds")
	}
	tail := append([]Instruction{}, l.items[end:]...)
	head := l.items[:start]
	replaced := append(append([]Instruction{}, values...), tail...)
	l.items = append(head, replaced...)
}

// Slice returns a defensive copy of every instruction in order, equivalent
// to CopySlice(0, Len()) flattened to a plain slice.
func (l *LInstructions) Slice() []Instruction {
	out := make([]Instruction, len(l.items))
	copy(out, l.items)
	return out
}

// FindOccurrences returns the indices where instr occurs, using the
// template matcher with a single-element strict template.
func (l *LInstructions) FindOccurrences(instr Instruction) []int {
	tmpl := Template{Slot(instr)}
	var out []int
	for i := 0; i+len(tmpl) <= len(l.items); i++ {
		if tmpl.MatchAt(l.items, i, true) {
			out = append(out, i)
		}
	}
	return out
}

// RewriteFunc receives a deep copy of the matched window and returns its
// replacement.
type RewriteFunc func(window []Instruction) []Instruction

// ReplaceTemplate scans left-to-right for windows matching template.
// Whenever a window matches, it invokes callback with a deep copy of the
// matched instructions and splices in the returned replacement, then
// resumes scanning past the replacement window (not into it), so a single
// pass never cascades rewrites into instructions it just produced.
// Returns whether the sequence changed.
func (l *LInstructions) ReplaceTemplate(template Template, callback RewriteFunc, strict bool) bool {
	changed := false
	i := 0
	k := len(template)
	for i+k <= len(l.items) {
		if !template.MatchAt(l.items, i, strict) {
			i++
			continue
		}
		window := make([]Instruction, k)
		copy(window, l.items[i:i+k])
		replacement := callback(window)
		same := len(replacement) == k
		for j := 0; same && j < k; j++ {
			same = replacement[j].Equal(l.items[i+j])
		}

		tail := append([]Instruction{}, l.items[i+k:]...)
		head := append([]Instruction{}, l.items[:i]...)
		l.items = append(head, append(append([]Instruction{}, replacement...), tail...)...)

		if !same {
			changed = true
		}
		i += len(replacement)
	}
	return changed
}

// Equal reports whether two LIR sequences contain pairwise-equal
// instructions in the same order.
func (l *LInstructions) Equal(o *LInstructions) bool {
	if l.Len() != o.Len() {
		return false
	}
	for i := range l.items {
		if !l.items[i].Equal(o.items[i]) {
			return false
		}
	}
	return true
}
