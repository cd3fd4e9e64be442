package buffer

func (b *Buffer) capture(desc string) snapshot {
	return snapshot{
		lines:  append([]string(nil), b.lines...),
		cursor: b.cursor,
		desc:   desc,
	}
}

func (b *Buffer) apply(s snapshot) {
	b.lines = append([]string(nil), s.lines...)
	b.cursor = b.clampPos(s.cursor, true)
	b.ClearVisual()
	b.touch()
}

func (b *Buffer) pushUndo(s snapshot) {
	b.undo = append(b.undo, s)
	if over := len(b.undo) - b.maxUndo; over > 0 {
		b.undo = append([]snapshot(nil), b.undo[over:]...)
	}
}

// SaveState pushes the current content as an undo point and clears redo.
// Mutating methods call it before changing anything.
func (b *Buffer) SaveState(desc string) {
	b.pushUndo(b.capture(desc))
	b.redo = nil
}

// save is SaveState unless a group is open, in which case only the first
// mutation of the group records the group's starting snapshot.
func (b *Buffer) save(desc string) {
	if b.group > 0 {
		if b.hasPending {
			b.pushUndo(b.pending)
			b.redo = nil
			b.hasPending = false
		}
		return
	}
	b.SaveState(desc)
}

// BeginGroup starts collecting mutations into a single undo step, such as
// one Insert-mode session or a counted command. Groups nest; only the
// outermost one records a snapshot, and only if something changes.
func (b *Buffer) BeginGroup(desc string) {
	if b.group == 0 {
		b.pending = b.capture(desc)
		b.hasPending = true
	}
	b.group++
}

// EndGroup closes the innermost group.
func (b *Buffer) EndGroup() {
	if b.group == 0 {
		return
	}
	b.group--
	if b.group == 0 {
		b.hasPending = false
	}
}

// CloseGroups closes every open group at once.
func (b *Buffer) CloseGroups() {
	b.group = 0
	b.hasPending = false
}

// InGroup reports whether an undo group is open.
func (b *Buffer) InGroup() bool { return b.group > 0 }

// Group runs fn inside an undo group.
func (b *Buffer) Group(desc string, fn func() bool) bool {
	b.BeginGroup(desc)
	defer b.EndGroup()
	return fn()
}

// Undo restores the most recent snapshot and pushes the current state to
// redo. It returns false when there is nothing left to undo.
func (b *Buffer) Undo() bool {
	if len(b.undo) == 0 {
		return false
	}
	last := b.undo[len(b.undo)-1]
	b.undo = b.undo[:len(b.undo)-1]
	b.redo = append(b.redo, b.capture("redo "+last.desc))
	b.apply(last)
	return true
}

// Redo re-applies the most recently undone change, saving the current
// state back onto the undo stack.
func (b *Buffer) Redo() bool {
	if len(b.redo) == 0 {
		return false
	}
	next := b.redo[len(b.redo)-1]
	b.redo = b.redo[:len(b.redo)-1]
	b.pushUndo(b.capture(next.desc))
	b.apply(next)
	return true
}

// UndoDepth returns the number of available undo steps.
func (b *Buffer) UndoDepth() int { return len(b.undo) }

// RedoDepth returns the number of available redo steps.
func (b *Buffer) RedoDepth() int { return len(b.redo) }

// Clone returns a deep copy including undo history and open groups.
func (b *Buffer) Clone() *Buffer {
	c := *b
	c.lines = append([]string(nil), b.lines...)
	c.undo = cloneSnapshots(b.undo)
	c.redo = cloneSnapshots(b.redo)
	c.initial = b.initial.clone()
	c.pending = b.pending.clone()
	if b.visualStart != nil {
		vs := *b.visualStart
		c.visualStart = &vs
	}
	if b.visualEnd != nil {
		ve := *b.visualEnd
		c.visualEnd = &ve
	}
	return &c
}

func (s snapshot) clone() snapshot {
	s.lines = append([]string(nil), s.lines...)
	return s
}

func cloneSnapshots(in []snapshot) []snapshot {
	if in == nil {
		return nil
	}
	out := make([]snapshot, len(in))
	for i, s := range in {
		out[i] = s.clone()
	}
	return out
}
