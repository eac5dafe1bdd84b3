package core

import "bytes"

// HistoryCapacity bounds both the undo and redo stacks.
const HistoryCapacity = 50

// History keeps bounded undo/redo stacks of canonical model serializations.
// It stores copies and never aliases caller buffers.
type History struct {
	undo     [][]byte
	redo     [][]byte
	current  []byte
	capacity int
}

// NewHistory returns an empty history rooted at current.
func NewHistory(current []byte) *History {
	h := &History{capacity: HistoryCapacity}
	h.Reset(current)
	return h
}

// Reset clears both stacks and makes current the new root.
func (h *History) Reset(current []byte) {
	h.undo = nil
	h.redo = nil
	h.current = cloneBytes(current)
}

// Record commits next. When it differs from the current serialization the
// previous state is pushed onto the undo stack and redo is cleared. It
// reports whether a history entry was created.
func (h *History) Record(next []byte) bool {
	if bytes.Equal(h.current, next) {
		return false
	}
	h.undo = pushBounded(h.undo, h.current, h.capacity)
	h.redo = nil
	h.current = cloneBytes(next)
	return true
}

// Undo pops the latest undo entry, pushing the current state onto redo. It
// returns the state to apply, or false when there is nothing to undo.
func (h *History) Undo() ([]byte, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = pushBounded(h.redo, h.current, h.capacity)
	h.current = prev
	return cloneBytes(prev), true
}

// Redo is the mirror of Undo.
func (h *History) Redo() ([]byte, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = pushBounded(h.undo, h.current, h.capacity)
	h.current = next
	return cloneBytes(next), true
}

// Current returns a copy of the last committed serialization.
func (h *History) Current() []byte { return cloneBytes(h.current) }

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoDepth returns the number of undo entries.
func (h *History) UndoDepth() int { return len(h.undo) }

// RedoDepth returns the number of redo entries.
func (h *History) RedoDepth() int { return len(h.redo) }

func pushBounded(stack [][]byte, entry []byte, capacity int) [][]byte {
	stack = append(stack, cloneBytes(entry))
	if over := len(stack) - capacity; over > 0 {
		stack = append([][]byte(nil), stack[over:]...)
	}
	return stack
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
