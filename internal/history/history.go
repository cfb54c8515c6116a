// Package history keeps the linear back/forward stack of one tab.
package history

import "gopherview/internal/domain"

// Frame is one visited address and the scroll offset recorded for it
type Frame struct {
	Address        domain.Address
	ScrollPosition int
}

// Stack is a linear browsing history with a cursor. Navigating from a
// non-tip position abandons the forward branch.
type Stack struct {
	frames    []Frame
	cursor    int // -1 when empty
	maxFrames int // 0 means unlimited
}

// New creates an empty history. maxFrames <= 0 disables the cap.
func New(maxFrames int) *Stack {
	if maxFrames < 0 {
		maxFrames = 0
	}
	return &Stack{cursor: -1, maxFrames: maxFrames}
}

// Push commits a navigation. leavingScroll is stamped on the frame being
// left before the forward branch is dropped.
func (s *Stack) Push(addr domain.Address, leavingScroll int) {
	if len(s.frames) > 0 {
		s.frames[s.cursor].ScrollPosition = clampScroll(leavingScroll)
		s.frames = s.frames[:s.cursor+1]
	}
	s.frames = append(s.frames, Frame{Address: addr})
	s.cursor = len(s.frames) - 1

	if s.maxFrames > 0 && len(s.frames) > s.maxFrames {
		drop := len(s.frames) - s.maxFrames
		s.frames = append([]Frame(nil), s.frames[drop:]...)
		s.cursor -= drop
	}
}

// Back moves the cursor one frame back and returns the frame now active
func (s *Stack) Back() (Frame, bool) {
	if s.cursor <= 0 {
		return Frame{}, false
	}
	s.cursor--
	return s.frames[s.cursor], true
}

// Forward moves the cursor one frame forward and returns the frame now active
func (s *Stack) Forward() (Frame, bool) {
	if s.cursor+1 >= len(s.frames) {
		return Frame{}, false
	}
	s.cursor++
	return s.frames[s.cursor], true
}

// UpdateScroll records the scroll offset of the active frame
func (s *Stack) UpdateScroll(position int) {
	if s.cursor < 0 {
		return
	}
	s.frames[s.cursor].ScrollPosition = clampScroll(position)
}

// Current returns the active frame
func (s *Stack) Current() (Frame, bool) {
	if s.cursor < 0 {
		return Frame{}, false
	}
	return s.frames[s.cursor], true
}

// Len returns the number of frames
func (s *Stack) Len() int {
	return len(s.frames)
}

// Cursor returns the index of the active frame, -1 when empty
func (s *Stack) Cursor() int {
	return s.cursor
}

// CanGoBack reports whether Back would move
func (s *Stack) CanGoBack() bool {
	return s.cursor > 0
}

// CanGoForward reports whether Forward would move
func (s *Stack) CanGoForward() bool {
	return s.cursor+1 < len(s.frames)
}

// Frames returns a copy of all frames, oldest first
func (s *Stack) Frames() []Frame {
	out := make([]Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

func clampScroll(position int) int {
	if position < 0 {
		return 0
	}
	return position
}
