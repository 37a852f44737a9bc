package light

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrLockUnavailable is returned by State operations after a previous holder
// failed while holding the lock. Callers should skip the current request or
// tick rather than abort.
var ErrLockUnavailable = errors.New("light: color state lock unavailable")

// State is the shared color of the light. Readers may run concurrently;
// writers get exclusive access and always commit the whole record at once,
// so a reader never sees a partially applied update.
//
// If a function passed to State panics while the lock is held, the panic is
// recovered, the record keeps its previous value, and the State becomes
// poisoned: every later operation returns ErrLockUnavailable until
// ClearPoison is called.
type State struct {
	mu       sync.RWMutex
	color    LogicalColor
	poisoned atomic.Bool
}

// NewState returns a State holding initial.
func NewState(initial LogicalColor) *State {
	return &State{color: initial}
}

// Snapshot returns a copy of the current color.
func (s *State) Snapshot() (LogicalColor, error) {
	var c LogicalColor
	err := s.Read(func(cur LogicalColor) error {
		c = cur
		return nil
	})
	return c, err
}

// Read calls fn with the current color while holding shared access.
func (s *State) Read(fn func(LogicalColor) error) (err error) {
	if s.poisoned.Load() {
		return ErrLockUnavailable
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.poisoned.Load() {
		return ErrLockUnavailable
	}
	defer s.recoverPoison(&err)
	return fn(s.color)
}

// Apply merges u into the color and commits it in one exclusive step. It
// returns the committed color.
func (s *State) Apply(u Update) (LogicalColor, error) {
	return s.ApplyWith(u, nil)
}

// ApplyWith is like Apply but then calls fn with the committed color while
// exclusive access is still held. The commit stands even if fn returns an
// error; a panic in fn rolls the commit back and poisons the State.
func (s *State) ApplyWith(u Update, fn func(LogicalColor) error) (c LogicalColor, err error) {
	if s.poisoned.Load() {
		return LogicalColor{}, ErrLockUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poisoned.Load() {
		return LogicalColor{}, ErrLockUnavailable
	}
	prev := s.color
	defer func() {
		if err != nil && s.poisoned.Load() {
			s.color = prev
			c = LogicalColor{}
		}
	}()
	defer s.recoverPoison(&err)

	s.color = u.ApplyTo(prev)
	c = s.color
	if fn != nil {
		err = fn(c)
	}
	return c, err
}

// Poisoned reports whether a previous holder failed while holding the lock.
func (s *State) Poisoned() bool {
	return s.poisoned.Load()
}

// ClearPoison makes the State usable again after a failed holder.
func (s *State) ClearPoison() {
	s.poisoned.Store(false)
}

func (s *State) recoverPoison(err *error) {
	if r := recover(); r != nil {
		s.poisoned.Store(true)
		*err = fmt.Errorf("%w: holder panicked: %v", ErrLockUnavailable, r)
	}
}
