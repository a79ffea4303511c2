package recording

import (
	"errors"
	"fmt"
	"sync"
)

type State int

const (
	Idle State = iota
	Recording
	Paused
	Processing
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Paused:
		return "paused"
	case Processing:
		return "processing"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var ErrInvalidTransition = errors.New("invalid state transition")

// Machine tracks the lifecycle of a single recording session.
type Machine struct {
	mu     sync.Mutex
	state  State
	nextID int
	subs   map[int]func(from, to State)
}

func NewMachine() *Machine {
	return &Machine{subs: map[int]func(from, to State){}}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn to be called after every successful transition.
// Callbacks run on the transitioning goroutine, outside the lock.
func (m *Machine) Subscribe(fn func(from, to State)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Machine) Start() error  { return m.transition(Recording, Idle) }
func (m *Machine) Pause() error  { return m.transition(Paused, Recording) }
func (m *Machine) Resume() error { return m.transition(Recording, Paused) }
func (m *Machine) Stop() error   { return m.transition(Processing, Recording, Paused) }
func (m *Machine) Finish() error { return m.transition(Finished, Processing) }

// Reset returns to Idle from any state.
func (m *Machine) Reset() error {
	return m.transition(Idle, Idle, Recording, Paused, Processing, Finished)
}

func (m *Machine) transition(to State, from ...State) error {
	m.mu.Lock()
	cur := m.state
	allowed := false
	for _, f := range from {
		if f == cur {
			allowed = true
			break
		}
	}
	if !allowed {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, to)
	}
	m.state = to
	subs := make([]func(from, to State), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(cur, to)
	}
	return nil
}
