package api

import (
	"sync"

	"github.com/MahiRanka/dimos-unitree/pkg/teleop"
)

// KeyStatePoller tracks which keys the operator currently holds. The
// websocket handler writes transitions into it; the control loop polls
// it once per tick through the teleop.KeyPoller interface.
type KeyStatePoller struct {
	held teleop.KeySet
	mu   sync.Mutex
}

var _ teleop.KeyPoller = (*KeyStatePoller)(nil)

// NewKeyStatePoller creates an empty key-state tracker.
func NewKeyStatePoller() *KeyStatePoller {
	return &KeyStatePoller{held: make(teleop.KeySet)}
}

// Set records one key transition.
func (p *KeyStatePoller) Set(key teleop.Key, pressed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pressed {
		p.held[key] = true
	} else {
		delete(p.held, key)
	}
}

// Release clears every held key. Called when the operator connection
// drops so the robot never keeps driving on a stale key.
func (p *KeyStatePoller) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.held = make(teleop.KeySet)
}

// Poll returns a copy of the currently-held key set.
func (p *KeyStatePoller) Poll() teleop.KeySet {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make(teleop.KeySet, len(p.held))
	for k := range p.held {
		keys[k] = true
	}
	return keys
}
