// ABOUTME: In-memory wizard slots keyed by session id
// ABOUTME: Drafts never reach durable storage and are discarded on completion or logout

package onboarding

import "sync"

type slot struct {
	mu     sync.Mutex
	wizard *Wizard
}

// Drafts holds one Wizard per signed-in session.
type Drafts struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// NewDrafts creates an empty set of wizard slots.
func NewDrafts() *Drafts {
	return &Drafts{slots: make(map[string]*slot)}
}

// With runs fn on the session's wizard, creating a fresh one if needed.
// Calls for the same session are serialized. A wizard that reaches DoneStep
// is discarded after fn returns.
func (d *Drafts) With(sessionID string, fn func(*Wizard) error) error {
	d.mu.Lock()
	s, ok := d.slots[sessionID]
	if !ok {
		s = &slot{wizard: NewWizard()}
		d.slots[sessionID] = s
	}
	d.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn(s.wizard)
	if s.wizard.Done() {
		d.mu.Lock()
		if d.slots[sessionID] == s {
			delete(d.slots, sessionID)
		}
		d.mu.Unlock()
	}
	return err
}

// Discard drops the session's wizard.
func (d *Drafts) Discard(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.slots, sessionID)
}

// Len returns the number of wizards in progress.
func (d *Drafts) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.slots)
}
