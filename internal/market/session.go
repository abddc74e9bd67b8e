package market

import (
	"sync"

	"github.com/vismaygawai/marketplace/pkg/models"
)

// Tracker holds the active identity and its connectivity status. It is
// replaced wholesale on every change; there is no merging of identity
// state and no retry once the provider is reported missing.
type Tracker struct {
	mu      sync.RWMutex
	session models.Session
}

func NewTracker() *Tracker {
	return &Tracker{session: models.Session{Status: models.SessionUninitialized}}
}

func (t *Tracker) Session() models.Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.session
}

func (t *Tracker) Identity() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.session.Identity
}

func (t *Tracker) SetConnected(identity string) {
	t.mu.Lock()
	t.session = models.Session{Identity: identity, Status: models.SessionConnected}
	t.mu.Unlock()
}

func (t *Tracker) SetNoProvider() {
	t.mu.Lock()
	t.session = models.Session{Status: models.SessionNoProvider}
	t.mu.Unlock()
}

// ClearIdentity drops the identity but keeps the session connected; the
// provider is still present, there is just no account selected.
func (t *Tracker) ClearIdentity() {
	t.mu.Lock()
	t.session = models.Session{Status: models.SessionConnected}
	t.mu.Unlock()
}
