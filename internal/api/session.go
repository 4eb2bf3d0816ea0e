package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/domain/cart"
)

const sessionCookie = "session_id"

// SessionManager owns one cart.Store per browser session, keyed by the
// session cookie. Stores are created lazily and restored from their
// persisted snapshot on first touch.
type SessionManager struct {
	mu        sync.Mutex
	stores    map[string]*cart.Store
	remote    cart.RemoteRepository
	snapshots cart.Snapshotter
}

func NewSessionManager(remote cart.RemoteRepository, snapshots cart.Snapshotter) *SessionManager {
	return &SessionManager{
		stores:    make(map[string]*cart.Store),
		remote:    remote,
		snapshots: snapshots,
	}
}

// Store returns the cart store for the session, creating and restoring it
// if this is the first request of the session.
func (m *SessionManager) Store(ctx context.Context, sessionID string) *cart.Store {
	m.mu.Lock()
	store, ok := m.stores[sessionID]
	if !ok {
		store = cart.NewStore(sessionID, m.remote, m.snapshots)
		m.stores[sessionID] = store
	}
	m.mu.Unlock()

	if !ok {
		store.Restore(ctx)
	}
	return store
}

// Close drains every store's mirror queue.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, store := range m.stores {
		store.Close()
	}
}

// sessionID reads the session cookie, minting a new session when absent.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
