package cart

import (
	"context"
	"log"
	"sync"
)

// RemoteRepository mirrors the session cart into a durable per-user document.
type RemoteRepository interface {
	Fetch(ctx context.Context, userID string) ([]Item, error)
	UpsertItem(ctx context.Context, userID string, item Item) error
	SetQuantity(ctx context.Context, userID string, key ItemKey, quantity int) error
	DeleteItem(ctx context.Context, userID string, key ItemKey) error
	Clear(ctx context.Context, userID string) error
}

// Snapshotter persists the session state across reloads.
type Snapshotter interface {
	Save(ctx context.Context, sessionID string, state State) error
	Load(ctx context.Context, sessionID string) (State, bool, error)
}

// Store holds the in-memory cart and wishlist for one session.
//
// Local mutations are applied synchronously; remote mirroring happens on a
// per-store task queue so the caller never waits on the network. A mirror
// failure is logged and the local state stands — local and remote converge
// opportunistically, not transactionally.
type Store struct {
	mu        sync.Mutex
	state     State
	sessionID string

	remote    RemoteRepository
	snapshots Snapshotter

	tasks   chan func()
	pending sync.WaitGroup
	once    sync.Once
}

// NewStore creates a session store. remote and snapshots may be nil, in which
// case the corresponding side effects are skipped.
func NewStore(sessionID string, remote RemoteRepository, snapshots Snapshotter) *Store {
	s := &Store{
		sessionID: sessionID,
		remote:    remote,
		snapshots: snapshots,
		tasks:     make(chan func(), 64),
	}
	go s.runMirrors()
	return s
}

func (s *Store) runMirrors() {
	for task := range s.tasks {
		task()
		s.pending.Done()
	}
}

// enqueue schedules a fire-and-forget mirror task. Tasks run on one worker
// in submission order; when the queue is full the send blocks until the
// worker catches up, keeping mirrors ordered under bursts.
func (s *Store) enqueue(task func()) {
	s.pending.Add(1)
	s.tasks <- task
}

// Wait blocks until all queued mirror tasks have completed.
func (s *Store) Wait() {
	s.pending.Wait()
}

// Close stops the mirror worker after draining queued tasks.
func (s *Store) Close() {
	s.once.Do(func() {
		s.pending.Wait()
		close(s.tasks)
	})
}

// State returns a copy of the current session state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.state.Items))
	copy(items, s.state.Items)
	wishlist := make([]Product, len(s.state.Wishlist))
	copy(wishlist, s.state.Wishlist)
	return State{Items: items, Wishlist: wishlist}
}

// Restore loads the persisted snapshot for this session, if any.
func (s *Store) Restore(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	state, ok, err := s.snapshots.Load(ctx, s.sessionID)
	if err != nil {
		log.Printf("[CartStore] Failed to restore session %s: %v", s.sessionID, err)
		return
	}
	if !ok {
		return
	}
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// AddItem merges the item into the local cart and, for a logged-in user,
// mirrors the addition to the remote cart document.
func (s *Store) AddItem(item Item, userID string) error {
	if item.ID == "" {
		return ErrInvalidProduct
	}
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	s.state.Items = Merge(s.state.Items, item)
	s.mu.Unlock()
	s.snapshot()

	if userID != "" && s.remote != nil {
		s.enqueue(func() {
			if err := s.remote.UpsertItem(context.Background(), userID, item); err != nil {
				log.Printf("[CartStore] Failed to mirror add for user %s: %v", userID, err)
			}
		})
	}
	return nil
}

// RemoveItem removes the matching line from the local cart and mirrors the
// deletion for a logged-in user. Removing an absent line is a no-op.
func (s *Store) RemoveItem(key ItemKey, userID string) {
	s.mu.Lock()
	s.state.Items = Remove(s.state.Items, key)
	s.mu.Unlock()
	s.snapshot()

	if userID != "" && s.remote != nil {
		s.enqueue(func() {
			if err := s.remote.DeleteItem(context.Background(), userID, key); err != nil {
				log.Printf("[CartStore] Failed to mirror remove for user %s: %v", userID, err)
			}
		})
	}
}

// UpdateQuantity sets the quantity of the matching line.
func (s *Store) UpdateQuantity(key ItemKey, quantity int, userID string) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	s.state.Items = SetQuantity(s.state.Items, key, quantity)
	s.mu.Unlock()
	s.snapshot()

	if userID != "" && s.remote != nil {
		s.enqueue(func() {
			if err := s.remote.SetQuantity(context.Background(), userID, key, quantity); err != nil {
				log.Printf("[CartStore] Failed to mirror quantity for user %s: %v", userID, err)
			}
		})
	}
	return nil
}

// Clear empties the local cart and, for a logged-in user, mirrors the clear.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	s.state.Items = nil
	s.mu.Unlock()
	s.snapshot()

	if userID != "" && s.remote != nil {
		s.enqueue(func() {
			if err := s.remote.Clear(context.Background(), userID); err != nil {
				log.Printf("[CartStore] Failed to mirror clear for user %s: %v", userID, err)
			}
		})
	}
}

// ToggleWishlist toggles wishlist membership for the product.
func (s *Store) ToggleWishlist(product Product) {
	s.mu.Lock()
	s.state.Wishlist = ToggleWishlist(s.state.Wishlist, product)
	s.mu.Unlock()
	s.snapshot()
}

// Total computes the cart total, with the membership discount when requested.
func (s *Store) Total(applyDiscount bool) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.state.Items, applyDiscount)
}

// SyncFromRemote fetches the remote cart for the user and overwrites local
// state with it. Remote is the source of truth at session start; any
// local-only lines are discarded.
func (s *Store) SyncFromRemote(ctx context.Context, userID string) error {
	if userID == "" || s.remote == nil {
		return nil
	}
	items, err := s.remote.Fetch(ctx, userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Items = items
	s.mu.Unlock()
	s.snapshot()
	return nil
}

// snapshot persists the current state best-effort.
func (s *Store) snapshot() {
	if s.snapshots == nil {
		return
	}
	state := s.State()
	s.enqueue(func() {
		if err := s.snapshots.Save(context.Background(), s.sessionID, state); err != nil {
			log.Printf("[CartStore] Failed to snapshot session %s: %v", s.sessionID, err)
		}
	})
}
