package cart_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/infrastructure/store/mocks"
)

// memorySnapshots is an in-memory Snapshotter for tests.
type memorySnapshots struct {
	mu     sync.Mutex
	states map[string]cart.State
	saves  int
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{states: make(map[string]cart.State)}
}

func (m *memorySnapshots) Save(ctx context.Context, sessionID string, state cart.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[sessionID] = state
	m.saves++
	return nil
}

func (m *memorySnapshots) Load(ctx context.Context, sessionID string) (cart.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[sessionID]
	return state, ok, nil
}

func item(id string, price float64, qty int) cart.Item {
	return cart.Item{ID: id, Name: "Item " + id, Price: price, Quantity: qty}
}

// ============================================
// Local Mutation Tests
// ============================================

func TestStore_AddItem_MergesByCompositeKey(t *testing.T) {
	s := cart.NewStore("session-1", nil, nil)
	defer s.Close()

	require.NoError(t, s.AddItem(item("A", 10.00, 2), ""))
	require.NoError(t, s.AddItem(item("A", 10.00, 3), ""))

	state := s.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 5, state.Items[0].Quantity)
}

func TestStore_AddItem_RejectsInvalid(t *testing.T) {
	s := cart.NewStore("session-1", nil, nil)
	defer s.Close()

	assert.ErrorIs(t, s.AddItem(cart.Item{Quantity: 1}, ""), cart.ErrInvalidProduct)
	assert.ErrorIs(t, s.AddItem(cart.Item{ID: "A", Quantity: 0}, ""), cart.ErrInvalidQuantity)
}

func TestStore_UpdateQuantity_RejectsBelowOne(t *testing.T) {
	s := cart.NewStore("session-1", nil, nil)
	defer s.Close()

	require.NoError(t, s.AddItem(item("A", 10.00, 2), ""))
	assert.ErrorIs(t, s.UpdateQuantity(cart.ItemKey{ProductID: "A"}, 0, ""), cart.ErrInvalidQuantity)
	assert.Equal(t, 2, s.State().Items[0].Quantity)
}

func TestStore_RemoveItem_AbsentKeyIsNoOp(t *testing.T) {
	s := cart.NewStore("session-1", nil, nil)
	defer s.Close()

	require.NoError(t, s.AddItem(item("A", 10.00, 1), ""))
	s.RemoveItem(cart.ItemKey{ProductID: "Z"}, "")
	assert.Len(t, s.State().Items, 1)
}

func TestStore_Total(t *testing.T) {
	s := cart.NewStore("session-1", nil, nil)
	defer s.Close()

	require.NoError(t, s.AddItem(item("A", 10.00, 2), ""))

	assert.Equal(t, 20.00, s.Total(false))
	assert.InDelta(t, 17.00, s.Total(true), 1e-9)
}

// ============================================
// Remote Mirroring Tests
// ============================================

func TestStore_AddItem_MirrorsForLoggedInUser(t *testing.T) {
	repo := mocks.NewMockCartRepository()
	s := cart.NewStore("session-1", repo, nil)
	defer s.Close()

	require.NoError(t, s.AddItem(item("A", 10.00, 2), "user-1"))
	s.Wait()

	require.Len(t, repo.UpsertCalls, 1)
	assert.Equal(t, "user-1", repo.UpsertCalls[0].UserID)
	assert.Equal(t, "A", repo.UpsertCalls[0].Item.ID)
}

func TestStore_AddItem_NoMirrorWhenLoggedOut(t *testing.T) {
	repo := mocks.NewMockCartRepository()
	s := cart.NewStore("session-1", repo, nil)
	defer s.Close()

	require.NoError(t, s.AddItem(item("A", 10.00, 2), ""))
	s.Wait()

	assert.Empty(t, repo.UpsertCalls)
}

func TestStore_MirrorFailureKeepsLocalState(t *testing.T) {
	repo := mocks.NewMockCartRepository()
	repo.UpsertErr = errors.New("backend down")
	s := cart.NewStore("session-1", repo, nil)
	defer s.Close()

	require.NoError(t, s.AddItem(item("A", 10.00, 2), "user-1"))
	s.Wait()

	// Local mutation stands; the failed mirror is logged and dropped.
	require.Len(t, s.State().Items, 1)
	assert.Empty(t, repo.Items("user-1"))
}

func TestStore_Clear_NoUserIssuesNoRemoteCall(t *testing.T) {
	repo := mocks.NewMockCartRepository()
	s := cart.NewStore("session-1", repo, nil)
	defer s.Close()

	require.NoError(t, s.AddItem(item("A", 10.00, 2), ""))
	s.Clear("")
	s.Wait()

	assert.Empty(t, s.State().Items)
	assert.Empty(t, repo.ClearCalls)
}

func TestStore_Clear_WithUserIssuesOneRemoteCall(t *testing.T) {
	tests := []struct {
		name     string
		clearErr error
	}{
		{"remote clear succeeds", nil},
		{"remote clear fails", errors.New("backend down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockCartRepository()
			repo.ClearErr = tt.clearErr
			s := cart.NewStore("session-1", repo, nil)
			defer s.Close()

			require.NoError(t, s.AddItem(item("A", 10.00, 2), "user-1"))
			s.Clear("user-1")
			s.Wait()

			assert.Empty(t, s.State().Items)
			assert.Equal(t, []string{"user-1"}, repo.ClearCalls)
		})
	}
}

func TestStore_MirrorBurstStaysOrdered(t *testing.T) {
	repo := mocks.NewMockCartRepository()
	s := cart.NewStore("session-1", repo, nil)
	defer s.Close()

	// Overflow the mirror queue, then clear. The clear must run after every
	// queued upsert; an overtaken upsert would repopulate the remote cart.
	for i := 0; i < 100; i++ {
		require.NoError(t, s.AddItem(item("A", 10.00, 1), "user-1"))
	}
	s.Clear("user-1")
	s.Wait()

	assert.Len(t, repo.UpsertCalls, 100)
	assert.Equal(t, []string{"user-1"}, repo.ClearCalls)
	assert.Empty(t, repo.Items("user-1"))
}

// ============================================
// Sync Tests
// ============================================

func TestStore_SyncFromRemote_OverwritesLocal(t *testing.T) {
	repo := mocks.NewMockCartRepository()
	repo.Seed("user-1", []cart.Item{item("B", 5.00, 1)})
	s := cart.NewStore("session-1", repo, nil)
	defer s.Close()

	require.NoError(t, s.AddItem(item("A", 10.00, 2), ""))
	require.NoError(t, s.SyncFromRemote(context.Background(), "user-1"))

	state := s.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "B", state.Items[0].ID)
}

func TestStore_SyncFromRemote_PropagatesFetchError(t *testing.T) {
	repo := mocks.NewMockCartRepository()
	repo.FetchErr = errors.New("backend down")
	s := cart.NewStore("session-1", repo, nil)
	defer s.Close()

	require.NoError(t, s.AddItem(item("A", 10.00, 2), ""))
	err := s.SyncFromRemote(context.Background(), "user-1")

	require.Error(t, err)
	// Local state untouched on a failed sync.
	assert.Len(t, s.State().Items, 1)
}

// ============================================
// Snapshot Tests
// ============================================

func TestStore_SnapshotAndRestore(t *testing.T) {
	snapshots := newMemorySnapshots()

	s := cart.NewStore("session-1", nil, snapshots)
	require.NoError(t, s.AddItem(item("A", 10.00, 2), ""))
	s.ToggleWishlist(cart.Product{ID: "W", Name: "Wished"})
	s.Wait()
	s.Close()

	restored := cart.NewStore("session-1", nil, snapshots)
	defer restored.Close()
	restored.Restore(context.Background())

	state := restored.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "A", state.Items[0].ID)
	require.Len(t, state.Wishlist, 1)
	assert.Equal(t, "W", state.Wishlist[0].ID)
}
