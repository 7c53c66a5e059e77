package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"message_service/internal/models"
	"message_service/internal/storage"

	"github.com/stretchr/testify/require"
)

// --- fake store ---

type fakeMessageStore struct {
	mu       sync.Mutex
	nextID   int64
	messages map[int64]models.Message
	order    []int64
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{messages: make(map[int64]models.Message)}
}

func (f *fakeMessageStore) SaveMessage(_ context.Context, ownerID int64, content string) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	m := models.Message{
		ID:        f.nextID,
		OwnerID:   ownerID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	f.messages[m.ID] = m
	f.order = append(f.order, m.ID)

	return m, nil
}

func (f *fakeMessageStore) MessagesByOwner(_ context.Context, ownerID int64, offset, limit int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	owned := make([]models.Message, 0)
	for _, id := range f.order {
		if m, ok := f.messages[id]; ok && m.OwnerID == ownerID {
			owned = append(owned, m)
		}
	}

	if offset >= len(owned) {
		return []models.Message{}, nil
	}
	owned = owned[offset:]
	if limit < len(owned) {
		owned = owned[:limit]
	}

	return owned, nil
}

func (f *fakeMessageStore) MessageByID(_ context.Context, id int64) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.messages[id]
	if !ok {
		return models.Message{}, storage.ErrMessageNotFound
	}

	return m, nil
}

func (f *fakeMessageStore) UpdateMessageContent(_ context.Context, id int64, content string) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.messages[id]
	if !ok {
		return models.Message{}, storage.ErrMessageNotFound
	}

	m.Content = content
	f.messages[id] = m

	return m, nil
}

func (f *fakeMessageStore) DeleteMessage(_ context.Context, id int64) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.messages[id]
	if !ok {
		return models.Message{}, storage.ErrMessageNotFound
	}

	delete(f.messages, id)

	return m, nil
}

func newTestMessaging(t *testing.T) (*Messaging, *fakeMessageStore) {
	t.Helper()

	store := newFakeMessageStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(log, store, store), store
}

var (
	alice = models.User{ID: 1, Username: "alice"}
	bob   = models.User{ID: 2, Username: "bob"}
)

// --- tests ---

func TestCreateAndList(t *testing.T) {
	t.Parallel()

	svc, _ := newTestMessaging(t)
	ctx := context.Background()

	msg, err := svc.Create(ctx, alice, "hi")
	require.NoError(t, err)
	require.Equal(t, alice.ID, msg.OwnerID)
	require.Equal(t, "hi", msg.Content)
	require.False(t, msg.CreatedAt.IsZero())

	msgs, err := svc.List(ctx, alice, 0, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "hi", msgs[0].Content)
}

func TestList_OnlyOwnMessages(t *testing.T) {
	t.Parallel()

	svc, _ := newTestMessaging(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, "from alice")
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, "from bob")
	require.NoError(t, err)

	msgs, err := svc.List(ctx, alice, 0, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "from alice", msgs[0].Content)
}

func TestList_Pagination(t *testing.T) {
	t.Parallel()

	svc, _ := newTestMessaging(t)
	ctx := context.Background()

	contents := []string{"one", "two", "three", "four", "five"}
	for _, c := range contents {
		_, err := svc.Create(ctx, alice, c)
		require.NoError(t, err)
	}

	msgs, err := svc.List(ctx, alice, 1, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "two", msgs[0].Content)
	require.Equal(t, "three", msgs[1].Content)

	// offset past the end yields an empty list
	msgs, err = svc.List(ctx, alice, 10, 2)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	t.Parallel()

	svc, _ := newTestMessaging(t)
	ctx := context.Background()

	msg, err := svc.Create(ctx, alice, "hi")
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob, msg.ID, "hacked")
	require.True(t, errors.Is(err, ErrForbidden))

	updated, err := svc.Update(ctx, alice, msg.ID, "hi there")
	require.NoError(t, err)
	require.Equal(t, "hi there", updated.Content)
	require.Equal(t, msg.CreatedAt, updated.CreatedAt)
}

func TestUpdate_NotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestMessaging(t)

	_, err := svc.Update(context.Background(), alice, 42, "x")
	require.True(t, errors.Is(err, storage.ErrMessageNotFound))
}

func TestDelete_OwnerOnly(t *testing.T) {
	t.Parallel()

	svc, _ := newTestMessaging(t)
	ctx := context.Background()

	msg, err := svc.Create(ctx, alice, "hi")
	require.NoError(t, err)

	_, err = svc.Delete(ctx, bob, msg.ID)
	require.True(t, errors.Is(err, ErrForbidden))

	deleted, err := svc.Delete(ctx, alice, msg.ID)
	require.NoError(t, err)
	require.Equal(t, "hi", deleted.Content)

	// terminal: a second delete is NotFound
	_, err = svc.Delete(ctx, alice, msg.ID)
	require.True(t, errors.Is(err, storage.ErrMessageNotFound))

	msgs, err := svc.List(ctx, alice, 0, 10)
	require.NoError(t, err)
	require.Empty(t, msgs)
}
