package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"message_service/internal/auth/blacklist"
	"message_service/internal/lib/jwt"
	"message_service/internal/models"
	"message_service/internal/storage"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// --- fakes ---

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (f *fakeUserStore) SaveUser(_ context.Context, username string, passHash []byte) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[username]; ok {
		return 0, storage.ErrUserExists
	}

	f.nextID++
	f.users[username] = models.User{ID: f.nextID, Username: username, PassHash: passHash}

	return f.nextID, nil
}

func (f *fakeUserStore) UserByUsername(_ context.Context, username string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[username]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.AuthEvent
}

func (f *fakePublisher) SendEvent(_ context.Context, event models.AuthEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, event)

	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}

	return out
}

func newTestAuth(t *testing.T) (*Auth, *fakeUserStore, *fakePublisher) {
	t.Helper()

	store := newFakeUserStore()
	pub := &fakePublisher{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(log, store, store, blacklist.NewMemory(), pub, testSecret, 30*time.Minute), store, pub
}

// --- tests ---

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	a, _, pub := newTestAuth(t)
	ctx := context.Background()

	user, err := a.RegisterNewUser(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.NotContains(t, string(user.PassHash), "pw1")

	tok, loggedIn, err := a.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, user.ID, loggedIn.ID)

	require.Equal(t, []string{EventUserRegistered, EventUserLogin}, pub.types())
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := a.RegisterNewUser(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, _, err = a.Login(ctx, "alice", "wrong")
	require.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLogin_UnknownUser(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAuth(t)

	_, _, err := a.Login(context.Background(), "nobody", "pw")
	require.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()

	a, store, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := a.RegisterNewUser(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = a.RegisterNewUser(ctx, "alice", "pw2")
	require.True(t, errors.Is(err, ErrUserExists))
	require.Len(t, store.users, 1)
}

func TestAuthenticate_Roundtrip(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := a.RegisterNewUser(ctx, "alice", "pw1")
	require.NoError(t, err)

	tok, _, err := a.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	user, err := a.Authenticate(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
}

func TestAuthenticate_RevokedToken(t *testing.T) {
	t.Parallel()

	a, _, pub := newTestAuth(t)
	ctx := context.Background()

	_, err := a.RegisterNewUser(ctx, "alice", "pw1")
	require.NoError(t, err)

	tok, _, err := a.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx, tok))

	_, err = a.Authenticate(ctx, tok)
	require.True(t, errors.Is(err, ErrInvalidToken))

	// revoking twice is not an error
	require.NoError(t, a.Logout(ctx, tok))

	require.Contains(t, pub.types(), EventUserLogout)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := a.RegisterNewUser(ctx, "alice", "pw1")
	require.NoError(t, err)

	expired, err := jwt.NewToken("alice", []byte(testSecret), -time.Minute)
	require.NoError(t, err)

	_, err = a.Authenticate(ctx, expired)
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestAuthenticate_UnknownSubject(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAuth(t)

	tok, err := jwt.NewToken("ghost", []byte(testSecret), time.Hour)
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), tok)
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestAuthenticate_MalformedToken(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAuth(t)

	_, err := a.Authenticate(context.Background(), "garbage")
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestLogout_UnparseableToken(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestAuth(t)

	require.NoError(t, a.Logout(context.Background(), "garbage"))

	_, err := a.Authenticate(context.Background(), "garbage")
	require.True(t, errors.Is(err, ErrInvalidToken))
}
