package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/repository"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"

	"github.com/stretchr/testify/require"
)

// Clock is a manually advanced time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at a fixed instant
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current time and advances the clock by a millisecond so
// successive records get distinct timestamps
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

// CreateTestIdentity creates an identity with a generated username
func CreateTestIdentity(userID string) entities.Identity {
	return entities.Identity{
		UserID:    userID,
		Username:  fmt.Sprintf("player-%s", userID),
		AvatarURL: fmt.Sprintf("https://cdn.example.com/avatars/%s.png", userID),
	}
}

// NewMemoryRepositories builds repositories over a fresh in-memory store
func NewMemoryRepositories(t *testing.T, minEntryFee int64) (*repository.Repositories, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	opts := repository.Options{Now: NewClock().Now}
	return repository.NewRepositories(store, minEntryFee, opts), store
}

// RegisterTestAccount opens an account with balance and fails the test on error
func RegisterTestAccount(t *testing.T, repos *repository.Repositories, userID string, balance int64) *entities.Account {
	t.Helper()
	account, err := repos.Accounts.Register(context.Background(), CreateTestIdentity(userID), balance)
	require.NoError(t, err)
	return account
}
