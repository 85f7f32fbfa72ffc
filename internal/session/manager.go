package session

import (
	"context"

	"github.com/labportal/labportal/internal/account"
)

// Manager owns the single session slot for the signed-in user. A session
// exists exactly while the user is considered authenticated.
type Manager struct {
	store Store
}

// NewManager builds a session manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// SignIn persists the session produced by a successful authentication.
func (m *Manager) SignIn(ctx context.Context, acc account.Account, remember bool) (Session, error) {
	sess := FromAccount(acc)
	if err := m.store.Save(ctx, sess, remember); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// SignOut destroys the persisted session unconditionally.
func (m *Manager) SignOut(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// Current returns the persisted session, or ok=false when the user is not
// signed in. Callers redirect to sign-in on absence.
func (m *Manager) Current(ctx context.Context) (Session, bool, error) {
	return m.store.Load(ctx)
}

// Refresh rewrites the persisted session after a profile edit so the stored
// copy keeps matching the account. The remember flag is left as saved.
func (m *Manager) Refresh(ctx context.Context, acc account.Account) (Session, error) {
	_, ok, err := m.store.Load(ctx)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, nil
	}
	remember, err := m.store.Remember(ctx)
	if err != nil {
		return Session{}, err
	}
	sess := FromAccount(acc)
	if err := m.store.Save(ctx, sess, remember); err != nil {
		return Session{}, err
	}
	return sess, nil
}
