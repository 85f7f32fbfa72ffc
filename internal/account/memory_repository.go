package account

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account // keyed by email
}

// NewMemoryRepository builds an in-memory credential directory for dev mode
// and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, acc Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[acc.Email]; exists {
		return ErrDuplicateEmail
	}
	for _, existing := range r.accounts {
		if acc.NationalID != "" && existing.NationalID == acc.NationalID {
			return ErrDuplicateNationalID
		}
	}
	r.accounts[acc.Email] = acc
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.accounts[email]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acc := range r.accounts {
		if acc.ID == id {
			return acc, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *memoryRepository) List(_ context.Context) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	accounts := make([]Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (r *memoryRepository) UpdateProfile(_ context.Context, acc Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// An edited email or national id must not collide with another account.
	oldEmail := ""
	found := false
	for email, existing := range r.accounts {
		if existing.ID == acc.ID {
			oldEmail = email
			found = true
			continue
		}
		if existing.Email == acc.Email {
			return ErrDuplicateEmail
		}
		if acc.NationalID != "" && existing.NationalID == acc.NationalID {
			return ErrDuplicateNationalID
		}
	}
	if !found {
		return ErrNotFound
	}

	existing := r.accounts[oldEmail]
	acc.SecretHash = existing.SecretHash
	acc.Role = existing.Role
	acc.Active = existing.Active
	acc.CreatedAt = existing.CreatedAt
	if oldEmail != acc.Email {
		delete(r.accounts, oldEmail)
	}
	r.accounts[acc.Email] = acc
	return nil
}

func (r *memoryRepository) UpdateSecret(_ context.Context, email string, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[email]
	if !ok {
		return ErrNotFound
	}
	acc.SecretHash = hash
	r.accounts[email] = acc
	return nil
}

func (r *memoryRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, acc := range r.accounts {
		if acc.ID == id {
			acc.Active = active
			r.accounts[email] = acc
			return nil
		}
	}
	return ErrNotFound
}
