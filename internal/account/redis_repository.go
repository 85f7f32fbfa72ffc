package account

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// accountsKey is the fixed storage key holding the serialized account list.
const accountsKey = "labportal:accounts:v1"

type storedAccount struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	SecretHash []byte    `json:"secret_hash"`
	Role       string    `json:"role"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	Phone      string    `json:"phone"`
	NationalID string    `json:"national_id"`
	Address    string    `json:"address"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RedisRepository keeps the whole directory as a JSON array under a single
// key. Mutations run inside a WATCH transaction so the uniqueness check and
// the append are atomic.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository builds a Redis-backed credential directory.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) load(ctx context.Context, tx redis.Cmdable) ([]storedAccount, error) {
	raw, err := tx.Get(ctx, accountsKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []storedAccount
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *RedisRepository) store(ctx context.Context, pipe redis.Cmdable, records []storedAccount) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return pipe.Set(ctx, accountsKey, payload, 0).Err()
}

// mutate runs fn against the current list inside a WATCH transaction and
// writes the result back, retrying when another writer races.
func (r *RedisRepository) mutate(ctx context.Context, fn func([]storedAccount) ([]storedAccount, error)) error {
	const maxRetries = 5
	for i := 0; i < maxRetries; i++ {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			records, err := r.load(ctx, tx)
			if err != nil {
				return err
			}
			updated, err := fn(records)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				return r.store(ctx, pipe, updated)
			})
			return err
		}, accountsKey)
		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
	return redis.TxFailedErr
}

func (r *RedisRepository) Create(ctx context.Context, acc Account) error {
	return r.mutate(ctx, func(records []storedAccount) ([]storedAccount, error) {
		for _, rec := range records {
			if rec.Email == acc.Email {
				return nil, ErrDuplicateEmail
			}
			if acc.NationalID != "" && rec.NationalID == acc.NationalID {
				return nil, ErrDuplicateNationalID
			}
		}
		return append(records, toStored(acc)), nil
	})
}

func (r *RedisRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	records, err := r.load(ctx, r.client)
	if err != nil {
		return Account{}, err
	}
	for _, rec := range records {
		if rec.Email == email {
			return fromStored(rec), nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *RedisRepository) FindByID(ctx context.Context, id string) (Account, error) {
	records, err := r.load(ctx, r.client)
	if err != nil {
		return Account{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return fromStored(rec), nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *RedisRepository) List(ctx context.Context) ([]Account, error) {
	records, err := r.load(ctx, r.client)
	if err != nil {
		return nil, err
	}
	accounts := make([]Account, 0, len(records))
	for _, rec := range records {
		accounts = append(accounts, fromStored(rec))
	}
	return accounts, nil
}

func (r *RedisRepository) UpdateProfile(ctx context.Context, acc Account) error {
	return r.mutate(ctx, func(records []storedAccount) ([]storedAccount, error) {
		// An edited email or national id must not collide with another record.
		idx := -1
		for i, rec := range records {
			if rec.ID == acc.ID {
				idx = i
				continue
			}
			if rec.Email == acc.Email {
				return nil, ErrDuplicateEmail
			}
			if acc.NationalID != "" && rec.NationalID == acc.NationalID {
				return nil, ErrDuplicateNationalID
			}
		}
		if idx < 0 {
			return nil, ErrNotFound
		}
		updated := toStored(acc)
		updated.SecretHash = records[idx].SecretHash
		updated.Role = records[idx].Role
		updated.Active = records[idx].Active
		updated.CreatedAt = records[idx].CreatedAt
		records[idx] = updated
		return records, nil
	})
}

func (r *RedisRepository) UpdateSecret(ctx context.Context, email string, hash []byte) error {
	return r.mutate(ctx, func(records []storedAccount) ([]storedAccount, error) {
		for i, rec := range records {
			if rec.Email == email {
				records[i].SecretHash = hash
				records[i].UpdatedAt = time.Now().UTC()
				return records, nil
			}
		}
		return nil, ErrNotFound
	})
}

func (r *RedisRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.mutate(ctx, func(records []storedAccount) ([]storedAccount, error) {
		for i, rec := range records {
			if rec.ID == id {
				records[i].Active = active
				records[i].UpdatedAt = time.Now().UTC()
				return records, nil
			}
		}
		return nil, ErrNotFound
	})
}

func toStored(acc Account) storedAccount {
	return storedAccount{
		ID:         acc.ID,
		Email:      acc.Email,
		SecretHash: acc.SecretHash,
		Role:       string(acc.Role),
		Name:       acc.Name,
		Surname:    acc.Surname,
		Phone:      acc.Phone,
		NationalID: acc.NationalID,
		Address:    acc.Address,
		Active:     acc.Active,
		CreatedAt:  acc.CreatedAt,
		UpdatedAt:  acc.UpdatedAt,
	}
}

func fromStored(rec storedAccount) Account {
	return Account{
		ID:         rec.ID,
		Email:      rec.Email,
		SecretHash: rec.SecretHash,
		Role:       Role(rec.Role),
		Name:       rec.Name,
		Surname:    rec.Surname,
		Phone:      rec.Phone,
		NationalID: rec.NationalID,
		Address:    rec.Address,
		Active:     rec.Active,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}
