package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no account matches the lookup key.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateNationalID is returned when the national id is already registered.
	ErrDuplicateNationalID = errors.New("national id already registered")
)

// Repository persists the credential directory. Create must perform the
// uniqueness check and insert atomically.
type Repository interface {
	Create(ctx context.Context, acc Account) error
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
	List(ctx context.Context) ([]Account, error)
	UpdateProfile(ctx context.Context, acc Account) error
	UpdateSecret(ctx context.Context, email string, hash []byte) error
	SetActive(ctx context.Context, id string, active bool) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed credential directory.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, email, secret_hash, role, name, surname, phone, national_id, address, active, created_at, updated_at`

// Create inserts a new account. Uniqueness is enforced by the database so a
// concurrent duplicate registration loses the race cleanly.
func (r *PostgresRepository) Create(ctx context.Context, acc Account) error {
	accountID, err := uuid.Parse(acc.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO accounts (`+accountColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		accountID, acc.Email, acc.SecretHash, string(acc.Role), acc.Name, acc.Surname,
		acc.Phone, acc.NationalID, acc.Address, acc.Active, acc.CreatedAt.UTC(), acc.UpdatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "national_id") {
			return ErrDuplicateNationalID
		}
		return ErrDuplicateEmail
	}
	return err
}

// FindByEmail fetches an account by its unique email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

// FindByID fetches an account by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
	return scanAccount(row)
}

// List returns every account ordered by registration time.
func (r *PostgresRepository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// UpdateProfile replaces the profile fields of the account identified by id.
// The unique constraints catch an edited email or national id colliding with
// another row.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, acc Account) error {
	accountID, err := uuid.Parse(acc.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE accounts
        SET email = $1, name = $2, surname = $3, phone = $4, national_id = $5, address = $6, updated_at = $7
        WHERE id = $8`,
		acc.Email, acc.Name, acc.Surname, acc.Phone, acc.NationalID, acc.Address, acc.UpdatedAt.UTC(), accountID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "national_id") {
			return ErrDuplicateNationalID
		}
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSecret replaces the stored secret hash for the given email.
func (r *PostgresRepository) UpdateSecret(ctx context.Context, email string, hash []byte) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET secret_hash = $1, updated_at = $2 WHERE email = $3`,
		hash, time.Now().UTC(), email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive toggles the active flag for the given account id.
func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var (
		id        uuid.UUID
		role      string
		createdAt time.Time
		updatedAt time.Time
		acc       Account
	)
	err := row.Scan(&id, &acc.Email, &acc.SecretHash, &role, &acc.Name, &acc.Surname,
		&acc.Phone, &acc.NationalID, &acc.Address, &acc.Active, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	acc.ID = id.String()
	acc.Role = Role(role)
	acc.CreatedAt = createdAt.UTC()
	acc.UpdatedAt = updatedAt.UTC()
	return acc, nil
}
