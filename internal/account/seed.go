package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type seedEntry struct {
	email   string
	secret  string
	role    Role
	name    string
	surname string
}

var seedAccounts = []seedEntry{
	{email: "admin@lab.com", secret: "Admin123!", role: RoleAdministrator, name: "Admin", surname: "Sistema"},
	{email: "medico@lab.com", secret: "Medico123!", role: RoleClinician, name: "Dr. Juan", surname: "Pérez"},
	{email: "paciente@lab.com", secret: "Paciente123!", role: RolePatient, name: "María", surname: "González"},
}

// Seed loads the built-in directory entries, skipping any that already exist.
func Seed(ctx context.Context, repo Repository) error {
	now := time.Now().UTC()
	for _, entry := range seedAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(entry.secret), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		acc := Account{
			ID:         uuid.New().String(),
			Email:      entry.email,
			SecretHash: hash,
			Role:       entry.role,
			Name:       entry.name,
			Surname:    entry.surname,
			Active:     true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := repo.Create(ctx, acc); err != nil && !errors.Is(err, ErrDuplicateEmail) {
			return err
		}
	}
	return nil
}
