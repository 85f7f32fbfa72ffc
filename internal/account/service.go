package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/labportal/labportal/internal/fault"
	"github.com/labportal/labportal/internal/validate"
)

// Service owns the credential lifecycle: registration, authentication,
// profile edits and in-place secret changes.
type Service struct {
	repo Repository
}

// NewService creates a new account service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Repo exposes the backing directory for collaborators that write through it.
func (s *Service) Repo() Repository {
	return s.repo
}

// RegisterInput carries the registration form. ConfirmSecret and AcceptTerms
// are validated and then discarded; they are never stored.
type RegisterInput struct {
	Name          string
	Surname       string
	NationalID    string
	Phone         string
	Email         string
	Secret        string
	ConfirmSecret string
	AcceptTerms   bool
}

// Register creates a patient account from a validated registration form.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Account, error) {
	fields := validate.Fields{}
	fields.Check("name", in.Name, validate.Required)
	fields.Check("surname", in.Surname, validate.Required)
	fields.Check("nationalId", in.NationalID, validate.NationalID)
	fields.Check("phone", in.Phone, validate.Phone)
	fields.Check("email", in.Email, validate.Email)
	fields.Check("secret", in.Secret, validate.SecretComplexity)
	fields.Check("confirmSecret", in.ConfirmSecret, validate.EqualTo(in.Secret))
	if !in.AcceptTerms {
		fields["acceptTerms"] = validate.ReasonTermsMissing
	}
	if !fields.Ok() {
		return Account{}, fault.Validation(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Secret), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	now := time.Now().UTC()
	acc := Account{
		ID:         uuid.New().String(),
		Email:      in.Email,
		SecretHash: hash,
		Role:       RolePatient,
		Name:       in.Name,
		Surname:    in.Surname,
		Phone:      in.Phone,
		NationalID: in.NationalID,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			return Account{}, fault.New(fault.KindDuplicateIdentifier, "email is already registered")
		case errors.Is(err, ErrDuplicateNationalID):
			return Account{}, fault.Validation(validate.Fields{"nationalId": "DUPLICATE"})
		}
		return Account{}, err
	}

	return acc, nil
}

// Authenticate verifies an email/secret pair. Unknown email and wrong secret
// produce the same generic failure so callers cannot enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, email, secret string) (Account, error) {
	fields := validate.Fields{}
	fields.Check("email", email, validate.Email)
	if secret == "" {
		fields["secret"] = validate.ReasonRequired
	}
	if !fields.Ok() {
		return Account{}, fault.Validation(fields)
	}

	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Account{}, fault.New(fault.KindInvalidCredentials, "incorrect email or password")
		}
		return Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword(acc.SecretHash, []byte(secret)); err != nil {
		return Account{}, fault.New(fault.KindInvalidCredentials, "incorrect email or password")
	}
	if !acc.Active {
		return Account{}, fault.New(fault.KindAccountDisabled, "account is disabled")
	}
	return acc, nil
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Name       string
	Surname    string
	Email      string
	Phone      string
	NationalID string
	Address    string
}

// UpdateProfile merges the submitted fields into the account identified by
// email and returns the updated record.
func (s *Service) UpdateProfile(ctx context.Context, email string, in ProfileInput) (Account, error) {
	fields := validate.Fields{}
	fields.Check("name", in.Name, validate.Required)
	fields.Check("surname", in.Surname, validate.Required)
	fields.Check("email", in.Email, validate.Email)
	if in.Phone != "" {
		fields.Check("phone", in.Phone, validate.Phone)
	}
	if in.NationalID != "" {
		fields.Check("nationalId", in.NationalID, validate.NationalID)
	}
	if !fields.Ok() {
		return Account{}, fault.Validation(fields)
	}

	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return Account{}, err
	}

	acc.Name = in.Name
	acc.Surname = in.Surname
	acc.Email = in.Email
	acc.Phone = in.Phone
	acc.NationalID = in.NationalID
	acc.Address = in.Address
	acc.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateProfile(ctx, acc); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			return Account{}, fault.New(fault.KindDuplicateIdentifier, "email is already registered")
		case errors.Is(err, ErrDuplicateNationalID):
			return Account{}, fault.Validation(validate.Fields{"nationalId": "DUPLICATE"})
		}
		return Account{}, err
	}
	return acc, nil
}

// ChangeSecret replaces the account secret in place. The caller-supplied
// current secret must match the stored one.
func (s *Service) ChangeSecret(ctx context.Context, email, current, newSecret, confirm string) error {
	fields := validate.Fields{}
	if current == "" {
		fields["currentSecret"] = validate.ReasonRequired
	}
	fields.Check("newSecret", newSecret, validate.SecretComplexity)
	fields.Check("confirmSecret", confirm, validate.EqualTo(newSecret))
	if !fields.Ok() {
		return fault.Validation(fields)
	}

	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(acc.SecretHash, []byte(current)); err != nil {
		return fault.New(fault.KindInvalidCredentials, "current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newSecret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdateSecret(ctx, email, hash)
}

// List returns every registered account.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

// SetActive enables or disables an account.
func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}
