package account

import (
	"context"
	"testing"

	"github.com/labportal/labportal/internal/fault"
)

func validInput() RegisterInput {
	return RegisterInput{
		Name:          "Ana",
		Surname:       "Rojas",
		NationalID:    "12.345.678-5",
		Phone:         "+56912345678",
		Email:         "a@b.com",
		Secret:        "Aa1!aaaa",
		ConfirmSecret: "Aa1!aaaa",
		AcceptTerms:   true,
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	acc, err := svc.Register(ctx, validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if acc.Role != RolePatient {
		t.Fatalf("expected patient role, got %s", acc.Role)
	}
	if !acc.Active {
		t.Fatalf("expected new account to be active")
	}

	authed, err := svc.Authenticate(ctx, "a@b.com", "Aa1!aaaa")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.Role != RolePatient || authed.DisplayName() != "Ana Rojas" {
		t.Fatalf("unexpected account projection: %+v", authed)
	}
}

func TestRegisterValidationReportedPerField(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	in := validInput()
	in.Email = "not-an-email"
	in.Secret = "weak"
	in.ConfirmSecret = "weak"
	in.AcceptTerms = false

	_, err := svc.Register(context.Background(), in)
	if !fault.IsKind(err, fault.KindValidationFailed) {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
	fields := fault.FieldsOf(err)
	for _, name := range []string{"email", "secret", "acceptTerms"} {
		if _, ok := fields[name]; !ok {
			t.Fatalf("expected field %q to be reported, got %v", name, fields)
		}
	}
	if _, ok := fields["name"]; ok {
		t.Fatalf("valid field reported: %v", fields)
	}
}

func TestRegisterConfirmMismatch(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	in := validInput()
	in.ConfirmSecret = "Bb2!bbbb"

	_, err := svc.Register(context.Background(), in)
	if !fault.IsKind(err, fault.KindValidationFailed) {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
	if fault.FieldsOf(err)["confirmSecret"] != "MISMATCH" {
		t.Fatalf("expected confirmSecret MISMATCH, got %v", fault.FieldsOf(err))
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	in := validInput()
	in.Name = "Otra"
	in.NationalID = "9.876.543-2"
	if _, err := svc.Register(ctx, in); !fault.IsKind(err, fault.KindDuplicateIdentifier) {
		t.Fatalf("expected DUPLICATE_IDENTIFIER, got %v", err)
	}
}

func TestAuthenticateIndistinguishableFailures(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, unknownErr := svc.Authenticate(ctx, "nobody@lab.com", "Aa1!aaaa")
	_, wrongErr := svc.Authenticate(ctx, "a@b.com", "Bb2!bbbb")

	if !fault.IsKind(unknownErr, fault.KindInvalidCredentials) {
		t.Fatalf("unknown email: expected INVALID_CREDENTIALS, got %v", unknownErr)
	}
	if !fault.IsKind(wrongErr, fault.KindInvalidCredentials) {
		t.Fatalf("wrong secret: expected INVALID_CREDENTIALS, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("failures must be indistinguishable: %q vs %q", unknownErr, wrongErr)
	}
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	acc, err := svc.Register(ctx, validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := repo.SetActive(ctx, acc.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "a@b.com", "Aa1!aaaa"); !fault.IsKind(err, fault.KindAccountDisabled) {
		t.Fatalf("expected ACCOUNT_DISABLED, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, "a@b.com", ProfileInput{
		Name:    "Ana María",
		Surname: "Rojas",
		Email:   "a@b.com",
		Address: "Av. Siempre Viva 742",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.DisplayName() != "Ana María Rojas" || updated.Address != "Av. Siempre Viva 742" {
		t.Fatalf("profile not merged: %+v", updated)
	}

	// secret untouched by profile edits
	if _, err := svc.Authenticate(ctx, "a@b.com", "Aa1!aaaa"); err != nil {
		t.Fatalf("authenticate after profile edit: %v", err)
	}
}

func TestChangeSecret(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ChangeSecret(ctx, "a@b.com", "wrong", "Bb2!bbbb", "Bb2!bbbb"); !fault.IsKind(err, fault.KindInvalidCredentials) {
		t.Fatalf("expected current-secret check to fail, got %v", err)
	}

	if err := svc.ChangeSecret(ctx, "a@b.com", "Aa1!aaaa", "Bb2!bbbb", "Bb2!bbbb"); err != nil {
		t.Fatalf("change secret: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "a@b.com", "Aa1!aaaa"); err == nil {
		t.Fatalf("old secret must no longer authenticate")
	}
	if _, err := svc.Authenticate(ctx, "a@b.com", "Bb2!bbbb"); err != nil {
		t.Fatalf("new secret must authenticate: %v", err)
	}
}

func TestSeedDirectory(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := Seed(ctx, repo); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// idempotent
	if err := Seed(ctx, repo); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	svc := NewService(repo)
	admin, err := svc.Authenticate(ctx, "admin@lab.com", "Admin123!")
	if err != nil {
		t.Fatalf("seeded admin login: %v", err)
	}
	if admin.Role != RoleAdministrator || admin.DisplayName() != "Admin Sistema" {
		t.Fatalf("unexpected seeded admin: %+v", admin)
	}

	clinician, err := svc.Authenticate(ctx, "medico@lab.com", "Medico123!")
	if err != nil {
		t.Fatalf("seeded clinician login: %v", err)
	}
	if clinician.Role != RoleClinician || clinician.DisplayName() != "Dr. Juan Pérez" {
		t.Fatalf("unexpected seeded clinician: %+v", clinician)
	}
}

func TestUpdateProfileRejectsTakenEmail(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	other := validInput()
	other.Email = "c@d.com"
	other.NationalID = "9.876.543-2"
	if _, err := svc.Register(ctx, other); err != nil {
		t.Fatalf("second register: %v", err)
	}

	_, err := svc.UpdateProfile(ctx, "c@d.com", ProfileInput{
		Name:    "Ana",
		Surname: "Rojas",
		Email:   "a@b.com",
	})
	if !fault.IsKind(err, fault.KindDuplicateIdentifier) {
		t.Fatalf("expected DUPLICATE_IDENTIFIER, got %v", err)
	}

	// both accounts survive the rejected edit untouched
	if _, err := svc.Authenticate(ctx, "a@b.com", "Aa1!aaaa"); err != nil {
		t.Fatalf("first account lost: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "c@d.com", "Aa1!aaaa"); err != nil {
		t.Fatalf("second account lost: %v", err)
	}
}

func TestUpdateProfileRejectsTakenNationalID(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	other := validInput()
	other.Email = "c@d.com"
	other.NationalID = "9.876.543-2"
	if _, err := svc.Register(ctx, other); err != nil {
		t.Fatalf("second register: %v", err)
	}

	_, err := svc.UpdateProfile(ctx, "c@d.com", ProfileInput{
		Name:       "Ana",
		Surname:    "Rojas",
		Email:      "c@d.com",
		NationalID: "12.345.678-5",
	})
	if !fault.IsKind(err, fault.KindValidationFailed) {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
	if fault.FieldsOf(err)["nationalId"] != "DUPLICATE" {
		t.Fatalf("expected nationalId DUPLICATE, got %v", fault.FieldsOf(err))
	}
}
