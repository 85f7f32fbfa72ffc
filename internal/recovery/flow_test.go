package recovery

import (
	"context"
	"sync"
	"testing"

	"github.com/labportal/labportal/internal/account"
	"github.com/labportal/labportal/internal/fault"
	"github.com/labportal/labportal/internal/notification"
)

// recordingNotifier captures delivered codes the way a mailbox would.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return nil
}

func (n *recordingNotifier) lastCode(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		t.Fatalf("no code was delivered")
	}
	return n.messages[len(n.messages)-1].Body
}

func setupFlow(t *testing.T) (*Flow, *recordingNotifier, *account.Service) {
	t.Helper()
	repo := account.NewMemoryRepository()
	svc := account.NewService(repo)
	if _, err := svc.Register(context.Background(), account.RegisterInput{
		Name: "Ana", Surname: "Rojas", NationalID: "12.345.678-5", Phone: "+56912345678",
		Email: "a@b.com", Secret: "Aa1!aaaa", ConfirmSecret: "Aa1!aaaa", AcceptTerms: true,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	notifier := &recordingNotifier{}
	return NewFlow(repo, notifier, nil), notifier, svc
}

func TestRecoveryHappyPath(t *testing.T) {
	flow, notifier, svc := setupFlow(t)
	ctx := context.Background()

	if flow.State() != StateInit {
		t.Fatalf("expected INIT, got %s", flow.State())
	}
	if err := flow.RequestCode(ctx, "a@b.com"); err != nil {
		t.Fatalf("request code: %v", err)
	}
	if flow.State() != StateCodeSent {
		t.Fatalf("expected CODE_SENT, got %s", flow.State())
	}

	code := notifier.lastCode(t)
	if len(code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", code)
	}

	// A wrong 6-digit guess is rejected and the state stays put.
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if err := flow.VerifyCode(ctx, wrong); !fault.IsKind(err, fault.KindWrongCode) {
		t.Fatalf("expected WRONG_CODE, got %v", err)
	}
	if flow.State() != StateCodeSent {
		t.Fatalf("wrong code must not change state, got %s", flow.State())
	}

	if err := flow.VerifyCode(ctx, code); err != nil {
		t.Fatalf("verify code: %v", err)
	}
	if flow.State() != StateCodeVerified {
		t.Fatalf("expected CODE_VERIFIED, got %s", flow.State())
	}

	if err := flow.SetNewSecret(ctx, "Bb2!bbbb", "Bb2!bbbb"); err != nil {
		t.Fatalf("set new secret: %v", err)
	}
	if flow.State() != StateSecretChanged {
		t.Fatalf("expected SECRET_CHANGED, got %s", flow.State())
	}

	if _, err := svc.Authenticate(ctx, "a@b.com", "Aa1!aaaa"); err == nil {
		t.Fatalf("old secret must no longer authenticate")
	}
	if _, err := svc.Authenticate(ctx, "a@b.com", "Bb2!bbbb"); err != nil {
		t.Fatalf("new secret must authenticate: %v", err)
	}
}

func TestResendInvalidatesPreviousCode(t *testing.T) {
	flow, notifier, _ := setupFlow(t)
	ctx := context.Background()

	// Deterministic generator so resend provably changes the code.
	codes := []string{"111111", "222222"}
	flow.generate = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	if err := flow.RequestCode(ctx, "a@b.com"); err != nil {
		t.Fatalf("request code: %v", err)
	}
	first := notifier.lastCode(t)

	if err := flow.ResendCode(ctx); err != nil {
		t.Fatalf("resend code: %v", err)
	}
	second := notifier.lastCode(t)
	if first == second {
		t.Fatalf("resend must replace the code")
	}

	if err := flow.VerifyCode(ctx, first); !fault.IsKind(err, fault.KindWrongCode) {
		t.Fatalf("old code must be invalid after resend, got %v", err)
	}
	if err := flow.VerifyCode(ctx, second); err != nil {
		t.Fatalf("current code must verify: %v", err)
	}
}

func TestStatePreconditions(t *testing.T) {
	flow, notifier, _ := setupFlow(t)
	ctx := context.Background()

	if err := flow.SetNewSecret(ctx, "Bb2!bbbb", "Bb2!bbbb"); !fault.IsKind(err, fault.KindInvalidState) {
		t.Fatalf("SetNewSecret from INIT: expected INVALID_STATE, got %v", err)
	}
	if err := flow.VerifyCode(ctx, "123456"); !fault.IsKind(err, fault.KindInvalidState) {
		t.Fatalf("VerifyCode from INIT: expected INVALID_STATE, got %v", err)
	}
	if err := flow.ResendCode(ctx); !fault.IsKind(err, fault.KindInvalidState) {
		t.Fatalf("ResendCode from INIT: expected INVALID_STATE, got %v", err)
	}

	if err := flow.RequestCode(ctx, "a@b.com"); err != nil {
		t.Fatalf("request code: %v", err)
	}
	if err := flow.SetNewSecret(ctx, "Bb2!bbbb", "Bb2!bbbb"); !fault.IsKind(err, fault.KindInvalidState) {
		t.Fatalf("SetNewSecret from CODE_SENT: expected INVALID_STATE, got %v", err)
	}
	if err := flow.RequestCode(ctx, "a@b.com"); !fault.IsKind(err, fault.KindInvalidState) {
		t.Fatalf("second RequestCode: expected INVALID_STATE, got %v", err)
	}

	if err := flow.VerifyCode(ctx, notifier.lastCode(t)); err != nil {
		t.Fatalf("verify code: %v", err)
	}
	if err := flow.VerifyCode(ctx, notifier.lastCode(t)); !fault.IsKind(err, fault.KindInvalidState) {
		t.Fatalf("VerifyCode after CODE_VERIFIED: expected INVALID_STATE, got %v", err)
	}
}

func TestRequestCodeRejectsBadEmail(t *testing.T) {
	flow, _, _ := setupFlow(t)

	err := flow.RequestCode(context.Background(), "not-an-email")
	if !fault.IsKind(err, fault.KindValidationFailed) {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
	if flow.State() != StateInit {
		t.Fatalf("invalid request must not start the flow")
	}
}

func TestVerifyCodeRejectsMalformedInput(t *testing.T) {
	flow, _, _ := setupFlow(t)
	ctx := context.Background()

	if err := flow.RequestCode(ctx, "a@b.com"); err != nil {
		t.Fatalf("request code: %v", err)
	}
	if err := flow.VerifyCode(ctx, "12345"); !fault.IsKind(err, fault.KindValidationFailed) {
		t.Fatalf("expected VALIDATION_FAILED for short code, got %v", err)
	}
	if flow.State() != StateCodeSent {
		t.Fatalf("malformed code must not change state")
	}
}

func TestUnknownIdentifierCompletesSilently(t *testing.T) {
	flow, notifier, svc := setupFlow(t)
	ctx := context.Background()

	// Ticket issued without checking the directory.
	if err := flow.RequestCode(ctx, "nobody@lab.com"); err != nil {
		t.Fatalf("request code: %v", err)
	}
	if err := flow.VerifyCode(ctx, notifier.lastCode(t)); err != nil {
		t.Fatalf("verify code: %v", err)
	}
	if err := flow.SetNewSecret(ctx, "Bb2!bbbb", "Bb2!bbbb"); err != nil {
		t.Fatalf("expected silent completion for unknown identifier, got %v", err)
	}
	if flow.State() != StateSecretChanged {
		t.Fatalf("expected SECRET_CHANGED, got %s", flow.State())
	}

	// The registered account is untouched.
	if _, err := svc.Authenticate(ctx, "a@b.com", "Aa1!aaaa"); err != nil {
		t.Fatalf("existing account must be unaffected: %v", err)
	}
}

func TestAbandonLeavesSecretUntouched(t *testing.T) {
	flow, notifier, svc := setupFlow(t)
	ctx := context.Background()

	if err := flow.RequestCode(ctx, "a@b.com"); err != nil {
		t.Fatalf("request code: %v", err)
	}
	if err := flow.VerifyCode(ctx, notifier.lastCode(t)); err != nil {
		t.Fatalf("verify code: %v", err)
	}

	flow.Abandon()
	if flow.State() != StateInit {
		t.Fatalf("expected INIT after abandon, got %s", flow.State())
	}

	if _, err := svc.Authenticate(ctx, "a@b.com", "Aa1!aaaa"); err != nil {
		t.Fatalf("abandon must not change the secret: %v", err)
	}

	// The old ticket is gone; the flow can start over.
	if err := flow.RequestCode(ctx, "a@b.com"); err != nil {
		t.Fatalf("restart after abandon: %v", err)
	}
}

func TestGeneratedCodesAreSixDigits(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 || code[0] == '0' {
			t.Fatalf("expected code in [100000, 999999], got %q", code)
		}
	}
}
