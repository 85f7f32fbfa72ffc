package recovery

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"strconv"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/labportal/labportal/internal/account"
	"github.com/labportal/labportal/internal/fault"
	"github.com/labportal/labportal/internal/notification"
	"github.com/labportal/labportal/internal/validate"
)

// State of the recovery flow. Transitions only move forward:
// INIT -> CODE_SENT -> CODE_VERIFIED -> SECRET_CHANGED.
type State string

const (
	StateInit          State = "INIT"
	StateCodeSent      State = "CODE_SENT"
	StateCodeVerified  State = "CODE_VERIFIED"
	StateSecretChanged State = "SECRET_CHANGED"
)

// ticket binds the target identifier to the currently valid one-time code.
// It is ephemeral: replaced wholesale on resend, discarded on completion or
// abandonment, never persisted across restarts.
type ticket struct {
	identifier string
	code       string
}

// SecretWriter is the slice of the credential directory the flow writes
// through when the new secret is committed.
type SecretWriter interface {
	UpdateSecret(ctx context.Context, email string, hash []byte) error
}

// Flow is the password-recovery state machine. One flow is in flight at a
// time; overlapping calls against it are rejected rather than queued so a
// slow predecessor cannot be raced into a lost update.
type Flow struct {
	mu     sync.Mutex
	state  State
	ticket *ticket

	directory SecretWriter
	notifier  notification.Notifier
	logger    *slog.Logger

	// generate is swapped out in tests for a deterministic code source.
	generate func() (string, error)
}

// NewFlow builds a recovery flow in the INIT state.
func NewFlow(directory SecretWriter, notifier notification.Notifier, logger *slog.Logger) *Flow {
	return &Flow{
		state:     StateInit,
		directory: directory,
		notifier:  notifier,
		logger:    logger,
		generate:  generateCode,
	}
}

// generateCode draws a uniform 6-digit code from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

var errBusy = fault.New(fault.KindFlowBusy, "a recovery operation is already in progress")

// State reports the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// RequestCode starts a recovery flow for the given identifier. The
// identifier's existence in the directory is deliberately not checked here:
// a ticket is issued either way so the endpoint cannot be used to enumerate
// registered emails.
func (f *Flow) RequestCode(ctx context.Context, identifier string) error {
	if !f.mu.TryLock() {
		return errBusy
	}
	defer f.mu.Unlock()

	if f.state != StateInit {
		return fault.New(fault.KindInvalidState, "recovery already started")
	}
	if ok, reason := validate.Email(identifier); !ok {
		return fault.Validation(validate.Fields{"email": reason})
	}

	code, err := f.generate()
	if err != nil {
		return err
	}
	f.ticket = &ticket{identifier: identifier, code: code}
	f.state = StateCodeSent

	f.deliver(ctx, identifier, code)
	return nil
}

// ResendCode regenerates the code in place. The previous code becomes
// invalid the moment the ticket is updated.
func (f *Flow) ResendCode(ctx context.Context) error {
	if !f.mu.TryLock() {
		return errBusy
	}
	defer f.mu.Unlock()

	if f.state != StateCodeSent {
		return fault.New(fault.KindInvalidState, "no code has been sent")
	}

	code, err := f.generate()
	if err != nil {
		return err
	}
	f.ticket.code = code

	f.deliver(ctx, f.ticket.identifier, code)
	return nil
}

// VerifyCode compares the submitted code to the ticket's current one. A
// mismatch leaves the flow in CODE_SENT so the user can retry.
func (f *Flow) VerifyCode(_ context.Context, code string) error {
	if !f.mu.TryLock() {
		return errBusy
	}
	defer f.mu.Unlock()

	if f.state != StateCodeSent {
		return fault.New(fault.KindInvalidState, "no code to verify")
	}
	if ok, reason := validate.Code(code); !ok {
		return fault.Validation(validate.Fields{"code": reason})
	}
	if code != f.ticket.code {
		return fault.New(fault.KindWrongCode, "the code does not match")
	}

	f.state = StateCodeVerified
	return nil
}

// SetNewSecret commits the new secret for the ticket's identifier and ends
// the flow. Reachable only after the code has been verified.
func (f *Flow) SetNewSecret(ctx context.Context, secret, confirm string) error {
	if !f.mu.TryLock() {
		return errBusy
	}
	defer f.mu.Unlock()

	if f.state != StateCodeVerified {
		return fault.New(fault.KindInvalidState, "code has not been verified")
	}

	fields := validate.Fields{}
	fields.Check("newSecret", secret, validate.SecretComplexity)
	fields.Check("confirmSecret", confirm, validate.EqualTo(secret))
	if !fields.Ok() {
		return fault.Validation(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	err = f.directory.UpdateSecret(ctx, f.ticket.identifier, hash)
	if err != nil && !errors.Is(err, account.ErrNotFound) {
		// Unknown identifiers complete silently: tickets are issued without
		// an existence check, so failing here would leak what RequestCode hid.
		return err
	}

	f.state = StateSecretChanged
	f.ticket = nil
	return nil
}

// Abandon drops the ticket and returns the flow to INIT. No durable state
// was touched before the terminal transition, so there is nothing to undo.
func (f *Flow) Abandon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticket = nil
	f.state = StateInit
}

func (f *Flow) deliver(ctx context.Context, identifier, code string) {
	if f.notifier == nil {
		return
	}
	msg := notification.Message{
		Kind:        notification.KindRecoveryCode,
		Destination: identifier,
		Body:        code,
	}
	if err := f.notifier.Send(ctx, msg); err != nil && f.logger != nil {
		f.logger.Warn("recovery code delivery failed", "destination", identifier, "error", err)
	}
}
