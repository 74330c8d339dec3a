package blog

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	ResetURL   string `json:"reset_url" doc:"Base URL the token is appended to."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	Token   string
	Email   string
	Success bool
}

// InitializePasswordResetHandler re-validates the email against the
// credential store, issues a signed reset token, and delivers it by mail.
// Unknown emails are rejected before any token exists; delivery failures
// propagate so the request surfaces as a server error.
type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	tokens *ResetTokenService
	mailer Mailer
	logger Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults
func NewInitializePasswordResetHandler(repo RepositoryManager, tokens *ResetTokenService, mailer Mailer) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{Email: event.Email}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return goerrors.New("no account with that email", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	token, err := h.tokens.Issue(user.ID.String())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue reset token")
	}

	msg := Message{
		To:      user.Email,
		Subject: "Password Reset Request",
		Body:    ResetEmailBody(fmt.Sprintf("%s/%s", event.ResetURL, token)),
	}

	// Delivery is synchronous: a failed send must surface to the caller
	// instead of pretending the email went out.
	if err := h.mailer.Send(ctx, msg); err != nil {
		h.logger.Error("reset email delivery failed", "email", user.Email, "error", err)
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, ErrDeliveryFailed.Category, ErrDeliveryFailed.Message).
			WithTextCode(ErrDeliveryFailed.TextCode)
	}

	resp.Token = token
	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
