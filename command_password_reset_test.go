package blog_test

import (
	"context"
	"strings"
	"testing"

	blog "github.com/goliatone/go-blog"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newResetTokens() *blog.ResetTokenService {
	return blog.NewResetTokenService([]byte("reset-key"), 1800, "test-issuer", nil)
}

func TestInitializePasswordReset(t *testing.T) {
	user := newTestUser("old-password")
	tokens := newResetTokens()
	mailer := &stubMailer{}

	users := &stubUsers{
		getByMail: func(ctx context.Context, email string) (*blog.User, error) {
			require.Equal(t, user.Email, email)
			return user, nil
		},
	}

	handler := blog.NewInitializePasswordResetHandler(&stubRepo{users: users}, tokens, mailer)

	var resp *blog.InitializePasswordResetResponse
	err := handler.Execute(context.Background(), blog.InitializePasswordResetMessage{
		Email:    user.Email,
		ResetURL: "http://localhost:8080/password-reset",
		OnResponse: func(r *blog.InitializePasswordResetResponse) {
			resp = r
		},
	})
	require.NoError(t, err)

	require.NotNil(t, resp)
	assert.True(t, resp.Success)
	assert.Equal(t, user.Email, resp.Email)
	require.NotEmpty(t, resp.Token)

	// the emailed token must resolve back to the requesting user
	assert.Equal(t, user.ID.String(), tokens.Verify(resp.Token))

	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, user.Email, sent.To)
	assert.Equal(t, "Password Reset Request", sent.Subject)
	assert.Contains(t, sent.Body, "http://localhost:8080/password-reset/"+resp.Token)
	assert.Contains(t, sent.Body, "ignore this email")
}

func TestInitializePasswordResetUnknownEmail(t *testing.T) {
	tokens := newResetTokens()
	mailer := &stubMailer{}

	users := &stubUsers{
		getByMail: func(ctx context.Context, email string) (*blog.User, error) {
			return nil, repository.NewRecordNotFound()
		},
	}

	handler := blog.NewInitializePasswordResetHandler(&stubRepo{users: users}, tokens, mailer)

	err := handler.Execute(context.Background(), blog.InitializePasswordResetMessage{
		Email:    "nobody@example.com",
		ResetURL: "http://localhost:8080/password-reset",
		OnResponse: func(r *blog.InitializePasswordResetResponse) {
			t.Fatal("no response expected for unknown email")
		},
	})

	require.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "no account with that email")

	// no token minted, no mail sent
	assert.Empty(t, mailer.sent)
}

func TestInitializePasswordResetDeliveryFailure(t *testing.T) {
	user := newTestUser("old-password")
	tokens := newResetTokens()
	mailer := &stubMailer{err: blog.ErrDeliveryFailed}

	users := &stubUsers{
		getByMail: func(ctx context.Context, email string) (*blog.User, error) {
			return user, nil
		},
	}

	handler := blog.NewInitializePasswordResetHandler(&stubRepo{users: users}, tokens, mailer)

	responded := false
	err := handler.Execute(context.Background(), blog.InitializePasswordResetMessage{
		Email:    user.Email,
		ResetURL: "http://localhost:8080/password-reset",
		OnResponse: func(r *blog.InitializePasswordResetResponse) {
			responded = true
		},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, blog.ErrDeliveryFailed)
	assert.False(t, responded, "a failed delivery must not report success")
}

func TestFinalizePasswordReset(t *testing.T) {
	user := newTestUser("old-password")
	tokens := newResetTokens()

	token, err := tokens.Issue(user.ID.String())
	require.NoError(t, err)

	var gotID uuid.UUID
	var gotHash string

	users := &stubUsers{
		resetPasswordTx: func(ctx context.Context, tx bun.IDB, id uuid.UUID, hash string) error {
			gotID = id
			gotHash = hash
			return nil
		},
	}

	handler := blog.NewFinalizePasswordResetHandler(&stubRepo{users: users}, tokens)

	err = handler.Execute(context.Background(), blog.FinalizePasswordResetMessage{
		Token:    token,
		Password: "brand-new-password",
	})
	require.NoError(t, err)

	assert.Equal(t, user.ID, gotID)
	require.NotEmpty(t, gotHash)
	assert.NoError(t, blog.ComparePasswordAndHash("brand-new-password", gotHash))
	assert.Error(t, blog.ComparePasswordAndHash("old-password", gotHash))
}

func TestFinalizePasswordResetRejectsBadTokens(t *testing.T) {
	user := newTestUser("old-password")
	tokens := newResetTokens()

	foreign := blog.NewResetTokenService([]byte("wrong-key"), 1800, "test-issuer", nil)
	foreignToken, err := foreign.Issue(user.ID.String())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Empty token", token: ""},
		{name: "Garbage token", token: "nope"},
		{name: "Foreign signature", token: foreignToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &stubUsers{
				resetPasswordTx: func(ctx context.Context, tx bun.IDB, id uuid.UUID, hash string) error {
					t.Fatal("password must not change on a rejected token")
					return nil
				},
			}

			handler := blog.NewFinalizePasswordResetHandler(&stubRepo{users: users}, tokens)

			err := handler.Execute(context.Background(), blog.FinalizePasswordResetMessage{
				Token:    tt.token,
				Password: "brand-new-password",
			})

			require.Error(t, err)
			// the response never reveals which check failed
			assert.True(t, strings.Contains(err.Error(), "invalid or expired password reset token"))
		})
	}
}

func TestFinalizePasswordResetEmptyPassword(t *testing.T) {
	user := newTestUser("old-password")
	tokens := newResetTokens()

	token, err := tokens.Issue(user.ID.String())
	require.NoError(t, err)

	handler := blog.NewFinalizePasswordResetHandler(&stubRepo{users: &stubUsers{}}, tokens)

	err = handler.Execute(context.Background(), blog.FinalizePasswordResetMessage{
		Token: token,
	})
	assert.Error(t, err)
}
