package blog_test

import (
	"context"
	"testing"

	blog "github.com/goliatone/go-blog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRoundTrip(t *testing.T) {
	user := newTestUser("sup3r-secret")
	tracker := &stubTracker{user: user}

	auther := blog.NewAuthenticator(blog.NewUserProvider(tracker), testConfig{})

	token, err := auther.Login(context.Background(), user.Email, "sup3r-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := auther.SessionFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), session.GetUserID())
	assert.Equal(t, "test-issuer", session.GetIssuer())
	assert.Equal(t, user.Username, session.GetData()["username"])

	id, err := session.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	identity, err := auther.IdentityFromSession(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), identity.ID())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	user := newTestUser("sup3r-secret")

	tests := []struct {
		name       string
		tracker    *stubTracker
		identifier string
		password   string
	}{
		{
			name:       "Unknown email",
			tracker:    &stubTracker{err: blog.ErrIdentityNotFound},
			identifier: "nobody@example.com",
			password:   "sup3r-secret",
		},
		{
			name:       "Wrong password",
			tracker:    &stubTracker{user: user},
			identifier: user.Email,
			password:   "wrong",
		},
	}

	var msgs []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auther := blog.NewAuthenticator(blog.NewUserProvider(tt.tracker), testConfig{})

			token, err := auther.Login(context.Background(), tt.identifier, tt.password)
			require.Error(t, err)
			assert.Empty(t, token)
			assert.ErrorIs(t, err, blog.ErrMismatchedHashAndPassword)

			msgs = append(msgs, err.Error())
		})
	}

	// both failure modes must read exactly the same
	require.Len(t, msgs, 2)
	assert.Equal(t, msgs[0], msgs[1])
}

func TestSessionFromTokenRejectsForeignToken(t *testing.T) {
	user := newTestUser("sup3r-secret")
	tracker := &stubTracker{user: user}

	auther := blog.NewAuthenticator(blog.NewUserProvider(tracker), testConfig{})

	foreign := blog.NewAuthenticator(
		blog.NewUserProvider(tracker),
		testConfig{signingKey: "some-other-key"},
	)

	token, err := foreign.Login(context.Background(), user.Email, "sup3r-secret")
	require.NoError(t, err)

	session, err := auther.SessionFromToken(token)
	assert.Error(t, err)
	assert.Nil(t, session)
	assert.True(t, blog.IsMalformedError(err))
}

func TestAutherExposesTokenService(t *testing.T) {
	auther := blog.NewAuthenticator(blog.NewUserProvider(&stubTracker{}), testConfig{})
	require.NotNil(t, auther.TokenService())

	user := newTestUser("secret")
	token, err := auther.TokenService().Generate(blog.NewIdentityFromUser(user))
	require.NoError(t, err)

	claims, err := auther.TokenService().Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID())
}
