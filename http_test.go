package blog_test

import (
	"context"
	"testing"
	"time"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouteAuthenticator(t *testing.T, tracker *stubTracker) *blog.RouteAuthenticator {
	t.Helper()

	provider := blog.NewUserProvider(tracker).WithLogger(testLogger{})
	auther := blog.NewAuthenticator(provider, testConfig{})
	auther.WithLogger(testLogger{})

	routeAuth, err := blog.NewHTTPAuthenticator(auther, testConfig{})
	require.NoError(t, err)
	routeAuth.Logger = testLogger{}

	return routeAuth
}

func TestRouteAuthenticatorCookieDurations(t *testing.T) {
	routeAuth := newRouteAuthenticator(t, &stubTracker{})

	assert.Equal(t, 24*time.Hour, routeAuth.GetCookieDuration())
	assert.Equal(t, 72*time.Hour, routeAuth.GetExtendedCookieDuration())
}

func TestRouteAuthenticatorLoginSetsSessionCookie(t *testing.T) {
	user := newTestUser("secret")
	routeAuth := newRouteAuthenticator(t, &stubTracker{user: user})

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())

	err := routeAuth.Login(ctx, blog.LoginRequest{
		Identifier: user.Email,
		Password:   "secret",
	})
	require.NoError(t, err)

	token := ctx.CookiesM["user"]
	require.NotEmpty(t, token, "session cookie should carry the signed token")

	claims, err := blog.NewTokenService([]byte("test-signing-key"), 24, "test-issuer", nil).Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID())
	assert.True(t, claims.Expires().Before(time.Now().Add(25*time.Hour)))
}

func TestRouteAuthenticatorRememberMeExtendsToken(t *testing.T) {
	user := newTestUser("secret")
	routeAuth := newRouteAuthenticator(t, &stubTracker{user: user})

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())

	err := routeAuth.Login(ctx, blog.LoginRequest{
		Identifier: user.Email,
		Password:   "secret",
		RememberMe: true,
	})
	require.NoError(t, err)

	token := ctx.CookiesM["user"]
	require.NotEmpty(t, token)

	// The token inside the cookie must stay valid for the whole extended
	// window, not just the base expiration.
	claims, err := blog.NewTokenService([]byte("test-signing-key"), 24, "test-issuer", nil).Validate(token)
	require.NoError(t, err)
	assert.True(t, claims.Expires().After(time.Now().Add(71*time.Hour)),
		"remember me token expired with the base window: %s", claims.Expires())
	assert.True(t, claims.Expires().Before(time.Now().Add(73*time.Hour)))
}

func TestRouteAuthenticatorLoginFailureSetsNoCookie(t *testing.T) {
	user := newTestUser("secret")
	routeAuth := newRouteAuthenticator(t, &stubTracker{user: user})

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())

	err := routeAuth.Login(ctx, blog.LoginRequest{
		Identifier: user.Email,
		Password:   "not-the-password",
	})
	require.Error(t, err)
	assert.Empty(t, ctx.CookiesM["user"])
}

func TestRouteAuthenticatorLogoutClearsCookie(t *testing.T) {
	routeAuth := newRouteAuthenticator(t, &stubTracker{})

	ctx := router.NewMockContext()
	ctx.CookiesM["user"] = "stale-token"

	routeAuth.Logout(ctx)

	_, present := ctx.CookiesM["user"]
	assert.False(t, present, "logout should expire the session cookie")
}

func TestRouteAuthenticatorGetRedirect(t *testing.T) {
	routeAuth := newRouteAuthenticator(t, &stubTracker{})

	t.Run("Rejected route cookie wins and is consumed", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.CookiesM["rejected_route"] = "/post/new"

		assert.Equal(t, "/post/new", routeAuth.GetRedirect(ctx, "/"))

		_, present := ctx.CookiesM["rejected_route"]
		assert.False(t, present, "redirect cookie should be cleared after use")
	})

	t.Run("Falls back to the default", func(t *testing.T) {
		ctx := router.NewMockContext()
		assert.Equal(t, "/", routeAuth.GetRedirect(ctx, "/"))
	})
}
