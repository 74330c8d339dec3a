package blog_test

import (
	"context"
	"database/sql"

	blog "github.com/goliatone/go-blog"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// testConfig implements blog.Config with predictable values
type testConfig struct {
	signingKey           string
	tokenExpiration      int
	resetTokenExpiration int
	issuer               string
}

func (c testConfig) GetSigningKey() string {
	if c.signingKey == "" {
		return "test-signing-key"
	}
	return c.signingKey
}

func (c testConfig) GetSigningMethod() string { return "HS256" }
func (c testConfig) GetContextKey() string    { return "user" }

func (c testConfig) GetTokenExpiration() int {
	if c.tokenExpiration == 0 {
		return 24
	}
	return c.tokenExpiration
}

func (c testConfig) GetExtendedTokenDuration() int { return 72 }
func (c testConfig) GetTokenLookup() string        { return "cookie:user" }
func (c testConfig) GetAuthScheme() string         { return "Bearer" }

func (c testConfig) GetIssuer() string {
	if c.issuer == "" {
		return "test-issuer"
	}
	return c.issuer
}

func (c testConfig) GetResetTokenExpiration() int {
	if c.resetTokenExpiration == 0 {
		return 1800
	}
	return c.resetTokenExpiration
}

func (c testConfig) GetRejectedRouteKey() string     { return "rejected_route" }
func (c testConfig) GetRejectedRouteDefault() string { return "/" }

// stubUsers embeds the interface so only the methods a test exercises need
// an implementation. Calling anything else panics, which is what we want.
type stubUsers struct {
	blog.Users

	getByID   func(ctx context.Context, id string) (*blog.User, error)
	getByMail func(ctx context.Context, email string) (*blog.User, error)

	registerTx      func(ctx context.Context, tx bun.IDB, user *blog.User) (*blog.User, error)
	updateAccountTx func(ctx context.Context, tx bun.IDB, user *blog.User) (*blog.User, error)
	resetPasswordTx func(ctx context.Context, tx bun.IDB, id uuid.UUID, hash string) error
}

func (s *stubUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*blog.User, error) {
	return s.getByID(ctx, id)
}

func (s *stubUsers) GetByEmail(ctx context.Context, email string) (*blog.User, error) {
	return s.getByMail(ctx, email)
}

func (s *stubUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *blog.User) (*blog.User, error) {
	return s.registerTx(ctx, tx, user)
}

func (s *stubUsers) UpdateAccountTx(ctx context.Context, tx bun.IDB, user *blog.User) (*blog.User, error) {
	return s.updateAccountTx(ctx, tx, user)
}

func (s *stubUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, hash string) error {
	return s.resetPasswordTx(ctx, tx, id, hash)
}

type stubPosts struct {
	blog.Posts

	getByID   func(ctx context.Context, id string) (*blog.Post, error)
	publishTx func(ctx context.Context, tx bun.IDB, post *blog.Post) (*blog.Post, error)
	updateTx  func(ctx context.Context, tx bun.IDB, post *blog.Post) (*blog.Post, error)
	deleteTx  func(ctx context.Context, tx bun.IDB, post *blog.Post) error
}

func (s *stubPosts) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*blog.Post, error) {
	return s.getByID(ctx, id)
}

func (s *stubPosts) PublishTx(ctx context.Context, tx bun.IDB, post *blog.Post) (*blog.Post, error) {
	return s.publishTx(ctx, tx, post)
}

func (s *stubPosts) UpdateTx(ctx context.Context, tx bun.IDB, post *blog.Post, criteria ...repository.UpdateCriteria) (*blog.Post, error) {
	return s.updateTx(ctx, tx, post)
}

func (s *stubPosts) DeleteTx(ctx context.Context, tx bun.IDB, post *blog.Post) error {
	return s.deleteTx(ctx, tx, post)
}

// stubRepo wires the stubs behind a RepositoryManager. Transactions run the
// callback with a zero bun.Tx since the stubs never touch the database.
type stubRepo struct {
	users blog.Users
	posts blog.Posts
}

func (r *stubRepo) Validate() error { return nil }
func (r *stubRepo) MustValidate()   {}

func (r *stubRepo) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (r *stubRepo) Users() blog.Users { return r.users }
func (r *stubRepo) Posts() blog.Posts { return r.posts }

// stubTracker implements blog.UserTracker for login flows
type stubTracker struct {
	user             *blog.User
	err              error
	attemptedLogins  int
	successfulLogins int
}

func (s *stubTracker) GetByIdentifier(ctx context.Context, identifier string) (*blog.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *stubTracker) TrackAttemptedLogin(ctx context.Context, user *blog.User) error {
	s.attemptedLogins++
	return nil
}

func (s *stubTracker) TrackSuccessfulLogin(ctx context.Context, user *blog.User) error {
	s.successfulLogins++
	return nil
}

// stubMailer captures outbound messages
type stubMailer struct {
	sent []blog.Message
	err  error
}

func (m *stubMailer) Send(ctx context.Context, msg blog.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// stubHTTPAuth satisfies blog.HTTPAuthenticator for controller tests. The
// route guards are pass-through middlewares that count how often the
// controller asked for them.
type stubHTTPAuth struct {
	loginErr       error
	lastPayload    blog.LoginPayload
	loggedOut      bool
	redirect       string
	optionalCalls  int
	protectedCalls int
}

func (s *stubHTTPAuth) ProtectedRoute(cfg blog.Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	s.protectedCalls++
	return func(next router.HandlerFunc) router.HandlerFunc { return next }
}

func (s *stubHTTPAuth) OptionalRoute(cfg blog.Config) router.MiddlewareFunc {
	s.optionalCalls++
	return func(next router.HandlerFunc) router.HandlerFunc { return next }
}

func (s *stubHTTPAuth) Login(c router.Context, payload blog.LoginPayload) error {
	s.lastPayload = payload
	return s.loginErr
}

func (s *stubHTTPAuth) Logout(c router.Context) {
	s.loggedOut = true
}

func (s *stubHTTPAuth) SetRedirect(c router.Context) {}

func (s *stubHTTPAuth) GetRedirect(c router.Context, def ...string) string {
	if s.redirect != "" {
		return s.redirect
	}
	if len(def) > 0 {
		return def[0]
	}
	return "/"
}

func (s *stubHTTPAuth) MakeClientRouteAuthErrorHandler(optionalAuth bool) func(router.Context, error) error {
	return func(c router.Context, err error) error { return err }
}

type routeRecord struct {
	method string
	path   string
	mws    int
}

// stubRouter records registrations so tests can assert on the middleware
// chain without standing up a server.
type stubRouter struct {
	routes []routeRecord
}

func (r *stubRouter) record(method, path string, mw []router.MiddlewareFunc) router.RouteInfo {
	r.routes = append(r.routes, routeRecord{method: method, path: path, mws: len(mw)})
	return stubRouteInfo{}
}

func (r *stubRouter) Handle(method router.HTTPMethod, path string, h router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	return r.record(string(method), path, mw)
}

func (r *stubRouter) Group(prefix string) router.Router[any] { return r }
func (r *stubRouter) Mount(prefix string) router.Router[any] { return r }

func (r *stubRouter) WithGroup(path string, cb func(router.Router[any])) router.Router[any] {
	cb(r)
	return r
}

func (r *stubRouter) Use(m ...router.MiddlewareFunc) router.Router[any] { return r }

func (r *stubRouter) Get(path string, h router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	return r.record("GET", path, mw)
}

func (r *stubRouter) Post(path string, h router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	return r.record("POST", path, mw)
}

func (r *stubRouter) Put(path string, h router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	return r.record("PUT", path, mw)
}

func (r *stubRouter) Delete(path string, h router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	return r.record("DELETE", path, mw)
}

func (r *stubRouter) Patch(path string, h router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	return r.record("PATCH", path, mw)
}

func (r *stubRouter) Head(path string, h router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	return r.record("HEAD", path, mw)
}

func (r *stubRouter) Static(prefix, root string, config ...router.Static) router.Router[any] {
	return r
}

func (r *stubRouter) WebSocket(path string, config router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo {
	return stubRouteInfo{}
}

func (r *stubRouter) Routes() []router.RouteDefinition              { return nil }
func (r *stubRouter) ValidateRoutes() []error                       { return nil }
func (r *stubRouter) PrintRoutes()                                  {}
func (r *stubRouter) WithLogger(l router.Logger) router.Router[any] { return r }

type stubRouteInfo struct{}

func (i stubRouteInfo) SetName(string) router.RouteInfo        { return i }
func (i stubRouteInfo) SetDescription(string) router.RouteInfo { return i }
func (i stubRouteInfo) SetSummary(string) router.RouteInfo     { return i }
func (i stubRouteInfo) AddTags(...string) router.RouteInfo     { return i }

func (i stubRouteInfo) AddParameter(name, in string, required bool, schema map[string]any) router.RouteInfo {
	return i
}

func (i stubRouteInfo) SetRequestBody(desc string, required bool, content map[string]any) router.RouteInfo {
	return i
}

func (i stubRouteInfo) AddResponse(code int, desc string, content map[string]any) router.RouteInfo {
	return i
}

func newTestUser(password string) *blog.User {
	hash, err := blog.HashPassword(password)
	if err != nil {
		panic(err)
	}

	return &blog.User{
		ID:           uuid.New(),
		Username:     "pepe",
		Email:        "pepe.rone@example.com",
		PasswordHash: hash,
	}
}
