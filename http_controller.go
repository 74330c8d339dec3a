package blog

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// GetRouterSession pulls the validated claims the JWT middleware stored in
// the router locals and projects them into a SessionObject.
func GetRouterSession(c router.Context, key string) (*SessionObject, error) {
	cookie := c.Locals(key)
	if cookie == nil {
		return nil, ErrUnableToFindSession
	}

	claims, ok := cookie.(AuthClaims)
	if claims == nil || !ok {
		return nil, ErrUnableToDecodeSession
	}

	return sessionFromAuthClaims(claims)
}

func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	// The optional guard resolves a session when the request carries one, so
	// the auth pages can bounce already logged in users back home.
	optional := controller.Auther.OptionalRoute(controller.Cfg)

	app.
		Get(controller.Routes.Login,
			controller.LoginShow,
			optional,
		).
		SetName("sign-in.get")

	app.
		Post(
			controller.Routes.Login,
			controller.LoginPost,
			optional,
		).
		SetName("sign-in.post")

	app.Get(controller.Routes.Logout, controller.LogOut, optional).SetName("sign-out.get")

	app.Get(controller.Routes.Register, controller.RegistrationShow, optional).
		SetName("register.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate, optional).
		SetName("register.post")

	app.Get(controller.Routes.PasswordReset, controller.PasswordResetGet, optional).
		SetName("pwd-reset.get")
	app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost, optional).
		SetName("pwd-reset.post")

	app.Get(fmt.Sprintf("%s/:token", controller.Routes.PasswordReset), controller.PasswordResetForm, optional).
		SetName("pwd-reset-do.get")
	app.Post(fmt.Sprintf("%s/:token", controller.Routes.PasswordReset), controller.PasswordResetExecute, optional).
		SetName("pwd-reset-do.post")
}

type AuthControllerRoutes struct {
	Login         string
	Logout        string
	Register      string
	PasswordReset string
}

type AuthControllerViews struct {
	Login         string
	Register      string
	PasswordReset string
	ResetForm     string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Routes       *AuthControllerRoutes
	Views        *AuthControllerViews
	Auther       HTTPAuthenticator
	Cfg          Config
	Tokens       *ResetTokenService
	Mailer       Mailer
	ResetBaseURL string
	ContextKey   string
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithAuthRepository(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithAuther(auther HTTPAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithAuthConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Cfg = cfg
		if cfg != nil && cfg.GetContextKey() != "" {
			c.ContextKey = cfg.GetContextKey()
		}
		return c
	}
}

func WithResetTokens(tokens *ResetTokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Tokens = tokens
		return c
	}
}

func WithMailer(mailer Mailer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Mailer = mailer
		return c
	}
}

// WithResetBaseURL sets the absolute URL password reset links are built
// from, e.g. https://example.com/password-reset
func WithResetBaseURL(url string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ResetBaseURL = url
		return c
	}
}

func WithAuthContextKey(key string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ContextKey = key
		return c
	}
}

func WithAuthDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		ContextKey:   "user",
		Routes: &AuthControllerRoutes{
			Login:         "/login",
			Logout:        "/logout",
			Register:      "/register",
			PasswordReset: "/password-reset",
		},
		Views: &AuthControllerViews{
			Login:         "login",
			Register:      "register",
			PasswordReset: "password_reset",
			ResetForm:     "password_reset_form",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	if c.Cfg == nil {
		panic("Missing Config in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing ResetTokenService in auth controller...")
	}

	return c
}

// isAuthenticated reports whether the request carries a valid session.
// Auth pages bounce logged in users back home.
func (a *AuthController) isAuthenticated(ctx router.Context) bool {
	session, err := GetRouterSession(ctx, a.ContextKey)
	return err == nil && session != nil && session.UserID != ""
}

func (a *AuthController) LoginShow(ctx router.Context) error {
	if a.isAuthenticated(ctx) {
		return ctx.Redirect("/", router.StatusSeeOther)
	}

	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// GetExtendedSession reports whether the user asked to be remembered
func (r LoginRequest) GetExtendedSession() bool {
	return r.RememberMe
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	if a.isAuthenticated(ctx) {
		return ctx.Redirect("/", router.StatusSeeOther)
	}

	payload := new(LoginRequest)
	errs := map[string]string{}

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if err := a.Auther.Login(ctx, payload); err != nil {
		errs["authentication"] = "Login unsuccessful. Please check email and password"
		return ctx.Render(a.Views.Login, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	redirect := a.Auther.GetRedirect(ctx, "/")

	return ctx.Redirect(redirect, router.StatusSeeOther)
}

func (a *AuthController) LogOut(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.Redirect("/", router.StatusSeeOther)
}

func (a *AuthController) RegistrationShow(ctx router.Context) error {
	if a.isAuthenticated(ctx) {
		return ctx.Redirect("/", router.StatusSeeOther)
	}

	return ctx.Render(a.Views.Register, router.ViewContext{
		"errors": map[string]string{},
		"record": RegisterUserMessage{},
	})
}

// RegistrationCreatePayload is the form payload
type RegistrationCreatePayload struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(UsernameMinLen, UsernameMaxLen)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(8, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	if a.isAuthenticated(ctx) {
		return ctx.Redirect("/", router.StatusSeeOther)
	}

	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		errs := map[string]string{}
		errs["form"] = "Failed to parse form"
		a.Logger.Error("register user parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(router.StatusBadRequest).Render(a.Views.Register, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		errs := FormatValidationErrorToMap(err)
		a.Logger.Error("register user validate payload: ", "error", err)

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Register, router.ViewContext{
			"record":     payload,
			"validation": errs,
		})
	}

	req := RegisterUserMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register user error: ", "error", err)

		errs := map[string]string{}
		if IsDuplicateError(err) {
			errs["duplicate"] = duplicateMessage(err)
		} else {
			errs["registration"] = "Could not create the account"
		}

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error creating account",
		}).Render(a.Views.Register, router.ViewContext{
			"record": payload,
			"errors": errs,
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Your account has been created! You are now able to log in",
	}).Redirect(a.Routes.Login, router.StatusSeeOther)
}

func duplicateMessage(err error) string {
	switch {
	case IsDuplicateUsernameError(err):
		return "That username is taken. Please choose a different one"
	case IsDuplicateEmailError(err):
		return "That email is taken. Please choose a different one"
	default:
		return "That account already exists"
	}
}

func (a *AuthController) PasswordResetGet(ctx router.Context) error {
	if a.isAuthenticated(ctx) {
		return ctx.Redirect("/", router.StatusSeeOther)
	}

	return ctx.Render(a.Views.PasswordReset, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// PasswordResetRequestPayload holds values for password reset
type PasswordResetRequestPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r PasswordResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

func (a *AuthController) PasswordResetPost(ctx router.Context) error {
	if a.isAuthenticated(ctx) {
		return ctx.Redirect("/", router.StatusSeeOther)
	}

	payload := new(PasswordResetRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("password reset parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(router.StatusBadRequest).Render(a.Views.PasswordReset, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("password reset validate payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.PasswordReset, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	var res *InitializePasswordResetResponse

	req := InitializePasswordResetMessage{
		Email:    payload.Email,
		ResetURL: a.ResetBaseURL,
		OnResponse: func(resp *InitializePasswordResetResponse) {
			res = resp
		},
	}

	initPwdReset := NewInitializePasswordResetHandler(a.Repo, a.Tokens, a.Mailer)

	if err := initPwdReset.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("password reset initialize error: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error requesting password reset",
		}).Render(a.Views.PasswordReset, router.ViewContext{
			"record": payload,
			"errors": map[string]string{"reset": err.Error()},
		})
	}

	if a.Debug && res != nil {
		a.Logger.Debug("password reset issued", "email", res.Email)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "An email has been sent with instructions to reset your password",
	}).Redirect(a.Routes.Login, router.StatusSeeOther)
}

func (a *AuthController) PasswordResetForm(ctx router.Context) error {
	if a.isAuthenticated(ctx) {
		return ctx.Redirect("/", router.StatusSeeOther)
	}

	token := ctx.Param("token")

	if userID := a.Tokens.Verify(token); userID == "" {
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "That is an invalid or expired token",
		}).Redirect(a.Routes.PasswordReset, router.StatusSeeOther)
	}

	return ctx.Render(a.Views.ResetForm, router.ViewContext{
		"errors": map[string]string{},
		"token":  token,
	})
}

// PasswordResetVerifyPayload holds values for password reset
type PasswordResetVerifyPayload struct {
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r PasswordResetVerifyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 100),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(8, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) PasswordResetExecute(ctx router.Context) error {
	if a.isAuthenticated(ctx) {
		return ctx.Redirect("/", router.StatusSeeOther)
	}

	token := ctx.Param("token")
	payload := new(PasswordResetVerifyPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("password reset parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(router.StatusBadRequest).Render(a.Views.ResetForm, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"token":  token,
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("password reset validate payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.ResetForm, router.ViewContext{
			"validation": FormatValidationErrorToMap(err),
			"token":      token,
		})
	}

	input := FinalizePasswordResetMessage{
		Token:    token,
		Password: payload.Password,
	}

	finalizePwdReset := NewFinalizePasswordResetHandler(a.Repo, a.Tokens)

	if err := finalizePwdReset.Execute(ctx.Context(), input); err != nil {
		if IsTokenExpiredError(err) || IsMalformedError(err) {
			return flash.WithError(ctx, router.ViewContext{
				"system_message": "That is an invalid or expired token",
			}).Redirect(a.Routes.PasswordReset, router.StatusSeeOther)
		}

		return ctx.Render(a.Views.ResetForm, router.ViewContext{
			"errors": map[string]string{"validation": err.Error()},
			"token":  token,
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Your password has been updated! You are now able to log in",
	}).Redirect(a.Routes.Login, router.StatusSeeOther)
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
