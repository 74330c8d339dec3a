package config

import (
	"fmt"
	"time"
)

// BaseConfig is the application configuration root. Sections map onto the
// consumers that read them: Auth feeds the authenticator and middleware,
// Persistence feeds the bun client, SMTP feeds the mailer.
type BaseConfig struct {
	App         App         `json:"app" yaml:"app"`
	Auth        Auth        `json:"auth" yaml:"auth"`
	Persistence Persistence `json:"persistence" yaml:"persistence"`
	SMTP        SMTP        `json:"smtp" yaml:"smtp"`
	Uploads     Uploads     `json:"uploads" yaml:"uploads"`
}

func (a *BaseConfig) Validate() error {
	if a.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}
	if a.Persistence.DSN == "" {
		return fmt.Errorf("persistence.dsn is required")
	}
	return nil
}

func (a *BaseConfig) GetApp() *App {
	return &a.App
}

func (a *BaseConfig) GetAuth() *Auth {
	return &a.Auth
}

func (a *BaseConfig) GetPersistence() *Persistence {
	return &a.Persistence
}

func (a *BaseConfig) GetSMTP() *SMTP {
	return &a.SMTP
}

func (a *BaseConfig) GetUploads() *Uploads {
	return &a.Uploads
}

type App struct {
	Name     string `json:"name" yaml:"name"`
	Address  string `json:"address" yaml:"address"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	ViewsDir string `json:"views_dir" yaml:"views_dir"`
	Debug    bool   `json:"debug" yaml:"debug"`
	PerPage  int    `json:"per_page" yaml:"per_page"`
}

func (a App) GetName() string {
	if a.Name == "" {
		return "blog"
	}
	return a.Name
}

func (a App) GetAddress() string {
	if a.Address == "" {
		return ":8080"
	}
	return a.Address
}

// GetBaseURL is the absolute URL the app is reachable at, used to build
// password reset links.
func (a App) GetBaseURL() string {
	if a.BaseURL == "" {
		return "http://localhost:8080"
	}
	return a.BaseURL
}

func (a App) GetViewsDir() string {
	if a.ViewsDir == "" {
		return "views"
	}
	return a.ViewsDir
}

func (a App) GetDebug() bool {
	return a.Debug
}

func (a App) GetPerPage() int {
	if a.PerPage <= 0 {
		return 5
	}
	return a.PerPage
}

type Auth struct {
	SigningKey            string `json:"signing_key" yaml:"signing_key"`
	SigningMethod         string `json:"signing_method" yaml:"signing_method"`
	ContextKey            string `json:"context_key" yaml:"context_key"`
	TokenExpiration       int    `json:"token_expiration" yaml:"token_expiration"`
	ExtendedTokenDuration int    `json:"extended_token_duration" yaml:"extended_token_duration"`
	TokenLookup           string `json:"token_lookup" yaml:"token_lookup"`
	AuthScheme            string `json:"auth_scheme" yaml:"auth_scheme"`
	Issuer                string `json:"issuer" yaml:"issuer"`
	ResetTokenExpiration  int    `json:"reset_token_expiration" yaml:"reset_token_expiration"`
	RejectedRouteKey      string `json:"rejected_route_key" yaml:"rejected_route_key"`
	RejectedRouteDefault  string `json:"rejected_route_default" yaml:"rejected_route_default"`
}

func (a *Auth) GetSigningKey() string {
	return a.SigningKey
}

func (a *Auth) GetSigningMethod() string {
	if a.SigningMethod == "" {
		return "HS256"
	}
	return a.SigningMethod
}

func (a *Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "user"
	}
	return a.ContextKey
}

// GetTokenExpiration is the session token lifetime in hours
func (a *Auth) GetTokenExpiration() int {
	if a.TokenExpiration <= 0 {
		return 24
	}
	return a.TokenExpiration
}

// GetExtendedTokenDuration is the remember-me session lifetime in hours
func (a *Auth) GetExtendedTokenDuration() int {
	if a.ExtendedTokenDuration <= 0 {
		return 24 * 30
	}
	return a.ExtendedTokenDuration
}

func (a *Auth) GetTokenLookup() string {
	if a.TokenLookup == "" {
		return "cookie:" + a.GetContextKey()
	}
	return a.TokenLookup
}

func (a *Auth) GetAuthScheme() string {
	if a.AuthScheme == "" {
		return "Bearer"
	}
	return a.AuthScheme
}

func (a *Auth) GetIssuer() string {
	if a.Issuer == "" {
		return "blog"
	}
	return a.Issuer
}

// GetResetTokenExpiration is the password reset token lifetime in seconds
func (a *Auth) GetResetTokenExpiration() int {
	if a.ResetTokenExpiration <= 0 {
		return 1800
	}
	return a.ResetTokenExpiration
}

func (a *Auth) GetRejectedRouteKey() string {
	if a.RejectedRouteKey == "" {
		return "rejected_route"
	}
	return a.RejectedRouteKey
}

func (a *Auth) GetRejectedRouteDefault() string {
	if a.RejectedRouteDefault == "" {
		return "/"
	}
	return a.RejectedRouteDefault
}

type Persistence struct {
	Debug                 bool   `json:"debug" yaml:"debug"`
	DSN                   string `json:"dsn" yaml:"dsn"`
	Driver                string `json:"driver" yaml:"driver"`
	PingTimeoutExpression string `json:"ping_timeout" yaml:"ping_timeout"`
}

func (p *Persistence) GetDebug() bool {
	return p.Debug
}

func (p *Persistence) GetDSN() string {
	return p.DSN
}

func (p *Persistence) GetServer() string {
	return p.DSN
}

func (p *Persistence) GetOtelIdentifier() string {
	return ""
}

func (p *Persistence) GetDriver() string {
	if p.Driver == "" {
		return "sqlite"
	}
	return p.Driver
}

func (p *Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

type SMTP struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Sender   string `json:"sender" yaml:"sender"`
}

func (s *SMTP) GetMailHost() string {
	return s.Host
}

func (s *SMTP) GetMailPort() int {
	if s.Port <= 0 {
		return 587
	}
	return s.Port
}

func (s *SMTP) GetMailUsername() string {
	return s.Username
}

func (s *SMTP) GetMailPassword() string {
	return s.Password
}

func (s *SMTP) GetMailSender() string {
	if s.Sender == "" {
		return "noreply@demo.com"
	}
	return s.Sender
}

type Uploads struct {
	ProfilePicturesDir string `json:"profile_pictures_dir" yaml:"profile_pictures_dir"`
}

func (u *Uploads) GetProfilePicturesDir() string {
	if u.ProfilePicturesDir == "" {
		return "public/static/profile_pics"
	}
	return u.ProfilePicturesDir
}
