package main

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/config"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

//go:embed views public
var embeddedFS embed.FS

type App struct {
	config   *gconfig.Container[*config.BaseConfig]
	logger   *glog.BaseLogger
	repo     blog.RepositoryManager
	auth     blog.Authenticator
	auther   blog.HTTPAuthenticator
	tokens   *blog.ResetTokenService
	mailer   blog.Mailer
	pictures *blog.PictureStore
	srv      router.Server[*fiber.App]
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("blog"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithAuth(ctx, app); err != nil {
		panic(err)
	}

	if err := WithRoutes(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.Config().GetApp().GetAddress())

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	pcfg := app.Config().GetPersistence()

	db, err := sql.Open(sqliteshim.ShimName, pcfg.GetDSN())
	if err != nil {
		return err
	}

	persistence.RegisterModel((*blog.User)(nil))
	persistence.RegisterModel((*blog.Post)(nil))

	client, err := persistence.New(pcfg, db, sqlitedialect.New())
	if err != nil {
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(blog.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.repo = blog.NewRepositoryManager(client.DB())

	return app.repo.Validate()
}

func WithHTTPServer(ctx context.Context, app *App) error {
	viewsFS, err := fs.Sub(embeddedFS, app.Config().GetApp().GetViewsDir())
	if err != nil {
		return err
	}

	engine := django.NewPathForwardingFileSystem(http.FS(viewsFS), "/", ".html")
	for name, fn := range blog.TemplateHelpers() {
		engine.AddFunc(name, fn)
	}

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))
	srv.Router().Use(mflash.New(mflash.ConfigDefault))

	publicFS, err := fs.Sub(embeddedFS, "public")
	if err != nil {
		return err
	}
	srv.Router().Static("/static", ".", router.Static{
		FS:   publicFS,
		Root: ".",
	})

	// Uploaded profile pictures live on disk next to the process so they
	// survive restarts.
	uploads := app.Config().GetUploads().GetProfilePicturesDir()
	srv.Router().Static("/static/profile_pics", uploads)

	app.srv = srv

	return nil
}

type userTrackerAdapter struct {
	users blog.Users
}

func (a userTrackerAdapter) GetByIdentifier(ctx context.Context, identifier string) (*blog.User, error) {
	return a.users.GetByIdentifier(ctx, identifier)
}

func (a userTrackerAdapter) TrackAttemptedLogin(ctx context.Context, user *blog.User) error {
	return a.users.TrackAttemptedLogin(ctx, user)
}

func (a userTrackerAdapter) TrackSuccessfulLogin(ctx context.Context, user *blog.User) error {
	return a.users.TrackSuccessfulLogin(ctx, user)
}

func WithAuth(ctx context.Context, app *App) error {
	acfg := app.Config().GetAuth()

	userProvider := blog.NewUserProvider(userTrackerAdapter{users: app.repo.Users()})
	userProvider.WithLogger(app.GetLogger("auth:prv"))

	authenticator := blog.NewAuthenticator(userProvider, acfg)
	authenticator.WithLogger(app.GetLogger("auth"))
	app.auth = authenticator

	auther, err := blog.NewHTTPAuthenticator(authenticator, acfg)
	if err != nil {
		return err
	}
	auther.Logger = app.GetLogger("auth:http")
	app.auther = auther

	app.tokens = blog.NewResetTokenService(
		[]byte(acfg.GetSigningKey()),
		acfg.GetResetTokenExpiration(),
		acfg.GetIssuer(),
		app.GetLogger("auth:reset"),
	)

	app.mailer = blog.NewSMTPMailer(app.Config().GetSMTP())

	pictures, err := blog.NewPictureStore(app.Config().GetUploads().GetProfilePicturesDir())
	if err != nil {
		return err
	}
	app.pictures = pictures

	return nil
}

func WithRoutes(ctx context.Context, app *App) error {
	acfg := app.Config().GetAuth()
	appCfg := app.Config().GetApp()

	blog.RegisterAuthRoutes(app.srv.Router().Group("/"),
		blog.WithAuthLogger(app.GetLogger("auth:ctrl")),
		blog.WithAuthRepository(app.repo),
		blog.WithAuther(app.auther),
		blog.WithAuthConfig(acfg),
		blog.WithResetTokens(app.tokens),
		blog.WithMailer(app.mailer),
		blog.WithResetBaseURL(appCfg.GetBaseURL()+"/password-reset"),
		blog.WithAuthDebug(appCfg.GetDebug()),
	)

	blog.RegisterBlogRoutes(app.srv.Router().Group("/"),
		blog.WithPostsLogger(app.GetLogger("blog:ctrl")),
		blog.WithPostsRepository(app.repo),
		blog.WithPostsAuther(app.auther),
		blog.WithPostsConfig(acfg),
		blog.WithPictureStore(app.pictures),
		blog.WithPerPage(appCfg.GetPerPage()),
	)

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
