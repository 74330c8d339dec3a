package blog

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// RegisterBlogRoutes mounts the public pages and the session guarded post
// and account routes.
func RegisterBlogRoutes[T any](app router.Router[T], opts ...PostsControllerOption) {

	controller := NewPostsController(opts...)

	protected := controller.Auther.ProtectedRoute(
		controller.Cfg,
		controller.Auther.MakeClientRouteAuthErrorHandler(false),
	)
	optional := controller.Auther.OptionalRoute(controller.Cfg)

	app.Get("/", controller.Home, optional).SetName("home.get")
	app.Get("/home", controller.Home, optional).SetName("home-alias.get")
	app.Get("/about", controller.About, optional).SetName("about.get")

	app.Get("/post/new", controller.PostNew, protected).SetName("post-new.get")
	app.Post("/post/new", controller.PostCreate, protected).SetName("post-new.post")

	app.Get("/post/:id", controller.PostShow, optional).SetName("post.get")
	app.Get("/post/:id/update", controller.PostEdit, protected).SetName("post-update.get")
	app.Post("/post/:id/update", controller.PostUpdate, protected).SetName("post-update.post")
	app.Post("/post/:id/delete", controller.PostDelete, protected).SetName("post-delete.post")

	app.Get("/user/:username", controller.UserPosts, optional).SetName("user-posts.get")

	app.Get("/account", controller.AccountShow, protected).SetName("account.get")
	app.Post("/account", controller.AccountUpdate, protected).SetName("account.post")
}

type PostsControllerViews struct {
	Home     string
	About    string
	Post     string
	PostForm string
	UserPage string
	Account  string
	NotFound string
}

type PostsController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Auther       HTTPAuthenticator
	Cfg          Config
	Pictures     *PictureStore
	Views        *PostsControllerViews
	ContextKey   string
	PerPage      int
	ErrorHandler router.ErrorHandler
}

type PostsControllerOption func(*PostsController) *PostsController

func WithPostsLogger(logger Logger) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithPostsRepository(repo RepositoryManager) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.Repo = repo
		return c
	}
}

func WithPostsAuther(auther HTTPAuthenticator) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.Auther = auther
		return c
	}
}

func WithPostsConfig(cfg Config) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.Cfg = cfg
		if cfg != nil && cfg.GetContextKey() != "" {
			c.ContextKey = cfg.GetContextKey()
		}
		return c
	}
}

func WithPictureStore(pictures *PictureStore) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.Pictures = pictures
		return c
	}
}

func WithPerPage(perPage int) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		if perPage > 0 {
			c.PerPage = perPage
		}
		return c
	}
}

func NewPostsController(opts ...PostsControllerOption) *PostsController {
	c := &PostsController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		ContextKey:   "user",
		PerPage:      DefaultPerPage,
		Views: &PostsControllerViews{
			Home:     "home",
			About:    "about",
			Post:     "post",
			PostForm: "create_post",
			UserPage: "user_posts",
			Account:  "account",
			NotFound: "errors/404",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in posts controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in posts controller...")
	}

	if c.Cfg == nil {
		panic("Missing Config in posts controller...")
	}

	return c
}

func (p *PostsController) render(ctx router.Context, name string, data router.ViewContext) error {
	return ctx.Render(name, MergeTemplateData(ctx, data))
}

// actor resolves the acting user's identity from the session claims the
// guard middleware stored in locals.
func (p *PostsController) actor(ctx router.Context) (Identity, error) {
	session, err := GetRouterSession(ctx, p.ContextKey)
	if err != nil {
		return nil, err
	}

	user, err := p.Repo.Users().GetByID(ctx.Context(), session.GetUserID())
	if err != nil {
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}

func (p *PostsController) Home(ctx router.Context) error {
	page := ctx.QueryInt("page", 1)

	posts, err := p.Repo.Posts().ListPage(ctx.Context(), page, p.PerPage)
	if err != nil {
		p.Logger.Error("home list posts error", "error", err)
		return p.ErrorHandler(ctx, err)
	}

	return p.render(ctx, p.Views.Home, router.ViewContext{
		"posts":      posts.Items,
		"pagination": posts,
	})
}

func (p *PostsController) About(ctx router.Context) error {
	return p.render(ctx, p.Views.About, router.ViewContext{
		"title": "About",
	})
}

func (p *PostsController) PostShow(ctx router.Context) error {
	id := ctx.Param("id")

	post, err := p.Repo.Posts().GetByID(ctx.Context(), id)
	if err != nil {
		return ctx.Status(http.StatusNotFound).Render(p.Views.NotFound, router.ViewContext{
			"message": "That post does not exist",
		})
	}

	return p.render(ctx, p.Views.Post, router.ViewContext{
		"title": post.Title,
		"post":  post,
	})
}

// PostPayload is the shared create and update form payload
type PostPayload struct {
	Title   string `form:"title" json:"title"`
	Content string `form:"content" json:"content"`
}

// Validate will run validation rules
func (r PostPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, PostTitleMaxLen)),
		validation.Field(&r.Content, validation.Required),
	)
}

func (p *PostsController) PostNew(ctx router.Context) error {
	return p.render(ctx, p.Views.PostForm, router.ViewContext{
		"title":  "New Post",
		"legend": "New Post",
		"record": PostPayload{},
		"errors": map[string]string{},
	})
}

func (p *PostsController) PostCreate(ctx router.Context) error {
	payload := new(PostPayload)

	if err := ctx.Bind(payload); err != nil {
		p.Logger.Error("create post parse payload", "error", err)
		return p.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return p.render(ctx, p.Views.PostForm, router.ViewContext{
			"title":      "New Post",
			"legend":     "New Post",
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	actor, err := p.actor(ctx)
	if err != nil {
		return p.ErrorHandler(ctx, err)
	}

	var created *Post
	msg := CreatePostMessage{
		Title:   payload.Title,
		Content: payload.Content,
		Author:  actor,
		OnResponse: func(post *Post) {
			created = post
		},
	}

	if err := NewCreatePostHandler(p.Repo).Execute(ctx.Context(), msg); err != nil {
		p.Logger.Error("create post error", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error creating post",
		}).Render(p.Views.PostForm, router.ViewContext{
			"record": payload,
		})
	}

	redirect := "/"
	if created != nil {
		redirect = "/post/" + created.ID.String()
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Your post has been created!",
	}).Redirect(redirect, router.StatusSeeOther)
}

func (p *PostsController) PostEdit(ctx router.Context) error {
	id := ctx.Param("id")

	post, err := p.Repo.Posts().GetByID(ctx.Context(), id)
	if err != nil {
		return ctx.Status(http.StatusNotFound).Render(p.Views.NotFound, router.ViewContext{
			"message": "That post does not exist",
		})
	}

	actor, err := p.actor(ctx)
	if err != nil {
		return p.ErrorHandler(ctx, err)
	}

	if err := AuthorizeMutation(actor, post); err != nil {
		return ctx.Status(http.StatusForbidden).Render("errors/403", router.ViewContext{
			"message": "You can only edit your own posts",
		})
	}

	return p.render(ctx, p.Views.PostForm, router.ViewContext{
		"title":  "Update Post",
		"legend": "Update Post",
		"record": PostPayload{Title: post.Title, Content: post.Content},
		"post":   post,
		"errors": map[string]string{},
	})
}

func (p *PostsController) PostUpdate(ctx router.Context) error {
	id := ctx.Param("id")
	payload := new(PostPayload)

	if err := ctx.Bind(payload); err != nil {
		p.Logger.Error("update post parse payload", "error", err)
		return p.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return p.render(ctx, p.Views.PostForm, router.ViewContext{
			"title":      "Update Post",
			"legend":     "Update Post",
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	actor, err := p.actor(ctx)
	if err != nil {
		return p.ErrorHandler(ctx, err)
	}

	msg := UpdatePostMessage{
		PostID:  id,
		Title:   payload.Title,
		Content: payload.Content,
		Actor:   actor,
	}

	if err := NewUpdatePostHandler(p.Repo).Execute(ctx.Context(), msg); err != nil {
		if IsNotOwnerError(err) {
			return ctx.Status(http.StatusForbidden).Render("errors/403", router.ViewContext{
				"message": "You can only edit your own posts",
			})
		}

		p.Logger.Error("update post error", "error", err)
		return p.ErrorHandler(ctx, err)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Your post has been updated!",
	}).Redirect("/post/"+id, router.StatusSeeOther)
}

func (p *PostsController) PostDelete(ctx router.Context) error {
	id := ctx.Param("id")

	actor, err := p.actor(ctx)
	if err != nil {
		return p.ErrorHandler(ctx, err)
	}

	msg := DeletePostMessage{
		PostID: id,
		Actor:  actor,
	}

	if err := NewDeletePostHandler(p.Repo).Execute(ctx.Context(), msg); err != nil {
		if IsNotOwnerError(err) {
			return ctx.Status(http.StatusForbidden).Render("errors/403", router.ViewContext{
				"message": "You can only delete your own posts",
			})
		}

		p.Logger.Error("delete post error", "error", err)
		return p.ErrorHandler(ctx, err)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Your post has been deleted!",
	}).Redirect("/", router.StatusSeeOther)
}

func (p *PostsController) UserPosts(ctx router.Context) error {
	username := ctx.Param("username")
	page := ctx.QueryInt("page", 1)

	user, err := p.Repo.Users().GetByUsername(ctx.Context(), username)
	if err != nil {
		return ctx.Status(http.StatusNotFound).Render(p.Views.NotFound, router.ViewContext{
			"message": "That user does not exist",
		})
	}

	posts, err := p.Repo.Posts().ListByAuthorPage(ctx.Context(), user.ID, page, p.PerPage)
	if err != nil {
		p.Logger.Error("user posts list error", "error", err)
		return p.ErrorHandler(ctx, err)
	}

	return p.render(ctx, p.Views.UserPage, router.ViewContext{
		"author":     user,
		"posts":      posts.Items,
		"pagination": posts,
	})
}

// AccountPayload is the profile update form
type AccountPayload struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r AccountPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(UsernameMinLen, UsernameMaxLen)),
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (p *PostsController) AccountShow(ctx router.Context) error {
	actor, err := p.actor(ctx)
	if err != nil {
		return p.ErrorHandler(ctx, err)
	}

	user, err := p.Repo.Users().GetByID(ctx.Context(), actor.ID())
	if err != nil {
		return p.ErrorHandler(ctx, err)
	}

	return p.render(ctx, p.Views.Account, router.ViewContext{
		"title":  "Account",
		"record": user,
		"errors": map[string]string{},
	})
}

func (p *PostsController) AccountUpdate(ctx router.Context) error {
	payload := new(AccountPayload)

	if err := ctx.Bind(payload); err != nil {
		p.Logger.Error("account parse payload", "error", err)
		return p.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		actorUser, _ := p.currentUser(ctx)
		return p.render(ctx, p.Views.Account, router.ViewContext{
			"title":      "Account",
			"record":     actorUser,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	actor, err := p.actor(ctx)
	if err != nil {
		return p.ErrorHandler(ctx, err)
	}

	picture, pictureName, err := pictureFromMultipart(ctx, "picture")
	if err != nil {
		p.Logger.Warn("account picture parse error", "error", err)
	}

	msg := UpdateAccountMessage{
		Username:    payload.Username,
		Email:       payload.Email,
		Picture:     picture,
		PictureName: pictureName,
		Actor:       actor,
	}

	handler := NewUpdateAccountHandler(p.Repo, p.Pictures).WithLogger(p.Logger)
	if err := handler.Execute(ctx.Context(), msg); err != nil {
		errs := map[string]string{}
		if IsDuplicateError(err) {
			errs["duplicate"] = duplicateMessage(err)
		} else {
			errs["account"] = "Could not update the account"
		}

		actorUser, _ := p.currentUser(ctx)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error updating account",
		}).Render(p.Views.Account, router.ViewContext{
			"record": actorUser,
			"errors": errs,
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Your account has been updated!",
	}).Redirect("/account", router.StatusSeeOther)
}

func (p *PostsController) currentUser(ctx router.Context) (*User, error) {
	session, err := GetRouterSession(ctx, p.ContextKey)
	if err != nil {
		return nil, err
	}
	return p.Repo.Users().GetByID(ctx.Context(), session.GetUserID())
}

// pictureFromMultipart pulls the uploaded file out of a multipart form body.
// Returns a nil reader when the request carries no file, which callers treat
// as "keep the current picture".
func pictureFromMultipart(ctx router.Context, field string) (io.Reader, string, error) {
	contentType := ctx.Header("Content-Type")
	if contentType == "" {
		return nil, "", nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		return nil, "", nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		return nil, "", nil
	}

	reader := multipart.NewReader(bytes.NewReader(ctx.Body()), boundary)
	form, err := reader.ReadForm(10 << 20)
	if err != nil {
		return nil, "", err
	}
	// ReadForm can spool large parts to temp files, clean those up before
	// returning. The upload is buffered in memory so the reader stays valid.
	defer form.RemoveAll()

	files, ok := form.File[field]
	if !ok || len(files) == 0 {
		return nil, "", nil
	}

	file, err := files[0].Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	buf, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}

	return bytes.NewReader(buf), files[0].Filename, nil
}
