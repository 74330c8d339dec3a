package blog

import (
	"context"
	"io"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type UpdateAccountMessage struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Picture     io.Reader
	PictureName string
	Actor       Identity
	OnResponse  func(user *User)
}

func (e UpdateAccountMessage) Type() string { return "user.update_account" }

// UpdateAccountHandler changes username/email on the acting user's own
// record, re-running the uniqueness checks with the user's current values
// excluded, and optionally replaces the profile picture.
type UpdateAccountHandler struct {
	repo     RepositoryManager
	pictures *PictureStore
	logger   Logger
}

func NewUpdateAccountHandler(repo RepositoryManager, pictures *PictureStore) *UpdateAccountHandler {
	return &UpdateAccountHandler{
		repo:     repo,
		pictures: pictures,
		logger:   defLogger{},
	}
}

func (h *UpdateAccountHandler) WithLogger(logger Logger) *UpdateAccountHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *UpdateAccountHandler) Execute(ctx context.Context, event UpdateAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during account update")
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateAccountHandler) execute(ctx context.Context, event UpdateAccountMessage) error {
	if event.Actor == nil || event.Actor.ID() == "" {
		return ErrUnableToFindSession
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var user *User

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := h.repo.Users().GetByID(ctx, event.Actor.ID())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrIdentityNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve user")
		}

		if event.Username != "" {
			existing.Username = event.Username
		}
		if event.Email != "" {
			existing.Email = event.Email
		}

		if event.Picture != nil {
			filename, err := h.pictures.Save(event.Picture, event.PictureName)
			if err != nil {
				return err
			}
			existing.ProfilePicture = filename
		}

		updated, err := h.repo.Users().UpdateAccountTx(ctx, tx, existing)
		if err != nil {
			if IsDuplicateError(err) {
				return err
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not update account")
		}

		user = updated
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account update transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}
