package blog

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type CreatePostMessage struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Author     Identity
	OnResponse func(post *Post)
}

func (e CreatePostMessage) Type() string { return "post.create" }

type CreatePostHandler struct {
	repo RepositoryManager
}

func NewCreatePostHandler(repo RepositoryManager) *CreatePostHandler {
	return &CreatePostHandler{repo: repo}
}

func (h *CreatePostHandler) Execute(ctx context.Context, event CreatePostMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during post creation")
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreatePostHandler) execute(ctx context.Context, event CreatePostMessage) error {
	if event.Author == nil || event.Author.ID() == "" {
		return ErrUnableToFindSession
	}

	ownerID, err := uuid.Parse(event.Author.ID())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid author id")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	post := &Post{
		Title:   event.Title,
		Content: event.Content,
		UserID:  ownerID,
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := h.repo.Posts().PublishTx(ctx, tx, post)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create post")
		}
		post = created
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "post creation transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(post)
	}

	return nil
}

type UpdatePostMessage struct {
	PostID     string `json:"post_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Actor      Identity
	OnResponse func(post *Post)
}

func (e UpdatePostMessage) Type() string { return "post.update" }

// UpdatePostHandler mutates a post's title and content after the ownership
// check. The owner reference itself is immutable.
type UpdatePostHandler struct {
	repo RepositoryManager
}

func NewUpdatePostHandler(repo RepositoryManager) *UpdatePostHandler {
	return &UpdatePostHandler{repo: repo}
}

func (h *UpdatePostHandler) Execute(ctx context.Context, event UpdatePostMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during post update")
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdatePostHandler) execute(ctx context.Context, event UpdatePostMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var post *Post

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := h.repo.Posts().GetByID(ctx, event.PostID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return goerrors.New("post not found", goerrors.CategoryNotFound).
					WithCode(goerrors.CodeNotFound)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve post")
		}

		if err := AuthorizeMutation(event.Actor, existing); err != nil {
			return err
		}

		existing.Title = event.Title
		existing.Content = event.Content

		updated, err := h.repo.Posts().UpdateTx(ctx, tx, existing, repository.UpdateByID(existing.ID.String()))
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not update post")
		}

		post = updated
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "post update transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(post)
	}

	return nil
}

type DeletePostMessage struct {
	PostID string `json:"post_id"`
	Actor  Identity
}

func (e DeletePostMessage) Type() string { return "post.delete" }

// DeletePostHandler removes a post after the ownership check. A deleted
// post is no longer queryable.
type DeletePostHandler struct {
	repo RepositoryManager
}

func NewDeletePostHandler(repo RepositoryManager) *DeletePostHandler {
	return &DeletePostHandler{repo: repo}
}

func (h *DeletePostHandler) Execute(ctx context.Context, event DeletePostMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during post deletion")
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeletePostHandler) execute(ctx context.Context, event DeletePostMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := h.repo.Posts().GetByID(ctx, event.PostID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return goerrors.New("post not found", goerrors.CategoryNotFound).
					WithCode(goerrors.CodeNotFound)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve post")
		}

		if err := AuthorizeMutation(event.Actor, existing); err != nil {
			return err
		}

		if err := h.repo.Posts().DeleteTx(ctx, tx, existing); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not delete post")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "post deletion transaction failed")
	}

	return nil
}
