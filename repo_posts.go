package blog

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Posts interface {
	repository.Repository[*Post]

	Publish(ctx context.Context, post *Post) (*Post, error)
	PublishTx(ctx context.Context, tx bun.IDB, post *Post) (*Post, error)

	ListPage(ctx context.Context, page, perPage int) (*Page[*Post], error)
	ListByAuthorPage(ctx context.Context, authorID uuid.UUID, page, perPage int) (*Page[*Post], error)
}

type posts struct {
	repository.Repository[*Post]
	db *bun.DB
}

var (
	_ Posts                        = (*posts)(nil)
	_ repository.Repository[*Post] = (*posts)(nil)
)

func NewPostsRepository(db *bun.DB) Posts {
	repo := repository.NewRepository[*Post](db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &posts{
		Repository: repo,
		db:         db,
	}
}

// Publish persists a new post. The owner reference must already be set and
// the creation timestamp is stamped here, server clock, UTC.
func (a *posts) Publish(ctx context.Context, post *Post) (*Post, error) {
	return a.PublishTx(ctx, a.db, post)
}

func (a *posts) PublishTx(ctx context.Context, tx bun.IDB, post *Post) (*Post, error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}

	if post.CreatedAt == nil {
		now := time.Now().UTC()
		post.CreatedAt = &now
	}

	return a.Repository.CreateTx(ctx, tx, post)
}

// ListPage returns every post newest first, windowed by page/perPage
func (a *posts) ListPage(ctx context.Context, page, perPage int) (*Page[*Post], error) {
	return a.listPage(ctx, page, perPage, nil)
}

// ListByAuthorPage is ListPage scoped to one owner
func (a *posts) ListByAuthorPage(ctx context.Context, authorID uuid.UUID, page, perPage int) (*Page[*Post], error) {
	return a.listPage(ctx, page, perPage, &authorID)
}

func (a *posts) listPage(ctx context.Context, page, perPage int, authorID *uuid.UUID) (*Page[*Post], error) {
	page, perPage = NormalizePageWindow(page, perPage)

	var records []*Post
	q := a.db.NewSelect().
		Model(&records).
		Relation("Author").
		OrderExpr("?TableAlias.created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage)

	if authorID != nil {
		q = q.Where("?TableAlias.user_id = ?", *authorID)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, err
	}

	return NewPage(records, page, perPage, total), nil
}
