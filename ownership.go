package blog

import (
	goerrors "github.com/goliatone/go-errors"
)

// AuthorizeMutation checks that the acting identity is the post's recorded
// owner. It runs in addition to the authentication guard: a valid session
// alone never grants mutation of another identity's content.
func AuthorizeMutation(actor Identity, post *Post) error {
	if actor == nil || actor.ID() == "" {
		return ErrUnableToFindSession
	}

	if post == nil {
		return goerrors.New("post not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound)
	}

	if !post.OwnedBy(actor) {
		return goerrors.Wrap(ErrNotResourceOwner, goerrors.CategoryAuthz, "actor is not the resource owner").
			WithTextCode(TextCodeNotOwner).
			WithCode(goerrors.CodeForbidden).
			WithMetadata(map[string]any{
				"actor_id": actor.ID(),
				"owner_id": post.UserID.String(),
				"post_id":  post.ID.String(),
			})
	}

	return nil
}
