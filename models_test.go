package blog_test

import (
	"testing"

	blog "github.com/goliatone/go-blog"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserEnsureProfilePicture(t *testing.T) {
	u := &blog.User{}
	u.EnsureProfilePicture()
	assert.Equal(t, blog.DefaultProfilePicture, u.ProfilePicture)

	u = &blog.User{ProfilePicture: "ab12cd34.png"}
	u.EnsureProfilePicture()
	assert.Equal(t, "ab12cd34.png", u.ProfilePicture)
}

func TestPostOwnedBy(t *testing.T) {
	owner := newTestUser("secret")
	stranger := newTestUser("secret")
	stranger.ID = uuid.New()

	post := &blog.Post{ID: uuid.New(), UserID: owner.ID}

	assert.True(t, post.OwnedBy(blog.NewIdentityFromUser(owner)))
	assert.False(t, post.OwnedBy(blog.NewIdentityFromUser(stranger)))
	assert.False(t, post.OwnedBy(nil))

	var nilPost *blog.Post
	assert.False(t, nilPost.OwnedBy(blog.NewIdentityFromUser(owner)))
}

func TestNewIdentityFromUser(t *testing.T) {
	assert.Nil(t, blog.NewIdentityFromUser(nil))

	user := newTestUser("secret")
	identity := blog.NewIdentityFromUser(user)

	assert.Equal(t, user.ID.String(), identity.ID())
	assert.Equal(t, user.Username, identity.Username())
	assert.Equal(t, user.Email, identity.Email())
}
