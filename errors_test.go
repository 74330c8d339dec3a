package blog_test

import (
	"errors"
	"fmt"
	"testing"

	blog "github.com/goliatone/go-blog"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "Duplicate username", err: blog.ErrDuplicateUsername, want: true},
		{name: "Duplicate email", err: blog.ErrDuplicateEmail, want: true},
		{name: "Wrapped duplicate", err: fmt.Errorf("saving: %w", blog.ErrDuplicateUsername), want: true},
		{name: "Unrelated error", err: errors.New("boom"), want: false},
		{name: "Nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, blog.IsDuplicateError(tt.err))
		})
	}
}

func TestDuplicatePredicatesDistinguishFields(t *testing.T) {
	assert.True(t, blog.IsDuplicateUsernameError(blog.ErrDuplicateUsername))
	assert.False(t, blog.IsDuplicateUsernameError(blog.ErrDuplicateEmail))

	assert.True(t, blog.IsDuplicateEmailError(blog.ErrDuplicateEmail))
	assert.False(t, blog.IsDuplicateEmailError(blog.ErrDuplicateUsername))
}

func TestIsTokenExpiredError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "Sentinel", err: blog.ErrTokenExpired, want: true},
		{name: "Message match", err: errors.New("token is expired by 5m"), want: true},
		{name: "Malformed is not expired", err: blog.ErrTokenMalformed, want: false},
		{name: "Nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, blog.IsTokenExpiredError(tt.err))
		})
	}
}

func TestIsMalformedError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "Sentinel", err: blog.ErrTokenMalformed, want: true},
		{name: "Message match", err: errors.New("token is malformed: bad segments"), want: true},
		{name: "Middleware message", err: errors.New("missing or malformed JWT"), want: true},
		{name: "Expired is not malformed", err: blog.ErrTokenExpired, want: false},
		{name: "Nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, blog.IsMalformedError(tt.err))
		})
	}
}

func TestIsNotOwnerError(t *testing.T) {
	assert.True(t, blog.IsNotOwnerError(blog.ErrNotResourceOwner))
	assert.True(t, blog.IsNotOwnerError(fmt.Errorf("updating: %w", blog.ErrNotResourceOwner)))
	assert.False(t, blog.IsNotOwnerError(blog.ErrTokenExpired))
	assert.False(t, blog.IsNotOwnerError(nil))
}
