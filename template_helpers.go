package blog

import (
	"fmt"

	"github.com/goliatone/go-router"
)

var TemplateUserKey = "current_user"

// TemplateHelpers returns helper functions templates can call, meant to be
// registered as global template functions on the view engine.
//
// In templates:
//
//	{% if is_authenticated(current_user) %}
//	{{ picture_url(current_user) }}
func TemplateHelpers() map[string]any {
	return map[string]any{
		"is_authenticated": isAuthenticated,
		"picture_url":      pictureURL,
	}
}

// MergeTemplateData folds the session user stored by the JWT middleware into
// the view context so templates can always reference current_user.
func MergeTemplateData(ctx router.Context, data router.ViewContext) router.ViewContext {
	if data == nil {
		data = router.ViewContext{}
	}

	if _, ok := data[TemplateUserKey]; !ok {
		if user, found := GetTemplateUser(ctx, TemplateUserKey); found {
			data[TemplateUserKey] = user
		}
	}

	return data
}

// GetTemplateUser is a convenience function to extract user data from router
// context for template usage. It returns the user object and a boolean
// indicating if it was found.
func GetTemplateUser(ctx router.Context, userKey string) (any, bool) {
	if userKey == "" {
		userKey = TemplateUserKey
	}

	user := ctx.Locals(userKey)
	return user, user != nil
}

// isAuthenticated checks if the provided user object is not nil
func isAuthenticated(user any) bool {
	if user == nil {
		return false
	}

	switch u := user.(type) {
	case *User:
		return u != nil
	case User:
		return true
	case AuthClaims:
		return u != nil && u.UserID() != ""
	case map[string]any:
		// Handle JSON-converted user objects
		return len(u) > 0
	default:
		return false
	}
}

// pictureURL resolves the static asset path for a user's profile picture
func pictureURL(user any) string {
	picture := DefaultProfilePicture

	switch u := user.(type) {
	case *User:
		if u != nil && u.ProfilePicture != "" {
			picture = u.ProfilePicture
		}
	case User:
		if u.ProfilePicture != "" {
			picture = u.ProfilePicture
		}
	case map[string]any:
		if p, ok := u["profile_picture"].(string); ok && p != "" {
			picture = p
		}
	}

	return fmt.Sprintf("/static/profile_pics/%s", picture)
}
