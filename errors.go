package blog

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCreds is the generic login failure code. We use the
	// same code for unknown emails and wrong passwords so responses do not
	// reveal which accounts exist.
	TextCodeInvalidCreds = "INVALID_CREDENTIALS"
	// TextCodeTokenExpired marks reset or session tokens past their window
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed marks tokens that fail signature or format checks
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeDuplicateUsername marks a username uniqueness conflict
	TextCodeDuplicateUsername = "DUPLICATE_USERNAME"
	// TextCodeDuplicateEmail marks an email uniqueness conflict
	TextCodeDuplicateEmail = "DUPLICATE_EMAIL"
	// TextCodeNotOwner marks a mutation attempted by a non owner
	TextCodeNotOwner = "NOT_RESOURCE_OWNER"
	// TextCodeDeliveryFailed marks an outbound mail delivery error
	TextCodeDeliveryFailed = "MAIL_DELIVERY_FAILED"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrMismatchedHashAndPassword is the single, deliberately vague failure
// for any bad login attempt
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrTooManyLoginAttempts fires when an account exceeds the allowed attempts
// inside the cooldown window
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryAuth).
	WithTextCode("TOO_MANY_ATTEMPTS").
	WithCode(goerrors.CodeUnauthorized)

// ErrDuplicateUsername is returned when registration or account update
// collides with an existing username
var ErrDuplicateUsername = goerrors.New("that username is taken", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateUsername).
	WithCode(goerrors.CodeConflict)

// ErrDuplicateEmail is returned when registration or account update
// collides with an existing email
var ErrDuplicateEmail = goerrors.New("that email is taken", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(goerrors.CodeConflict)

// ErrNotResourceOwner is the Forbidden error for mutations of content the
// actor does not own
var ErrNotResourceOwner = goerrors.New("actor is not the resource owner", goerrors.CategoryAuthz).
	WithTextCode(TextCodeNotOwner).
	WithCode(goerrors.CodeForbidden)

// ErrTokenExpired is returned when a session or reset token is valid but old
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers bad signatures and undecodable tokens
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrDeliveryFailed wraps mail transport failures. Callers log and re-raise
// so a failed reset email surfaces as a server error.
var ErrDeliveryFailed = goerrors.New("unable to deliver email", goerrors.CategoryInternal).
	WithTextCode(TextCodeDeliveryFailed).
	WithCode(goerrors.CodeInternal)

// ErrUnableToFindSession is the error when our request has no cookie
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT from session cookie
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = goerrors.New("unable to map claims", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToParseData parse error
var ErrUnableToParseData = goerrors.New("unable to parse data", goerrors.CategoryInternal)

// IsDuplicateError reports whether err is one of our uniqueness conflicts
func IsDuplicateError(err error) bool {
	return goerrors.Is(err, ErrDuplicateUsername) || goerrors.Is(err, ErrDuplicateEmail)
}

// IsDuplicateUsernameError reports a username uniqueness conflict
func IsDuplicateUsernameError(err error) bool {
	return goerrors.Is(err, ErrDuplicateUsername)
}

// IsDuplicateEmailError reports an email uniqueness conflict
func IsDuplicateEmailError(err error) bool {
	return goerrors.Is(err, ErrDuplicateEmail)
}

// IsNotOwnerError reports an ownership authorization failure
func IsNotOwnerError(err error) bool {
	return goerrors.Is(err, ErrNotResourceOwner)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
