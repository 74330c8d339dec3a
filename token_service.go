package blog

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService signs and validates session tokens
type TokenService interface {
	Generate(identity Identity) (string, error)
	GenerateWithDuration(identity Identity, lifetime time.Duration) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	logger          Logger
}

// NewTokenService creates a new TokenService instance. Expiration is in
// hours, matching the session cookie lifetime.
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		logger:          logger,
	}
}

// Generate creates a session JWT for an identity using the configured
// expiration
func (ts *TokenServiceImpl) Generate(identity Identity) (string, error) {
	return ts.GenerateWithDuration(identity, 0)
}

// GenerateWithDuration creates a session JWT that expires after lifetime.
// Remember me logins pass the extended cookie duration here so the token
// inside the cookie stays valid for as long as the cookie does. A non
// positive lifetime falls back to the configured expiration.
func (ts *TokenServiceImpl) GenerateWithDuration(identity Identity, lifetime time.Duration) (string, error) {
	if identity == nil {
		return "", errors.New("identity must not be nil", errors.CategoryBadInput)
	}

	if lifetime <= 0 {
		lifetime = time.Duration(ts.tokenExpiration) * time.Hour
	}

	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
		UID:   identity.ID(),
		Uname: identity.Username(),
	}

	ensureTokenID(&claims.RegisteredClaims)

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrUnableToDecodeSession
}

// DefaultResetTokenExpiration is the reset token validity window in seconds
const DefaultResetTokenExpiration = 1800

// ResetTokenService issues and verifies password reset tokens. Tokens are
// self contained: the user id, issuance time, and expiry travel inside the
// signed payload, nothing is persisted.
type ResetTokenService struct {
	signingKey    []byte
	expirySeconds int
	issuer        string
	logger        Logger
}

// NewResetTokenService creates a reset token service. A non positive
// expirySeconds falls back to DefaultResetTokenExpiration.
func NewResetTokenService(signingKey []byte, expirySeconds int, issuer string, logger Logger) *ResetTokenService {
	if expirySeconds <= 0 {
		expirySeconds = DefaultResetTokenExpiration
	}
	if logger == nil {
		logger = defLogger{}
	}
	return &ResetTokenService{
		signingKey:    signingKey,
		expirySeconds: expirySeconds,
		issuer:        issuer,
		logger:        logger,
	}
}

// Issue creates a signed token bound to the given user id
func (ts *ResetTokenService) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id must not be empty", errors.CategoryBadInput)
	}

	now := time.Now()
	claims := &ResetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.expirySeconds) * time.Second)),
		},
		UID: userID,
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign reset token")
	}

	return signed, nil
}

// Verify resolves a token back to the bound user id. It fails closed: any
// signature mismatch, malformed payload, or elapsed expiry yields an empty
// id. Callers must not distinguish the causes to the end user.
func (ts *ResetTokenService) Verify(tokenString string) string {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &ResetClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		ts.logger.Debug("reset token rejected", "error", err)
		return ""
	}

	claims, ok := token.Claims.(*ResetClaims)
	if !ok || !token.Valid {
		return ""
	}

	return claims.UserID()
}

// ExpirySeconds exposes the configured window, mostly for email copy
func (ts *ResetTokenService) ExpirySeconds() int {
	return ts.expirySeconds
}
