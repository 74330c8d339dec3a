package blog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultProfilePicture is the sentinel filename assigned to accounts that
// never uploaded a picture.
const DefaultProfilePicture = "default.jpg"

const (
	// UsernameMinLen is the shortest accepted username
	UsernameMinLen = 2
	// UsernameMaxLen is the longest accepted username
	UsernameMaxLen = 100
	// PostTitleMaxLen caps post titles
	PostTitleMaxLen = 100
)

// User is the identity model. Username and email are unique at the storage
// layer; the application level checks only exist to produce friendly errors
// before the constraint fires.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	ProfilePicture string     `bun:"profile_picture,notnull" json:"profile_picture,omitempty"`
	PasswordHash   string     `bun:"password_hash,notnull" json:"-"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	ResetedAt      *time.Time `bun:"reseted_at,nullzero" json:"reseted_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureProfilePicture falls back to the sentinel image
func (u *User) EnsureProfilePicture() {
	if u.ProfilePicture == "" {
		u.ProfilePicture = DefaultProfilePicture
	}
}

// Post is the content model. Every post has exactly one owner, set at
// creation and immutable afterwards.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Content       string     `bun:"content,notnull" json:"content,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Author        *User      `bun:"rel:belongs-to,join:user_id=id" json:"author,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// OwnedBy reports whether the given identity is the post's recorded owner.
// Comparison is by id, never by name.
func (p *Post) OwnedBy(identity Identity) bool {
	if p == nil || identity == nil {
		return false
	}
	return p.UserID.String() == identity.ID()
}
