// Package blog implements a server rendered blog: credential storage,
// cookie sessions, password reset over signed tokens, and post authoring
// with ownership checks.
//
// Sessions:
//   - Login exchanges an email/password pair for an HS256 JWT which the
//     HTTP layer stores in an HTTPOnly cookie. The jwtware middleware
//     resolves the cookie back into a Session per request; handlers thread
//     the resolved user explicitly, there is no process-wide current user.
//
// Password reset:
//   - ResetTokenService issues self contained signed tokens carrying the
//     user id and an expiry window (default 30 minutes). Verification
//     fails closed: signature mismatch, malformed payloads, and expiry all
//     collapse to the same negative answer.
//
// Ownership:
//   - Post mutation requires both an authenticated session and
//     AuthorizeMutation, which compares the acting identity to the post's
//     recorded owner by id.
package blog
