package entity

import "time"

// RevokedToken marks a single token identifier (jti) as invalid until the
// token itself expires, after which the entry is moot and may be purged.
type RevokedToken struct {
	TokenID   string
	ExpiresAt time.Time
	RevokedAt time.Time
}

// RevocationWatermark invalidates every token issued to a subject before
// RevokedBefore. Recorded on account deletion so "revoke all sessions"
// stays O(1) instead of enumerating live tokens.
type RevocationWatermark struct {
	SubjectID     string
	RevokedBefore time.Time
}
