package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// User is the signed-in user record kept in the session.
type User struct {
	ID          ID        `json:"id" validate:"required"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email" validate:"omitempty,email"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// Clone returns a copy of u. A nil user clones to nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

// Timestamp is a point in time that also decodes the {seconds, nanoseconds}
// object produced by Firestore-backed clients.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, normalized to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

type firestoreTimestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// MarshalJSON encodes the timestamp as RFC 3339; the zero value encodes as null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts null, an RFC 3339 string, or a {seconds, nanoseconds} object.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		t.Time = time.Time{}
		return nil
	case len(data) > 0 && data[0] == '{':
		var ft firestoreTimestamp
		if err := json.Unmarshal(data, &ft); err != nil {
			return fmt.Errorf("decode timestamp: %w", err)
		}
		t.Time = time.Unix(ft.Seconds, ft.Nanoseconds).UTC()
		return nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode timestamp: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("decode timestamp: %w", err)
		}
		t.Time = parsed.UTC()
		return nil
	}
}
