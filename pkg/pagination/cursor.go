// Package pagination implements keyset pagination over (updatedAt DESC, id DESC).
package pagination

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Cursor marks the last item of the previous page.
type Cursor struct {
	UpdatedAt time.Time `json:"updatedAt"`
	ID        uuid.UUID `json:"id"`
}

// Encode returns the opaque form handed to clients.
func (c Cursor) Encode() string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses an opaque cursor. Anything malformed yields nil, which callers
// treat as "start from the first page".
func Decode(s string) *Cursor {
	if s == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil
	}
	if c.UpdatedAt.IsZero() || c.ID == uuid.Nil {
		return nil
	}
	return &c
}

// ClampLimit bounds a caller-supplied page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// After reports whether the row keyed (updatedAt, id) sorts strictly after c
// in descending order. Nil cursor admits every row.
func (c *Cursor) After(updatedAt time.Time, id uuid.UUID) bool {
	if c == nil {
		return true
	}
	if updatedAt.Before(c.UpdatedAt) {
		return true
	}
	return updatedAt.Equal(c.UpdatedAt) && bytes.Compare(id[:], c.ID[:]) < 0
}

// Less orders two keys descending by updatedAt, then descending by id.
func Less(aAt time.Time, aID uuid.UUID, bAt time.Time, bID uuid.UUID) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return bytes.Compare(aID[:], bID[:]) > 0
}

// Trim cuts a result fetched with limit+1 rows down to limit and returns the
// cursor for the next page, or nil when the extra row was absent.
func Trim[T any](rows []T, limit int, key func(T) Cursor) ([]T, *Cursor) {
	if len(rows) <= limit {
		return rows, nil
	}
	page := rows[:limit]
	next := key(page[len(page)-1])
	return page, &next
}
