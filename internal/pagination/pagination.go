// Package pagination implements opaque cursor pagination for the list
// endpoints. A cursor encodes the sort key of the last item on a page
// (creation timestamp plus identity to break ties), so enumeration is
// stable against concurrent insertions: items are returned newest first
// and a fetch only ever sees items strictly before the cursor's
// referenced item.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rafflehq/raffle-backend/internal/models"
)

// Cursor is the resume point for a paginated enumeration. CreatedAt is the
// primary descending sort key; ID breaks ties, also descending.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        string    `json:"id"`
}

// Encode serializes the cursor into an opaque URL-safe token.
func (c Cursor) Encode() string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses a token previously produced by Encode. An empty token
// returns a nil cursor, meaning the first page. Unparseable tokens fail
// with ErrInvalidCursor.
func Decode(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidCursor, err)
	}
	if c.ID == "" {
		return nil, fmt.Errorf("%w: missing id", models.ErrInvalidCursor)
	}
	return &c, nil
}

// Pagination is the wire representation attached to every list response.
// NextCursor is present iff HasMore.
type Pagination struct {
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// Page is one page of a cursor-paginated result set.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// Trim derives a page from a fetch of limit+1 items: it cuts the overflow
// item and computes HasMore plus the next cursor from the last retained
// item's sort key.
func Trim[T any](items []T, limit int, key func(T) Cursor) Page[T] {
	page := Page[T]{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.Pagination.HasMore = true
		page.Pagination.NextCursor = key(page.Items[limit-1]).Encode()
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page
}

// FetchFunc fetches one page for the given cursor token.
type FetchFunc[T any] func(cursorToken string, limit int) (Page[T], error)

// Collect drives a full enumeration: it repeatedly calls fetch with the
// previous page's next cursor until HasMore is false, accumulating items
// in order and deduplicating by identity (an item that moved due to a
// concurrent update must not appear twice).
func Collect[T any](fetch FetchFunc[T], limit int, id func(T) string) ([]T, error) {
	var (
		out   []T
		seen  = make(map[string]bool)
		token string
	)
	for {
		page, err := fetch(token, limit)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			key := id(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
		if !page.Pagination.HasMore {
			return out, nil
		}
		token = page.Pagination.NextCursor
	}
}
