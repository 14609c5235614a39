// Package entity defines the domain entities and errors of the short-link
// service. It contains the ShortLink struct, which represents a stored
// long-URL/short-code mapping together with its metadata, and the sentinel
// errors shared between the storage and business layers.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrShortCodeExists is returned when attempting to save a short link with a short code that is already taken.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrLinkNotFound is returned when no short link matches the requested short code.
	ErrLinkNotFound = errors.New("short link not found")
	// ErrInvalidURL is returned when the submitted original URL is not an absolute, well-formed URL.
	ErrInvalidURL = errors.New("invalid original url")
)

// ShortLink represents a shortened URL record.
type ShortLink struct {
	ID          int64     // ID is the unique identifier of the record in the database.
	ShortCode   string    // ShortCode is the generated code the original URL is reachable under.
	OriginalURL string    // OriginalURL is the full URL the short code resolves to.
	LinkStats             // LinkStats holds usage statistics of the short link.
	CreatedAt   time.Time // CreatedAt is the timestamp when the record was created.
	UpdatedAt   time.Time // UpdatedAt is the timestamp when the original URL was last replaced.
}

// LinkStats holds usage statistics of a short link.
type LinkStats struct {
	AccessCount int64 // AccessCount is the number of successful redirects served for the short code.
}
