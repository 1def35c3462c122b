// Package content holds the shared message body document referenced by
// group/channel ledgers and private conversations.
package content

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repository adapters when no content matches.
var ErrNotFound = errors.New("content: not found")

// Content is one message body. Ledger entries and private message entries
// reference it by id instead of embedding the text.
type Content struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Edited bool   `json:"edited"`
}

// New builds an unedited content document.
func New(id, text string) *Content {
	return &Content{ID: id, Text: text}
}

// Repository is the document-store port for content bodies.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Content, error)
	GetByIDs(ctx context.Context, ids []string) ([]Content, error)
	Save(ctx context.Context, c *Content) error
	Delete(ctx context.Context, id string) error
}
