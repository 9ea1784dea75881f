package repository

import (
	"context"
	"errors"
)

// ErrDocumentNotFound is returned by DocumentStore.Get for absent keys.
var ErrDocumentNotFound = errors.New("document not found")

// Document is a stored document together with its key.
type Document struct {
	Key  string
	Data map[string]interface{}
}

// DocumentStore is the managed document database the profiles live in.
// Set always replaces the whole document. QueryEquals returns matches in
// store-defined order.
type DocumentStore interface {
	Get(ctx context.Context, collection, key string) (map[string]interface{}, error)
	Set(ctx context.Context, collection, key string, data map[string]interface{}) error
	QueryEquals(ctx context.Context, collection, field, value string) ([]Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
}
