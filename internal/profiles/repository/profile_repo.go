package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
)

// StoredProfile is a decoded record with the identity key it is stored under.
type StoredProfile struct {
	UID    string
	Record domain.ProfileRecord
}

// ProfileRepository maps ProfileRecords onto a DocumentStore collection.
// Every read goes through domain.DecodeRecord.
type ProfileRepository struct {
	store      DocumentStore
	collection string
}

func NewProfileRepository(store DocumentStore, collection string) *ProfileRepository {
	return &ProfileRepository{store: store, collection: collection}
}

// GetByUID returns the record stored under uid or domain.ErrProfileNotFound.
func (r *ProfileRepository) GetByUID(ctx context.Context, uid string) (*domain.ProfileRecord, error) {
	data, err := r.store.Get(ctx, r.collection, uid)
	if errors.Is(err, ErrDocumentNotFound) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}

	rec := domain.DecodeRecord(data)
	return &rec, nil
}

// Put overwrites the whole document stored under uid.
func (r *ProfileRepository) Put(ctx context.Context, uid string, rec domain.ProfileRecord) error {
	if err := r.store.Set(ctx, r.collection, uid, domain.EncodeRecord(rec)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}
	return nil
}

// FindByUsername returns every record whose username equals username, in
// store order.
func (r *ProfileRepository) FindByUsername(ctx context.Context, username string) ([]StoredProfile, error) {
	docs, err := r.store.QueryEquals(ctx, r.collection, domain.FieldUsername, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	return decodeAll(docs), nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]StoredProfile, error) {
	docs, err := r.store.List(ctx, r.collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	return decodeAll(docs), nil
}

func decodeAll(docs []Document) []StoredProfile {
	out := make([]StoredProfile, 0, len(docs))
	for _, d := range docs {
		out = append(out, StoredProfile{UID: d.Key, Record: domain.DecodeRecord(d.Data)})
	}
	return out
}
