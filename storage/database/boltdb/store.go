package boltdb

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/trezcool/markmywords/core/document"
)

// Store keeps the document as one JSON value in a bbolt bucket.
type Store struct {
	db     *bbolt.DB
	bucket []byte
	key    []byte
}

var _ document.Repository = (*Store)(nil) // interface compliance check

// Open opens (or creates) the bolt file at path and makes sure the bucket exists.
func Open(path, bucket, key string) (store *Store, err error) {
	if err = vala.BeginValidation().Validate(
		vala.StringNotEmpty(path, "path"),
		vala.StringNotEmpty(bucket, "bucket"),
		vala.StringNotEmpty(key, "key"),
	).Check(); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "creating data directory")
		}
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening bolt file")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating bucket")
	}

	return &Store{db: db, bucket: []byte(bucket), key: []byte(key)}, nil
}

func (s *Store) Load(ctx context.Context) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}

	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get(s.key); v != nil {
			// v is only valid during the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return document.Document{}, errors.Wrap(err, "reading document")
	}
	if data == nil {
		return document.Document{}, document.ErrNotFound
	}
	return document.Decode(data)
}

func (s *Store) Save(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := document.Encode(doc)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put(s.key, data)
	})
	return errors.Wrap(err, "writing document")
}

func (s *Store) Close() error {
	return s.db.Close()
}
