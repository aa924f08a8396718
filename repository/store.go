package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"

	log "github.com/sirupsen/logrus"
)

// ErrContention is returned when a record kept changing underneath a
// compare-and-swap for every allowed attempt.
var ErrContention = errors.New("record is under contention")

// errSkipWrite lets a mutation decide that the stored document is already up to date
var errSkipWrite = errors.New("skip write")

const defaultMaxRetries = 16

// Options tune how repositories talk to the store
type Options struct {
	// MaxRetries bounds compare-and-swap attempts per operation
	MaxRetries int

	// Now supplies timestamps; defaults to UTC wall clock
	Now func() time.Time

	// OnConflict is called for every lost compare-and-swap, keyed by record kind
	OnConflict func(kind string)
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.OnConflict == nil {
		o.OnConflict = func(string) {}
	}
	return o
}

const (
	kindAccount = "account"
	kindMatch   = "match"
	kindHistory = "history"
	kindFee     = "fee"
	kindDispute = "dispute"
	kindOp      = "ledgerop"
)

func key(kind string, parts ...string) string {
	k := kind
	for _, p := range parts {
		k += "/" + url.PathEscape(p)
	}
	return k
}

func prefix(kind string, parts ...string) string {
	return key(kind, parts...) + "/"
}

// load reads and decodes a document, mapping absent keys to entities.ErrNotFound
func load[T any](ctx context.Context, store storage.Store, k string) (*T, int64, error) {
	rec, err := store.Get(ctx, k)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, 0, entities.ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	var doc T
	if err := json.Unmarshal(rec.Value, &doc); err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", k, err)
	}
	return &doc, rec.Version, nil
}

// insert writes a new document and reports storage.ErrVersionConflict if the key exists
func insert(ctx context.Context, store storage.Store, k string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", k, err)
	}
	_, err = store.CompareAndSwap(ctx, k, 0, data)
	return err
}

// loadAll decodes every document under a key prefix
func loadAll[T any](ctx context.Context, store storage.Store, p string) ([]*T, error) {
	recs, err := store.List(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", p, err)
	}

	docs := make([]*T, 0, len(recs))
	for _, rec := range recs {
		var doc T
		if err := json.Unmarshal(rec.Value, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", rec.Key, err)
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

// update runs a read-check-write cycle on one key. mutate sees a freshly loaded
// document on every attempt and may return errSkipWrite to leave it untouched.
// Errors from mutate are returned unchanged.
func update[T any](ctx context.Context, store storage.Store, opts Options, kind, k string, mutate func(doc *T) error) (*T, error) {
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		doc, version, err := load[T](ctx, store, k)
		if err != nil {
			return nil, err
		}

		if err := mutate(doc); err != nil {
			if errors.Is(err, errSkipWrite) {
				return doc, nil
			}
			return nil, err
		}

		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", k, err)
		}

		_, err = store.CompareAndSwap(ctx, k, version, data)
		if errors.Is(err, storage.ErrVersionConflict) {
			opts.OnConflict(kind)
			log.WithFields(log.Fields{
				"key":     k,
				"attempt": attempt,
			}).Debug("Compare-and-swap lost, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", k, err)
		}
		return doc, nil
	}

	return nil, fmt.Errorf("%w: %s after %d attempts", ErrContention, k, opts.MaxRetries)
}
