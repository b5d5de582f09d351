// Package cache persists crawled pages so re-runs skip the crawl step.
package cache

import (
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/mempirate/faqex/document"
)

const PAGE_BUCKET = "pages"

// PageCache is a persistent URL -> document cache backed by BoltDB.
type PageCache struct {
	db *bolt.DB
}

// NewPageCache opens (or creates) the cache at the given path.
// It is up to the caller to close the cache when it is no longer needed.
func NewPageCache(path string) (*PageCache, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(PAGE_BUCKET))
		return err
	})

	if err != nil {
		return nil, errors.Wrap(err, "failed to create page bucket")
	}

	return &PageCache{
		db: db,
	}, nil
}

// Get returns the cached document for a URL, if present.
func (c *PageCache) Get(url string) (*document.Document, bool, error) {
	var raw []byte
	c.db.View(func(tx *bolt.Tx) error {
		if val := tx.Bucket([]byte(PAGE_BUCKET)).Get([]byte(url)); val != nil {
			raw = make([]byte, len(val))
			copy(raw, val)
		}

		return nil
	})

	if raw == nil {
		return nil, false, nil
	}

	doc, err := document.FromMarkdown(string(raw))
	if err != nil {
		return nil, false, errors.Wrapf(err, "corrupt cache entry for %s", url)
	}

	return doc, true, nil
}

// Put stores a document under its URL.
func (c *PageCache) Put(url string, doc *document.Document) error {
	raw, err := doc.ToMarkdown()
	if err != nil {
		return err
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(PAGE_BUCKET)).Put([]byte(url), []byte(raw))
	})
}

func (c *PageCache) Contains(url string) bool {
	var exists bool
	c.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket([]byte(PAGE_BUCKET)).Get([]byte(url)) != nil
		return nil
	})

	return exists
}

func (c *PageCache) Len() int {
	var count int
	c.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket([]byte(PAGE_BUCKET)).Stats().KeyN
		return nil
	})

	return count
}

// Close closes the database.
func (c *PageCache) Close() error {
	return c.db.Close()
}
