package preview

import (
	"context"
	"fmt"

	"github.com/folioview/folioview/internal/recents"
	"github.com/folioview/folioview/internal/render"
	"github.com/folioview/folioview/internal/storage"
	"github.com/folioview/folioview/pkg/logger"
	"github.com/folioview/folioview/pkg/metrics"
)

// Source labels for a served page.
const (
	SourceCache = "cache"
	SourceFresh = "fresh"
)

// BlobStore is the slice of object storage the cache needs.
type BlobStore interface {
	PutBytes(ctx context.Context, key string, data []byte, contentType string) error
	GetBytes(ctx context.Context, key string) ([]byte, error)
}

// Cache serves rendered page images, backed by object storage when one
// is configured. With a nil BlobStore every page is rendered fresh.
type Cache struct {
	opener render.Opener
	blobs  BlobStore
}

func New(opener render.Opener, blobs BlobStore) *Cache {
	return &Cache{opener: opener, blobs: blobs}
}

func pageKey(recordID string, page int, dpi float64) string {
	return fmt.Sprintf("%s/p%d-%g.png", recordID, page, dpi)
}

// Page returns the PNG for one page of a stored document plus the source
// it came from. Cache failures fall back to a fresh render; only render
// failures surface to the caller.
func (c *Cache) Page(ctx context.Context, rec recents.Record, page int, dpi float64) ([]byte, string, error) {
	if dpi <= 0 {
		dpi = render.DefaultDPI
	}
	key := pageKey(rec.ID, page, dpi)

	if c.blobs != nil {
		png, err := c.blobs.GetBytes(ctx, key)
		if err == nil {
			metrics.PagesRendered.WithLabelValues(SourceCache).Inc()
			return png, SourceCache, nil
		}
		if !storage.IsNotExist(err) {
			logger.Warnf("preview cache read %s: %v", key, err)
		}
	}

	doc, err := c.opener.Open(rec.Payload)
	if err != nil {
		return nil, "", err
	}
	defer doc.Close()

	png, err := doc.RenderPage(page, dpi)
	if err != nil {
		return nil, "", err
	}
	metrics.PagesRendered.WithLabelValues(SourceFresh).Inc()

	if c.blobs != nil {
		if err := c.blobs.PutBytes(ctx, key, png, "image/png"); err != nil {
			logger.Warnf("preview cache write %s: %v", key, err)
		}
	}
	return png, SourceFresh, nil
}

// PageCount opens the stored payload and reports its page count.
func (c *Cache) PageCount(rec recents.Record) (int, error) {
	doc, err := c.opener.Open(rec.Payload)
	if err != nil {
		return 0, err
	}
	defer doc.Close()
	return doc.PageCount(), nil
}
