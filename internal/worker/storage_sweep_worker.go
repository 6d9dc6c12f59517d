package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/velstore/velstore-api/internal/storage"
)

// ImageLister lists every image URL referenced by the catalog.
type ImageLister interface {
	AllImageURLs() ([]string, error)
}

// ObjectLister is the storage surface the sweep needs.
type ObjectLister interface {
	List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	Remove(ctx context.Context, keys []string) error
	KeyFromURL(url string) string
}

// StorageSweepWorker periodically deletes stored objects no longer referenced
// by any product. Reconciliation never rolls back uploads when a later step
// fails, so orphaned objects accumulate; this worker reclaims them. Objects
// younger than minAge are skipped so an in-flight reconciliation cannot lose
// uploads it has not yet persisted.
type StorageSweepWorker struct {
	products ImageLister
	store    ObjectLister
	interval time.Duration
	minAge   time.Duration
}

// NewStorageSweepWorker constructs a StorageSweepWorker.
func NewStorageSweepWorker(products ImageLister, store ObjectLister, interval, minAge time.Duration) *StorageSweepWorker {
	return &StorageSweepWorker{
		products: products,
		store:    store,
		interval: interval,
		minAge:   minAge,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (w *StorageSweepWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("storage sweep worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("storage sweep worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *StorageSweepWorker) sweep(ctx context.Context) {
	urls, err := w.products.AllImageURLs()
	if err != nil {
		log.Error().Err(err).Msg("sweep: failed to list referenced images")
		return
	}

	referenced := make(map[string]bool, len(urls))
	for _, url := range urls {
		if key := w.store.KeyFromURL(url); key != "" {
			referenced[key] = true
		}
	}

	objects, err := w.store.List(ctx, "")
	if err != nil {
		log.Error().Err(err).Msg("sweep: failed to list stored objects")
		return
	}

	cutoff := time.Now().Add(-w.minAge)
	var orphans []string
	for _, obj := range objects {
		if referenced[obj.Key] || obj.LastModified.After(cutoff) {
			continue
		}
		orphans = append(orphans, obj.Key)
	}

	if len(orphans) == 0 {
		log.Debug().Int("stored", len(objects)).Msg("sweep: nothing to reclaim")
		return
	}

	if err := w.store.Remove(ctx, orphans); err != nil {
		log.Error().Err(err).Int("count", len(orphans)).Msg("sweep: failed to remove orphans")
		return
	}
	log.Info().Int("count", len(orphans)).Msg("sweep: removed orphaned objects")
}
