package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velstore/velstore-api/internal/storage"
)

type fakeImageLister struct {
	urls []string
	err  error
}

func (f *fakeImageLister) AllImageURLs() ([]string, error) {
	return f.urls, f.err
}

type fakeObjectLister struct {
	objects []storage.ObjectInfo
	removed []string
	listErr error
}

func (f *fakeObjectLister) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return f.objects, f.listErr
}

func (f *fakeObjectLister) Remove(ctx context.Context, keys []string) error {
	f.removed = append(f.removed, keys...)
	return nil
}

func (f *fakeObjectLister) KeyFromURL(url string) string {
	return strings.TrimPrefix(url, "https://cdn.test/")
}

func TestSweepRemovesOrphans(t *testing.T) {
	old := time.Now().Add(-2 * time.Hour)
	products := &fakeImageLister{urls: []string{
		"https://cdn.test/1/1-a.png",
		"https://cdn.test/2/2-b.png",
	}}
	store := &fakeObjectLister{objects: []storage.ObjectInfo{
		{Key: "1/1-a.png", LastModified: old},
		{Key: "2/2-b.png", LastModified: old},
		{Key: "3/3-orphan.png", LastModified: old},
		{Key: "4/4-fresh.png", LastModified: time.Now()},
	}}

	w := NewStorageSweepWorker(products, store, time.Hour, time.Hour)
	w.sweep(context.Background())

	// Only the old unreferenced object goes; fresh objects may belong to a
	// reconciliation still in flight.
	assert.Equal(t, []string{"3/3-orphan.png"}, store.removed)
}

func TestSweepSkipsOnListFailure(t *testing.T) {
	products := &fakeImageLister{err: assert.AnError}
	store := &fakeObjectLister{objects: []storage.ObjectInfo{
		{Key: "1/1-a.png", LastModified: time.Now().Add(-2 * time.Hour)},
	}}

	w := NewStorageSweepWorker(products, store, time.Hour, time.Hour)
	w.sweep(context.Background())

	// Without the referenced set nothing can safely be deleted.
	require.Empty(t, store.removed)
}

func TestSweepNothingToReclaim(t *testing.T) {
	old := time.Now().Add(-2 * time.Hour)
	products := &fakeImageLister{urls: []string{"https://cdn.test/1/1-a.png"}}
	store := &fakeObjectLister{objects: []storage.ObjectInfo{
		{Key: "1/1-a.png", LastModified: old},
	}}

	w := NewStorageSweepWorker(products, store, time.Hour, time.Hour)
	w.sweep(context.Background())

	assert.Empty(t, store.removed)
}
