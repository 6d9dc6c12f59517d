package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velstore/velstore-api/internal/models"
	"github.com/velstore/velstore-api/internal/utils"
)

type fakeProducts struct {
	nextID    int
	rows      map[int]*models.Product
	createErr error
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{rows: make(map[int]*models.Product)}
}

func (f *fakeProducts) Create(p *models.Product) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	p.ID = f.nextID
	stored := *p
	stored.Images = append([]string(nil), p.Images...)
	f.rows[p.ID] = &stored
	return nil
}

func (f *fakeProducts) GetByID(id int) (*models.Product, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *row
	copied.Images = append([]string(nil), row.Images...)
	return &copied, nil
}

func (f *fakeProducts) GetImages(id int) ([]string, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return append([]string(nil), row.Images...), nil
}

func (f *fakeProducts) UpdateScalars(p *models.Product) error {
	row, ok := f.rows[p.ID]
	if !ok {
		return sql.ErrNoRows
	}
	row.Name = p.Name
	row.Brand = p.Brand
	row.Slug = p.Slug
	row.Features = p.Features
	row.Description = p.Description
	p.Images = append([]string(nil), row.Images...)
	return nil
}

func (f *fakeProducts) UpdateImages(id int, images []string) error {
	row, ok := f.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	row.Images = append([]string(nil), images...)
	return nil
}

func (f *fakeProducts) Delete(id int) error {
	if _, ok := f.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

type fakeVariants struct {
	nextID    int
	rows      map[int]models.Variant
	upsertErr error
	insertErr error
	lastKeep  []int
}

func newFakeVariants() *fakeVariants {
	return &fakeVariants{rows: make(map[int]models.Variant), nextID: 100}
}

func (f *fakeVariants) Upsert(variants []models.Variant) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, v := range variants {
		f.rows[v.ID] = v
	}
	return nil
}

func (f *fakeVariants) Insert(variants []models.Variant) ([]int, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	ids := make([]int, 0, len(variants))
	for _, v := range variants {
		f.nextID++
		v.ID = f.nextID
		f.rows[v.ID] = v
		ids = append(ids, v.ID)
	}
	return ids, nil
}

func (f *fakeVariants) DeleteExcept(productID int, keepIDs []int) error {
	f.lastKeep = append([]int(nil), keepIDs...)
	keep := make(map[int]bool, len(keepIDs))
	for _, id := range keepIDs {
		keep[id] = true
	}
	for id, v := range f.rows {
		if v.ProductID == productID && !keep[id] {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeVariants) DeleteByProductID(productID int) error {
	for id, v := range f.rows {
		if v.ProductID == productID {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeVariants) idsForProduct(productID int) map[int]bool {
	ids := make(map[int]bool)
	for id, v := range f.rows {
		if v.ProductID == productID {
			ids[id] = true
		}
	}
	return ids
}

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string]bool
	removed   [][]string
	uploads   []string
	failKey   string
	removeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]bool)}
}

func (f *fakeStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKey != "" && key == f.failKey {
		return "", errors.New("upload rejected")
	}
	f.objects[key] = true
	f.uploads = append(f.uploads, key)
	return "https://cdn.test/product-images/" + key, nil
}

func (f *fakeStore) Remove(ctx context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, append([]string(nil), keys...))
	for _, k := range keys {
		delete(f.objects, k)
	}
	return nil
}

func newTestService() (*ProductAdminService, *fakeProducts, *fakeVariants, *fakeStore) {
	products := newFakeProducts()
	variants := newFakeVariants()
	store := newFakeStore()
	return NewProductAdminService(products, variants, store, nil), products, variants, store
}

func TestCreateProduct(t *testing.T) {
	svc, products, variants, store := newTestService()

	input := &ProductInput{
		Name:  "Phone X",
		Brand: "Acme",
		Slug:  "phone-x",
		Images: []ImageInput{
			NewImage([]byte("a"), "front.png", "image/png"),
			{}, // empty entries are discarded
			NewImage([]byte("b"), "back.png", "image/png"),
		},
		Variants: []VariantInput{
			{Stock: 5, Price: 999, Storage: "128GB", Color: "#000", ColorName: "Black"},
			{Stock: 3, Price: 1099, Storage: "256GB", Color: "#fff", ColorName: "White"},
		},
	}

	product, err := svc.CreateProduct(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 1, product.ID)

	// The returned product is the row as inserted: images still empty.
	assert.Empty(t, product.Images)

	// The persisted row carries exactly the non-empty entries, each URL
	// containing the product id in its object name.
	stored, err := products.GetImages(product.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "https://cdn.test/product-images/1/1-front.png", stored[0])
	assert.Equal(t, "https://cdn.test/product-images/1/1-back.png", stored[1])
	assert.Len(t, store.uploads, 2)

	assert.Len(t, variants.idsForProduct(product.ID), 2)
}

func TestCreateProduct_InsertFails(t *testing.T) {
	svc, products, _, store := newTestService()
	products.createErr = errors.New("duplicate slug")

	_, err := svc.CreateProduct(context.Background(), &ProductInput{Name: "x", Brand: "y", Slug: "z"})
	require.ErrorIs(t, err, utils.ErrPersistence)
	assert.Empty(t, store.uploads)
}

func TestUpdateProduct_ImageDiff(t *testing.T) {
	svc, products, _, store := newTestService()
	products.rows[1] = &models.Product{
		ID:   1,
		Slug: "phone-x",
		Images: []string{
			"https://cdn.test/product-images/1/1-a.png",
			"https://cdn.test/product-images/1/1-b.png",
			"https://cdn.test/product-images/1/1-c.png",
		},
	}

	input := &ProductInput{
		Name:  "Phone X",
		Brand: "Acme",
		Slug:  "phone-x",
		Images: []ImageInput{
			ExistingImage("https://cdn.test/product-images/1/1-b.png"),
			NewImage([]byte("d"), "d.png", "image/png"),
		},
	}

	_, err := svc.UpdateProduct(context.Background(), 1, input)
	require.NoError(t, err)

	// Exactly A and C are removed, in one bulk call.
	require.Len(t, store.removed, 1)
	assert.ElementsMatch(t, []string{"1/1-a.png", "1/1-c.png"}, store.removed[0])

	// Exactly D is uploaded, and the persisted list preserves desired order.
	assert.Equal(t, []string{"1/1-d.png"}, store.uploads)
	stored, err := products.GetImages(1)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.test/product-images/1/1-b.png",
		"https://cdn.test/product-images/1/1-d.png",
	}, stored)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.UpdateProduct(context.Background(), 42, &ProductInput{Name: "x", Brand: "y", Slug: "z"})
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestUpdateProduct_Idempotent(t *testing.T) {
	svc, products, variants, _ := newTestService()
	products.rows[1] = &models.Product{
		ID:     1,
		Slug:   "phone-x",
		Images: []string{"https://cdn.test/product-images/1/1-a.png"},
	}
	variants.rows[7] = models.Variant{ID: 7, ProductID: 1, Stock: 2}

	input := &ProductInput{
		Name:     "Phone X",
		Brand:    "Acme",
		Slug:     "phone-x",
		Images:   []ImageInput{ExistingImage("https://cdn.test/product-images/1/1-a.png")},
		Variants: []VariantInput{{ID: 7, Stock: 2, Price: 999}},
	}

	for i := 0; i < 2; i++ {
		_, err := svc.UpdateProduct(context.Background(), 1, input)
		require.NoError(t, err, "pass %d", i+1)

		stored, err := products.GetImages(1)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://cdn.test/product-images/1/1-a.png"}, stored)
		assert.Equal(t, map[int]bool{7: true}, variants.idsForProduct(1))
	}
}

func TestUpdateProduct_VariantSync(t *testing.T) {
	svc, products, variants, _ := newTestService()
	products.rows[1] = &models.Product{ID: 1, Slug: "phone-x"}
	variants.rows[7] = models.Variant{ID: 7, ProductID: 1}
	variants.rows[8] = models.Variant{ID: 8, ProductID: 1}

	input := &ProductInput{
		Name:  "Phone X",
		Brand: "Acme",
		Slug:  "phone-x",
		Variants: []VariantInput{
			{ID: 7, Stock: 9, Price: 899},
			{Stock: 1, Price: 1299, Storage: "512GB"},
		},
	}

	_, err := svc.UpdateProduct(context.Background(), 1, input)
	require.NoError(t, err)

	// Retained set = {7} plus the newly assigned id; 8 is swept away.
	ids := variants.idsForProduct(1)
	require.Len(t, ids, 2)
	assert.True(t, ids[7])
	assert.False(t, ids[8])
	assert.Equal(t, 9, variants.rows[7].Stock)
}

func TestUpdateProduct_EmptyVariantSet(t *testing.T) {
	svc, products, variants, _ := newTestService()
	products.rows[1] = &models.Product{ID: 1, Slug: "phone-x"}
	variants.rows[7] = models.Variant{ID: 7, ProductID: 1}
	variants.rows[8] = models.Variant{ID: 8, ProductID: 1}
	variants.rows[9] = models.Variant{ID: 9, ProductID: 2}

	_, err := svc.UpdateProduct(context.Background(), 1, &ProductInput{
		Name: "Phone X", Brand: "Acme", Slug: "phone-x",
	})
	require.NoError(t, err)

	// All of product 1's variants are gone; other products are untouched.
	assert.Empty(t, variants.idsForProduct(1))
	assert.Len(t, variants.idsForProduct(2), 1)
	assert.Empty(t, variants.lastKeep)
}

func TestUpdateProduct_UploadFailureAbortsBatch(t *testing.T) {
	svc, products, _, store := newTestService()
	products.rows[1] = &models.Product{ID: 1, Slug: "phone-x"}
	store.failKey = "1/1-bad.png"

	input := &ProductInput{
		Name:  "Phone X",
		Brand: "Acme",
		Slug:  "phone-x",
		Images: []ImageInput{
			NewImage([]byte("ok"), "good.png", "image/png"),
			NewImage([]byte("no"), "bad.png", "image/png"),
		},
	}

	_, err := svc.UpdateProduct(context.Background(), 1, input)
	require.ErrorIs(t, err, utils.ErrStorage)

	// The failed batch never reaches the row.
	stored, err := products.GetImages(1)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestUpdateProduct_PositionalOrder(t *testing.T) {
	svc, products, _, _ := newTestService()
	products.rows[1] = &models.Product{ID: 1, Slug: "phone-x"}

	input := &ProductInput{Name: "Phone X", Brand: "Acme", Slug: "phone-x"}
	for i := 0; i < 8; i++ {
		input.Images = append(input.Images,
			NewImage([]byte{byte(i)}, fmt.Sprintf("img%d.png", i), "image/png"))
	}

	_, err := svc.UpdateProduct(context.Background(), 1, input)
	require.NoError(t, err)

	stored, err := products.GetImages(1)
	require.NoError(t, err)
	require.Len(t, stored, 8)
	for i, url := range stored {
		assert.Equal(t, fmt.Sprintf("https://cdn.test/product-images/1/1-img%d.png", i), url)
	}
}

func TestDeleteProduct(t *testing.T) {
	svc, products, variants, store := newTestService()
	products.rows[1] = &models.Product{
		ID:   1,
		Slug: "phone-x",
		Images: []string{
			"https://cdn.test/product-images/1/1-x.png",
			"https://cdn.test/product-images/1/1-y.png",
		},
	}
	variants.rows[7] = models.Variant{ID: 7, ProductID: 1}
	store.objects["1/1-x.png"] = true
	store.objects["1/1-y.png"] = true

	err := svc.DeleteProduct(context.Background(), 1)
	require.NoError(t, err)

	assert.Empty(t, variants.idsForProduct(1))
	_, err = products.GetByID(1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Empty(t, store.objects)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.DeleteProduct(context.Background(), 42)
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestDeleteProduct_StorageFailureKeepsRowsConsistent(t *testing.T) {
	svc, products, variants, store := newTestService()
	products.rows[1] = &models.Product{
		ID:     1,
		Slug:   "phone-x",
		Images: []string{"https://cdn.test/product-images/1/1-x.png"},
	}
	variants.rows[7] = models.Variant{ID: 7, ProductID: 1}
	store.removeErr = errors.New("bucket unavailable")

	err := svc.DeleteProduct(context.Background(), 1)
	require.ErrorIs(t, err, utils.ErrStorage)

	// Relational state is already consistent; only storage objects linger.
	assert.Empty(t, variants.idsForProduct(1))
	_, err = products.GetByID(1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
