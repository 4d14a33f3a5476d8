package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestProduct(sellerID int64) *Product {
	now := time.Now()
	return &Product{
		ID:        uuid.NewString(),
		SellerID:  sellerID,
		Title:     "Calculus Textbook",
		Price:     800,
		Category:  "Books",
		Images:    []string{"file-1", "file-2"},
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUpsertUserRefreshesName(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.UpsertUser(&User{ID: 1, Username: "old", FirstName: "Old"}))
	require.NoError(t, store.UpsertUser(&User{ID: 1, Username: "new", FirstName: "New"}))

	user, err := store.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, "new", user.Username)
	assert.Equal(t, "New", user.FirstName)
}

func TestUpsertUserKeepsVerification(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.UpsertUser(&User{ID: 1, Username: "sarah"}))
	require.NoError(t, store.SetUserVerification(1, "CSE", "3"))

	// A later /start must not wipe verification data
	require.NoError(t, store.UpsertUser(&User{ID: 1, Username: "sarah"}))

	user, err := store.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, "CSE", user.Department)
	assert.Equal(t, "3", user.Year)
}

func TestGetUserNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetUser(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetJoinedChannel(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpsertUser(&User{ID: 1}))

	require.NoError(t, store.SetJoinedChannel(1, true))
	user, err := store.GetUser(1)
	require.NoError(t, err)
	assert.True(t, user.JoinedChannel)
}

func TestListUserIDs(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpsertUser(&User{ID: 3}))
	require.NoError(t, store.UpsertUser(&User{ID: 1}))

	ids, err := store.ListUserIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 3}, ids)
}

func TestProductRoundTrip(t *testing.T) {
	store := newTestStore(t)
	product := newTestProduct(7)
	require.NoError(t, store.CreateProduct(product))

	got, err := store.GetProduct(product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Title, got.Title)
	assert.Equal(t, product.Price, got.Price)
	assert.Equal(t, []string{"file-1", "file-2"}, got.Images)
	assert.Equal(t, StatusPending, got.Status)
	assert.Empty(t, got.ChannelMessageIDs)
}

func TestGetProductNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetProduct("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductsBySeller(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateProduct(newTestProduct(7)))
	require.NoError(t, store.CreateProduct(newTestProduct(7)))
	require.NoError(t, store.CreateProduct(newTestProduct(8)))

	products, err := store.ProductsBySeller(7)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestTransitionStatusGuards(t *testing.T) {
	store := newTestStore(t)
	product := newTestProduct(7)
	require.NoError(t, store.CreateProduct(product))

	ok, err := store.TransitionStatus(product.ID, StatusPending, StatusApproved, 42)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second delivery of the same approval loses cleanly
	ok, err = store.TransitionStatus(product.ID, StatusPending, StatusApproved, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := store.GetProduct(product.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	assert.Equal(t, int64(42), got.ApprovedBy)
}

func TestTransitionStatusRejectsInvalidEdge(t *testing.T) {
	store := newTestStore(t)
	product := newTestProduct(7)
	require.NoError(t, store.CreateProduct(product))

	_, err := store.TransitionStatus(product.ID, StatusPending, StatusSold, 42)
	assert.Error(t, err)
}

func TestCountByStatus(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateProduct(newTestProduct(7)))
	p := newTestProduct(7)
	require.NoError(t, store.CreateProduct(p))
	_, err := store.TransitionStatus(p.ID, StatusPending, StatusApproved, 42)
	require.NoError(t, err)

	pending, err := store.CountByStatus(StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	approved, err := store.CountByStatus(StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 1, approved)
}

func TestApprovedByCategory(t *testing.T) {
	store := newTestStore(t)

	book := newTestProduct(7)
	require.NoError(t, store.CreateProduct(book))
	_, err := store.TransitionStatus(book.ID, StatusPending, StatusApproved, 42)
	require.NoError(t, err)

	lamp := newTestProduct(7)
	lamp.Category = "Electronics"
	require.NoError(t, store.CreateProduct(lamp))

	products, err := store.ApprovedByCategory("Books")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, book.ID, products[0].ID)

	// Pending products never show up in browse results
	products, err = store.ApprovedByCategory("Electronics")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSetChannelMessageIDs(t *testing.T) {
	store := newTestStore(t)
	product := newTestProduct(7)
	require.NoError(t, store.CreateProduct(product))

	require.NoError(t, store.SetChannelMessageIDs(product.ID, []int{10, 11, 12}))

	got, err := store.GetProduct(product.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11, 12}, got.ChannelMessageIDs)

	assert.ErrorIs(t, store.SetChannelMessageIDs("missing", []int{1}), ErrNotFound)
}
