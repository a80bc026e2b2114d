package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookmarket/database/memstore"
	"bookmarket/filestore"
	"bookmarket/models"
)

// --- Mocks ---

type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Save(ctx context.Context, f filestore.Upload, folder string) (string, error) {
	args := m.Called(ctx, f, folder)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Remove(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

// failingBookWrites rejects every ReplaceBook.
type failingBookWrites struct {
	*memstore.Store
}

func (failingBookWrites) ReplaceBook(context.Context, *models.Book) (bool, error) {
	return false, errors.New("write conflict")
}

// failingOwnerWrites rejects every UpdateOwner.
type failingOwnerWrites struct {
	*memstore.Store
}

func (failingOwnerWrites) UpdateOwner(context.Context, primitive.ObjectID, models.OwnerUpdate) (*models.Owner, error) {
	return nil, errors.New("write conflict")
}

// --- Fixtures ---

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func upload(name string) *filestore.Upload {
	return &filestore.Upload{Reader: strings.NewReader("img"), Filename: name, ContentType: "image/png"}
}

func seedUser(t *testing.T, s *memstore.Store, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: "Nimal", Email: primitive.NewObjectID().Hex() + "@example.com", Role: role}
	require.NoError(t, s.InsertUser(context.Background(), u))
	return u
}

func seedOwner(t *testing.T, s *memstore.Store) *models.Owner {
	t.Helper()
	u := seedUser(t, s, models.RoleSeller)
	o := &models.Owner{
		UserID:       u.ID,
		FullName:     "Nimal Perera",
		BookShopName: "Sarasavi",
		City:         "Colombo",
		District:     "Colombo",
		Status:       models.OwnerApproved,
	}
	require.NoError(t, s.InsertOwner(context.Background(), o))
	return o
}

func seedBook(t *testing.T, s *memstore.Store, ownerID primitive.ObjectID, price float64) *models.Book {
	t.Helper()
	b := &models.Book{
		OwnerID:    ownerID,
		Title:      "Madol Doova",
		Author:     "Martin Wickramasinghe",
		Price:      price,
		Stock:      5,
		Category:   "Novel",
		ISBN:       "978-955-0000",
		CoverImage: "/uploads/covers/a.png",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.InsertBook(context.Background(), b))
	return b
}
