package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"bookmarket/filestore"
	"bookmarket/logger"
	"bookmarket/models"
)

// Find* methods return (nil, nil) when the document does not exist. Methods
// returning bool report whether a document matched.

type BookStore interface {
	InsertBook(ctx context.Context, b *models.Book) error
	FindBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	FindBooks(ctx context.Context, ids []primitive.ObjectID) ([]models.Book, error)
	ListBooksByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Book, error)
	ReplaceBook(ctx context.Context, b *models.Book) (bool, error)
	DeleteBook(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type CartStore interface {
	FindCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// SaveCart upserts the item list of the cart keyed by userId; the address
	// is left as stored.
	SaveCart(ctx context.Context, c *models.Cart) error
	SetItemQuantity(ctx context.Context, userID, bookID primitive.ObjectID, qty int) (*models.Cart, error)
	PullItem(ctx context.Context, userID, bookID primitive.ObjectID) (*models.Cart, error)
	DeleteCart(ctx context.Context, userID primitive.ObjectID) error
	SetCartAddress(ctx context.Context, userID primitive.ObjectID, addr models.Address) (*models.Cart, error)
}

type OrderStore interface {
	InsertOrder(ctx context.Context, o *models.Order) error
	FindOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListOrdersByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Order, error)
	DeleteOrder(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type ReservationStore interface {
	InsertReservation(ctx context.Context, r *models.Reservation) error
	FindReservation(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error)
	ListReservationsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Reservation, error)
	ListReservationsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Reservation, error)
	SetReservationStatus(ctx context.Context, id primitive.ObjectID, status models.ReservationStatus) (*models.Reservation, error)
	// TransitionReservation sets status to `to` only if it currently equals `from`.
	TransitionReservation(ctx context.Context, id primitive.ObjectID, from, to models.ReservationStatus) (*models.Reservation, error)
	ExpireReservations(ctx context.Context, deadlineBefore time.Time) (int64, error)
	DeleteReservation(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type UserStore interface {
	// InsertUser returns models.ErrDuplicateKey when the email is taken.
	InsertUser(ctx context.Context, u *models.User) error
	FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetUserAddress(ctx context.Context, id primitive.ObjectID, addr models.Address) (*models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

type OwnerStore interface {
	InsertOwner(ctx context.Context, o *models.Owner) error
	FindOwner(ctx context.Context, id primitive.ObjectID) (*models.Owner, error)
	FindOwnerByUser(ctx context.Context, userID primitive.ObjectID) (*models.Owner, error)
	ListOwners(ctx context.Context) ([]models.Owner, error)
	UpdateOwner(ctx context.Context, id primitive.ObjectID, u models.OwnerUpdate) (*models.Owner, error)
	DeleteOwner(ctx context.Context, id primitive.ObjectID) (*models.Owner, error)
}

// Backend is a store serving every collection; the Mongo and in-memory
// stores both satisfy it.
type Backend interface {
	BookStore
	CartStore
	OrderStore
	ReservationStore
	UserStore
	OwnerStore
}

// FileStore is the subset of filestore.Store the services use.
type FileStore interface {
	Save(ctx context.Context, f filestore.Upload, folder string) (string, error)
	Remove(ctx context.Context, ref string) error
}

// removeBestEffort deletes a stored file and only logs a failure.
func removeBestEffort(ctx context.Context, files FileStore, ref string) {
	if ref == "" {
		return
	}
	if err := files.Remove(ctx, ref); err != nil {
		logger.FromCtx(ctx).Warn("file cleanup failed", zap.String("ref", ref), zap.Error(err))
	}
}

// Clock lets tests pin the time.
type Clock func() time.Time

// opTimeout bounds every store call.
const opTimeout = 5 * time.Second

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

// ParseID converts a hex id from the wire into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidReference
	}
	return id, nil
}
