package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookmarket/models"
)

// feeShare is the part of price×quantity the client charges as reservation fee.
var feeShare = decimal.NewFromFloat(0.5)

type ReservationService struct {
	reservations ReservationStore
	books        BookStore
	now          Clock
}

func NewReservationService(reservations ReservationStore, books BookStore, now Clock) *ReservationService {
	if now == nil {
		now = time.Now
	}
	return &ReservationService{reservations: reservations, books: books, now: now}
}

type CreateReservationInput struct {
	UserID         string
	BookID         string
	Quantity       int
	ReservationFee float64
}

// CreateReservation persists a pending reservation held for PickupWindow.
// The caller is trusted to have confirmed payment; the fee is stored as given
// and stock is not touched.
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	if in.UserID == "" || in.BookID == "" || in.Quantity == 0 || in.ReservationFee == 0 {
		return nil, ErrMissingFields
	}
	if in.Quantity < 0 || in.ReservationFee < 0 {
		return nil, validationf("quantity and reservationFee must be positive")
	}
	userID, err := ParseID(in.UserID)
	if err != nil {
		return nil, err
	}
	bookID, err := ParseID(in.BookID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	book, err := s.books.FindBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil || book.OwnerID.IsZero() {
		return nil, ErrUnresolvedSeller
	}

	reservedAt := s.now().UTC().Truncate(time.Millisecond)
	r := &models.Reservation{
		UserID:         userID,
		BookID:         bookID,
		OwnerID:        book.OwnerID,
		Quantity:       in.Quantity,
		ReservationFee: in.ReservationFee,
		ReservedAt:     reservedAt,
		PickupDeadline: reservedAt.Add(models.PickupWindow),
		Status:         models.ReservationPending,
	}
	if err := s.reservations.InsertReservation(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListByBuyer returns the buyer's reservations newest first with books joined.
func (s *ReservationService) ListByBuyer(ctx context.Context, buyerHex string) ([]models.ReservationWithBook, error) {
	buyerID, err := ParseID(buyerHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	list, err := s.reservations.ListReservationsByUser(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return s.joinBooks(ctx, list)
}

// ListBySeller returns reservations held at the seller's shop newest first.
func (s *ReservationService) ListBySeller(ctx context.Context, sellerHex string) ([]models.ReservationWithBook, error) {
	sellerID, err := ParseID(sellerHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	list, err := s.reservations.ListReservationsByOwner(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return s.joinBooks(ctx, list)
}

// CancelReservation marks the reservation expired whatever its current
// status, including picked_up. Cancellation and expiry share one status.
func (s *ReservationService) CancelReservation(ctx context.Context, idHex string) (*models.Reservation, error) {
	id, err := ParseID(idHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	r, err := s.reservations.SetReservationStatus(ctx, id, models.ReservationExpired)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReservationNotFound
	}
	return r, nil
}

// ConfirmPickup moves a pending reservation to picked_up.
func (s *ReservationService) ConfirmPickup(ctx context.Context, idHex string) (*models.Reservation, error) {
	id, err := ParseID(idHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	r, err := s.reservations.TransitionReservation(ctx, id, models.ReservationPending, models.ReservationPickedUp)
	if err != nil {
		return nil, err
	}
	if r != nil {
		return r, nil
	}

	existing, err := s.reservations.FindReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrReservationNotFound
	}
	return nil, ErrNotPending
}

func (s *ReservationService) DeleteReservation(ctx context.Context, idHex string) error {
	id, err := ParseID(idHex)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ok, err := s.reservations.DeleteReservation(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrReservationNotFound
	}
	return nil
}

// FeeQuote is the fee a client would charge for a reservation.
type FeeQuote struct {
	BookID         string  `json:"bookId"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unitPrice"`
	ReservationFee float64 `json:"reservationFee"`
}

// QuoteFee returns half of price×quantity rounded to two decimals. It is
// informational; CreateReservation never recomputes the fee.
func (s *ReservationService) QuoteFee(ctx context.Context, bookHex string, quantity int) (*FeeQuote, error) {
	bookID, err := ParseID(bookHex)
	if err != nil {
		return nil, err
	}
	qty := atLeastOne(quantity)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	book, err := s.books.FindBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrBookNotFound
	}

	fee := decimal.NewFromFloat(book.Price).
		Mul(decimal.NewFromInt(int64(qty))).
		Mul(feeShare).
		Round(2)
	return &FeeQuote{
		BookID:         bookHex,
		Quantity:       qty,
		UnitPrice:      book.Price,
		ReservationFee: fee.InexactFloat64(),
	}, nil
}

// ExpireOverdue marks pending reservations past their pickup deadline as
// expired. Only the optional sweeper calls it.
func (s *ReservationService) ExpireOverdue(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return s.reservations.ExpireReservations(ctx, s.now().UTC())
}

func (s *ReservationService) joinBooks(ctx context.Context, list []models.Reservation) ([]models.ReservationWithBook, error) {
	out := make([]models.ReservationWithBook, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}

	ids := make([]primitive.ObjectID, 0, len(list))
	seen := make(map[primitive.ObjectID]bool, len(list))
	for _, r := range list {
		if !seen[r.BookID] {
			seen[r.BookID] = true
			ids = append(ids, r.BookID)
		}
	}
	books, err := s.books.FindBooks(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Book, len(books))
	for i := range books {
		byID[books[i].ID] = &books[i]
	}

	for _, r := range list {
		out = append(out, models.ReservationWithBook{Reservation: r, Book: byID[r.BookID]})
	}
	return out, nil
}
