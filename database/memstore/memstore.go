// Package memstore keeps every collection in process memory. It backs
// STORE=memory and the service and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookmarket/models"
)

type Store struct {
	mu  sync.RWMutex
	seq int64

	books        map[primitive.ObjectID]record[models.Book]
	carts        map[primitive.ObjectID]models.Cart // keyed by userId
	orders       map[primitive.ObjectID]record[models.Order]
	reservations map[primitive.ObjectID]record[models.Reservation]
	users        map[primitive.ObjectID]models.User
	owners       map[primitive.ObjectID]models.Owner
}

// record remembers insertion order so equal timestamps still sort stably.
type record[T any] struct {
	seq int64
	doc T
}

func New() *Store {
	return &Store{
		books:        map[primitive.ObjectID]record[models.Book]{},
		carts:        map[primitive.ObjectID]models.Cart{},
		orders:       map[primitive.ObjectID]record[models.Order]{},
		reservations: map[primitive.ObjectID]record[models.Reservation]{},
		users:        map[primitive.ObjectID]models.User{},
		owners:       map[primitive.ObjectID]models.Owner{},
	}
}

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// newestFirst sorts by time descending, then by insertion descending.
func newestFirst[T any](recs []record[T], at func(T) time.Time) []T {
	sort.SliceStable(recs, func(i, j int) bool {
		ti, tj := at(recs[i].doc), at(recs[j].doc)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return recs[i].seq > recs[j].seq
	})
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.doc)
	}
	return out
}

// -- Books --

func (s *Store) InsertBook(_ context.Context, b *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	s.books[b.ID] = record[models.Book]{seq: s.next(), doc: *b}
	return nil
}

func (s *Store) FindBook(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.books[id]
	if !ok {
		return nil, nil
	}
	b := r.doc
	return &b, nil
}

func (s *Store) FindBooks(_ context.Context, ids []primitive.ObjectID) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Book{}
	for _, id := range ids {
		if r, ok := s.books[id]; ok {
			out = append(out, r.doc)
		}
	}
	return out, nil
}

func (s *Store) ListBooksByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var recs []record[models.Book]
	for _, r := range s.books {
		if r.doc.OwnerID == ownerID {
			recs = append(recs, r)
		}
	}
	return newestFirst(recs, func(b models.Book) time.Time { return b.CreatedAt }), nil
}

func (s *Store) ReplaceBook(_ context.Context, b *models.Book) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.books[b.ID]
	if !ok {
		return false, nil
	}
	r.doc = *b
	s.books[b.ID] = r
	return true, nil
}

func (s *Store) DeleteBook(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[id]; !ok {
		return false, nil
	}
	delete(s.books, id)
	return true, nil
}

// -- Carts --

func copyCart(c models.Cart) *models.Cart {
	c.Items = append([]models.CartItem(nil), c.Items...)
	if c.Address != nil {
		a := *c.Address
		c.Address = &a
	}
	return &c
}

func (s *Store) FindCart(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, nil
	}
	return copyCart(c), nil
}

func (s *Store) SaveCart(_ context.Context, c *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.carts[c.UserID]
	if !ok {
		existing = models.Cart{ID: primitive.NewObjectID(), UserID: c.UserID}
	}
	existing.Items = append([]models.CartItem(nil), c.Items...)
	c.ID = existing.ID
	s.carts[c.UserID] = existing
	return nil
}

func (s *Store) SetItemQuantity(_ context.Context, userID, bookID primitive.ObjectID, qty int) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, nil
	}
	idx := c.ItemIndex(bookID)
	if idx == -1 {
		return nil, nil
	}
	updated := copyCart(c)
	updated.Items[idx].Quantity = qty
	s.carts[userID] = *updated
	return copyCart(*updated), nil
}

func (s *Store) PullItem(_ context.Context, userID, bookID primitive.ObjectID) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, nil
	}
	kept := make([]models.CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.BookID != bookID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	s.carts[userID] = c
	return copyCart(c), nil
}

func (s *Store) DeleteCart(_ context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

func (s *Store) SetCartAddress(_ context.Context, userID primitive.ObjectID, addr models.Address) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		c = models.Cart{ID: primitive.NewObjectID(), UserID: userID, Items: []models.CartItem{}}
	}
	c.Address = &addr
	s.carts[userID] = *copyCart(c)
	return copyCart(c), nil
}

// -- Orders --

func copyOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

func (s *Store) InsertOrder(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	s.orders[o.ID] = record[models.Order]{seq: s.next(), doc: copyOrder(*o)}
	return nil
}

func (s *Store) FindOrder(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	o := copyOrder(r.doc)
	return &o, nil
}

func (s *Store) listOrders(match func(models.Order) bool) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var recs []record[models.Order]
	for _, r := range s.orders {
		if match(r.doc) {
			recs = append(recs, record[models.Order]{seq: r.seq, doc: copyOrder(r.doc)})
		}
	}
	return newestFirst(recs, func(o models.Order) time.Time { return o.CreatedAt })
}

func (s *Store) ListOrdersByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.listOrders(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (s *Store) ListOrdersByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Order, error) {
	return s.listOrders(func(o models.Order) bool { return o.HasOwner(ownerID) }), nil
}

func (s *Store) DeleteOrder(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return false, nil
	}
	delete(s.orders, id)
	return true, nil
}

// -- Reservations --

func (s *Store) InsertReservation(_ context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.reservations[r.ID] = record[models.Reservation]{seq: s.next(), doc: *r}
	return nil
}

func (s *Store) FindReservation(_ context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.reservations[id]
	if !ok {
		return nil, nil
	}
	r := rec.doc
	return &r, nil
}

func (s *Store) listReservations(match func(models.Reservation) bool) []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var recs []record[models.Reservation]
	for _, r := range s.reservations {
		if match(r.doc) {
			recs = append(recs, r)
		}
	}
	return newestFirst(recs, func(r models.Reservation) time.Time { return r.ReservedAt })
}

func (s *Store) ListReservationsByUser(_ context.Context, userID primitive.ObjectID) ([]models.Reservation, error) {
	return s.listReservations(func(r models.Reservation) bool { return r.UserID == userID }), nil
}

func (s *Store) ListReservationsByOwner(_ context.Context, ownerID primitive.ObjectID) ([]models.Reservation, error) {
	return s.listReservations(func(r models.Reservation) bool { return r.OwnerID == ownerID }), nil
}

func (s *Store) SetReservationStatus(_ context.Context, id primitive.ObjectID, status models.ReservationStatus) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.reservations[id]
	if !ok {
		return nil, nil
	}
	rec.doc.Status = status
	s.reservations[id] = rec
	r := rec.doc
	return &r, nil
}

func (s *Store) TransitionReservation(_ context.Context, id primitive.ObjectID, from, to models.ReservationStatus) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.reservations[id]
	if !ok || rec.doc.Status != from {
		return nil, nil
	}
	rec.doc.Status = to
	s.reservations[id] = rec
	r := rec.doc
	return &r, nil
}

func (s *Store) ExpireReservations(_ context.Context, deadlineBefore time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, rec := range s.reservations {
		if rec.doc.Status == models.ReservationPending && rec.doc.PickupDeadline.Before(deadlineBefore) {
			rec.doc.Status = models.ReservationExpired
			s.reservations[id] = rec
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteReservation(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[id]; !ok {
		return false, nil
	}
	delete(s.reservations, id)
	return true, nil
}

// -- Users --

func copyUser(u models.User) *models.User {
	if u.Address != nil {
		a := *u.Address
		u.Address = &a
	}
	return &u
}

func (s *Store) InsertUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return models.ErrDuplicateKey
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = *copyUser(*u)
	return nil
}

func (s *Store) FindUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *Store) SetUserAddress(_ context.Context, id primitive.ObjectID, addr models.Address) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u.Address = &addr
	u.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	s.users[id] = *copyUser(u)
	return copyUser(u), nil
}

func (s *Store) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

// -- Owners --

func (s *Store) InsertOwner(_ context.Context, o *models.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	s.owners[o.ID] = *o
	return nil
}

func (s *Store) FindOwner(_ context.Context, id primitive.ObjectID) (*models.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.owners[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *Store) FindOwnerByUser(_ context.Context, userID primitive.ObjectID) (*models.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.owners {
		if o.UserID == userID {
			return &o, nil
		}
	}
	return nil, nil
}

func (s *Store) ListOwners(_ context.Context) ([]models.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Owner, 0, len(s.owners))
	for _, o := range s.owners {
		out = append(out, o)
	}
	// ObjectIDs grow with creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (s *Store) UpdateOwner(_ context.Context, id primitive.ObjectID, u models.OwnerUpdate) (*models.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.owners[id]
	if !ok {
		return nil, nil
	}
	u.Apply(&o)
	s.owners[id] = o
	return &o, nil
}

func (s *Store) DeleteOwner(_ context.Context, id primitive.ObjectID) (*models.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.owners[id]
	if !ok {
		return nil, nil
	}
	delete(s.owners, id)
	return &o, nil
}
