package services

import (
	"context"

	"bookmarket/models"
)

// CartService keeps one cart document per buyer. Concurrent AddItem calls for
// the same buyer race on read-modify-write of the item array; last write wins.
type CartService struct {
	carts CartStore
	books BookStore
}

func NewCartService(carts CartStore, books BookStore) *CartService {
	return &CartService{carts: carts, books: books}
}

func atLeastOne(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// AddItem adds quantity copies of book to the buyer's cart, creating the cart
// on first use. Re-adding a book increments its quantity and refreshes the
// cached title, price and cover from the catalog.
func (s *CartService) AddItem(ctx context.Context, buyerHex, bookHex string, quantity int) ([]models.CartItem, error) {
	buyerID, err := ParseID(buyerHex)
	if err != nil {
		return nil, err
	}
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

	cart, err := s.carts.FindCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &models.Cart{UserID: buyerID}
	}

	if idx := cart.ItemIndex(bookID); idx == -1 {
		cart.Items = append(cart.Items, models.CartItem{
			BookID:     bookID,
			Title:      book.Title,
			CoverImage: book.CoverImage,
			Price:      book.Price,
			Quantity:   qty,
		})
	} else {
		item := &cart.Items[idx]
		item.Quantity += qty
		item.Price = book.Price
		item.Title = book.Title
		item.CoverImage = book.CoverImage
	}

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// GetCart returns the buyer's items, or an empty list when there is no cart.
func (s *CartService) GetCart(ctx context.Context, buyerHex string) ([]models.CartItem, error) {
	buyerID, err := ParseID(buyerHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cart, err := s.carts.FindCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return itemsOf(cart), nil
}

// UpdateQuantity sets, not increments, the quantity of a cart line.
func (s *CartService) UpdateQuantity(ctx context.Context, buyerHex, bookHex string, quantity int) ([]models.CartItem, error) {
	buyerID, err := ParseID(buyerHex)
	if err != nil {
		return nil, err
	}
	bookID, err := ParseID(bookHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cart, err := s.carts.SetItemQuantity(ctx, buyerID, bookID, atLeastOne(quantity))
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartItemNotFound
	}
	return itemsOf(cart), nil
}

// RemoveItem is idempotent: removing an absent book is not an error.
func (s *CartService) RemoveItem(ctx context.Context, buyerHex, bookHex string) ([]models.CartItem, error) {
	buyerID, err := ParseID(buyerHex)
	if err != nil {
		return nil, err
	}
	bookID, err := ParseID(bookHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cart, err := s.carts.PullItem(ctx, buyerID, bookID)
	if err != nil {
		return nil, err
	}
	return itemsOf(cart), nil
}

// ClearCart deletes the whole cart document; idempotent.
func (s *CartService) ClearCart(ctx context.Context, buyerHex string) error {
	buyerID, err := ParseID(buyerHex)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.carts.DeleteCart(ctx, buyerID)
}

// SetAddress upserts the delivery address kept on the cart. It is separate
// from the address stored on the user.
func (s *CartService) SetAddress(ctx context.Context, buyerHex string, addr models.Address) (*models.Address, error) {
	buyerID, err := ParseID(buyerHex)
	if err != nil {
		return nil, err
	}
	if addr.IsZero() {
		return nil, validationf("address is required")
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cart, err := s.carts.SetCartAddress(ctx, buyerID, addr)
	if err != nil {
		return nil, err
	}
	return cart.Address, nil
}

func (s *CartService) GetAddress(ctx context.Context, buyerHex string) (*models.Address, error) {
	buyerID, err := ParseID(buyerHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cart, err := s.carts.FindCart(ctx, buyerID)
	if err != nil || cart == nil {
		return nil, err
	}
	return cart.Address, nil
}

func itemsOf(cart *models.Cart) []models.CartItem {
	if cart == nil || cart.Items == nil {
		return []models.CartItem{}
	}
	return cart.Items
}
