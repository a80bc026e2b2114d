package services

import (
	"context"
	"strings"
	"time"

	"bookmarket/models"
)

type OrderService struct {
	orders OrderStore
	now    Clock
}

func NewOrderService(orders OrderStore, now Clock) *OrderService {
	if now == nil {
		now = time.Now
	}
	return &OrderService{orders: orders, now: now}
}

// OrderItemInput is one line of an order as sent by the client.
type OrderItemInput struct {
	BookID     string  `json:"bookId"`
	OwnerID    string  `json:"ownerId"`
	Title      string  `json:"title"`
	CoverImage string  `json:"coverImage"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

type CreateOrderInput struct {
	UserID  string           `json:"userId"`
	Items   []OrderItemInput `json:"items"`
	Address models.Address   `json:"address"`
	Status  string           `json:"status"`
}

// CreateOrder persists the order as submitted. Totals are not recomputed,
// stock is not touched and a retried request creates a second order.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	userID, err := ParseID(in.UserID)
	if err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		bookID, err := ParseID(it.BookID)
		if err != nil {
			return nil, err
		}
		ownerID, err := ParseID(it.OwnerID)
		if err != nil {
			return nil, err
		}
		if it.Quantity < 1 {
			return nil, validationf("item quantity must be at least 1")
		}
		items = append(items, models.OrderItem{
			BookID:     bookID,
			OwnerID:    ownerID,
			Title:      it.Title,
			CoverImage: it.CoverImage,
			Quantity:   it.Quantity,
			Price:      it.Price,
		})
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.DefaultOrderStatus
	}

	o := &models.Order{
		UserID:    userID,
		Items:     items,
		Address:   in.Address,
		Status:    status,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if err := s.orders.InsertOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) GetOrder(ctx context.Context, idHex string) (*models.Order, error) {
	id, err := ParseID(idHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	o, err := s.orders.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ListByBuyer returns the buyer's orders newest first.
func (s *OrderService) ListByBuyer(ctx context.Context, buyerHex string) ([]models.Order, error) {
	buyerID, err := ParseID(buyerHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	list, err := s.orders.ListOrdersByUser(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return nonNilOrders(list), nil
}

// ListBySeller returns every order holding at least one item of the seller.
func (s *OrderService) ListBySeller(ctx context.Context, sellerHex string) ([]models.Order, error) {
	sellerID, err := ParseID(sellerHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	list, err := s.orders.ListOrdersByOwner(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return nonNilOrders(list), nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, idHex string) error {
	id, err := ParseID(idHex)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ok, err := s.orders.DeleteOrder(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderNotFound
	}
	return nil
}

func nonNilOrders(list []models.Order) []models.Order {
	if list == nil {
		return []models.Order{}
	}
	return list
}
