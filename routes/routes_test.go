package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"bookmarket/controllers"
	"bookmarket/database/memstore"
	"bookmarket/filestore"
	"bookmarket/models"
	"bookmarket/payment"
	"bookmarket/services"
)

// --- Mocks ---

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, amount float64, currency string, purpose payment.Purpose) (*payment.Intent, error) {
	args := m.Called(ctx, amount, currency, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) Status(ctx context.Context, intentID string) (payment.Status, error) {
	args := m.Called(ctx, intentID)
	return args.Get(0).(payment.Status), args.Error(1)
}

type testApp struct {
	t       *testing.T
	router  *gin.Engine
	store   *memstore.Store
	auth    *services.AuthService
	gateway *MockGateway
}

func newTestApp(t *testing.T) *testApp {
	gin.SetMode(gin.TestMode)

	store := memstore.New()
	dir := t.TempDir()
	files, err := filestore.NewLocal(dir)
	require.NoError(t, err)

	auth := services.NewAuthService(store, "test-secret", nil).WithHashCost(bcrypt.MinCost)
	gateway := new(MockGateway)
	h := &controllers.Handler{
		Auth:         auth,
		Catalog:      services.NewCatalogService(store, store, files, nil),
		Owners:       services.NewOwnerService(store, store, files),
		Cart:         services.NewCartService(store, store),
		Orders:       services.NewOrderService(store, nil),
		Reservations: services.NewReservationService(store, store, nil),
		Gateway:      gateway,
		Currency:     "lkr",
	}

	r := gin.New()
	SetupRoutes(r, h, Options{UploadDir: dir})
	return &testApp{t: t, router: r, store: store, auth: auth, gateway: gateway}
}

func (a *testApp) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) json(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, token)
}

// multipart posts fields plus one small file per entry of files.
func (a *testApp) multipart(method, path, token string, fields map[string]string, files ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	for _, field := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(a.t, err)
		_, err = fw.Write([]byte("\x89PNG"))
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req, token)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID   string      `json:"id"`
		Role models.Role `json:"role"`
	} `json:"user"`
}

func (a *testApp) register(email string, role models.Role) authBody {
	w := a.json(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "User " + email, "email": email, "password": "pw", "role": role,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authBody](a.t, w)
}

func (a *testApp) adminToken() string {
	admin := &models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(a.t, a.store.InsertUser(context.Background(), admin))
	token, err := a.auth.IssueToken(admin)
	require.NoError(a.t, err)
	return token
}

// approvedShop registers a seller with an approved owner profile and one
// book of the given stock and price.
func (a *testApp) approvedShop() (seller authBody, ownerID, bookID string) {
	seller = a.register("seller@example.com", models.RoleSeller)

	w := a.multipart(http.MethodPost, "/api/register", "", map[string]string{
		"userId": seller.User.ID, "fullName": "Nimal Perera", "bookShopName": "Godage", "city": "Colombo", "district": "Colombo",
	}, "nicFile", "bookshopImage")
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	ownerID = decode[map[string]string](a.t, w)["ownerId"]

	w = a.json(http.MethodPut, "/api/owner/"+ownerID, a.adminToken(), map[string]string{"status": "Approved"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	w = a.multipart(http.MethodPost, "/api/owners/"+ownerID+"/books", seller.Token, map[string]string{
		"title": "Madol Doova", "author": "Martin Wickramasinghe", "category": "Novel", "isbn": "9789552",
		"price": "500", "stock": "5",
	}, "coverImage")
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	bookID = decode[map[string]any](a.t, w)["bookId"].(string)
	return seller, ownerID, bookID
}

func TestOrderFlow(t *testing.T) {
	app := newTestApp(t)
	_, ownerID, bookID := app.approvedShop()
	buyer := app.register("buyer@example.com", models.RoleSeeker)

	w := app.json(http.MethodPost, "/api/cart", "", map[string]any{"userId": buyer.User.ID, "bookId": bookID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cart := decode[struct {
		Cart []models.CartItem `json:"cart"`
	}](t, w).Cart
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, 500.0, cart[0].Price)

	w = app.json(http.MethodPost, "/api/orders", "", map[string]any{
		"userId": buyer.User.ID,
		"items": []map[string]any{{
			"bookId": bookID, "ownerId": ownerID, "title": cart[0].Title, "quantity": 2, "price": 500,
		}},
		"address": map[string]string{"name": "Kamal", "street": "3 Hill St", "city": "Kandy"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[struct {
		Order models.Order `json:"order"`
	}](t, w).Order
	assert.Equal(t, models.DefaultOrderStatus, order.Status)
	assert.Equal(t, "Kandy", order.Address.City)

	// The client clears the cart after a successful order.
	w = app.json(http.MethodGet, "/api/cart/"+buyer.User.ID, "", nil)
	assert.Len(t, decode[map[string][]any](t, w)["cart"], 1)
	w = app.json(http.MethodDelete, "/api/cart/"+buyer.User.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = app.json(http.MethodGet, "/api/cart/"+buyer.User.ID, "", nil)
	assert.JSONEq(t, `{"cart":[]}`, w.Body.String())

	w = app.json(http.MethodGet, "/api/orders/owner/"+ownerID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sellerOrders := decode[[]models.Order](t, w)
	require.Len(t, sellerOrders, 1)
	assert.Equal(t, order.ID, sellerOrders[0].ID)

	w = app.json(http.MethodGet, "/api/books/"+bookID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	book := decode[models.BookDetail](t, w)
	assert.Equal(t, 5, book.Stock, "orders do not touch stock")
	require.NotNil(t, book.Shop)
	assert.Equal(t, "Godage", book.Shop.BookShopName)

	w = app.json(http.MethodGet, book.CoverImage, "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "local covers are served under /uploads")

	w = app.json(http.MethodDelete, "/api/orders/"+order.ID.Hex(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = app.json(http.MethodDelete, "/api/orders/"+order.ID.Hex(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReservationFlow(t *testing.T) {
	app := newTestApp(t)
	_, ownerID, bookID := app.approvedShop()
	buyer := app.register("buyer@example.com", models.RoleSeeker)

	w := app.json(http.MethodGet, "/api/reservations/quote?bookId="+bookID+"&quantity=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 500.0, decode[services.FeeQuote](t, w).ReservationFee)

	app.gateway.On("CreateIntent", mock.Anything, 500.0, "lkr", payment.PurposeReservation).
		Return(&payment.Intent{ID: "chrg_1", ClientSecret: "chrg_1", Amount: 500, Status: payment.StatusPending}, nil).Once()
	w = app.json(http.MethodPost, "/api/payments/create-reservation-intent", "", map[string]any{"bookId": bookID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "chrg_1", decode[map[string]any](t, w)["clientSecret"])
	app.gateway.AssertExpectations(t)

	w = app.json(http.MethodPost, "/api/reservations", "", map[string]any{
		"userId": buyer.User.ID, "bookId": bookID, "quantity": 2, "reservationFee": 500,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	r := decode[struct {
		Reservation models.Reservation `json:"reservation"`
	}](t, w).Reservation
	assert.Equal(t, models.ReservationPending, r.Status)
	assert.Equal(t, ownerID, r.OwnerID.Hex())
	assert.Equal(t, 7*24*time.Hour, r.PickupDeadline.Sub(r.ReservedAt))

	w = app.json(http.MethodGet, "/api/reservations/owner/"+ownerID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[struct {
		Reservations []models.ReservationWithBook `json:"reservations"`
	}](t, w).Reservations
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Book)
	assert.Equal(t, "Madol Doova", listed[0].Book.Title)

	w = app.json(http.MethodPut, "/api/reservations/pickup/"+r.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = app.json(http.MethodPut, "/api/reservations/pickup/"+r.ID.Hex(), "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.json(http.MethodPut, "/api/reservations/cancel/"+r.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"expired"`)

	w = app.json(http.MethodPost, "/api/reservations", "", map[string]any{"userId": buyer.User.ID, "bookId": bookID, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccessControl(t *testing.T) {
	app := newTestApp(t)
	seller, ownerID, bookID := app.approvedShop()
	buyer := app.register("buyer@example.com", models.RoleSeeker)

	w := app.json(http.MethodGet, "/api/owners", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = app.json(http.MethodGet, "/api/owners", seller.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.json(http.MethodPut, "/api/books/"+bookID, buyer.Token, map[string]any{"price": 10})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = app.json(http.MethodPut, "/api/books/"+bookID, seller.Token, map[string]any{"price": 420.5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"price":420.5`)

	w = app.json(http.MethodDelete, "/api/owner/"+ownerID, seller.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.json(http.MethodGet, "/api/auth/me", buyer.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "buyer@example.com")
	assert.NotContains(t, w.Body.String(), "password")

	w = app.json(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Root", "email": "root@example.com", "password": "pw", "role": models.RoleAdmin,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestErrorMapping(t *testing.T) {
	app := newTestApp(t)

	w := app.json(http.MethodGet, "/api/books/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid identifier"}`, w.Body.String())

	w = app.json(http.MethodGet, "/api/books/"+primitive.NewObjectID().Hex(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.json(http.MethodGet, "/api/cart/"+primitive.NewObjectID().Hex(), "", nil)
	assert.JSONEq(t, `{"cart":[]}`, w.Body.String())

	w = app.json(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSellerCannotTouchAnotherShop(t *testing.T) {
	app := newTestApp(t)
	_, ownerID, bookID := app.approvedShop()
	rival := app.register("rival@example.com", models.RoleSeller)

	w := app.json(http.MethodPut, "/api/books/"+bookID, rival.Token, map[string]any{"price": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = app.json(http.MethodDelete, "/api/books/"+bookID, rival.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = app.multipart(http.MethodPost, "/api/owners/"+ownerID+"/books", rival.Token, map[string]string{
		"title": "Fake", "author": "X", "category": "Y", "isbn": "1",
	}, "coverImage")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.json(http.MethodGet, "/api/books/"+bookID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 500.0, decode[models.BookDetail](t, w).Price)
}

func TestNonFinitePriceIsNotStored(t *testing.T) {
	app := newTestApp(t)
	seller, ownerID, bookID := app.approvedShop()

	w := app.multipart(http.MethodPost, "/api/owners/"+ownerID+"/books", seller.Token, map[string]string{
		"title": "Gamperaliya", "author": "Martin Wickramasinghe", "category": "Novel", "isbn": "9789553",
		"price": "NaN", "stock": "2",
	}, "coverImage")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.multipart(http.MethodPut, "/api/books/"+bookID, seller.Token, map[string]string{"price": "Inf"})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.json(http.MethodGet, "/api/owners/"+ownerID+"/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	books := decode[[]models.Book](t, w)
	require.Len(t, books, 2)
	assert.Zero(t, books[0].Price)
	assert.Zero(t, books[1].Price)
}
