package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bookmarket/controllers"
	"bookmarket/filestore"
	"bookmarket/logger"
	middlewares "bookmarket/middleware"
	"bookmarket/models"
)

var defaultOrigins = []string{"http://localhost:5173"}

type Options struct {
	CORSOrigins []string
	// UploadDir is served under /uploads when set.
	UploadDir string
	// Limiter throttles the auth and payment groups; nil disables it.
	Limiter *middlewares.RateLimiter
}

func SetupRoutes(r *gin.Engine, h *controllers.Handler, opts Options) {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(logger.RequestID(), logger.Access())

	if opts.UploadDir != "" {
		r.Static(filestore.URLPrefix, opts.UploadDir)
	}
	r.GET("/healthz", h.Health)

	var throttle gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if opts.Limiter != nil {
		throttle = opts.Limiter.Middleware()
	}
	requireSeller := middlewares.AuthMiddleware(h.Auth, models.RoleSeller)
	requireAdmin := middlewares.AuthMiddleware(h.Auth, models.RoleAdmin)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", throttle, h.Register)
		auth.POST("/login", throttle, h.Login)
		auth.GET("/me", middlewares.AuthMiddleware(h.Auth), h.Me)
		auth.GET("/user/:userId/address", h.GetUserAddress)
		auth.PUT("/user/:userId/address", h.UpdateUserAddress)
	}

	// Books
	api.POST("/owners/:ownerId/books", requireSeller, h.CreateBook)
	api.GET("/owners/:ownerId/books", h.ListOwnerBooks)
	api.GET("/books/:bookId", h.GetBook)
	api.PUT("/books/:bookId", requireSeller, h.UpdateBook)
	api.DELETE("/books/:bookId", requireSeller, h.DeleteBook)

	// Owners
	api.POST("/register", h.RegisterOwner)
	api.GET("/owners", requireAdmin, h.ListOwners)
	api.GET("/owner/:ownerId", h.GetOwner)
	api.GET("/owner/user/:userId", h.GetOwnerByUser)
	api.PUT("/owner/:ownerId", requireAdmin, h.UpdateOwner)
	api.DELETE("/owner/:ownerId", requireAdmin, h.DeleteOwner)

	cart := api.Group("/cart")
	{
		cart.POST("", h.AddToCart)
		cart.POST("/address", h.SetCartAddress)
		cart.PUT("/update", h.UpdateCartItem)
		cart.POST("/remove", h.RemoveCartItem)
		cart.GET("/:userId", h.GetCart)
		cart.GET("/:userId/address", h.GetCartAddress)
		cart.DELETE("/:userId", h.ClearCart)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("/user/:userId", h.ListBuyerOrders)
		orders.GET("/owner/:ownerId", h.ListSellerOrders)
		orders.GET("/:orderId", h.GetOrder)
		orders.DELETE("/:orderId", h.DeleteOrder)
	}

	reservations := api.Group("/reservations")
	{
		reservations.POST("", h.CreateReservation)
		reservations.GET("/quote", h.QuoteReservationFee)
		reservations.GET("/user/:userId", h.ListBuyerReservations)
		reservations.GET("/owner/:ownerId", h.ListSellerReservations)
		reservations.PUT("/cancel/:id", h.CancelReservation)
		reservations.PUT("/pickup/:id", h.ConfirmPickup)
		reservations.DELETE("/:id", h.DeleteReservation)
	}

	payments := api.Group("/payments", throttle)
	{
		payments.POST("/create-payment-intent", h.CreatePaymentIntent)
		payments.POST("/create-reservation-intent", h.CreateReservationIntent)
		payments.GET("/:intentId", h.PaymentStatus)
	}
}
