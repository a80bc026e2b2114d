package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookmarket/payment"
)

// CreatePaymentIntent charges an amount given in major units, as the cart
// total shown to the buyer.
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	intent, err := h.Gateway.CreateIntent(c.Request.Context(), req.Amount, h.currency(req.Currency), payment.PurposeOrder)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret, "intent": intent})
}

// CreateReservationIntent quotes the reservation fee for the book and opens
// an intent for it. The quoted fee is what the client later sends to
// POST /api/reservations.
func (h *Handler) CreateReservationIntent(c *gin.Context) {
	var req struct {
		BookID   string `json:"bookId"`
		Quantity int    `json:"quantity"`
		Currency string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	quote, err := h.Reservations.QuoteFee(c.Request.Context(), req.BookID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	intent, err := h.Gateway.CreateIntent(c.Request.Context(), quote.ReservationFee, h.currency(req.Currency), payment.PurposeReservation)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret, "intent": intent, "quote": quote})
}

func (h *Handler) PaymentStatus(c *gin.Context) {
	status, err := h.Gateway.Status(c.Request.Context(), c.Param("intentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("intentId"), "status": status})
}

func (h *Handler) currency(requested string) string {
	if requested != "" {
		return requested
	}
	return h.Currency
}
