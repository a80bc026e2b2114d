package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookmarket/services"
	"bookmarket/utils"
)

func (h *Handler) CreateReservation(c *gin.Context) {
	var req struct {
		UserID         string  `json:"userId"`
		BookID         string  `json:"bookId"`
		Quantity       int     `json:"quantity"`
		ReservationFee float64 `json:"reservationFee"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	r, err := h.Reservations.CreateReservation(c.Request.Context(), services.CreateReservationInput{
		UserID:         req.UserID,
		BookID:         req.BookID,
		Quantity:       req.Quantity,
		ReservationFee: req.ReservationFee,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Reservation created", "reservation": r})
}

func (h *Handler) ListBuyerReservations(c *gin.Context) {
	list, err := h.Reservations.ListByBuyer(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": list})
}

func (h *Handler) ListSellerReservations(c *gin.Context) {
	list, err := h.Reservations.ListBySeller(c.Request.Context(), c.Param("ownerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": list})
}

func (h *Handler) CancelReservation(c *gin.Context) {
	r, err := h.Reservations.CancelReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled", "reservation": r})
}

func (h *Handler) ConfirmPickup(c *gin.Context) {
	r, err := h.Reservations.ConfirmPickup(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation picked up", "reservation": r})
}

func (h *Handler) DeleteReservation(c *gin.Context) {
	if err := h.Reservations.DeleteReservation(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation deleted"})
}

// QuoteReservationFee reads bookId and quantity from the query string.
func (h *Handler) QuoteReservationFee(c *gin.Context) {
	quote, err := h.Reservations.QuoteFee(c.Request.Context(), c.Query("bookId"), utils.ParseInt(c.Query("quantity"), 1))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
