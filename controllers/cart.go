package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookmarket/models"
)

type cartItemRequest struct {
	UserID   string `json:"userId"`
	BookID   string `json:"bookId"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	items, err := h.Cart.AddItem(c.Request.Context(), req.UserID, req.BookID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated", "cart": items})
}

func (h *Handler) GetCart(c *gin.Context) {
	items, err := h.Cart.GetCart(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": items})
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	items, err := h.Cart.UpdateQuantity(c.Request.Context(), req.UserID, req.BookID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quantity updated", "cart": items})
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	items, err := h.Cart.RemoveItem(c.Request.Context(), req.UserID, req.BookID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed", "cart": items})
}

// ClearCart is called by the client once an order has been placed.
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.Cart.ClearCart(c.Request.Context(), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart deleted"})
}

func (h *Handler) SetCartAddress(c *gin.Context) {
	var req struct {
		UserID  string         `json:"userId"`
		Address models.Address `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	addr, err := h.Cart.SetAddress(c.Request.Context(), req.UserID, req.Address)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address updated", "address": addr})
}

func (h *Handler) GetCartAddress(c *gin.Context) {
	addr, err := h.Cart.GetAddress(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr})
}
