package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	middlewares "bookmarket/middleware"
	"bookmarket/models"
	"bookmarket/services"
)

func authResponse(u *models.User, token string) gin.H {
	return gin.H{
		"token": token,
		"user": gin.H{
			"id":    u.ID.Hex(),
			"name":  u.Name,
			"email": u.Email,
			"role":  u.Role,
		},
	}
}

func (h *Handler) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	u, token, err := h.Auth.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse(u, token))
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	u, token, err := h.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse(u, token))
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.Auth.Me(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) GetUserAddress(c *gin.Context) {
	addr, err := h.Auth.GetAddress(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr})
}

func (h *Handler) UpdateUserAddress(c *gin.Context) {
	var input struct {
		Address *models.Address `json:"address"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	addr, err := h.Auth.UpdateAddress(c.Request.Context(), c.Param("userId"), input.Address)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address updated", "address": addr})
}
