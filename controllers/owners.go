package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookmarket/models"
	"bookmarket/services"
)

var ownerFields = []string{"fullName", "address", "mobileNo", "bookShopName", "district", "city", "nic", "status"}

// RegisterOwner expects a multipart form with nicFile and bookshopImage.
func (h *Handler) RegisterOwner(c *gin.Context) {
	nicFile, closeNIC, err := formFile(c, "nicFile")
	if err != nil {
		badRequest(c, "Invalid upload")
		return
	}
	defer closeNIC()
	shopImage, closeShop, err := formFile(c, "bookshopImage")
	if err != nil {
		badRequest(c, "Invalid upload")
		return
	}
	defer closeShop()

	in := services.OwnerInput{
		UserID:       c.PostForm("userId"),
		FullName:     c.PostForm("fullName"),
		Address:      c.PostForm("address"),
		MobileNo:     c.PostForm("mobileNo"),
		BookShopName: c.PostForm("bookShopName"),
		District:     c.PostForm("district"),
		City:         c.PostForm("city"),
		NIC:          c.PostForm("nic"),
	}

	owner, err := h.Owners.RegisterOwner(c.Request.Context(), in, nicFile, shopImage)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Owner registered successfully!", "ownerId": owner.ID.Hex()})
}

func (h *Handler) ListOwners(c *gin.Context) {
	owners, err := h.Owners.ListOwners(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, owners)
}

func (h *Handler) GetOwner(c *gin.Context) {
	owner, err := h.Owners.GetOwner(c.Request.Context(), c.Param("ownerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, owner)
}

func (h *Handler) GetOwnerByUser(c *gin.Context) {
	owner, err := h.Owners.GetOwnerByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, owner)
}

// UpdateOwner accepts JSON (status changes from the admin screen) or a
// multipart form with an optional replacement nicFile.
func (h *Handler) UpdateOwner(c *gin.Context) {
	nicFile, closeNIC, err := formFile(c, "nicFile")
	if err != nil {
		badRequest(c, "Invalid upload")
		return
	}
	defer closeNIC()

	fields, err := partialFields(c, ownerFields...)
	if err != nil {
		badRequest(c, "Invalid input")
		return
	}
	u := models.OwnerUpdate{
		FullName:     fields["fullName"],
		Address:      fields["address"],
		MobileNo:     fields["mobileNo"],
		BookShopName: fields["bookShopName"],
		District:     fields["district"],
		City:         fields["city"],
		NIC:          fields["nic"],
	}
	if s := fields["status"]; s != nil {
		status := models.OwnerStatus(*s)
		u.Status = &status
	}

	owner, err := h.Owners.UpdateOwner(c.Request.Context(), c.Param("ownerId"), u, nicFile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Owner details updated successfully!", "updatedOwner": owner})
}

func (h *Handler) DeleteOwner(c *gin.Context) {
	owner, err := h.Owners.DeleteOwner(c.Request.Context(), c.Param("ownerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Owner deleted successfully!", "deletedOwner": owner})
}
