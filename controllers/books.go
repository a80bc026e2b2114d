package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	middlewares "bookmarket/middleware"
	"bookmarket/services"
)

var bookFields = []string{"title", "author", "category", "isbn", "price", "stock"}

// CreateBook expects a multipart form with a coverImage file. The seller
// may only list books in their own shop.
func (h *Handler) CreateBook(c *gin.Context) {
	if err := h.Catalog.AuthorizeOwner(c.Request.Context(), c.Param("ownerId"), middlewares.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	cover, closeCover, err := formFile(c, "coverImage")
	if err != nil {
		badRequest(c, "Invalid upload")
		return
	}
	defer closeCover()

	in := services.BookInput{
		Title:    c.PostForm("title"),
		Author:   c.PostForm("author"),
		Category: c.PostForm("category"),
		ISBN:     c.PostForm("isbn"),
		Price:    c.PostForm("price"),
		Stock:    c.PostForm("stock"),
	}

	book, err := h.Catalog.CreateBook(c.Request.Context(), c.Param("ownerId"), in, cover)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Book created", "bookId": book.ID.Hex(), "book": book})
}

func (h *Handler) ListOwnerBooks(c *gin.Context) {
	books, err := h.Catalog.ListBySeller(c.Request.Context(), c.Param("ownerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c *gin.Context) {
	book, err := h.Catalog.GetBook(c.Request.Context(), c.Param("bookId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// UpdateBook accepts JSON or a multipart form with an optional coverImage.
func (h *Handler) UpdateBook(c *gin.Context) {
	if err := h.Catalog.AuthorizeBook(c.Request.Context(), c.Param("bookId"), middlewares.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	cover, closeCover, err := formFile(c, "coverImage")
	if err != nil {
		badRequest(c, "Invalid upload")
		return
	}
	defer closeCover()

	fields, err := partialFields(c, bookFields...)
	if err != nil {
		badRequest(c, "Invalid input")
		return
	}
	u := services.BookUpdate{
		Title:    fields["title"],
		Author:   fields["author"],
		Category: fields["category"],
		ISBN:     fields["isbn"],
		Price:    fields["price"],
		Stock:    fields["stock"],
	}

	book, err := h.Catalog.UpdateBook(c.Request.Context(), c.Param("bookId"), u, cover)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book updated successfully.", "book": book})
}

func (h *Handler) DeleteBook(c *gin.Context) {
	if err := h.Catalog.AuthorizeBook(c.Request.Context(), c.Param("bookId"), middlewares.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	if err := h.Catalog.DeleteBook(c.Request.Context(), c.Param("bookId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully."})
}
