package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"bookmarket/filestore"
	"bookmarket/logger"
	middlewares "bookmarket/middleware"
	"bookmarket/payment"
	"bookmarket/services"
	"bookmarket/utils"
)

// Handler holds the services behind the HTTP routes.
type Handler struct {
	Auth         *services.AuthService
	Catalog      *services.CatalogService
	Owners       *services.OwnerService
	Cart         *services.CartService
	Orders       *services.OrderService
	Reservations *services.ReservationService
	Gateway      payment.Gateway
	Currency     string
}

// respondError maps a service error to its status code. Misconfiguration
// never leaks its cause.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, payment.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, payment.ErrDisabled):
		status = http.StatusServiceUnavailable
	case errors.Is(err, services.ErrMisconfigured):
		msg = middlewares.ConfigErrorMessage
	}

	if status >= http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// formFile returns the named multipart file, or nil when it was not sent.
// The caller closes the returned closer.
func formFile(c *gin.Context, field string) (*filestore.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &filestore.Upload{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}, func() { f.Close() }, nil
}

// partialFields reads the named fields from a JSON or form body. A field
// that was not sent is nil.
func partialFields(c *gin.Context, names ...string) (map[string]*string, error) {
	out := make(map[string]*string, len(names))

	if c.ContentType() == binding.MIMEJSON {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, err
		}
		for _, name := range names {
			v, ok := body[name]
			if !ok || v == nil {
				continue
			}
			s := fmt.Sprint(v)
			if f, isNum := v.(float64); isNum {
				s = strconv.FormatFloat(f, 'f', -1, 64)
			}
			out[name] = &s
		}
		return out, nil
	}

	for _, name := range names {
		out[name] = utils.StringPtr(c.GetPostForm(name))
	}
	return out, nil
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
