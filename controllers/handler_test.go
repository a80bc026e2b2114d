package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	middlewares "bookmarket/middleware"
	"bookmarket/payment"
	"bookmarket/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{services.ErrMissingFields, http.StatusBadRequest, "missing required fields"},
		{payment.ErrInvalidAmount, http.StatusBadRequest, payment.ErrInvalidAmount.Error()},
		{services.ErrBookNotFound, http.StatusNotFound, "book not found"},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{services.ErrAdminSignup, http.StatusForbidden, "admin registration is not allowed"},
		{services.ErrNotPending, http.StatusConflict, "reservation is not pending"},
		{payment.ErrDisabled, http.StatusServiceUnavailable, "payments are not configured"},
		{fmt.Errorf("issue token: %w", services.ErrNoSecret), http.StatusInternalServerError, middlewares.ConfigErrorMessage},
		{errors.New("connection reset"), http.StatusInternalServerError, "connection reset"},
	}

	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tc.err)
			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.body), w.Body.String())
		})
	}
}

func TestPartialFields(t *testing.T) {
	read := func(contentType, body string) map[string]*string {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", contentType)
		fields, err := partialFields(c, "title", "price", "stock")
		require.NoError(t, err)
		return fields
	}

	t.Run("json", func(t *testing.T) {
		f := read("application/json", `{"title":"Kaliyugaya","price":650.25,"stock":null}`)
		require.NotNil(t, f["title"])
		assert.Equal(t, "Kaliyugaya", *f["title"])
		require.NotNil(t, f["price"])
		assert.Equal(t, "650.25", *f["price"])
		assert.Nil(t, f["stock"])
	})

	t.Run("form", func(t *testing.T) {
		f := read("application/x-www-form-urlencoded", "title=&stock=3")
		require.NotNil(t, f["title"])
		assert.Equal(t, "", *f["title"])
		assert.Nil(t, f["price"])
		assert.Equal(t, "3", *f["stock"])
	})
}
