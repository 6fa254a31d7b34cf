package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/inventory-api/internal/apperr"
)

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondErr maps a typed failure onto a status code and JSON body. Stock
// failures carry the blamed product and the shortfall so the caller can
// adjust the request.
func respondErr(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		rid, _ := c.Get("rid")
		log.Printf("[http] rid=%v internal error: %v", rid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	body := gin.H{"error": e.Message}
	if e.ProductID != 0 {
		body["product_id"] = e.ProductID
	}
	if e.Requested > 0 {
		body["available"] = e.Available
		body["requested"] = e.Requested
	}
	c.JSON(statusFor(e.Kind), body)
}
