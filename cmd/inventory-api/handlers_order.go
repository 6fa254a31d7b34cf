package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/inventory-api/internal/events"
	"github.com/MikeMC777/inventory-api/internal/httpx"
	"github.com/MikeMC777/inventory-api/internal/order"
	"github.com/MikeMC777/inventory-api/internal/user"
)

// OrderPlacer is what the HTTP layer needs from the reservation engine.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, userID int64, items []order.ItemRequest, idemKey string) (*order.Order, error)
}

func createOrderHandler(engine OrderPlacer, producer *events.Producer) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := httpx.Principal(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated for order creation"})
			return
		}
		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		o, err := engine.PlaceOrder(c.Request.Context(), claims.UserID, req.Items, c.GetHeader("Idempotency-Key"))
		if err != nil {
			respondErr(c, err)
			return
		}

		if producer != nil {
			rid, _ := c.Get("rid")
			ridStr, _ := rid.(string)
			lines := make([]events.OrderLine, 0, len(o.Lines))
			for _, l := range o.Lines {
				lines = append(lines, events.OrderLine{
					ProductID:    l.ProductID,
					Quantity:     l.Quantity,
					PriceAtOrder: l.PriceAtOrder,
				})
			}
			producer.PublishOrderCreated(ridStr, events.OrderCreatedPayload{
				OrderID:     o.ID,
				UserID:      o.UserID,
				TotalAmount: o.TotalAmount,
				Lines:       lines,
			})
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "order created successfully and stock reduced",
			"order":   o,
		})
	}
}

func listOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := httpx.Principal(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}
		var (
			orders []order.Order
			err    error
		)
		if claims.Role == string(user.RoleAdmin) {
			orders, err = repo.ListAll(c.Request.Context())
		} else {
			orders, err = repo.ListByUser(c.Request.Context(), claims.UserID)
		}
		if err != nil {
			respondErr(c, err)
			return
		}
		if orders == nil {
			orders = []order.Order{}
		}
		c.JSON(http.StatusOK, orders)
	}
}
