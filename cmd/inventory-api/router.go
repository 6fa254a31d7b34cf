package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/inventory-api/internal/auth"
	"github.com/MikeMC777/inventory-api/internal/category"
	"github.com/MikeMC777/inventory-api/internal/events"
	"github.com/MikeMC777/inventory-api/internal/httpx"
	"github.com/MikeMC777/inventory-api/internal/order"
	"github.com/MikeMC777/inventory-api/internal/product"
	"github.com/MikeMC777/inventory-api/internal/user"
)

type deps struct {
	tokens     *auth.Manager
	users      *user.Service
	categories category.Repository
	products   product.Repository
	engine     OrderPlacer
	orders     order.Repository
	producer   *events.Producer
}

func buildRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", registerHandler(d.users))
		authGroup.POST("/login", loginHandler(d.users))
		authGroup.GET("/verify-email", verifyEmailHandler(d.users))
		authGroup.POST("/forgot-password", forgotPasswordHandler(d.users))
		authGroup.POST("/reset-password", resetPasswordHandler(d.users))
	}

	api := r.Group("/api", httpx.Auth(d.tokens))
	admin := httpx.RequireRole(string(user.RoleAdmin))
	{
		api.GET("/categories", listCategoriesHandler(d.categories))
		api.GET("/categories/:id", getCategoryHandler(d.categories))
		api.POST("/categories", admin, createCategoryHandler(d.categories))
		api.PUT("/categories/:id", admin, updateCategoryHandler(d.categories))
		api.DELETE("/categories/:id", admin, deleteCategoryHandler(d.categories))

		api.GET("/products", listProductsHandler(d.products))
		api.GET("/products/:id", getProductHandler(d.products))
		api.POST("/products", admin, createProductHandler(d.products))
		api.PUT("/products/:id", admin, updateProductHandler(d.products))
		api.DELETE("/products/:id", admin, deleteProductHandler(d.products))

		api.POST("/orders", createOrderHandler(d.engine, d.producer))
		api.GET("/orders", listOrdersHandler(d.orders))
	}

	return r
}
