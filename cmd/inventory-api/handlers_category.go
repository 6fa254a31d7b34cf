package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/inventory-api/internal/category"
)

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func createCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req category.CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if len(req.Name) < 3 || len(req.Name) > 150 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category name must be between 3 and 150 characters"})
			return
		}
		cat := &category.Category{Name: req.Name}
		if err := repo.Create(c.Request.Context(), cat); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

func listCategoriesHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := repo.List(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		if cats == nil {
			cats = []category.Category{}
		}
		c.JSON(http.StatusOK, cats)
	}
}

func getCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		cat, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

func updateCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var req category.UpdateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.Name == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no valid fields provided for update"})
			return
		}
		if len(*req.Name) < 3 || len(*req.Name) > 150 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category name must be between 3 and 150 characters"})
			return
		}
		cat, err := repo.Update(c.Request.Context(), id, *req.Name)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

func deleteCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		if err := repo.Delete(c.Request.Context(), id); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
