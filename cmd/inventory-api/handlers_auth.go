package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/inventory-api/internal/user"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func registerHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		u, err := svc.Register(c.Request.Context(), req.Email, req.Password, user.ParseRole(req.Role))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "user registered successfully",
			"user":    u,
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func loginHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		token, _, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token})
	}
}

func verifyEmailHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.VerifyEmail(c.Request.Context(), c.Query("token")); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "email successfully verified"})
	}
}

func forgotPasswordHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if err := svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "if an account with that email exists, a password reset link has been sent"})
	}
}

func resetPasswordHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Token       string `json:"token"`
			NewPassword string `json:"new_password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if err := svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "password reset successful"})
	}
}
