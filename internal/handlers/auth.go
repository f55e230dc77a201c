package handlers

import (
	"net/http"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/repository"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	log *zap.Logger
}

func NewAuthHandler(log *zap.Logger) *AuthHandler {
	return &AuthHandler{log: log}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	if !utils.IsValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
		return
	}
	if !utils.IsComplexPassword(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters with upper, lower, number and symbol"})
		return
	}

	user, err := repository.CreateUser(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		h.log.Error("Failed to create user", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}

	session := sessions.Default(c)
	session.Set("userID", user.ID)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"email": user.Email, "userStatus": user.Status})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := repository.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	session := sessions.Default(c)
	session.Set("userID", user.ID)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"email": user.Email, "userStatus": user.Status})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to logout"})
		return
	}
	c.Status(http.StatusNoContent)
}

// currentUser pulls the user the loader middleware put on the context.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
