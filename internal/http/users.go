package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfspace/bookshelf/internal/auth"
)

// UsersController handles signup, login and API token rotation.
type UsersController struct {
	service  *auth.Service
	sessions *auth.SessionManager
}

func NewUsersController(service *auth.Service, sessions *auth.SessionManager) *UsersController {
	return &UsersController{
		service:  service,
		sessions: sessions,
	}
}

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup creates an account and logs the new user in. The response
// carries the API token once; it is not retrievable later.
func (uc *UsersController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username, email and password are required")
		return
	}

	user, err := uc.service.Signup(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			respondError(c, http.StatusConflict, err.Error())
			return
		}
		respondBadRequest(c, err.Error())
		return
	}

	if uc.sessions != nil {
		if err := uc.sessions.CreateSession(c.Request, user); err != nil {
			respondInternalError(c, err, "create session")
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":      user,
		"api_token": user.Token,
	})
}

// Login validates credentials and starts a session.
func (uc *UsersController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username and password are required")
		return
	}

	user, err := uc.service.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountLocked) {
			respondError(c, http.StatusTooManyRequests, err.Error())
			return
		}
		// Do not reveal whether the user exists.
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if uc.sessions != nil {
		if err := uc.sessions.CreateSession(c.Request, user); err != nil {
			respondInternalError(c, err, "create session")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout destroys the session.
func (uc *UsersController) Logout(c *gin.Context) {
	if uc.sessions != nil {
		if err := uc.sessions.DestroySession(c.Request); err != nil {
			respondInternalError(c, err, "destroy session")
			return
		}
	}
	respondSuccess(c, "logged out")
}

// RotateToken replaces the caller's API token.
func (uc *UsersController) RotateToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	token, err := uc.service.RotateToken(userID)
	if err != nil {
		respondInternalError(c, err, "rotate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"api_token": token})
}

// Me returns the authenticated user.
func (uc *UsersController) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := uc.service.GetUserByID(userID)
	if err != nil {
		respondNotFound(c, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
