package apitest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tourism-app/internal/domain"
)

func (s *Server) respondAuth(c *gin.Context, status int, user domain.User) {
	token, err := s.tokens.issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("issue token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(status, domain.AuthResponse{Token: token, User: user})
}

// login maneja POST /auth/login.
func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	user, err := s.store.authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	s.respondAuth(c, http.StatusOK, user)
}

// signup maneja POST /auth/signup.
func (s *Server) signup(c *gin.Context) {
	var req domain.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" ||
		req.Password == "" || strings.TrimSpace(req.Phone) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, password and phone are required"})
		return
	}
	user, err := s.store.createAccount(req)
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		s.logger.Error("signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create account"})
		return
	}
	s.respondAuth(c, http.StatusCreated, user)
}

// forgotPassword maneja POST /auth/forgot-password. La respuesta no revela
// si el email existe.
func (s *Server) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	if !s.limiter.allow(req.Email) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}
	if token, ok := s.store.issueReset(req.Email); ok {
		s.mu.Lock()
		s.lastReset[domain.NormalizeEmail(req.Email)] = token
		s.mu.Unlock()
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a reset link was sent"})
}

// resetPassword maneja POST /auth/reset-password.
func (s *Server) resetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and password are required"})
		return
	}
	if err := s.store.resetPassword(req.Token, req.Password); err != nil {
		if errors.Is(err, errResetInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired reset token"})
			return
		}
		s.logger.Error("reset password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reset password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// logout maneja POST /auth/logout revocando el token usado.
func (s *Server) logout(c *gin.Context) {
	if cl, ok := authClaims(c); ok {
		s.tokens.revoke(cl)
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listDestinations(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.listDestinations(nil))
}

func (s *Server) searchDestinations(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	c.JSON(http.StatusOK, s.store.listDestinations(func(d domain.Destination) bool {
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.Location.City), q) ||
			strings.Contains(strings.ToLower(d.Location.Country), q)
	}))
}

func (s *Server) destinationsByCategory(c *gin.Context) {
	category := c.Param("category")
	c.JSON(http.StatusOK, s.store.listDestinations(func(d domain.Destination) bool {
		return strings.EqualFold(d.Category, category)
	}))
}

func (s *Server) getDestination(c *gin.Context) {
	d, ok := s.store.destination(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "destination not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) createBooking(c *gin.Context) {
	var req domain.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil || req.DestinationID == "" || req.Date == "" || req.NumberOfGuests < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "destination, date and guests are required"})
		return
	}
	b, err := s.store.createBooking(currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "destination not found"})
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (s *Server) listBookings(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.userBookings(currentUserID(c)))
}

func (s *Server) getBooking(c *gin.Context) {
	b, err := s.store.booking(currentUserID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) cancelBooking(c *gin.Context) {
	b, err := s.store.cancelBooking(currentUserID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) createReview(c *gin.Context) {
	var req domain.CreateReviewInput
	if err := c.ShouldBindJSON(&req); err != nil || req.DestinationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "destination is required"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}
	r, err := s.store.createReview(currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "destination not found"})
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) destinationReviews(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, s.store.listReviews(func(r domain.Review) bool {
		return r.DestinationID == id
	}))
}

func (s *Server) userReviews(c *gin.Context) {
	userID := currentUserID(c)
	c.JSON(http.StatusOK, s.store.listReviews(func(r domain.Review) bool {
		return r.UserID == userID
	}))
}

func (s *Server) updateProfile(c *gin.Context) {
	var req domain.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil || req.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	user, err := s.store.updateProfile(currentUserID(c), req)
	switch {
	case errors.Is(err, errEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case err != nil:
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		c.JSON(http.StatusOK, user)
	}
}

func (s *Server) updateSettings(c *gin.Context) {
	var req domain.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil || req.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	settings, err := s.store.updateSettings(currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) listFavorites(c *gin.Context) {
	favs, err := s.store.favorites(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, favs)
}

func (s *Server) addFavorite(c *gin.Context) {
	if err := s.store.setFavorite(currentUserID(c), c.Param("id"), true); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "destination not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) removeFavorite(c *gin.Context) {
	if err := s.store.setFavorite(currentUserID(c), c.Param("id"), false); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "destination not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
