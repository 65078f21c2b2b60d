// Package apitest levanta una API de turismo falsa sobre httptest para probar
// el cliente y la sesion contra HTTP real.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tourism-app/internal/domain"
)

const (
	apiPrefix   = "/api"
	tokenSecret = "apitest-secret"
)

// RecordedRequest es lo que el servidor vio de cada peticion entrante.
type RecordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	RequestID     string
}

// Hook corre antes del handler de una ruta. Si aborta el contexto, el
// handler no se ejecuta.
type Hook func(c *gin.Context)

// Server es una instancia de la API falsa.
type Server struct {
	logger  *zap.Logger
	store   *store
	tokens  *tokenIssuer
	limiter *resetLimiter
	httpSrv *httptest.Server

	mu        sync.Mutex
	requests  []RecordedRequest
	hooks     map[string]Hook
	lastReset map[string]string
}

// New arranca el servidor con un catalogo de destinos de ejemplo.
func New(logger *zap.Logger) *Server {
	gin.SetMode(gin.TestMode)
	s := newServer(logger)
	s.httpSrv = httptest.NewServer(s.router())
	return s
}

// Handler construye el mismo router sin levantar httptest, para servirlo
// con un http.Server propio.
func Handler(logger *zap.Logger) http.Handler {
	return newServer(logger).router()
}

func newServer(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:    logger,
		store:     newStore(),
		tokens:    newTokenIssuer(tokenSecret, time.Hour),
		limiter:   newResetLimiter(time.Minute, 3),
		hooks:     make(map[string]Hook),
		lastReset: make(map[string]string),
	}
	for _, d := range seedDestinations() {
		s.store.putDestination(d)
	}
	return s
}

// URL es la base que se le pasa a api.NewHTTPClient.
func (s *Server) URL() string { return s.httpSrv.URL + apiPrefix }

func (s *Server) Close() { s.httpSrv.Close() }

// Requests devuelve una copia de las peticiones recibidas en orden.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo filtra las peticiones por metodo y path exacto (sin /api).
func (s *Server) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) ClearRequests() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// SetHook instala un hook para method + route, donde route es el patron
// gin sin /api (por ejemplo "/destinations/:id"). Un hook nil lo quita.
func (s *Server) SetHook(method, route string, hook Hook) {
	key := method + " " + route
	s.mu.Lock()
	defer s.mu.Unlock()
	if hook == nil {
		delete(s.hooks, key)
		return
	}
	s.hooks[key] = hook
}

// SeedUser registra una cuenta directamente, sin pasar por HTTP.
func (s *Server) SeedUser(input domain.SignupInput) (domain.User, error) {
	return s.store.createAccount(input)
}

func (s *Server) SeedDestination(d domain.Destination) domain.Destination {
	return s.store.putDestination(d)
}

// ResetTokenFor devuelve el ultimo token de reseteo emitido para email.
func (s *Server) ResetTokenFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReset[domain.NormalizeEmail(email)]
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(zapLoggerMiddleware(s.logger), gin.Recovery(), s.recordMiddleware(), s.hookMiddleware())

	api := r.Group(apiPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/signup", s.signup)
	auth.POST("/forgot-password", s.forgotPassword)
	auth.POST("/reset-password", s.resetPassword)
	auth.POST("/logout", s.requireAuth(), s.logout)

	destinations := api.Group("/destinations")
	destinations.GET("", s.listDestinations)
	destinations.GET("/search", s.searchDestinations)
	destinations.GET("/category/:category", s.destinationsByCategory)
	destinations.GET("/:id", s.getDestination)

	bookings := api.Group("/bookings", s.requireAuth())
	bookings.POST("", s.createBooking)
	bookings.GET("", s.listBookings)
	bookings.GET("/:id", s.getBooking)
	bookings.PUT("/:id/cancel", s.cancelBooking)

	reviews := api.Group("/reviews")
	reviews.POST("", s.requireAuth(), s.createReview)
	reviews.GET("/destination/:id", s.destinationReviews)
	reviews.GET("/user", s.requireAuth(), s.userReviews)

	users := api.Group("/users", s.requireAuth())
	users.PUT("/profile", s.updateProfile)
	users.PUT("/settings", s.updateSettings)
	users.GET("/favorites", s.listFavorites)
	users.POST("/favorites/:id", s.addFavorite)
	users.DELETE("/favorites/:id", s.removeFavorite)

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
		)
	}
}

func (s *Server) recordMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := RecordedRequest{
			Method:        c.Request.Method,
			Path:          strings.TrimPrefix(c.Request.URL.Path, apiPrefix),
			RawQuery:      c.Request.URL.RawQuery,
			Authorization: c.GetHeader("Authorization"),
			RequestID:     c.GetHeader("X-Request-ID"),
		}
		s.mu.Lock()
		s.requests = append(s.requests, rec)
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) hookMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + strings.TrimPrefix(c.FullPath(), apiPrefix)
		s.mu.Lock()
		hook := s.hooks[key]
		s.mu.Unlock()
		if hook != nil {
			hook(c)
			if c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}

func seedDestinations() []domain.Destination {
	return []domain.Destination{
		{
			ID:          "dest-kyoto",
			Name:        "Kyoto Temples",
			Category:    "culture",
			Location:    domain.Location{City: "Kyoto", Country: "Japan", Coordinates: [2]float64{135.7681, 35.0116}},
			Images:      []domain.Image{{URL: "https://images.example.com/kyoto.jpg"}},
			Price:       180,
			Rating:      4.8,
			Description: "Historic temples and gardens.",
		},
		{
			ID:          "dest-lisbon",
			Name:        "Lisbon Old Town",
			Category:    "city",
			Location:    domain.Location{City: "Lisbon", Country: "Portugal", Coordinates: [2]float64{-9.1393, 38.7223}},
			Images:      []domain.Image{{URL: "https://images.example.com/lisbon.jpg"}},
			Price:       95.5,
			Rating:      4.6,
			Description: "Trams, tiles and viewpoints.",
		},
		{
			ID:          "dest-cusco",
			Name:        "Cusco & Sacred Valley",
			Category:    "adventure",
			Location:    domain.Location{City: "Cusco", Country: "Peru", Coordinates: [2]float64{-71.9675, -13.5320}},
			Images:      []domain.Image{{URL: "https://images.example.com/cusco.jpg"}},
			Price:       240,
			Rating:      4.9,
			Description: "Gateway to the Andes.",
		},
	}
}
