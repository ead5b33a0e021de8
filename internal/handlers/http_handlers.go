package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"spinwheel/internal/models"
	"spinwheel/internal/services"
)

// HTTPHandler exposes the spin service as a JSON API for the wheel
// frontend.
type HTTPHandler struct {
	service       *services.SpinService
	adminPassword string
}

// NewHTTPHandler creates a new HTTPHandler. An empty adminPassword
// disables the admin endpoints.
func NewHTTPHandler(service *services.SpinService, adminPassword string) *HTTPHandler {
	return &HTTPHandler{
		service:       service,
		adminPassword: adminPassword,
	}
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	router.Use(CORSMiddleware())

	api := router.Group("/api")
	{
		api.POST("/register", h.Register)
		api.GET("/participant/:id", h.GetParticipant)
		api.GET("/slots", h.GetSlots)
		api.POST("/spin/:id", h.Spin)
		api.POST("/admin/reset", h.ResetWinners)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// CORSMiddleware allows the wheel frontend to be served from a
// different origin.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Register handles POST /api/register.
func (h *HTTPHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	p, err := h.service.Register(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		logger.Errorf("register participant: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register participant"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetParticipant handles GET /api/participant/:id.
func (h *HTTPHandler) GetParticipant(c *gin.Context) {
	p, err := h.service.Participant(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrParticipantNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Participant not found"})
		return
	}
	if err != nil {
		logger.Errorf("fetch participant: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch participant"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetSlots handles GET /api/slots. The full slot list is returned so
// the wheel can render every segment, full or not.
func (h *HTTPHandler) GetSlots(c *gin.Context) {
	slots, err := h.service.Slots(c.Request.Context())
	if err != nil {
		logger.Errorf("fetch slots: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch prize slots"})
		return
	}
	c.JSON(http.StatusOK, slots)
}

// Spin handles POST /api/spin/:id.
func (h *HTTPHandler) Spin(c *gin.Context) {
	outcome, err := h.service.Spin(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Participant not found"})
	case errors.Is(err, services.ErrAlreadySpun):
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Participant has already spun the wheel",
			"result":  outcome.Result,
		})
	case err != nil:
		logger.Errorf("spin wheel: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to spin wheel"})
	default:
		c.JSON(http.StatusOK, outcome)
	}
}

// ResetWinners handles POST /api/admin/reset. Testing back door: zeroes
// every slot's winner count.
func (h *HTTPHandler) ResetWinners(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	_ = c.ShouldBindJSON(&req)

	if h.adminPassword == "" || req.Password != h.adminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if err := h.service.ResetWinners(c.Request.Context()); err != nil {
		logger.Errorf("reset winners: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reset winners"})
		return
	}

	slots, err := h.service.Slots(c.Request.Context())
	if err != nil {
		logger.Errorf("fetch slots after reset: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch prize slots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Winner counts reset successfully",
		"slots":   slots,
	})
}
