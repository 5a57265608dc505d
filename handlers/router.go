package handlers

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"itinera/services"
)

// NewRouter wires middleware and routes onto a fresh gin engine.
func NewRouter(h *Handler, allowedOrigins []string) (*gin.Engine, error) {
	if len(allowedOrigins) == 0 {
		return nil, fmt.Errorf("at least one allowed origin is required")
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := services.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("register validators: %w", err)
		}
	}

	r := gin.New()
	r.Use(RequestLogger(), Recovery())

	// Trusted proxies (the API usually sits behind one)
	if err := r.SetTrustedProxies([]string{"0.0.0.0/0"}); err != nil {
		return nil, err
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", userIDHeader, requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", requestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.POST("/search", h.Search)

		it := api.Group("/itineraries")
		it.POST("/generate", h.Generate)
		it.POST("", h.Save)
		it.GET("", h.List)
		it.GET("/:id", h.Get)
		it.PATCH("/:id", h.Update)
		it.DELETE("/:id", h.Delete)
		it.GET("/:id/pdf", h.Download)
	}
	return r, nil
}
