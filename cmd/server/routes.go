package main

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/errors"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/middleware"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/monitoring"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/security"
)

func (s *server) setupRouter() *gin.Engine {
	r := gin.New()

	// Request ID first so recovered panics and error bodies carry it; monitoring
	// sits outside recovery so panics are still counted
	r.Use(middleware.RequestID())
	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(errors.RecoveryHandler())
	r.Use(monitoring.SecurityMonitoringMiddleware(s.logger))
	r.Use(security.SecurityHeadersMiddleware(s.cfg.IsProduction()))
	r.Use(cors.New(corsConfig(s.cfg.CORSAllowOrigins)))
	r.Use(errors.ErrorHandler())

	r.GET("/health", s.handleHealth)
	r.GET("/templates", s.handleTemplates)
	r.GET("/rank", s.handleStatus)

	scoring := r.Group("/")
	scoring.Use(security.ValidateContentType())
	scoring.Use(security.MaxBodySize(security.DefaultMaxBodyBytes))
	scoring.Use(security.RequestTimeout(s.requestTimeout()))
	{
		scoring.POST("/rank", s.handleRank)
		scoring.POST("/score", s.handleScore)
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// corsConfig allows every origin when the list is empty or contains "*"
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	var allowed []string
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowed = nil
			break
		}
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	if len(allowed) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowed
	}
	return cfg
}
