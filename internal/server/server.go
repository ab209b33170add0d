// Package server exposes the loader over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"demo-data-loader/internal/config"
	"demo-data-loader/internal/delivery"
	"demo-data-loader/internal/loader"
)

// Loader runs one load request.
type Loader interface {
	Load(ctx context.Context, req loader.Request) (delivery.Report, error)
}

// RunLister reads finished runs.
type RunLister interface {
	RecentRuns(ctx context.Context, n int) ([]delivery.Report, error)
	GetRun(ctx context.Context, id string) (delivery.Report, bool, error)
}

// Server is the demo data HTTP service.
type Server struct {
	loader Loader
	runs   RunLister // nil when history is disabled
	hook   config.HookConfig
	router *gin.Engine
}

// NewServer creates the service and registers its routes.
func NewServer(l Loader, runs RunLister, hook config.HookConfig) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		loader: l,
		runs:   runs,
		hook:   hook,
		router: router,
	}

	router.GET("/", s.handleIndex)
	router.GET("/health", s.handleHealth)
	router.POST("/load", s.handleLoad)
	router.GET("/rules", s.handleRules)
	router.GET("/webhook-url", s.handleWebhookURL)
	router.GET("/runs", s.handleRuns)
	router.GET("/runs/:id", s.handleRun)

	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("server: request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}
