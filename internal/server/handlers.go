package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"demo-data-loader/internal/catalog"
	"demo-data-loader/internal/delivery"
	"demo-data-loader/internal/hook"
	"demo-data-loader/internal/loader"
	"demo-data-loader/internal/processor"
	"demo-data-loader/internal/source"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

type loadRequest struct {
	TemplateURL string   `json:"template_url"`
	WebhookURL  string   `json:"webhook_url"`
	Delay       *float64 `json:"delay"` // seconds
	Mode        string   `json:"mode"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "demo-data-loader",
		"description": "Generates sample security events for detection rule testing",
		"endpoints": gin.H{
			"POST /load": gin.H{
				"description": "Load demo events from template URL to webhook",
				"body": gin.H{
					"template_url": "URL to fetch the event template from (required)",
					"webhook_url":  "Webhook URL to send events to (required)",
					"delay":        "Delay between calls in seconds (optional, default: 0.05)",
					"mode":         "auto, events or lines (optional, default: auto)",
				},
			},
			"GET /rules":       "Detection rules the demo events trigger",
			"GET /webhook-url": "Webhook URL for ?oid=<organization id>",
			"GET /runs":        "Recent run reports, ?limit=N",
			"GET /runs/:id":    "One run report",
			"GET /health":      "Health check endpoint",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleLoad(c *gin.Context) {
	var body loadRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be JSON"})
		return
	}
	if strings.TrimSpace(body.TemplateURL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameter: template_url"})
		return
	}
	if strings.TrimSpace(body.WebhookURL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameter: webhook_url"})
		return
	}
	if !source.IsURL(body.TemplateURL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template_url must be a valid URL"})
		return
	}
	if err := loader.ValidateWebhookURL(body.WebhookURL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "webhook_url must be a valid URL"})
		return
	}
	req := loader.Request{
		Template: body.TemplateURL,
		Webhook:  body.WebhookURL,
	}
	if body.Mode != "" {
		mode, err := processor.ParseMode(body.Mode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Mode = mode
	}
	if body.Delay != nil {
		if *body.Delay < 0 || *body.Delay > loader.MaxDelay.Seconds() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("delay must be between 0 and %g seconds", loader.MaxDelay.Seconds())})
			return
		}
		d := time.Duration(*body.Delay * float64(time.Second))
		req.Delay = &d
	}

	rep, err := s.loader.Load(c.Request.Context(), req)
	switch {
	case errors.Is(err, processor.ErrInvalidTemplate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON in template: " + err.Error()})
		return
	case errors.Is(err, loader.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load demo data: " + err.Error()})
		return
	}

	if rep.Status == delivery.StatusPartial {
		c.JSON(http.StatusMultiStatus, rep)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) handleRules(c *gin.Context) {
	rules, err := catalog.Rules()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules, "count": len(rules)})
}

func (s *Server) handleWebhookURL(c *gin.Context) {
	target := hook.Target{
		Domain:    s.hook.Domain,
		Extension: s.hook.Extension,
		Name:      s.hook.Name,
		OID:       c.Query("oid"),
	}
	u, err := target.URL()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"oid": target.OID, "webhook_url": u})
}

func (s *Server) handleRuns(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run history is disabled"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRunsLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}
	runs, err := s.runs.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

func (s *Server) handleRun(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run history is disabled"})
		return
	}
	rep, ok, err := s.runs.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, rep)
}
