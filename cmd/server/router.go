package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Skufu/sickness-predictor/internal/advice"
	"github.com/Skufu/sickness-predictor/internal/audit"
	"github.com/Skufu/sickness-predictor/internal/symptom"
)

const (
	emptySymptomsMessage = "Please enter some symptoms"
	requestIDHeader      = "X-Request-ID"
	requestIDKey         = "request_id"
	defaultHistoryLimit  = 20
	maxHistoryLimit      = 100
	maxBodyBytes         = 1 << 20
)

type predictRequest struct {
	Symptoms string `json:"symptoms"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type apiHandler struct {
	predictor *symptom.Predictor
	responder *advice.Responder
	trail     *audit.Trail
	logger    *zap.Logger
	features  int
}

func setupRouter(db HealthChecker, api *apiHandler) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		requestID(),
		limitBodySize(maxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)
	router.SetHTMLTemplate(pageTemplates)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	router.GET("/predict", api.predict)
	router.POST("/predict", api.predict)
	router.POST("/chat", api.chat)
	router.GET("/info", api.info)
	router.GET("/history", api.history)

	router.GET("/", api.formPage)
	router.POST("/", api.formPredict)
	router.POST("/chat/form", api.formChat)

	return router
}

func (h *apiHandler) predict(c *gin.Context) {
	var symptoms string
	if c.Request.Method == http.MethodGet {
		symptoms = c.Query("symptoms")
	} else {
		var req predictRequest
		// a body that does not decode carries no symptoms
		if err := c.ShouldBindJSON(&req); bodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		symptoms = req.Symptoms
	}

	result, err := h.predictor.Predict(symptoms)
	if errors.Is(err, symptom.ErrEmptyInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": emptySymptomsMessage})
		return
	}
	if err != nil {
		h.logger.Error("prediction failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("source", "api"),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.trail.Save(c.Request.Context(), "api", symptoms, result)
	c.JSON(http.StatusOK, result)
}

func (h *apiHandler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if bodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": h.responder.Respond(req.Message)})
}

func (h *apiHandler) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":  version,
		"classes":  h.predictor.Classes(),
		"top_k":    h.predictor.TopK(),
		"features": h.features,
		"audit":    h.trail.Enabled(),
	})
}

func (h *apiHandler) history(c *gin.Context) {
	if !h.trail.Enabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "prediction history is disabled"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := h.trail.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("history query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": entries, "total": len(entries)})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func bodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
