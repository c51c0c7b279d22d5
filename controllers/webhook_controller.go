package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookProcessor verifies and processes a raw gateway notification.
type WebhookProcessor interface {
	Process(ctx context.Context, payload []byte, sigHeader string) error
}

// WebhookController receives payment gateway notifications. The route must
// see the byte-exact request body: signature verification runs over the raw
// payload, so nothing may parse or rewrite it first.
type WebhookController struct {
	Processor WebhookProcessor
	Logger    *zap.Logger
}

// HandleWebhook answers 400 on signature failure and 200 for every verified
// event regardless of downstream outcome; the gateway does not retry on 200
// and must not be driven into a retry storm by business errors.
func (wc *WebhookController) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		wc.Logger.Warn("Failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if err := wc.Processor.Process(c.Request.Context(), payload, sigHeader); err != nil {
		wc.Logger.Warn("Webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
