package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"health-reminder-backend/internal/apperr"
)

// GetVAPIDPublicKey returns the VAPID public key the browser subscribes with.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		h.respondError(c, apperr.Wrap(apperr.ErrPushDisabled, "vapid keys are not configured"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
