package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventhub/event-gateway/internal/prefs"
)

// PrefsHandler exposes device-side preferences, currently just the
// onboarding-seen flag.
type PrefsHandler struct {
	prefs  *prefs.Store
	logger *zap.Logger
}

func NewPrefsHandler(prefsStore *prefs.Store, logger *zap.Logger) *PrefsHandler {
	return &PrefsHandler{
		prefs:  prefsStore,
		logger: logger,
	}
}

func (h *PrefsHandler) GetOnboarding(c *gin.Context) {
	seen, err := h.prefs.OnboardingSeen(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to read onboarding flag", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"seen": seen})
}

func (h *PrefsHandler) MarkOnboarding(c *gin.Context) {
	if err := h.prefs.MarkOnboardingSeen(c.Request.Context()); err != nil {
		h.logger.Error("Failed to store onboarding flag", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"seen": true})
}
