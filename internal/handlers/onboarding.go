package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jurados-presence/internal/session"
	"github.com/localnerve/jurados-presence/internal/utils"
	"go.uber.org/zap"
)

// OnboardingHandler reads and records whether the walkthrough was shown
type OnboardingHandler struct {
	Sessions *session.Registry
	Log      *zap.Logger
}

// OnboardingResponse reports the walkthrough flag
type OnboardingResponse struct {
	HasSeenOnboarding bool `json:"hasSeenOnboarding"`
}

// GetOnboarding handles GET /api/onboarding
// @Summary Has the walkthrough been shown
// @Tags Onboarding
// @Produce json
// @Security CookieAuth
// @Success 200 {object} OnboardingResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /onboarding [get]
func (h *OnboardingHandler) GetOnboarding(c *fiber.Ctx) error {
	seen, err := sessionFor(c, h.Sessions).HasSeenOnboarding(c.UserContext())
	if err != nil {
		h.Log.Error("read onboarding flag failed", zap.Error(err))
		return utils.ErrorResponse(c, "Unable to read onboarding state", fiber.StatusServiceUnavailable, "getOnboarding")
	}
	return c.Status(fiber.StatusOK).JSON(OnboardingResponse{HasSeenOnboarding: seen})
}

// MarkOnboarding handles POST /api/onboarding
// @Summary Record that the walkthrough was shown
// @Tags Onboarding
// @Produce json
// @Security CookieAuth
// @Success 200 {object} OnboardingResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /onboarding [post]
func (h *OnboardingHandler) MarkOnboarding(c *fiber.Ctx) error {
	if err := sessionFor(c, h.Sessions).MarkOnboardingSeen(c.UserContext()); err != nil {
		h.Log.Error("write onboarding flag failed", zap.Error(err))
		return utils.ErrorResponse(c, "Unable to save onboarding state", fiber.StatusServiceUnavailable, "markOnboarding")
	}
	return c.Status(fiber.StatusOK).JSON(OnboardingResponse{HasSeenOnboarding: true})
}
