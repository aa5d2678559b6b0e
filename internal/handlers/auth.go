package handlers

import (
	"clariasense/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Credentials a device exchanges for a token.
type tokenRequest struct {
	Device string `json:"device" binding:"required"`
	Secret string `json:"secret" binding:"required"`
}

// TokenRequest is an exported model for Swagger docs of the token payload.
type TokenRequest struct {
	Device string `json:"device" example:"tank-1"`
	Secret string `json:"secret" example:"change-me-too"`
}

// @Summary      Issue device token
// @Description  Exchanges a provisioned device name and secret for a bearer token used by /api/v1.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      TokenRequest  true  "Device credentials"
// @Success      200   {object}  map[string]string  "token"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/token [post]
func (h *Handler) issueToken(c *gin.Context) {
	var input tokenRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.GenerateToken(c.Request.Context(), input.Device, input.Secret)
	switch {
	case errors.Is(err, service.ErrDeviceNotFound), errors.Is(err, service.ErrInvalidSecret):
		h.log.Infow("auth_token_denied", "device", input.Device, "err", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "auth_token_failed", err, "device", input.Device)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
