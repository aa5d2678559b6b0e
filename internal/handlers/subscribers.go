package handlers

import (
	"clariasense/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	msgSubscribed        = "Subscribed successfully"
	msgAlreadySubscribed = "Already subscribed"
	msgUnsubscribed      = "Unsubscribed successfully"

	errMissingEmail       = "Missing or invalid email"
	errSubscriberNotFound = "Subscriber not found"
)

// SubscribeRequest is the subscribe payload.
type SubscribeRequest struct {
	Email string `json:"email" example:"operator@example.com"`
}

// @Summary      Subscribe to alerts
// @Description  Adds the normalized (trimmed, lowercased) email to the alert list. Idempotent.
// @Tags         subscribers
// @Accept       json
// @Produce      json
// @Param        body  body      SubscribeRequest  true  "Email to subscribe"
// @Success      201   {object}  map[string]interface{}  "message, subscriber"
// @Success      200   {object}  map[string]interface{}  "already subscribed"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/subscribe [post]
func (h *Handler) subscribe(c *gin.Context) {
	var req SubscribeRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	sub, created, err := h.services.Subscribe(c.Request.Context(), req.Email)
	switch {
	case errors.Is(err, service.ErrEmailRequired), errors.Is(err, service.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "subscribe_failed", err)
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{"message": msgAlreadySubscribed, "email": sub.Email})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msgSubscribed, "subscriber": sub})
}

// @Summary      Unsubscribe from alerts
// @Description  Target of the link in every alert email. Removes all subscribers matching the normalized email.
// @Tags         subscribers
// @Produce      json
// @Param        email  query     string  true  "Subscribed email"  example(operator@example.com)
// @Success      200    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/unsubscribe [get]
func (h *Handler) unsubscribe(c *gin.Context) {
	err := h.services.Unsubscribe(c.Request.Context(), c.Query("email"))
	switch {
	case errors.Is(err, service.ErrEmailRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingEmail})
	case errors.Is(err, service.ErrSubscriberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errSubscriberNotFound})
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "unsubscribe_failed", err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": msgUnsubscribed})
	}
}
