package handler

import (
	"net/http"

	"github.com/ovenlight/sms-dispatch/internal/cache"
	"github.com/ovenlight/sms-dispatch/internal/gateway"
	"github.com/ovenlight/sms-dispatch/internal/response"
)

// HomeHandler serves the root and health endpoints.
type HomeHandler struct {
	cache   cache.Cache
	gateway gateway.Client
}

// NewHomeHandler returns a HomeHandler that probes the given
// dependencies from the health endpoint.
func NewHomeHandler(c cache.Cache, gw gateway.Client) *HomeHandler {
	return &HomeHandler{cache: c, gateway: gw}
}

// Index godoc
// @Summary     Welcome endpoint
// @Description Simple root endpoint that returns a welcome message.
// @Tags        home
// @Produce     json
// @Success     200 {object} response.WelcomePayload
// @Router      / [get]
func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, response.WelcomePayload{
		Message: "SMS dispatch service",
	})
}

// Health godoc
// @Summary     Health check
// @Description Reports reachability of the cache and the carrier gateway.
// @Tags        home
// @Produce     json
// @Success     200 {object} response.HealthPayload
// @Failure     503 {object} response.HealthPayload
// @Router      /health [get]
func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{}
	status := http.StatusOK

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			components["cache"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			components["cache"] = "ok"
		}
	}

	if h.gateway != nil {
		if err := h.gateway.Health(r.Context()); err != nil {
			components["gateway"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			components["gateway"] = "ok"
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	response.RespondJSON(w, status, response.HealthPayload{
		Status:     overall,
		Components: components,
	})
}
