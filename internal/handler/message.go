package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/ovenlight/sms-dispatch/internal/apperrors"
	"github.com/ovenlight/sms-dispatch/internal/request"
	"github.com/ovenlight/sms-dispatch/internal/response"
	"github.com/ovenlight/sms-dispatch/internal/scheduler"
	"github.com/ovenlight/sms-dispatch/internal/service"
)

// MessageHandler wires the HTTP endpoints to the send, reconcile and
// scheduler services.
type MessageHandler struct {
	sendSvc   service.SendService
	reconcile service.ReconcilerService
	schSvc    scheduler.Service
}

// NewMessageHandler constructs a new MessageHandler with its dependencies.
func NewMessageHandler(sendSvc service.SendService, reconcile service.ReconcilerService, schSvc scheduler.Service) *MessageHandler {
	return &MessageHandler{
		sendSvc:   sendSvc,
		reconcile: reconcile,
		schSvc:    schSvc,
	}
}

// respondServiceError maps a service error onto the HTTP contract.
// Unclassified errors are logged in full and surfaced as a generic 500.
func respondServiceError(w http.ResponseWriter, err error) {
	status := apperrors.StatusCode(err)
	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] Internal error: %v", err)
		response.RespondError(w, status, "internal server error")
		return
	}
	response.RespondError(w, status, err.Error())
}

// Send godoc
// @Summary     Send a message
// @Description Sends one SMS to an E.164 destination and persists the outcome.
// @Tags        messages
// @Accept      json
// @Produce     json
// @Param       request body request.SendMessageRequest true "Destination and body"
// @Success     200 {object} response.SendMessagePayload
// @Failure     400 {object} response.ErrorBody
// @Failure     401 {object} response.ErrorBody
// @Failure     403 {object} response.ErrorBody
// @Security    BearerAuth
// @Router      /messages/send [post]
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req request.SendMessageRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := h.sendSvc.Send(r.Context(), req.To, req.Body, req.FromNumber)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, response.SendMessagePayload{
		Success:    true,
		Message:    "message sent",
		GatewaySID: msg.GatewaySID,
	})
}

// Status godoc
// @Summary     Check message status
// @Description Fetches current gateway status for one message (by sid or messageId) or a whole batch (by batchId).
// @Tags        messages
// @Produce     json
// @Param       sid       query string false "Gateway message SID"
// @Param       messageId query string false "Internal message id"
// @Param       batchId   query string false "Campaign batch id"
// @Success     200 {object} response.StatusLookupPayload
// @Failure     400 {object} response.ErrorBody
// @Failure     404 {object} response.ErrorBody
// @Security    BearerAuth
// @Router      /messages/status [get]
func (h *MessageHandler) Status(w http.ResponseWriter, r *http.Request) {
	sel := service.StatusSelector{
		SID:       r.URL.Query().Get("sid"),
		MessageID: r.URL.Query().Get("messageId"),
		BatchID:   r.URL.Query().Get("batchId"),
	}

	entries, err := h.reconcile.Lookup(r.Context(), sel)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, response.StatusLookupPayload{
		Success:  true,
		Message:  "status lookup complete",
		Statuses: entries,
	})
}

// Reconcile godoc
// @Summary     Reconcile due messages
// @Description Polls the gateway for messages awaiting a terminal status. Invoked by an external cron-style caller.
// @Tags        messages
// @Produce     json
// @Param       limit query int false "Batch size (max 500)" default(100)
// @Success     200 {object} response.ReconcilePayload
// @Failure     400 {object} response.ErrorBody
// @Security    BearerAuth
// @Router      /messages/reconcile [get]
func (h *MessageHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	result, err := h.reconcile.Reconcile(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, response.ReconcilePayload{
		Success: true,
		Message: "reconciliation complete",
		Checked: result.Checked,
		Updated: result.Updated,
		Results: result.Results,
	})
}

// List godoc
// @Summary     List dispatched messages
// @Description Returns a paginated list of gateway-accepted messages, newest first.
// @Tags        messages
// @Produce     json
// @Param       page  query int false "Page number"         default(1)
// @Param       limit query int false "Page size (max 100)" default(20)
// @Success     200 {object} response.MessagesPayload
// @Failure     500 {object} response.ErrorBody
// @Security    BearerAuth
// @Router      /messages [get]
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	limit := 20

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	items, total, err := h.sendSvc.ListDispatched(r.Context(), page, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, response.MessagesPayload{
		Success: true,
		Items:   response.FromDomainMessages(items),
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// ControlScheduler godoc
// @Summary     Control the reconcile scheduler
// @Description Starts or stops the optional in-process reconcile cadence.
// @Tags        scheduler
// @Accept      json
// @Produce     json
// @Param       request body request.SchedulerRequest true "Scheduler action (start|stop)"
// @Success     200 {object} response.SchedulerControlPayload
// @Failure     400 {object} response.ErrorBody
// @Security    BearerAuth
// @Router      /scheduler [post]
func (h *MessageHandler) ControlScheduler(w http.ResponseWriter, r *http.Request) {
	var req request.SchedulerRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch req.Action {
	case "start":
		if err := h.schSvc.Start(); err != nil {
			response.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		response.RespondJSON(w, http.StatusOK, response.SchedulerControlPayload{
			Success: true,
			Message: "scheduler started",
		})

	case "stop":
		if err := h.schSvc.Stop(); err != nil {
			response.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		response.RespondJSON(w, http.StatusOK, response.SchedulerControlPayload{
			Success: true,
			Message: "scheduler stopped",
		})

	default:
		response.RespondError(w, http.StatusBadRequest, "action must be 'start' or 'stop'")
	}
}
