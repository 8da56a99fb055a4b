package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ovenlight/sms-dispatch/internal/apperrors"
	"github.com/ovenlight/sms-dispatch/internal/cache"
	"github.com/ovenlight/sms-dispatch/internal/domain/message"
	"github.com/ovenlight/sms-dispatch/internal/gateway"
)

const (
	// DefaultReconcileLimit is the batch size when the caller does not
	// request one.
	DefaultReconcileLimit = 100
	// MaxReconcileLimit is the hard ceiling on one pass, regardless of
	// the caller-requested limit.
	MaxReconcileLimit = 500
)

// CheckResult is the per-message outcome of one reconcile pass.
type CheckResult struct {
	MessageID  string `json:"messageId"`
	GatewaySID string `json:"gatewaySid"`
	Previous   string `json:"previous,omitempty"`
	Current    string `json:"current,omitempty"`
	Changed    bool   `json:"changed"`
	Error      string `json:"error,omitempty"`
}

// ReconcileResult summarises one reconcile pass.
type ReconcileResult struct {
	Checked int
	Updated int
	Results []CheckResult
}

// StatusEntry is one row of a selector-based status lookup.
type StatusEntry struct {
	MessageID    string     `json:"messageId,omitempty"`
	GatewaySID   string     `json:"gatewaySid,omitempty"`
	Status       string     `json:"status,omitempty"`
	ErrorCode    *int       `json:"errorCode,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	DateSent     *time.Time `json:"dateSent,omitempty"`
	DateUpdated  *time.Time `json:"dateUpdated,omitempty"`
	Price        string     `json:"price,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// StatusSelector picks the messages for a status lookup. Exactly one
// field must be set.
type StatusSelector struct {
	SID       string
	MessageID string
	BatchID   string
}

// ReconcilerService polls the gateway for messages awaiting a terminal
// status and serves ad-hoc status lookups.
type ReconcilerService interface {
	// Reconcile runs one bounded polling pass. limit <= 0 selects the
	// default; a limit above MaxReconcileLimit is an InvalidRequest.
	Reconcile(ctx context.Context, limit int) (*ReconcileResult, error)

	// Lookup fetches current gateway status for the selected message(s).
	Lookup(ctx context.Context, sel StatusSelector) ([]StatusEntry, error)

	// ProcessBatch runs one pass with defaults; it is the scheduler hook.
	ProcessBatch(ctx context.Context) error
}

type reconcilerService struct {
	messages  message.Repository
	gateway   gateway.Client
	cache     cache.Cache
	maxChecks int
	callPause time.Duration
}

// NewReconcilerService creates a reconciler. maxChecks is the per-message
// polling ceiling; callPause is the fixed delay between gateway calls
// within one pass, capping the outbound request rate.
func NewReconcilerService(
	messages message.Repository,
	gw gateway.Client,
	c cache.Cache,
	maxChecks int,
	callPause time.Duration,
) ReconcilerService {
	if maxChecks <= 0 {
		maxChecks = 10
	}
	if callPause <= 0 {
		callPause = 250 * time.Millisecond
	}

	return &reconcilerService{
		messages:  messages,
		gateway:   gw,
		cache:     c,
		maxChecks: maxChecks,
		callPause: callPause,
	}
}

// Reconcile processes eligible messages strictly sequentially with a
// fixed pause between gateway calls. A per-message gateway error is
// recorded in that message's result entry and never aborts the pass.
func (s *reconcilerService) Reconcile(ctx context.Context, limit int) (*ReconcileResult, error) {
	if limit <= 0 {
		limit = DefaultReconcileLimit
	}
	if limit > MaxReconcileLimit {
		return nil, apperrors.NewInvalidRequest(fmt.Sprintf("limit must not exceed %d", MaxReconcileLimit))
	}

	msgs, err := s.messages.ListAwaitingStatus(ctx, limit, s.maxChecks)
	if err != nil {
		return nil, apperrors.NewPersistence("eligible message fetch", err)
	}

	result := &ReconcileResult{
		Results: make([]CheckResult, 0, len(msgs)),
	}

	if len(msgs) == 0 {
		log.Println("[Reconciler] No messages awaiting status.")
		return result, nil
	}

	log.Printf("[Reconciler] Checking %d messages (pause=%s)...", len(msgs), s.callPause)

	for i, msg := range msgs {
		if i > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.callPause):
			}
		}

		result.Checked++
		entry := CheckResult{
			MessageID:  msg.ID.String(),
			GatewaySID: msg.GatewaySID,
			Previous:   string(msg.Status),
		}

		status, err := s.gateway.FetchStatus(ctx, msg.GatewaySID)
		if err != nil {
			entry.Error = err.Error()
			result.Results = append(result.Results, entry)
			log.Printf("[Reconciler] Status fetch for %s failed: %v", msg.GatewaySID, err)
			continue
		}

		changed := msg.ApplyStatus(message.Status(status.Status), status.ErrorCode, status.ErrorMessage)
		msg.RawResponse = status.Raw

		// Persist even when unchanged: the check counter must advance so
		// a permanently stuck message eventually leaves the polling set.
		if err := s.messages.RecordStatusCheck(ctx, msg); err != nil {
			entry.Error = err.Error()
			result.Results = append(result.Results, entry)
			log.Printf("[Reconciler] Failed to record check for %s: %v", msg.ID, err)
			continue
		}

		entry.Current = string(msg.Status)
		entry.Changed = changed
		result.Results = append(result.Results, entry)

		if changed {
			result.Updated++
		}

		s.cacheSnapshot(ctx, msg.GatewaySID, status.Raw)
	}

	log.Printf("[Reconciler] Pass complete: checked=%d updated=%d", result.Checked, result.Updated)
	return result, nil
}

// Lookup resolves a selector to status entries. A message without a
// gateway SID yields an error entry rather than failing the lookup.
func (s *reconcilerService) Lookup(ctx context.Context, sel StatusSelector) ([]StatusEntry, error) {
	set := 0
	for _, v := range []string{sel.SID, sel.MessageID, sel.BatchID} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, apperrors.NewInvalidRequest("exactly one of sid, messageId or batchId is required")
	}

	switch {
	case sel.SID != "":
		entry, err := s.fetchEntry(ctx, "", sel.SID)
		if err != nil {
			return nil, err
		}
		return []StatusEntry{entry}, nil

	case sel.MessageID != "":
		id, err := uuid.Parse(sel.MessageID)
		if err != nil {
			return nil, apperrors.NewInvalidRequest("messageId must be a UUID")
		}
		msg, err := s.messages.GetByID(ctx, id)
		if errors.Is(err, message.ErrNotFound) {
			return nil, apperrors.NewNotFound("message", sel.MessageID)
		}
		if err != nil {
			return nil, apperrors.NewPersistence("message fetch", err)
		}
		return []StatusEntry{s.entryFor(ctx, msg)}, nil

	default:
		id, err := uuid.Parse(sel.BatchID)
		if err != nil {
			return nil, apperrors.NewInvalidRequest("batchId must be a UUID")
		}
		msgs, err := s.messages.ListByBatchID(ctx, id)
		if err != nil {
			return nil, apperrors.NewPersistence("batch fetch", err)
		}
		if len(msgs) == 0 {
			return nil, apperrors.NewNotFound("batch", sel.BatchID)
		}

		entries := make([]StatusEntry, 0, len(msgs))
		for _, msg := range msgs {
			entries = append(entries, s.entryFor(ctx, msg))
		}
		return entries, nil
	}
}

// ProcessBatch satisfies the scheduler's pass contract.
func (s *reconcilerService) ProcessBatch(ctx context.Context) error {
	_, err := s.Reconcile(ctx, DefaultReconcileLimit)
	return err
}

// entryFor builds a status entry for one stored message, fetching from
// the gateway when a SID exists.
func (s *reconcilerService) entryFor(ctx context.Context, msg *message.Message) StatusEntry {
	if msg.GatewaySID == "" {
		return StatusEntry{
			MessageID: msg.ID.String(),
			Error:     "no gateway SID available",
		}
	}

	entry, err := s.fetchEntry(ctx, msg.ID.String(), msg.GatewaySID)
	if err != nil {
		return StatusEntry{
			MessageID:  msg.ID.String(),
			GatewaySID: msg.GatewaySID,
			Error:      err.Error(),
		}
	}
	return entry
}

func (s *reconcilerService) fetchEntry(ctx context.Context, messageID, sid string) (StatusEntry, error) {
	status, err := s.gateway.FetchStatus(ctx, sid)
	if err != nil {
		return StatusEntry{}, err
	}

	if messageID == "" {
		if msg, lookupErr := s.messages.GetByGatewaySID(ctx, sid); lookupErr == nil {
			messageID = msg.ID.String()
		}
	}

	s.cacheSnapshot(ctx, sid, status.Raw)

	return StatusEntry{
		MessageID:    messageID,
		GatewaySID:   status.SID,
		Status:       status.Status,
		ErrorCode:    status.ErrorCode,
		ErrorMessage: status.ErrorMessage,
		DateSent:     status.DateSent,
		DateUpdated:  status.DateUpdated,
		Price:        status.Price,
	}, nil
}

// cacheSnapshot stores the latest raw gateway payload, best-effort.
func (s *reconcilerService) cacheSnapshot(ctx context.Context, sid, raw string) {
	if s.cache == nil || sid == "" || raw == "" {
		return
	}
	key := cache.GatewayStatus.Key(sid)
	if err := s.cache.Set(ctx, key, raw, 24*time.Hour); err != nil {
		log.Printf("[Reconciler] Failed to cache status for %s: %v", sid, err)
	}
}
