package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ovenlight/sms-dispatch/internal/apperrors"
	"github.com/ovenlight/sms-dispatch/internal/domain/campaign"
	"github.com/ovenlight/sms-dispatch/internal/domain/conversation"
	"github.com/ovenlight/sms-dispatch/internal/domain/customer"
	"github.com/ovenlight/sms-dispatch/internal/domain/message"
	"github.com/ovenlight/sms-dispatch/internal/gateway"
)

// fakeMessageRepo is an in-memory message.Repository.
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*message.Message
	saveErr  error
}

func (f *fakeMessageRepo) Save(ctx context.Context, m *message.Message) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *m
	f.messages = append(f.messages, &copied)
	return nil
}

func (f *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, message.ErrNotFound
}

func (f *fakeMessageRepo) GetByGatewaySID(ctx context.Context, sid string) (*message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.GatewaySID == sid {
			copied := *m
			return &copied, nil
		}
	}
	return nil, message.ErrNotFound
}

func (f *fakeMessageRepo) ListByBatchID(ctx context.Context, batchID uuid.UUID) ([]*message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*message.Message
	for _, m := range f.messages {
		if m.BatchID != nil && *m.BatchID == batchID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) ListAwaitingStatus(ctx context.Context, limit, maxChecks int) ([]*message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*message.Message
	for _, m := range f.messages {
		if len(out) >= limit {
			break
		}
		if m.GatewaySID == "" || m.Status.Terminal() || m.StatusCheckCount >= maxChecks {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeMessageRepo) RecordStatusCheck(ctx context.Context, m *message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.messages {
		if stored.ID == m.ID {
			stored.Status = m.Status
			stored.ErrorCode = m.ErrorCode
			stored.ErrorMessage = m.ErrorMessage
			stored.RawResponse = m.RawResponse
			stored.StatusCheckCount++
			return nil
		}
	}
	return message.ErrNotFound
}

func (f *fakeMessageRepo) ListDispatched(ctx context.Context, page, limit int) ([]*message.Message, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*message.Message
	for _, m := range f.messages {
		if m.GatewaySID != "" {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

var _ message.Repository = (*fakeMessageRepo)(nil)

// fakeGateway is a scriptable gateway.Client that counts calls.
type fakeGateway struct {
	sendFn      func(to, from, body string) (*gateway.SendResult, error)
	fetchFn     func(sid string) (*gateway.StatusResult, error)
	sendBatchFn func(recipients []string, body, senderID string) (*gateway.BatchResult, error)

	sendCalls  int
	fetchCalls int
	batchCalls int
}

func (f *fakeGateway) Send(ctx context.Context, to, from, body string) (*gateway.SendResult, error) {
	f.sendCalls++
	if f.sendFn != nil {
		return f.sendFn(to, from, body)
	}
	return &gateway.SendResult{
		SID:    "SM" + uuid.NewString(),
		Status: "queued",
		From:   from,
		To:     to,
		Body:   body,
		Raw:    `{"status":"queued"}`,
	}, nil
}

func (f *fakeGateway) FetchStatus(ctx context.Context, sid string) (*gateway.StatusResult, error) {
	f.fetchCalls++
	if f.fetchFn != nil {
		return f.fetchFn(sid)
	}
	return &gateway.StatusResult{SID: sid, Status: "sent"}, nil
}

func (f *fakeGateway) SendBatch(ctx context.Context, recipients []string, body, senderID string) (*gateway.BatchResult, error) {
	f.batchCalls++
	if f.sendBatchFn != nil {
		return f.sendBatchFn(recipients, body, senderID)
	}
	return &gateway.BatchResult{Accepted: len(recipients), Raw: `{"accepted":true}`}, nil
}

func (f *fakeGateway) Health(ctx context.Context) error { return nil }

var _ gateway.Client = (*fakeGateway)(nil)

// fakeConversationRepo is an in-memory conversation.Repository. When
// raceOnCreate is set, the first Create reports a lost unique-constraint
// race after registering the "winner's" row.
type fakeConversationRepo struct {
	mu           sync.Mutex
	byPhone      map[string]*conversation.Conversation
	raceOnCreate bool
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{byPhone: map[string]*conversation.Conversation{}}
}

func (f *fakeConversationRepo) GetByPhone(ctx context.Context, phone string) (*conversation.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byPhone[phone]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, conversation.ErrNotFound
}

func (f *fakeConversationRepo) Create(ctx context.Context, c *conversation.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byPhone[c.CustomerPhone]; ok {
		return conversation.ErrAlreadyExists
	}
	if f.raceOnCreate {
		f.raceOnCreate = false
		winner := conversation.New(c.CustomerPhone, nil)
		f.byPhone[c.CustomerPhone] = winner
		return conversation.ErrAlreadyExists
	}
	copied := *c
	f.byPhone[c.CustomerPhone] = &copied
	return nil
}

var _ conversation.Repository = (*fakeConversationRepo)(nil)

// fakeCustomerRepo is an in-memory customer.Repository.
type fakeCustomerRepo struct {
	byPhone map[string]*customer.Customer
}

func (f *fakeCustomerRepo) GetByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	if f.byPhone == nil {
		return nil, customer.ErrNotFound
	}
	if c, ok := f.byPhone[phone]; ok {
		return c, nil
	}
	return nil, customer.ErrNotFound
}

var _ customer.Repository = (*fakeCustomerRepo)(nil)

// fakeOptOutRepo is an in-memory optout.Repository.
type fakeOptOutRepo struct {
	numbers map[string]bool
}

func (f *fakeOptOutRepo) Exists(ctx context.Context, phone string) (bool, error) {
	return f.numbers[phone], nil
}

func (f *fakeOptOutRepo) Add(ctx context.Context, phone string) error {
	if f.numbers == nil {
		f.numbers = map[string]bool{}
	}
	f.numbers[phone] = true
	return nil
}

// fakeCampaignRepo is an in-memory campaign.Repository.
type fakeCampaignRepo struct {
	byID map[uuid.UUID]*campaign.Campaign
}

func newFakeCampaignRepo(campaigns ...*campaign.Campaign) *fakeCampaignRepo {
	f := &fakeCampaignRepo{byID: map[uuid.UUID]*campaign.Campaign{}}
	for _, c := range campaigns {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeCampaignRepo) Create(ctx context.Context, c *campaign.Campaign) error {
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	if c, ok := f.byID[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, campaign.ErrNotFound
}

func (f *fakeCampaignRepo) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time, sentCount int, gatewayResponse string) error {
	c, ok := f.byID[id]
	if !ok || c.Status != campaign.StatusDraft {
		return errors.New("campaign is not in draft status")
	}
	c.Status = campaign.StatusSent
	c.SentAt = &sentAt
	c.SentCount = sentCount
	c.GatewayResponse = gatewayResponse
	return nil
}

func (f *fakeCampaignRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	c, ok := f.byID[id]
	if !ok || c.Status != campaign.StatusDraft {
		return errors.New("campaign is not in draft status")
	}
	c.Status = campaign.StatusFailed
	c.FailedCount = 1
	c.ErrorMessage = errMsg
	return nil
}

var _ campaign.Repository = (*fakeCampaignRepo)(nil)

// gatewayErr builds a carrier rejection for tests.
func gatewayErr(code int, msg string, httpStatus int) error {
	return &apperrors.Gateway{Code: code, Message: msg, HTTPStatus: httpStatus}
}
