package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenlight/sms-dispatch/internal/apperrors"
	"github.com/ovenlight/sms-dispatch/internal/domain/message"
	"github.com/ovenlight/sms-dispatch/internal/gateway"
)

func newSendFixture(optedOut ...string) (*sendService, *fakeMessageRepo, *fakeGateway, *fakeConversationRepo) {
	messages := &fakeMessageRepo{}
	gw := &fakeGateway{}
	conversations := newFakeConversationRepo()

	opts := &fakeOptOutRepo{numbers: map[string]bool{}}
	for _, phone := range optedOut {
		opts.numbers[phone] = true
	}

	svc := NewSendService(
		messages,
		gw,
		NewComplianceFilter(opts, nil),
		NewConversationResolver(conversations, &fakeCustomerRepo{}),
		"+15550001111",
	).(*sendService)

	return svc, messages, gw, conversations
}

func TestSendSuccessPersistsSentMessage(t *testing.T) {
	svc, messages, gw, _ := newSendFixture()

	gw.sendFn = func(to, from, body string) (*gateway.SendResult, error) {
		return &gateway.SendResult{
			SID:    "SM123",
			Status: "queued",
			From:   from,
			To:     to,
			Body:   body,
			Raw:    `{"sid":"SM123","status":"queued"}`,
		}, nil
	}

	msg, err := svc.Send(context.Background(), "+15557654321", "hello there", "")
	require.NoError(t, err)

	assert.Equal(t, "SM123", msg.GatewaySID)
	assert.Equal(t, message.StatusQueued, msg.Status)
	assert.Equal(t, "+15550001111", msg.FromNumber)
	assert.NotNil(t, msg.SentAt)
	assert.Len(t, messages.messages, 1)
	assert.Equal(t, 1, gw.sendCalls)
}

func TestSendOptedOutWritesNothing(t *testing.T) {
	svc, messages, gw, conversations := newSendFixture("+15557654321")

	_, err := svc.Send(context.Background(), "+15557654321", "hello", "")
	require.Error(t, err)

	var cerr *apperrors.Compliance
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "+15557654321", cerr.Phone)

	// The compliance gate runs before any side effect.
	assert.Empty(t, messages.messages)
	assert.Zero(t, gw.sendCalls)
	assert.Empty(t, conversations.byPhone)
}

func TestSendRejectsMalformedNumberBeforeAnySideEffect(t *testing.T) {
	svc, messages, gw, conversations := newSendFixture()

	for _, to := range []string{"5551234567", "+0123456", "not-a-number", ""} {
		_, err := svc.Send(context.Background(), to, "hello", "")
		require.Error(t, err, "to=%q", to)

		var ierr *apperrors.InvalidRequest
		assert.ErrorAs(t, err, &ierr, "to=%q", to)
	}

	assert.Empty(t, messages.messages)
	assert.Zero(t, gw.sendCalls)
	assert.Empty(t, conversations.byPhone)
}

func TestSendGatewayFailurePersistsFailedMessage(t *testing.T) {
	svc, messages, gw, _ := newSendFixture()

	gw.sendFn = func(to, from, body string) (*gateway.SendResult, error) {
		return nil, gatewayErr(21211, "invalid 'To' phone number", 400)
	}

	_, err := svc.Send(context.Background(), "+15557654321", "hello", "")
	require.Error(t, err)

	var gerr *apperrors.Gateway
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, 21211, gerr.Code)

	// The failed attempt is still written for audit.
	require.Len(t, messages.messages, 1)
	stored := messages.messages[0]
	assert.Equal(t, message.StatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorCode)
	assert.Equal(t, 21211, *stored.ErrorCode)
	assert.Equal(t, "invalid 'To' phone number", stored.ErrorMessage)
	assert.Empty(t, stored.GatewaySID)
}

func TestSendNetworkFailurePersistsFailedMessageWithoutCode(t *testing.T) {
	svc, messages, gw, _ := newSendFixture()

	gw.sendFn = func(to, from, body string) (*gateway.SendResult, error) {
		return nil, errors.New("dial tcp: connection refused")
	}

	_, err := svc.Send(context.Background(), "+15557654321", "hello", "")
	require.Error(t, err)

	require.Len(t, messages.messages, 1)
	stored := messages.messages[0]
	assert.Equal(t, message.StatusFailed, stored.Status)
	assert.Nil(t, stored.ErrorCode)
	assert.Equal(t, "dial tcp: connection refused", stored.ErrorMessage)
}

func TestSendReusesConversationForSameNumber(t *testing.T) {
	svc, messages, _, _ := newSendFixture()

	_, err := svc.Send(context.Background(), "+15557654321", "first", "")
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), "+15557654321", "second", "")
	require.NoError(t, err)

	require.Len(t, messages.messages, 2)
	assert.Equal(t, messages.messages[0].ConversationID, messages.messages[1].ConversationID)
}

func TestSendFromHintOverridesDefaultSender(t *testing.T) {
	svc, messages, _, _ := newSendFixture()

	_, err := svc.Send(context.Background(), "+15557654321", "hello", "+15559990000")
	require.NoError(t, err)

	require.Len(t, messages.messages, 1)
	assert.Equal(t, "+15559990000", messages.messages[0].FromNumber)
}

func TestResolverRecoversFromLostCreateRace(t *testing.T) {
	conversations := newFakeConversationRepo()
	conversations.raceOnCreate = true

	resolver := NewConversationResolver(conversations, &fakeCustomerRepo{})

	id, err := resolver.Resolve(context.Background(), "+15557654321")
	require.NoError(t, err)

	winner, err := conversations.GetByPhone(context.Background(), "+15557654321")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, id)
}

func TestComplianceFilterFallsThroughToRegistry(t *testing.T) {
	opts := &fakeOptOutRepo{numbers: map[string]bool{"+15550002222": true}}
	filter := NewComplianceFilter(opts, nil)

	blocked, err := filter.IsBlocked(context.Background(), "+15550002222")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = filter.IsBlocked(context.Background(), "+15550003333")
	require.NoError(t, err)
	assert.False(t, blocked)
}
