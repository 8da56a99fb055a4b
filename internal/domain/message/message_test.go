package message

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTerminal(t *testing.T) {
	terminal := []Status{StatusDelivered, StatusUndelivered, StatusFailed, StatusCanceled, StatusReceived}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "status %q", s)
	}

	nonTerminal := []Status{StatusQueued, StatusAccepted, StatusSending, StatusSent, Status("")}
	for _, s := range nonTerminal {
		assert.False(t, s.Terminal(), "status %q", s)
	}
}

func TestNewOutboundValidation(t *testing.T) {
	convID := uuid.New()

	cases := []struct {
		name    string
		to      string
		body    string
		wantErr error
	}{
		{"missing recipient", "", "hello", ErrEmptyRecipient},
		{"no plus prefix", "15551234567", "hello", ErrInvalidPhone},
		{"leading zero", "+0551234567", "hello", ErrInvalidPhone},
		{"letters", "+1555abc4567", "hello", ErrInvalidPhone},
		{"empty body", "+15551234567", "   ", ErrEmptyBody},
		{"body too long", "+15551234567", strings.Repeat("x", MaxBodyLength+1), ErrBodyTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOutbound(convID, "+15550001111", tc.to, tc.body)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestNewOutboundDefaults(t *testing.T) {
	convID := uuid.New()

	msg, err := NewOutbound(convID, "+15550001111", " +15551234567 ", " hello ")
	require.NoError(t, err)

	assert.Equal(t, convID, msg.ConversationID)
	assert.Equal(t, DirectionOutbound, msg.Direction)
	assert.Equal(t, StatusQueued, msg.Status)
	assert.Equal(t, "+15551234567", msg.ToNumber)
	assert.Equal(t, "hello", msg.Body)
	assert.Empty(t, msg.GatewaySID)
	assert.Nil(t, msg.SentAt)
}

func TestMarkSentDefaultsEmptyStatusToQueued(t *testing.T) {
	msg, err := NewOutbound(uuid.New(), "+15550001111", "+15551234567", "hello")
	require.NoError(t, err)

	msg.MarkSent("SM1", "", `{"sid":"SM1"}`)

	assert.Equal(t, StatusQueued, msg.Status)
	assert.Equal(t, "SM1", msg.GatewaySID)
	assert.NotNil(t, msg.SentAt)
}

func TestApplyStatusReportsChange(t *testing.T) {
	msg, err := NewOutbound(uuid.New(), "+15550001111", "+15551234567", "hello")
	require.NoError(t, err)
	msg.MarkSent("SM1", StatusSent, "{}")

	assert.False(t, msg.ApplyStatus(StatusSent, nil, ""))

	code := 30005
	assert.True(t, msg.ApplyStatus(StatusUndelivered, &code, "Unknown destination handset"))
	assert.Equal(t, StatusUndelivered, msg.Status)
	require.NotNil(t, msg.ErrorCode)
	assert.Equal(t, 30005, *msg.ErrorCode)
	assert.Equal(t, "Unknown destination handset", msg.ErrorMessage)
}
