package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenlight/sms-dispatch/internal/apperrors"
	"github.com/ovenlight/sms-dispatch/internal/domain/campaign"
	"github.com/ovenlight/sms-dispatch/internal/gateway"
)

func draftCampaign(recipients ...string) *campaign.Campaign {
	return campaign.New("Your order is ready for pickup!", recipients)
}

func TestDispatchMarksCampaignSent(t *testing.T) {
	camp := draftCampaign("+15551110001", "+15551110002", "+15551110003")
	repo := newFakeCampaignRepo(camp)
	gw := &fakeGateway{}

	svc := NewCampaignService(repo, gw)

	result, err := svc.Dispatch(context.Background(), camp.ID, "+15550001111")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Accepted)
	assert.Equal(t, 1, gw.batchCalls)

	stored, err := repo.GetByID(context.Background(), camp.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.StatusSent, stored.Status)
	assert.Equal(t, 3, stored.SentCount)
	assert.NotNil(t, stored.SentAt)
	assert.NotEmpty(t, stored.GatewayResponse)
}

func TestDispatchGatewayFailureMarksCampaignFailed(t *testing.T) {
	camp := draftCampaign("+15551110001", "+15551110002")
	repo := newFakeCampaignRepo(camp)
	gw := &fakeGateway{
		sendBatchFn: func(recipients []string, body, senderID string) (*gateway.BatchResult, error) {
			return nil, gatewayErr(20429, "too many requests", 429)
		},
	}

	svc := NewCampaignService(repo, gw)

	_, err := svc.Dispatch(context.Background(), camp.ID, "+15550001111")
	require.Error(t, err)

	var gerr *apperrors.Gateway
	assert.ErrorAs(t, err, &gerr)

	stored, err := repo.GetByID(context.Background(), camp.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.StatusFailed, stored.Status)
	assert.Equal(t, 1, stored.FailedCount)
	assert.Contains(t, stored.ErrorMessage, "too many requests")
}

func TestDispatchEmptyRecipientsFailsWithoutGatewayCall(t *testing.T) {
	camp := draftCampaign()
	repo := newFakeCampaignRepo(camp)
	gw := &fakeGateway{}

	svc := NewCampaignService(repo, gw)

	_, err := svc.Dispatch(context.Background(), camp.ID, "+15550001111")
	require.Error(t, err)

	var ierr *apperrors.InvalidRequest
	assert.ErrorAs(t, err, &ierr)
	assert.Zero(t, gw.batchCalls)

	// The attempt still moves the campaign out of draft.
	stored, err := repo.GetByID(context.Background(), camp.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.StatusFailed, stored.Status)
	assert.Equal(t, "campaign has no recipients", stored.ErrorMessage)
}

func TestDispatchRejectsNonDraftCampaign(t *testing.T) {
	camp := draftCampaign("+15551110001")
	camp.Status = campaign.StatusSent
	repo := newFakeCampaignRepo(camp)
	gw := &fakeGateway{}

	svc := NewCampaignService(repo, gw)

	_, err := svc.Dispatch(context.Background(), camp.ID, "+15550001111")
	require.Error(t, err)

	var ierr *apperrors.InvalidRequest
	require.ErrorAs(t, err, &ierr)
	assert.Contains(t, ierr.Reason, "already sent")
	assert.Zero(t, gw.batchCalls)
}

func TestDispatchUnknownCampaignIsNotFound(t *testing.T) {
	svc := NewCampaignService(newFakeCampaignRepo(), &fakeGateway{})

	_, err := svc.Dispatch(context.Background(), uuid.New(), "+15550001111")
	require.Error(t, err)

	var nerr *apperrors.NotFound
	assert.ErrorAs(t, err, &nerr)
}
