package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenlight/sms-dispatch/internal/apperrors"
)

const (
	testAccountSID = "AC0123456789abcdef"
	testAuthToken  = "secret-token"
)

func newTestClient(handler http.HandlerFunc) (*RESTClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewRESTClient(srv.URL, testAccountSID, testAuthToken), srv
}

func TestSendPostsFormWithBasicAuth(t *testing.T) {
	var gotPath, gotContentType string
	var gotForm map[string]string
	var gotUser, gotPass string

	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotUser, gotPass, _ = r.BasicAuth()

		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"To":   r.PostForm.Get("To"),
			"From": r.PostForm.Get("From"),
			"Body": r.PostForm.Get("Body"),
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"sid":    "SM900",
			"status": "queued",
			"from":   "+15550001111",
			"to":     "+15557654321",
			"body":   "hello",
		})
	})
	defer srv.Close()

	result, err := client.Send(context.Background(), "+15557654321", "+15550001111", "hello")
	require.NoError(t, err)

	assert.Equal(t, "/Accounts/"+testAccountSID+"/Messages.json", gotPath)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, testAccountSID, gotUser)
	assert.Equal(t, testAuthToken, gotPass)
	assert.Equal(t, "+15557654321", gotForm["To"])
	assert.Equal(t, "+15550001111", gotForm["From"])
	assert.Equal(t, "hello", gotForm["Body"])

	assert.Equal(t, "SM900", result.SID)
	assert.Equal(t, "queued", result.Status)
	assert.NotEmpty(t, result.Raw)
}

func TestSendCarrierRejectionIsGatewayError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"code":    21211,
			"message": "invalid 'To' phone number",
			"status":  400,
		})
	})
	defer srv.Close()

	_, err := client.Send(context.Background(), "+0", "+15550001111", "hello")
	require.Error(t, err)

	var gerr *apperrors.Gateway
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, 21211, gerr.Code)
	assert.Equal(t, "invalid 'To' phone number", gerr.Message)
	assert.Equal(t, http.StatusBadRequest, gerr.HTTPStatus)
}

func TestSendNetworkFailureIsPlainError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed up front: every request now fails to connect

	client := NewRESTClient(srv.URL, testAccountSID, testAuthToken)

	_, err := client.Send(context.Background(), "+15557654321", "+15550001111", "hello")
	require.Error(t, err)

	var gerr *apperrors.Gateway
	assert.False(t, errors.As(err, &gerr), "network failures must not look like carrier rejections")
}

func TestSendMissingSIDIsError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "queued"})
	})
	defer srv.Close()

	_, err := client.Send(context.Background(), "+15557654321", "+15550001111", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing sid")
}

func TestFetchStatusParsesMessageResource(t *testing.T) {
	var gotPath string

	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{
			"sid":           "SM900",
			"status":        "undelivered",
			"error_code":    30005,
			"error_message": "Unknown destination handset",
			"date_sent":     "Mon, 02 Jan 2006 15:04:05 -0700",
			"price":         "-0.00750",
		})
	})
	defer srv.Close()

	result, err := client.FetchStatus(context.Background(), "SM900")
	require.NoError(t, err)

	assert.Equal(t, "/Accounts/"+testAccountSID+"/Messages/SM900.json", gotPath)
	assert.Equal(t, "undelivered", result.Status)
	require.NotNil(t, result.ErrorCode)
	assert.Equal(t, 30005, *result.ErrorCode)
	assert.Equal(t, "Unknown destination handset", result.ErrorMessage)
	require.NotNil(t, result.DateSent)
	assert.Equal(t, 2006, result.DateSent.Year())
	assert.Equal(t, "-0.00750", result.Price)
}

func TestFetchStatusToleratesMalformedTimestamps(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"sid":       "SM900",
			"status":    "sent",
			"date_sent": "yesterday-ish",
		})
	})
	defer srv.Close()

	result, err := client.FetchStatus(context.Background(), "SM900")
	require.NoError(t, err)
	assert.Nil(t, result.DateSent)
}

func TestSendBatchPostsJSONBulkRequest(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any

	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]any{"accepted": 2, "status": "queued"})
	})
	defer srv.Close()

	result, err := client.SendBatch(context.Background(), []string{"+15551110001", "+15551110002"}, "promo", "+15550001111")
	require.NoError(t, err)

	assert.Equal(t, "/Accounts/"+testAccountSID+"/Messages/bulk.json", gotPath)
	assert.Equal(t, "promo", gotPayload["body"])
	assert.Equal(t, "+15550001111", gotPayload["sender_id"])
	assert.Len(t, gotPayload["to"], 2)
	assert.Equal(t, 2, result.Accepted)
}

func TestHealthReportsCarrierOutage(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer srv.Close()

	err := client.Health(context.Background())
	require.Error(t, err)
}
