package http

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/identity/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestAccountRequestEndpointsAlwaysAccept(t *testing.T) {
	ts := newTestServer(t)

	// Known and unknown emails get the same answer.
	for _, email := range []string{testEmail, "ghost@example.com"} {
		resp := postJSON(t, ts.url("/v1/account/validate/request"), authsdk.ValidationRequest{Email: email})
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		resp = postJSON(t, ts.url("/v1/account/reset/request"), authsdk.ValidationRequest{Email: email})
		require.Equal(t, http.StatusAccepted, resp.StatusCode)
	}
}

func TestAccountRequestEndpointsRejectEmptyEmail(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.url("/v1/account/validate/request"), authsdk.ValidationRequest{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAccountConfirmRejectsBadToken(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.url("/v1/account/validate/confirm"),
		authsdk.ValidationConfirm{Token: "never-issued"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, authsdk.ErrorCodeNotAuthorized, errorCode(t, resp))

	resp = postJSON(t, ts.url("/v1/account/reset/confirm"),
		authsdk.ResetConfirm{Token: "never-issued", NewPassword: "long enough password"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAccountResetConfirmRejectsShortPassword(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.url("/v1/account/reset/confirm"),
		authsdk.ResetConfirm{Token: "whatever", NewPassword: "short"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, authsdk.ErrorCodeInvalidRequest, errorCode(t, resp))
}

func TestSystemEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, err := testClient.Get(ts.url("/livez"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := decodeBody[authsdk.HealthResponse](t, resp)
	require.Equal(t, "ok", health.Status)

	resp, err = testClient.Get(ts.url("/readyz"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health = decodeBody[authsdk.HealthResponse](t, resp)
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)

	resp, err = testClient.Get(ts.url("/metrics"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
