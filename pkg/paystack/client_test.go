package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifyTransactionParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/verify/DEPOSIT-abc", r.URL.Path)
		require.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"success","amount":5000,"reference":"DEPOSIT-abc"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", time.Hour)
	out, err := c.VerifyTransaction(context.Background(), "DEPOSIT-abc")
	require.NoError(t, err)
	require.Equal(t, "success", out.Status)
	require.Equal(t, int64(5000), out.Amount)
}

func TestEnvelopeStatusFalseIsAnErrorEvenOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", time.Hour)
	_, err := c.VerifyTransaction(context.Background(), "DEPOSIT-missing")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnavailable)
	require.Contains(t, err.Error(), "reference not found")
}

func TestNotFoundIsDefinitive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":false,"message":"Transfer not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", time.Hour)
	_, err := c.VerifyTransfer(context.Background(), "WITHDRAW-missing")
	require.ErrorIs(t, err, ErrNotFound)
	// Not a transient failure: callers must not treat it as retryable.
	require.NotErrorIs(t, err, ErrUnavailable)
	require.Contains(t, err.Error(), "Transfer not found")
}

func TestServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", time.Hour)
	_, err := c.VerifyTransaction(context.Background(), "DEPOSIT-abc")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "sk_test", time.Hour)
	_, err := c.VerifyTransaction(context.Background(), "DEPOSIT-abc")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestListBanksServesFromCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"status":true,"message":"Banks retrieved","data":[{"name":"Guaranty Trust Bank","code":"058"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", time.Hour)
	for i := 0; i < 3; i++ {
		banks, err := c.ListBanks(context.Background())
		require.NoError(t, err)
		require.Len(t, banks, 1)
		require.Equal(t, "058", banks[0].Code)
	}
	require.Equal(t, 1, calls)
}

func TestListBanksServesStaleOnFailure(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"status":true,"message":"ok","data":[{"name":"Test Bank","code":"001"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", time.Nanosecond) // expire immediately
	_, err := c.ListBanks(context.Background())
	require.NoError(t, err)

	healthy = false
	banks, err := c.ListBanks(context.Background())
	require.NoError(t, err)
	require.Len(t, banks, 1)
}

func TestResolveAccountRejectsEmptyName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "0123456789", r.URL.Query().Get("account_number"))
		w.Write([]byte(`{"status":true,"message":"ok","data":{"account_number":"0123456789","account_name":""}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", time.Hour)
	_, err := c.ResolveAccount(context.Background(), "0123456789", "058")
	require.Error(t, err)
}

func TestWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"transfer.success","data":{"reference":"WITHDRAW-1"}}`)
	mac := hmac.New(sha512.New, []byte("sk_test"))
	mac.Write(body)
	good := hex.EncodeToString(mac.Sum(nil))

	require.True(t, VerifyWebhookSignature("sk_test", body, good))
	require.False(t, VerifyWebhookSignature("sk_test", body, "deadbeef"))
	require.False(t, VerifyWebhookSignature("sk_test", append(body, ' '), good))
	require.False(t, VerifyWebhookSignature("wrong_key", body, good))
}
