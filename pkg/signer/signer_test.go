package signer

import (
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	s := New("secret")
	raw := s.SignedURL("https://api.example.com", "/api/v1/deposit/callback", "DEPOSIT-abc", 10*time.Minute)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(raw, "https://api.example.com/api/v1/deposit/callback?"))

	q := u.Query()
	require.True(t, s.Verify(q.Get("reference"), q.Get("expires"), q.Get("signature")))
}

func TestVerifyRejectsExpired(t *testing.T) {
	s := New("secret")
	expired := time.Now().Add(-time.Minute).Unix()
	sig := s.sign("DEPOSIT-abc", expired)
	require.False(t, s.Verify("DEPOSIT-abc", strconv.FormatInt(expired, 10), sig))
}

func TestVerifyRejectsTampering(t *testing.T) {
	s := New("secret")
	raw := s.SignedURL("https://api.example.com", "/cb", "DEPOSIT-abc", 10*time.Minute)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()

	// Swapped reference keeps the signature but signs different content.
	require.False(t, s.Verify("DEPOSIT-xyz", q.Get("expires"), q.Get("signature")))
	// Extended expiry invalidates the signature.
	later := strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)
	require.False(t, s.Verify(q.Get("reference"), later, q.Get("signature")))
	// A different key never verifies.
	require.False(t, New("other").Verify(q.Get("reference"), q.Get("expires"), q.Get("signature")))
}
