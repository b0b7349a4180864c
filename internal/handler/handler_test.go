package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestParseStrictBool(t *testing.T) {
	for raw, want := range map[string]bool{"true": true, "1": true, "false": false, "0": false} {
		got, err := parseStrictBool(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"", "yes", "no", "TRUE", "True", "on", "01", " 1"} {
		_, err := parseStrictBool(raw)
		require.Error(t, err, "%q must not parse", raw)
	}
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "annual-general-meeting-2026", slugify("Annual General Meeting, 2026!"))
	require.Equal(t, "hello-world", slugify("  Hello   World  "))
	require.Equal(t, "", slugify("!!!"))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler("sk_test", nil, nil)
	r := gin.New()
	r.POST("/webhook", h.Paystack)

	body := `{"event":"transfer.success","data":{"reference":"WITHDRAW-1"}}`

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("x-paystack-signature", "deadbeef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Missing header is rejected the same way.
	req = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutAcknowledges(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(nil, nil)
	r := gin.New()
	r.POST("/auth/logout", h.Logout)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "logged out")
}

func TestPaginateBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	check := func(query string, wantLimit, wantOffset int) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		limit, offset := paginate(c)
		require.Equal(t, wantLimit, limit, query)
		require.Equal(t, wantOffset, offset, query)
	}
	check("", defaultPageSize, 0)
	check("page=3&limit=10", 10, 20)
	check("page=0&limit=-5", defaultPageSize, 0)
	check("limit=9999", maxPageSize, 0)
}
