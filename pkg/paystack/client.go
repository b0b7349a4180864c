package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// ErrUnavailable marks transport failures and 5xx responses from the gateway.
// Callers must treat the underlying operation as unknown, not failed; the
// retry sweep resolves it later.
var ErrUnavailable = errors.New("paystack unavailable")

// ErrNotFound marks a 404 from the gateway: the resource definitively does
// not exist there. For a transfer verify this is a terminal answer, not an
// in-flight one — the transfer was never created.
var ErrNotFound = errors.New("paystack: not found")

// Client wraps the Paystack REST API. All amounts are in kobo.
type Client struct {
	BaseURL   string
	secretKey string
	client    *http.Client

	bankMu       sync.Mutex
	banks        []Bank
	banksFetched time.Time
	bankTTL      time.Duration
}

func NewClient(baseURL, secretKey string, bankCacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	if bankCacheTTL <= 0 {
		bankCacheTTL = 12 * time.Hour
	}
	return &Client{
		BaseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
		bankTTL:   bankCacheTTL,
	}
}

// envelope is Paystack's common response wrapper. Status reports whether the
// API call itself succeeded; the payload under Data carries the domain status.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[Paystack] %s %s transport error: %v", method, path, err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 500 {
		log.Printf("[Paystack] %s %s status=%d body=%s", method, path, resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("paystack: decode response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, env.Message)
	}
	if resp.StatusCode >= 400 || !env.Status {
		return nil, fmt.Errorf("paystack: %s (status %d)", env.Message, resp.StatusCode)
	}
	return env.Data, nil
}

type initializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"` // kobo
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// InitializeTransaction starts a checkout session and returns the URL the
// customer must be redirected to.
func (c *Client) InitializeTransaction(ctx context.Context, email string, amountKobo int64, reference, callbackURL string) (*InitializeResponse, error) {
	data, err := c.do(ctx, http.MethodPost, "/transaction/initialize", initializeRequest{
		Email:       email,
		Amount:      amountKobo,
		Reference:   reference,
		CallbackURL: callbackURL,
	})
	if err != nil {
		return nil, err
	}
	var out InitializeResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	log.Printf("[Paystack] initialized transaction reference=%s amount=%d", reference, amountKobo)
	return &out, nil
}

type VerifyResponse struct {
	Status     string `json:"status"` // success, failed, abandoned
	Amount     int64  `json:"amount"` // kobo
	Reference  string `json:"reference"`
	GatewayRef string `json:"gateway_response"`
}

// VerifyTransaction re-derives a transaction's outcome server-to-server.
// The returned status is the gateway's word, never the callback's.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifyResponse, error) {
	data, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	var out VerifyResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// ListBanks returns the bank list, served from memory for the cache TTL
// since the list changes rarely.
func (c *Client) ListBanks(ctx context.Context) ([]Bank, error) {
	c.bankMu.Lock()
	defer c.bankMu.Unlock()
	if c.banks != nil && time.Since(c.banksFetched) < c.bankTTL {
		return c.banks, nil
	}
	data, err := c.do(ctx, http.MethodGet, "/bank", nil)
	if err != nil {
		// Serve a stale list over failing when we have one.
		if c.banks != nil {
			return c.banks, nil
		}
		return nil, err
	}
	var banks []Bank
	if err := json.Unmarshal(data, &banks); err != nil {
		return nil, err
	}
	c.banks = banks
	c.banksFetched = time.Now()
	return banks, nil
}

type ResolvedAccount struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

// ResolveAccount validates an account number against a bank and returns the
// registered account name.
func (c *Client) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*ResolvedAccount, error) {
	q := url.Values{}
	q.Set("account_number", accountNumber)
	q.Set("bank_code", bankCode)
	data, err := c.do(ctx, http.MethodGet, "/bank/resolve?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out ResolvedAccount
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out.AccountName == "" {
		return nil, errors.New("paystack: empty account name in resolve response")
	}
	return &out, nil
}
