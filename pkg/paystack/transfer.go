package paystack

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
)

type recipientRequest struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	Currency      string `json:"currency"`
}

type Recipient struct {
	RecipientCode string `json:"recipient_code"`
}

// CreateTransferRecipient registers a bank account as a transfer destination.
func (c *Client) CreateTransferRecipient(ctx context.Context, name, accountNumber, bankCode string) (*Recipient, error) {
	data, err := c.do(ctx, http.MethodPost, "/transferrecipient", recipientRequest{
		Type:          "nuban",
		Name:          name,
		AccountNumber: accountNumber,
		BankCode:      bankCode,
		Currency:      "NGN",
	})
	if err != nil {
		return nil, err
	}
	var out Recipient
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type transferRequest struct {
	Source    string `json:"source"`
	Amount    int64  `json:"amount"` // kobo
	Recipient string `json:"recipient"`
	Reference string `json:"reference"`
	Reason    string `json:"reason,omitempty"`
}

type Transfer struct {
	TransferCode string `json:"transfer_code"`
	Status       string `json:"status"` // pending, success, failed, reversed
	Reference    string `json:"reference"`
}

// InitiateTransfer disburses funds to a previously created recipient.
// Reference is the idempotency key; Paystack rejects a reused reference with
// a different payload, so retries with the same reference are safe.
func (c *Client) InitiateTransfer(ctx context.Context, recipientCode string, amountKobo int64, reference, reason string) (*Transfer, error) {
	data, err := c.do(ctx, http.MethodPost, "/transfer", transferRequest{
		Source:    "balance",
		Amount:    amountKobo,
		Recipient: recipientCode,
		Reference: reference,
		Reason:    reason,
	})
	if err != nil {
		return nil, err
	}
	var out Transfer
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	log.Printf("[Paystack] initiated transfer reference=%s amount=%d status=%s", reference, amountKobo, out.Status)
	return &out, nil
}

// VerifyTransfer returns the authoritative status of a transfer by reference.
func (c *Client) VerifyTransfer(ctx context.Context, reference string) (*Transfer, error) {
	data, err := c.do(ctx, http.MethodGet, "/transfer/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	var out Transfer
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
