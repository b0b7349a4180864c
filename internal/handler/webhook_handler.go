package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"terravest/internal/service"
	"terravest/pkg/paystack"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	secretKey   string
	deposits    *service.DepositService
	withdrawals *service.WithdrawalService
}

func NewWebhookHandler(secretKey string, deposits *service.DepositService, withdrawals *service.WithdrawalService) *WebhookHandler {
	return &WebhookHandler{secretKey: secretKey, deposits: deposits, withdrawals: withdrawals}
}

// Paystack receives gateway webhooks. The signature is checked over the raw
// body before any parsing; unsigned or badly signed posts get a 401 and no
// processing. Handled events always return 200 so the gateway stops
// redelivering — idempotency is the services' job, not the transport's.
func (h *WebhookHandler) Paystack(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	signature := c.GetHeader("x-paystack-signature")
	if !paystack.VerifyWebhookSignature(h.secretKey, body, signature) {
		log.Printf("[Webhook] rejected: bad signature from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event paystack.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
		return
	}

	switch {
	case event.Event == "charge.success":
		var data struct {
			Reference string `json:"reference"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil || data.Reference == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed charge data"})
			return
		}
		// Same settlement path as the signed browser callback; the status
		// guard makes the two deliveries race safely.
		if _, err := h.deposits.HandleCallback(c.Request.Context(), data.Reference); err != nil {
			log.Printf("[Webhook] charge.success unresolved reference=%s: %v", data.Reference, err)
		}
	case strings.HasPrefix(event.Event, "transfer."):
		var data paystack.TransferEventData
		if err := json.Unmarshal(event.Data, &data); err != nil || data.Reference == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed transfer data"})
			return
		}
		if err := h.withdrawals.HandleTransferWebhook(c.Request.Context(), event.Event, data); err != nil {
			log.Printf("[Webhook] %s unresolved reference=%s: %v", event.Event, data.Reference, err)
		}
	default:
		log.Printf("[Webhook] ignoring event=%s", event.Event)
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// RetryWithdrawals lets an operator trigger the withdrawal sweep on demand;
// the cron schedule runs the same code path.
func (h *WebhookHandler) RetryWithdrawals(c *gin.Context) {
	result, err := h.withdrawals.RetryPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sweep": result})
}
