package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// PaymentSignature is the signature the checkout widget hands back to the client:
// hex(HMAC-SHA256(keySecret, orderID + "|" + paymentID)).
func PaymentSignature(keySecret, orderID, paymentID string) string {
	return sign(keySecret, []byte(orderID+"|"+paymentID))
}

func VerifyPaymentSignature(keySecret, orderID, paymentID, signature string) bool {
	return equalHex(PaymentSignature(keySecret, orderID, paymentID), signature)
}

// WebhookSignature signs the raw webhook body with the webhook secret.
func WebhookSignature(webhookSecret string, body []byte) string {
	return sign(webhookSecret, body)
}

func VerifyWebhookSignature(webhookSecret string, body []byte, signature string) bool {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	return equalHex(WebhookSignature(webhookSecret, body), signature)
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func equalHex(expected, provided string) bool {
	if provided == "" {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
}
