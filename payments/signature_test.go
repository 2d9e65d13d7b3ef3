package payments

import "testing"

func TestPaymentSignatureKnownVector(t *testing.T) {
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	got := sign("key", []byte("The quick brown fox jumps over the lazy dog"))
	want := "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"
	if got != want {
		t.Fatalf("sign = %s, want %s", got, want)
	}
}

func TestVerifyPaymentSignature(t *testing.T) {
	sig := PaymentSignature("secret", "order_1", "pay_1")

	if !VerifyPaymentSignature("secret", "order_1", "pay_1", sig) {
		t.Fatal("valid signature rejected")
	}
	tests := []struct {
		name                        string
		secret, order, payment, sig string
	}{
		{"order changed", "secret", "order_2", "pay_1", sig},
		{"payment changed", "secret", "order_1", "pay_2", sig},
		{"secret changed", "Secret", "order_1", "pay_1", sig},
		{"empty signature", "secret", "order_1", "pay_1", ""},
		{"truncated signature", "secret", "order_1", "pay_1", sig[:len(sig)-1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifyPaymentSignature(tt.secret, tt.order, tt.payment, tt.sig) {
				t.Error("signature accepted")
			}
		})
	}
}

func TestVerifyPaymentSignatureIgnoresHexCase(t *testing.T) {
	sig := PaymentSignature("secret", "order_1", "pay_1")
	upper := []byte(sig)
	for i, c := range upper {
		if c >= 'a' && c <= 'f' {
			upper[i] = c - 32
		}
	}
	if !VerifyPaymentSignature("secret", "order_1", "pay_1", string(upper)) {
		t.Error("upper-case hex rejected")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	sig := WebhookSignature("whsec", body)

	if !VerifyWebhookSignature("whsec", body, sig) {
		t.Fatal("valid webhook signature rejected")
	}
	if !VerifyWebhookSignature("whsec", body, "sha256="+sig) {
		t.Fatal("prefixed webhook signature rejected")
	}
	if VerifyWebhookSignature("whsec", []byte(`{"event":"payment.failed"}`), sig) {
		t.Fatal("signature accepted for a different body")
	}
	if VerifyWebhookSignature("other", body, sig) {
		t.Fatal("signature accepted for a different secret")
	}
}
