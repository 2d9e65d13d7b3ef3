package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anjiri1684/travel_agency/logging"
)

func TestBrevoSend(t *testing.T) {
	var payload brevoPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "key-123" {
			t.Errorf("api-key header = %q", r.Header.Get("api-key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	mailer := NewMailer("key-123", "trips@example.com", "Trips", logging.Discard()).(*BrevoService)
	mailer.endpoint = server.URL

	if err := mailer.Send(context.Background(), "", "asha@example.com", "Hi", "<p>x</p>"); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if payload.To[0]["name"] != "asha" {
		t.Errorf("recipient name = %q, want local part", payload.To[0]["name"])
	}
	if payload.Sender["email"] != "trips@example.com" {
		t.Errorf("sender = %v", payload.Sender)
	}
}

func TestBrevoSendRejectsBadRecipient(t *testing.T) {
	mailer := NewMailer("key", "a@b.c", "A", logging.Discard())
	if err := mailer.Send(context.Background(), "x", "not-an-email", "s", "b"); err == nil {
		t.Fatal("expected error for invalid recipient")
	}
}

func TestBrevoSendUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"sender not verified"}`))
	}))
	defer server.Close()

	mailer := NewMailer("key", "a@b.c", "A", logging.Discard()).(*BrevoService)
	mailer.endpoint = server.URL
	err := mailer.Send(context.Background(), "x", "x@y.z", "s", "b")
	if err == nil || !strings.Contains(err.Error(), "sender not verified") {
		t.Fatalf("err = %v", err)
	}
}

func TestNewMailerFallsBackToLogMailer(t *testing.T) {
	mailer := NewMailer("", "", "", logging.Discard())
	if _, ok := mailer.(*LogMailer); !ok {
		t.Fatalf("mailer = %T, want *LogMailer", mailer)
	}
	if err := mailer.Send(context.Background(), "x", "x@y.z", "s", "b"); err != nil {
		t.Fatalf("LogMailer.Send error: %v", err)
	}
}

func TestTemplatesEscapeUserInput(t *testing.T) {
	_, body := NewFormAlertEmail("CUSTOM_TRIP", "<script>", "e@x.com", "a & b")
	if strings.Contains(body, "<script>") {
		t.Error("name not escaped")
	}
	if !strings.Contains(body, "a &amp; b") {
		t.Error("message not escaped")
	}
	subject, _ := NewFormAlertEmail("CUSTOM_TRIP", "Ravi", "e@x.com", "")
	if subject != "New custom trip from Ravi" {
		t.Errorf("subject = %q", subject)
	}
}
