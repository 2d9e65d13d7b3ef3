package notifications

import (
	"fmt"
	"html"
	"strings"
)

func BookingReceivedEmail(name, reference, service string, total float64, currency string) (string, string) {
	subject := fmt.Sprintf("Booking %s received", reference)
	body := fmt.Sprintf(
		"<h1>Thank you, %s!</h1><p>We have received your %s booking <b>%s</b>.</p><p>Total: %s %.2f. Complete the payment to confirm it.</p>",
		html.EscapeString(name), html.EscapeString(humanize(service)), reference, currency, total,
	)
	return subject, body
}

func BookingConfirmedEmail(name, reference string, paid float64, currency string) (string, string) {
	subject := "Your Booking is Confirmed!"
	body := fmt.Sprintf(
		"<h1>Booking Confirmed</h1><p>Hi %s,</p><p>Your payment of %s %.2f was received and booking <b>%s</b> is confirmed.</p>",
		html.EscapeString(name), currency, paid, reference,
	)
	return subject, body
}

func BookingCancelledEmail(name, reference, reason string) (string, string) {
	subject := fmt.Sprintf("Booking %s cancelled", reference)
	body := fmt.Sprintf(
		"<h1>Booking Cancelled</h1><p>Hi %s,</p><p>Your booking <b>%s</b> has been cancelled. %s</p>",
		html.EscapeString(name), reference, html.EscapeString(reason),
	)
	return subject, body
}

func VoucherReadyEmail(name, reference, url string) (string, string) {
	subject := fmt.Sprintf("Your travel voucher for %s", reference)
	body := fmt.Sprintf(
		"<h1>Your voucher is ready</h1><p>Hi %s,</p><p>Download your voucher for booking <b>%s</b>: <a href='%s'>Voucher</a></p>",
		html.EscapeString(name), reference, url,
	)
	return subject, body
}

func TravelReminderEmail(name, reference, date string) (string, string) {
	subject := "Reminder: Your trip is tomorrow!"
	body := fmt.Sprintf(
		"<h1>Trip Reminder</h1><p>Hi %s,</p><p>This is a friendly reminder that your trip for booking <b>%s</b> is on %s.</p>",
		html.EscapeString(name), reference, date,
	)
	return subject, body
}

func FormAcknowledgementEmail(name, subjectLine string) (string, string) {
	subject := "We received your message"
	body := fmt.Sprintf(
		"<h1>Thanks for reaching out</h1><p>Hi %s,</p><p>We received your enquiry \"%s\" and will get back to you shortly.</p>",
		html.EscapeString(name), html.EscapeString(subjectLine),
	)
	return subject, body
}

func NewFormAlertEmail(formType, name, email, message string) (string, string) {
	subject := fmt.Sprintf("New %s from %s", strings.ToLower(humanize(formType)), name)
	body := fmt.Sprintf(
		"<h1>New submission</h1><p><b>%s</b> (%s) wrote:</p><p>%s</p>",
		html.EscapeString(name), html.EscapeString(email), html.EscapeString(message),
	)
	return subject, body
}

func humanize(enum string) string {
	words := strings.Split(strings.ToLower(enum), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
