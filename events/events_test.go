package events

import (
	"context"
	"errors"
	"testing"
)

func TestMultiFansOutAndJoinsErrors(t *testing.T) {
	var got []string
	record := func(name string, err error) Publisher {
		return PublisherFunc(func(_ context.Context, e Event) error {
			got = append(got, name+":"+e.Type)
			if e.OccurredAt.IsZero() {
				t.Errorf("%s received event without timestamp", name)
			}
			return err
		})
	}
	boom := errors.New("boom")

	pub := Multi(record("a", nil), nil, record("b", boom), record("c", nil))
	err := pub.Publish(context.Background(), Event{Type: BookingCreated})

	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	want := []string{"a:booking.created", "b:booking.created", "c:booking.created"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNewKafkaPublisherValidates(t *testing.T) {
	if _, err := NewKafkaPublisher(nil, "topic"); err == nil {
		t.Error("expected error without brokers")
	}
	if _, err := NewKafkaPublisher([]string{"localhost:9092"}, ""); err == nil {
		t.Error("expected error without topic")
	}
	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "travel.booking-events")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Close()
}

func TestNopPublisher(t *testing.T) {
	if err := Nop().Publish(context.Background(), Event{Type: BookingPaid}); err != nil {
		t.Fatalf("Nop returned %v", err)
	}
}
