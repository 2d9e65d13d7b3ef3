package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anjiri1684/travel_agency/events"
	"github.com/anjiri1684/travel_agency/logging"
	"github.com/anjiri1684/travel_agency/services"
)

type countingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *countingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *countingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type countingCache struct{ invalidated int }

func (c *countingCache) Invalidate() { c.invalidated++ }

func (c *countingCache) Get(context.Context) services.SiteSettings {
	return services.DefaultSiteSettings()
}

func TestDeliveryPublishersFallsBackWhenSubscribeFails(t *testing.T) {
	bus, hub := &countingPublisher{}, &countingPublisher{}
	cache := &countingCache{}
	failing := func(func(events.Event)) error { return errors.New("redis: connection refused") }

	pub := events.Multi(deliveryPublishers(context.Background(), bus, failing, hub, cache, logging.Discard())...)
	pub.Publish(context.Background(), events.Event{Type: events.BookingCreated, Reference: "TRV-FEED0001"})
	pub.Publish(context.Background(), events.Event{Type: events.SettingsChanged})

	if bus.count() != 2 {
		t.Errorf("bus received %d events, want 2", bus.count())
	}
	if hub.count() != 2 {
		t.Errorf("live feed received %d events, want 2", hub.count())
	}
	if cache.invalidated != 1 {
		t.Errorf("cache invalidated %d times, want 1", cache.invalidated)
	}
}

func TestDeliveryPublishersUsesSubscription(t *testing.T) {
	bus, hub := &countingPublisher{}, &countingPublisher{}
	cache := &countingCache{}
	var handle func(events.Event)
	subscribe := func(h func(events.Event)) error {
		handle = h
		return nil
	}

	pubs := deliveryPublishers(context.Background(), bus, subscribe, hub, cache, logging.Discard())
	if len(pubs) != 1 {
		t.Fatalf("got %d publishers, want only the bus", len(pubs))
	}
	events.Multi(pubs...).Publish(context.Background(), events.Event{Type: events.BookingPaid})
	if hub.count() != 0 {
		t.Fatal("event delivered locally and would reach the feed twice")
	}

	handle(events.Event{Type: events.BookingPaid})
	handle(events.Event{Type: events.SettingsChanged})
	if hub.count() != 1 || cache.invalidated != 1 {
		t.Errorf("hub=%d invalidated=%d, want 1 and 1", hub.count(), cache.invalidated)
	}
}

func TestDeliveryPublishersWithoutBus(t *testing.T) {
	hub := &countingPublisher{}
	cache := &countingCache{}
	pub := events.Multi(deliveryPublishers(context.Background(), nil, nil, hub, cache, logging.Discard())...)
	pub.Publish(context.Background(), events.Event{Type: events.SettingsChanged})
	if hub.count() != 1 || cache.invalidated != 1 {
		t.Errorf("hub=%d invalidated=%d, want 1 and 1", hub.count(), cache.invalidated)
	}
}
