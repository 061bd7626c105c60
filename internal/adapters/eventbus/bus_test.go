package eventbus

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrate/internal/domain"
)

func TestPublishReachesMatchingSubscribers(t *testing.T) {
	b := New()
	defer b.Close()
	ctx := context.Background()

	bookings, unsubA := b.Subscribe(domain.TopicBookingCreated, domain.TopicBookingConfirmed)
	defer unsubA()
	rules, unsubB := b.Subscribe(domain.TopicRulesUpdated)
	defer unsubB()

	b.Publish(ctx, domain.Event{ID: "1", Topic: domain.TopicBookingConfirmed, HotelID: 7})
	b.Publish(ctx, domain.Event{ID: "2", Topic: domain.TopicRulesUpdated, HotelID: 7})

	select {
	case e := <-bookings:
		assert.Equal(t, "1", e.ID)
	case <-time.After(time.Second):
		t.Fatal("booking subscriber got nothing")
	}
	select {
	case e := <-rules:
		assert.Equal(t, "2", e.ID)
	case <-time.After(time.Second):
		t.Fatal("rules subscriber got nothing")
	}

	// neither channel holds the other's event
	select {
	case e := <-bookings:
		t.Fatalf("unexpected event %q on booking channel", e.ID)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	defer b.Close()

	ch, unsub := b.Subscribe(domain.TopicBookingCreated)
	unsub()
	unsub() // idempotent

	_, open := <-ch
	assert.False(t, open)

	// publishing after unsubscribe must not panic on the closed channel
	b.Publish(context.Background(), domain.Event{ID: "x", Topic: domain.TopicBookingCreated})
}

func TestPublishNeverBlocks(t *testing.T) {
	b := New()
	defer b.Close()
	ctx := context.Background()

	_, unsub := b.Subscribe(domain.TopicBookingCreated)
	defer unsub()

	// overflow the buffer without ever draining; Publish must keep returning
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			b.Publish(ctx, domain.Event{ID: fmt.Sprint(i), Topic: domain.TopicBookingCreated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestCloseThenUnsubscribeIsSafe(t *testing.T) {
	b := New()

	ch, unsub := b.Subscribe(domain.TopicRulesUpdated)
	b.Close()
	unsub() // a deferred unsubscribe after shutdown must not re-close

	_, open := <-ch
	assert.False(t, open)
}

func TestUnsubscribeThenCloseIsSafe(t *testing.T) {
	b := New()

	ch, unsub := b.Subscribe(domain.TopicRulesUpdated)
	unsub()
	b.Close()

	_, open := <-ch
	assert.False(t, open)
}

func TestCloseStopsDelivery(t *testing.T) {
	b := New()
	ch, _ := b.Subscribe(domain.TopicBookingCreated)

	b.Close()
	b.Close() // idempotent
	b.Publish(context.Background(), domain.Event{ID: "x", Topic: domain.TopicBookingCreated})

	_, open := <-ch
	assert.False(t, open)
}

func TestPublishDeliversRegardlessOfContext(t *testing.T) {
	b := New()
	defer b.Close()

	ch, unsub := b.Subscribe(domain.TopicBookingCreated)
	defer unsub()

	// delivery is purely buffer-bound; a dead context doesn't suppress it
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.Publish(ctx, domain.Event{ID: "1", Topic: domain.TopicBookingCreated})

	select {
	case e := <-ch:
		assert.Equal(t, "1", e.ID)
	case <-time.After(time.Second):
		t.Fatal("subscriber got nothing")
	}
}

func TestSubscribersAreIndependent(t *testing.T) {
	b := New()
	defer b.Close()
	ctx := context.Background()

	a, unsubA := b.Subscribe(domain.TopicBookingCreated)
	defer unsubA()
	c, unsubC := b.Subscribe(domain.TopicBookingCreated)

	unsubC()
	b.Publish(ctx, domain.Event{ID: "1", Topic: domain.TopicBookingCreated})

	select {
	case e := <-a:
		require.Equal(t, "1", e.ID)
	case <-time.After(time.Second):
		t.Fatal("surviving subscriber got nothing")
	}
	_, open := <-c
	assert.False(t, open)
}
