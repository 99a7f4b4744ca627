package push

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Dispatcher fans a payload out to one or many subscribers.
//
// Delivery is best effort: individual failures never surface to the caller,
// and there is no retry or queueing. Calls return only once every delivery
// attempt has settled.
type Dispatcher interface {
	SendToUser(ctx context.Context, userID string, payload *Payload) error
	Broadcast(ctx context.Context, excludeUserID string, payload *Payload) error
}

type NoOpDispatcher struct{}

func (n *NoOpDispatcher) SendToUser(_ context.Context, _ string, _ *Payload) error {
	return nil
}

func (n *NoOpDispatcher) Broadcast(_ context.Context, _ string, _ *Payload) error {
	return nil
}

// Pusher delivers payloads concurrently with per-subscriber failure
// isolation. Endpoints reported gone by the transport are pruned from the
// registry.
type Pusher struct {
	log    *zap.Logger
	subs   Store
	sender Sender
}

func NewPusher(log *zap.Logger, subs Store, sender Sender) *Pusher {
	return &Pusher{
		log:    log,
		subs:   subs,
		sender: sender,
	}
}

func (p *Pusher) SendToUser(ctx context.Context, userID string, payload *Payload) error {
	sub, err := p.subs.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		p.log.Debug("Dropping push, user has no subscription", zap.String("user_id", userID))
		return nil
	}
	if err != nil {
		return err
	}

	p.deliver(ctx, []*Subscription{sub}, payload)
	return nil
}

func (p *Pusher) Broadcast(ctx context.Context, excludeUserID string, payload *Payload) error {
	subs, err := p.subs.ListExcluding(ctx, excludeUserID)
	if err != nil {
		return err
	}

	if len(subs) == 0 {
		p.log.Debug("Dropping push, no subscribers")
		return nil
	}

	p.deliver(ctx, subs, payload)
	return nil
}

// deliver attempts every subscription independently and concurrently, then
// joins. One failed delivery never affects its siblings.
func (p *Pusher) deliver(ctx context.Context, subs []*Subscription, payload *Payload) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("Failed to marshal push payload", zap.Error(err))
		return
	}

	outcomes := make([]error, len(subs))

	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub *Subscription) {
			defer wg.Done()
			outcomes[i] = p.sender.Send(ctx, sub, body)
		}(i, sub)
	}
	wg.Wait()

	var delivered, pruned, failed int
	for i, err := range outcomes {
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, ErrGone):
			// Endpoint is permanently invalid, remove the subscription.
			if delErr := p.subs.Delete(ctx, subs[i].ID); delErr != nil {
				p.log.Warn("Failed to prune gone subscription",
					zap.Error(delErr),
					zap.String("subscription_id", subs[i].ID),
				)
			}
			pruned++
		default:
			p.log.Warn("Failed to deliver push notification",
				zap.Error(err),
				zap.String("user_id", subs[i].UserID),
			)
			failed++
		}
	}

	p.log.Debug("Delivered pushes",
		zap.Int("delivered", delivered),
		zap.Int("pruned", pruned),
		zap.Int("failed", failed),
	)
}
