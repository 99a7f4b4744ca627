package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrGone reports that the delivery endpoint is permanently invalid and the
// subscription should be pruned.
var ErrGone = errors.New("subscription endpoint is gone")

// Sender delivers one payload to one subscription endpoint.
//
// A nil return means delivered. ErrGone means the endpoint is permanently
// invalid. Any other error is a transient delivery failure.
type Sender interface {
	Send(ctx context.Context, sub *Subscription, payload []byte) error
}

// WebPushSender delivers payloads over the Web Push protocol with VAPID
// authentication.
type WebPushSender struct {
	subscriber string
	publicKey  string
	privateKey string
}

func NewWebPushSender(subscriber, vapidPublicKey, vapidPrivateKey string) *WebPushSender {
	return &WebPushSender{
		subscriber: subscriber,
		publicKey:  vapidPublicKey,
		privateKey: vapidPrivateKey,
	}
}

func (s *WebPushSender) Send(ctx context.Context, sub *Subscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256DH,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             30,
	})
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}

	return nil
}
