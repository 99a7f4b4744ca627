package push

import (
	"context"
	"fmt"
)

// NotificationType tags a payload for client-side routing.
type NotificationType string

const (
	TypeComment NotificationType = "COMMENT"
	TypeLike    NotificationType = "LIKE"
	TypeMovies  NotificationType = "MOVIES"
)

// PayloadData carries the deep-link target and triggering entity id.
type PayloadData struct {
	URL     string `json:"url"`
	MovieID string `json:"movieId,omitempty"`
	ListID  string `json:"listId,omitempty"`
}

// Payload is the notification body shown by the service worker. It is
// constructed fresh per triggering event and never persisted.
type Payload struct {
	Title string           `json:"title"`
	Type  NotificationType `json:"type"`
	Body  string           `json:"body"`
	Data  PayloadData      `json:"data"`
}

// Notifier decides who gets notified on which domain event.
type Notifier struct {
	dispatcher Dispatcher
}

func NewNotifier(dispatcher Dispatcher) *Notifier {
	return &Notifier{dispatcher: dispatcher}
}

// MovieAdded notifies every subscriber except the creator.
func (n *Notifier) MovieAdded(ctx context.Context, creatorID, movieID, title string) error {
	payload := &Payload{
		Title: "New movies!",
		Type:  TypeMovies,
		Body:  fmt.Sprintf("A new movie was added to the website : %q", title),
		Data: PayloadData{
			URL:     "/information-film/" + movieID,
			MovieID: movieID,
		},
	}

	return n.dispatcher.Broadcast(ctx, creatorID, payload)
}

// ListCommented notifies the list owner, unless they commented themselves.
func (n *Notifier) ListCommented(ctx context.Context, ownerID, commenterID, listID, listTitle string) error {
	if ownerID == commenterID {
		return nil
	}

	payload := &Payload{
		Title: "New Comment!",
		Type:  TypeComment,
		Body:  fmt.Sprintf("Someone commented your movie list %q", listTitle),
		Data: PayloadData{
			URL:    "/reclist/" + listID,
			ListID: listID,
		},
	}

	return n.dispatcher.SendToUser(ctx, ownerID, payload)
}

// ListLiked notifies the list owner about a like. Self-likes are silent, and
// so are toggles back to the unliked state; only transitions to liked=true
// notify.
func (n *Notifier) ListLiked(ctx context.Context, ownerID, actorID, listID, listTitle string, liked, firstTime bool) error {
	if ownerID == actorID || !liked {
		return nil
	}

	body := fmt.Sprintf("Someone liked your movie list %q", listTitle)
	if firstTime {
		body += " for the first time !"
	}

	payload := &Payload{
		Title: "New Like!",
		Type:  TypeLike,
		Body:  body,
		Data: PayloadData{
			URL:    "/reclist/" + listID,
			ListID: listID,
		},
	}

	return n.dispatcher.SendToUser(ctx, ownerID, payload)
}
