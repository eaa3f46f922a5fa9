package stream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rickgao/delivery-planner/internal/model"
)

// Watch connects to a plan feed at url and calls fn for every plan until
// ctx is cancelled, the server closes the feed, or fn returns an error.
// Cancellation and a normal close return nil.
func Watch(ctx context.Context, url string, fn func(*model.DeliveryPlan) error) error {
	header := http.Header{}
	header.Set("Accept", "application/json")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	// Unblock ReadJSON when the caller gives up
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var plan model.DeliveryPlan
		if err := conn.ReadJSON(&plan); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read plan: %w", err)
		}
		if err := fn(&plan); err != nil {
			return err
		}
	}
}
