package inbox

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/errs"
)

// Subscribe blocks on a NATS subject until ctx is cancelled, decoding each
// message payload as one exported email document. The message subject's last
// token is not meaningful; the payload's own metadata names the email.
func Subscribe(ctx context.Context, url, subject string, handle Handler) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	conn, err := nats.Connect(url, nats.Name("voltway-ingest"))
	if err != nil {
		return errs.Wrapf(err, "connect to nats %s", url)
	}
	defer conn.Drain()

	deliveries := make(chan *nats.Msg, 64)
	sub, err := conn.ChanSubscribe(subject, deliveries)
	if err != nil {
		return errs.Wrapf(err, "subscribe to %s", subject)
	}
	defer sub.Unsubscribe()

	logging.Info(ctx, "subscribed to inbox stream", slog.String("url", url), slog.String("subject", subject))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery := <-deliveries:
			msg, err := ParseFile(messageName(delivery), delivery.Data)
			if err != nil {
				logging.Warn(ctx, "skip malformed stream message", slog.String("error", err.Error()))
				continue
			}
			if err := handle(ctx, msg); err != nil {
				logging.Error(ctx, "handle stream message failed", slog.String("file", msg.Filename), slog.String("error", err.Error()))
			}
		}
	}
}

// messageName derives a filename for a stream delivery. Producers set the
// Nats-Msg-Id header when they have one; without it each delivery gets a
// fresh id so re-deliveries never overwrite each other.
func messageName(delivery *nats.Msg) string {
	if id := delivery.Header.Get("Nats-Msg-Id"); id != "" {
		return id + ".json"
	}
	return "stream-" + uuid.NewString() + ".json"
}
