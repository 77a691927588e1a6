package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/quill/pkg/posts"
)

// OutputFormat selects how Stream renders events.
type OutputFormat string

const (
	// OutputFormatDefault prints one human-readable line per event
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSON prints line-delimited JSON events
	OutputFormatJSON OutputFormat = "json"
)

// EventSource is a live feed of post events, such as a Redis subscription.
type EventSource interface {
	Events() <-chan posts.Event
	Errors() <-chan error
}

// Stream writes events from src until ctx is cancelled or the events channel
// closes. Subscription errors are reported on errOut and do not stop the stream.
func Stream(ctx context.Context, src EventSource, format OutputFormat, w, errOut io.Writer) error {
	events, errs := src.Events(), src.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			fmt.Fprintf(errOut, "⚠️  %v\n", err)

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := writeEvent(w, ev, format); err != nil {
				return err
			}
		}
	}
}

func writeEvent(w io.Writer, ev posts.Event, format OutputFormat) error {
	switch format {
	case OutputFormatJSON:
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	default:
		_, err := fmt.Fprintln(w, FormatEvent(ev))
		return err
	}
}

// FormatEvent renders ev as "[15:04:05] ✨ Post created: id=… title=…".
func FormatEvent(ev posts.Event) string {
	icon, label := "•", string(ev.Type)
	switch ev.Type {
	case posts.EventCreated:
		icon, label = "✨", "Post created"
	case posts.EventUpdated:
		icon, label = "📝", "Post updated"
	case posts.EventPatched:
		icon, label = "✏️", "Post patched"
	case posts.EventDeleted:
		icon, label = "🗑️", "Post deleted"
	}
	return fmt.Sprintf("[%s] %s %s: id=%s title=%q",
		ev.At.Local().Format("15:04:05"), icon, label, ev.Post.ID, ev.Post.Title)
}

// HealthCheck reports whether the target is ready.
type HealthCheck func(ctx context.Context) error

// WaitHealthy polls check every interval until it succeeds.
// Returns the last check error if timeout elapses first.
func WaitHealthy(ctx context.Context, check HealthCheck, interval, timeout time.Duration) error {
	lastErr := check(ctx)
	if lastErr == nil {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timeoutCh:
			return fmt.Errorf("timeout waiting for server after %v: %w", timeout, lastErr)

		case <-ticker.C:
			lastErr = check(ctx)
			if lastErr == nil {
				return nil
			}
		}
	}
}
