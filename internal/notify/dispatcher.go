package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// TaskTypeDispatch is the asynq task type consumed by the worker.
const TaskTypeDispatch = "notify:dispatch"

// Envelope is the wire form of a queued notification.
type Envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Dispatcher queues notifications for a sink. Dispatch never reports
// failure to the caller: a lost notification must not roll back the
// business write that produced it.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload Payload)
}

// AsynqDispatcher enqueues notifications onto the background queue.
type AsynqDispatcher struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewAsynqDispatcher constructs an AsynqDispatcher.
func NewAsynqDispatcher(client *asynq.Client, logger *slog.Logger) *AsynqDispatcher {
	return &AsynqDispatcher{client: client, logger: logger}
}

// Dispatch marshals and enqueues the payload. Errors are logged and swallowed.
func (d *AsynqDispatcher) Dispatch(ctx context.Context, payload Payload) {
	if d == nil || d.client == nil || payload == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("notify marshal", slog.String("kind", string(payload.NotificationKind())), slog.Any("error", err))
		return
	}
	envelope, err := json.Marshal(Envelope{Kind: payload.NotificationKind(), Data: data})
	if err != nil {
		d.logger.Error("notify envelope", slog.Any("error", err))
		return
	}
	task := asynq.NewTask(TaskTypeDispatch, envelope)
	if _, err := d.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		d.logger.Error("notify enqueue",
			slog.String("kind", string(payload.NotificationKind())),
			slog.Any("error", err))
	}
}

// LogDispatcher writes notifications to the log only. Used in development
// and as a fallback when the queue is unavailable.
type LogDispatcher struct {
	Logger *slog.Logger
}

// Dispatch implements Dispatcher.
func (d LogDispatcher) Dispatch(ctx context.Context, payload Payload) {
	if d.Logger == nil || payload == nil {
		return
	}
	d.Logger.Info("notification", slog.String("kind", string(payload.NotificationKind())), slog.Any("payload", payload))
}
