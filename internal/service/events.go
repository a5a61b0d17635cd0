package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/servicehub-api/internal/events"
	"github.com/phrazzld/servicehub-api/internal/platform/logger"
)

// publish emits an event after a committed change. Failures are logged and
// never reach the caller.
func publish(ctx context.Context, emitter events.EventEmitter, log *slog.Logger, eventType string, payload any) {
	if emitter == nil {
		return
	}
	log = logger.FromContextOrDefault(ctx, log)

	event, err := events.NewEvent(eventType, payload)
	if err == nil {
		err = emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Warn("failed to emit event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}
