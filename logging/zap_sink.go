package logging

import (
	"context"

	"go.uber.org/zap"
)

type zapPublisher struct {
	logger *zap.Logger
}

// NewZapPublisher routes simulation events into a zap logger. Severity maps
// onto zap levels; event metadata becomes structured fields.
func NewZapPublisher(logger *zap.Logger) Publisher {
	if logger == nil {
		return NopPublisher()
	}
	return &zapPublisher{logger: logger}
}

func (p *zapPublisher) Publish(_ context.Context, event Event) {
	fields := make([]zap.Field, 0, 8)
	fields = append(fields,
		zap.Uint64("tick", event.Tick),
		zap.String("category", event.Category),
		zap.String("actor", event.Actor.ID),
		zap.String("actorKind", string(event.Actor.Kind)),
	)
	if event.Room != "" {
		fields = append(fields, zap.String("room", event.Room))
	}
	if len(event.Targets) > 0 {
		ids := make([]string, 0, len(event.Targets))
		for _, ref := range event.Targets {
			ids = append(ids, ref.ID)
		}
		fields = append(fields, zap.Strings("targets", ids))
	}
	for key, value := range event.Extra {
		fields = append(fields, zap.Any(key, value))
	}

	msg := string(event.Type)
	switch event.Severity {
	case SeverityDebug:
		p.logger.Debug(msg, fields...)
	case SeverityWarn:
		p.logger.Warn(msg, fields...)
	case SeverityError:
		p.logger.Error(msg, fields...)
	default:
		p.logger.Info(msg, fields...)
	}
}
