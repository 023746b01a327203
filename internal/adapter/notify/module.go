package notify

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/okateva/resto/internal/config"
	"github.com/okateva/resto/internal/usecase"
)

// Module provides the notification collaborator. AMQP is used when a broker
// URL is configured; otherwise events are logged only.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newNotifier(p notifierParams) (usecase.Notifier, error) {
	if p.Config.NotifyAMQPURL == "" {
		return NewLogNotifier(p.Logger), nil
	}

	notifier, err := NewAMQPNotifier(p.Config.NotifyAMQPURL, p.Config.NotifyExchange, p.Logger)
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			notifier.Close()
			return nil
		},
	})
	return notifier, nil
}
