package di

import (
	"go.uber.org/fx"

	"github.com/okateva/resto/internal/adapter/notify"
	"github.com/okateva/resto/internal/adapter/payment"
	"github.com/okateva/resto/internal/app"
	"github.com/okateva/resto/internal/config"
	"github.com/okateva/resto/internal/logger"
	"github.com/okateva/resto/internal/pkg/auth"
	"github.com/okateva/resto/internal/server/http/router"
	"github.com/okateva/resto/internal/storage/postgres"
	"github.com/okateva/resto/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		payment.Module,
		notify.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
