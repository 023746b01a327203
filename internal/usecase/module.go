package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/okateva/resto/internal/adapter/payment"
	"github.com/okateva/resto/internal/config"
	"github.com/okateva/resto/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newOrderUseCase,
	NewStatusUseCase,
	newPaymentUseCase,
	newSweepUseCase,
)

type orderParams struct {
	fx.In

	Orders repository.OrderRepository
	Menu   repository.MenuRepository
	Promos repository.PromoRepository
	Config *config.Config
}

func newOrderUseCase(p orderParams) *OrderUseCase {
	return NewOrderUseCase(p.Orders, p.Menu, p.Promos, Pricing{
		Currency:    p.Config.Currency,
		TaxRate:     p.Config.TaxRate,
		ServiceFee:  p.Config.ServiceFee,
		DeliveryFee: p.Config.DeliveryFee,
	})
}

type paymentParams struct {
	fx.In

	Orders   repository.OrderRepository
	Adapters payment.Registry
	Notifier Notifier
	Logger   *slog.Logger
	Config   *config.Config
}

func newPaymentUseCase(p paymentParams) *PaymentUseCase {
	return NewPaymentUseCase(p.Orders, p.Adapters, p.Notifier, p.Logger, p.Config.Currency)
}

type sweepParams struct {
	fx.In

	Orders   repository.OrderRepository
	Notifier Notifier
	Logger   *slog.Logger
	Config   *config.Config
}

func newSweepUseCase(p sweepParams) *SweepUseCase {
	return NewSweepUseCase(p.Orders, p.Notifier, p.Logger, p.Config.AbandonAfter, p.Config.SweepBatchSize)
}
