package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/okateva/resto/internal/adapter/payment"
	"github.com/okateva/resto/internal/app"
	"github.com/okateva/resto/internal/config"
	"github.com/okateva/resto/internal/domain/repository"
	"github.com/okateva/resto/internal/storage/postgres"
	"github.com/okateva/resto/internal/test"
	"github.com/okateva/resto/internal/usecase"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:      ":0",
		DatabaseURI:     "postgres://stub",
		JWTSecret:       "secret",
		Currency:        "USD",
		TaxRate:         0.1,
		AbandonAfter:    15 * time.Minute,
		SweepInterval:   time.Minute,
		SweepBatchSize:  10,
		ShutdownTimeout: time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	orderRepo := &test.OrderRepositoryStub{}
	menuRepo := &test.MenuRepositoryStub{}
	customerRepo := &test.CustomerRepositoryStub{}
	promoRepo := &test.PromoRepositoryStub{}
	notifier := &test.NotifierStub{}
	registry := payment.Registry{payment.ProviderCash: payment.NewCashAdapter()}

	var facade *app.RestaurantFacade
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.OrderRepository(orderRepo)),
			fx.Replace(repository.MenuRepository(menuRepo)),
			fx.Replace(repository.CustomerRepository(customerRepo)),
			fx.Replace(repository.PromoRepository(promoRepo)),
			fx.Replace(usecase.Notifier(notifier)),
			fx.Replace(registry),
		),
		fx.Populate(&facade),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected restaurant facade instance")
	}
}
