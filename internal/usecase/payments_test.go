package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/okateva/resto/internal/adapter/payment"
	domainErrors "github.com/okateva/resto/internal/domain/errors"
	"github.com/okateva/resto/internal/domain/model"
)

type stubAdapter struct {
	fn func(context.Context, payment.ChargeRequest) (*payment.ChargeResult, error)
}

func (s stubAdapter) CreateCharge(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	return s.fn(ctx, req)
}

func testRegistry(fn func(context.Context, payment.ChargeRequest) (*payment.ChargeResult, error)) payment.Registry {
	return payment.Registry{payment.ProviderCard: stubAdapter{fn: fn}}
}

func TestPaymentUseCaseCreateCharge(t *testing.T) {
	repo := stubOrderRepository{getByIDFn: func(context.Context, int64) (*model.Order, []model.OrderItem, error) {
		return &model.Order{ID: 9, Number: "ORD-9", CustomerID: 7, Total: 25.50, Status: model.OrderStatusPending, PaymentStatus: model.PaymentStatusPending}, nil, nil
	}}
	var captured payment.ChargeRequest
	registry := testRegistry(func(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
		captured = req
		return &payment.ChargeResult{Provider: payment.ProviderCard, ExternalID: "pi_1"}, nil
	})
	uc := NewPaymentUseCase(repo, registry, &stubNotifier{}, discardLogger(), "USD")

	result, err := uc.CreateCharge(context.Background(), payment.ProviderCard, 9, 7, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExternalID != "pi_1" {
		t.Fatalf("unexpected external id %s", result.ExternalID)
	}
	if captured.CorrelationID != "9" {
		t.Fatalf("expected order id as correlation id, got %s", captured.CorrelationID)
	}
	if captured.Amount != 25.50 || captured.Currency != "USD" {
		t.Fatalf("unexpected charge amount %v %s", captured.Amount, captured.Currency)
	}
	if captured.Reference == "" {
		t.Fatal("expected idempotency reference to be set")
	}
}

func TestPaymentUseCaseCreateChargeRejectsUnknownProvider(t *testing.T) {
	uc := NewPaymentUseCase(stubOrderRepository{}, payment.Registry{}, &stubNotifier{}, discardLogger(), "USD")

	_, err := uc.CreateCharge(context.Background(), "crypto", 9, 7, false)
	var validation domainErrors.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPaymentUseCaseCreateChargeEnforcesOwnership(t *testing.T) {
	repo := stubOrderRepository{getByIDFn: func(context.Context, int64) (*model.Order, []model.OrderItem, error) {
		return &model.Order{ID: 9, CustomerID: 7, Status: model.OrderStatusPending, PaymentStatus: model.PaymentStatusPending}, nil, nil
	}}
	registry := testRegistry(func(context.Context, payment.ChargeRequest) (*payment.ChargeResult, error) {
		t.Fatal("adapter should not be reached")
		return nil, nil
	})
	uc := NewPaymentUseCase(repo, registry, &stubNotifier{}, discardLogger(), "USD")

	if _, err := uc.CreateCharge(context.Background(), payment.ProviderCard, 9, 8, false); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestPaymentUseCaseCreateChargeRejectsSettledOrder(t *testing.T) {
	repo := stubOrderRepository{getByIDFn: func(context.Context, int64) (*model.Order, []model.OrderItem, error) {
		return &model.Order{ID: 9, CustomerID: 7, Status: model.OrderStatusAccepted, PaymentStatus: model.PaymentStatusCompleted}, nil, nil
	}}
	uc := NewPaymentUseCase(repo, testRegistry(nil), &stubNotifier{}, discardLogger(), "USD")

	if _, err := uc.CreateCharge(context.Background(), payment.ProviderCard, 9, 7, false); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestPaymentUseCaseCreateChargeRejectsTerminalOrder(t *testing.T) {
	repo := stubOrderRepository{getByIDFn: func(context.Context, int64) (*model.Order, []model.OrderItem, error) {
		return &model.Order{ID: 9, CustomerID: 7, Status: model.OrderStatusCancelled, PaymentStatus: model.PaymentStatusPending}, nil, nil
	}}
	uc := NewPaymentUseCase(repo, testRegistry(nil), &stubNotifier{}, discardLogger(), "USD")

	_, err := uc.CreateCharge(context.Background(), payment.ProviderCard, 9, 7, false)
	var transition domainErrors.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected invalid transition error, got %v", err)
	}
}

func TestPaymentUseCaseReconcileCaptured(t *testing.T) {
	var gotTransaction string
	repo := stubOrderRepository{markPaymentCompletedFn: func(ctx context.Context, orderID int64, transactionID, note string) (*model.Order, bool, error) {
		gotTransaction = transactionID
		return &model.Order{ID: orderID, Number: "ORD-9", Status: model.OrderStatusAccepted, PaymentStatus: model.PaymentStatusCompleted}, true, nil
	}}
	notifier := &stubNotifier{}
	uc := NewPaymentUseCase(repo, payment.Registry{}, notifier, discardLogger(), "USD")

	if err := uc.ReconcileCaptured(context.Background(), 9, "pi_1", "card webhook"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTransaction != "pi_1" {
		t.Fatalf("unexpected transaction id %s", gotTransaction)
	}
	if len(notifier.events) != 1 || notifier.events[0] != model.OrderStatusAccepted {
		t.Fatalf("expected ACCEPTED notification, got %v", notifier.events)
	}
}

func TestPaymentUseCaseReconcileCapturedDuplicateDoesNotNotify(t *testing.T) {
	repo := stubOrderRepository{markPaymentCompletedFn: func(ctx context.Context, orderID int64, transactionID, note string) (*model.Order, bool, error) {
		return &model.Order{ID: orderID, PaymentStatus: model.PaymentStatusCompleted}, false, nil
	}}
	notifier := &stubNotifier{}
	uc := NewPaymentUseCase(repo, payment.Registry{}, notifier, discardLogger(), "USD")

	if err := uc.ReconcileCaptured(context.Background(), 9, "pi_1", "card webhook"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatal("duplicate capture must not notify")
	}
}

func TestPaymentUseCaseReconcileCapturedAfterCancellationDoesNotNotify(t *testing.T) {
	repo := stubOrderRepository{markPaymentCompletedFn: func(ctx context.Context, orderID int64, transactionID, note string) (*model.Order, bool, error) {
		return &model.Order{ID: orderID, Status: model.OrderStatusCancelled, PaymentStatus: model.PaymentStatusPending}, false, nil
	}}
	notifier := &stubNotifier{}
	uc := NewPaymentUseCase(repo, payment.Registry{}, notifier, discardLogger(), "USD")

	if err := uc.ReconcileCaptured(context.Background(), 9, "pi_1", "card webhook"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatal("refused capture must not notify")
	}
}

func TestPaymentUseCaseReconcileCapturedUnknownOrderIsSwallowed(t *testing.T) {
	repo := stubOrderRepository{markPaymentCompletedFn: func(context.Context, int64, string, string) (*model.Order, bool, error) {
		return nil, false, domainErrors.ErrNotFound
	}}
	uc := NewPaymentUseCase(repo, payment.Registry{}, &stubNotifier{}, discardLogger(), "USD")

	if err := uc.ReconcileCaptured(context.Background(), 404, "pi_1", "card webhook"); err != nil {
		t.Fatalf("unknown order must be ignored: %v", err)
	}
}

func TestPaymentUseCaseReconcileDenied(t *testing.T) {
	called := false
	repo := stubOrderRepository{markPaymentFailedFn: func(context.Context, int64) (bool, error) {
		called = true
		return true, nil
	}}
	uc := NewPaymentUseCase(repo, payment.Registry{}, &stubNotifier{}, discardLogger(), "USD")

	if err := uc.ReconcileDenied(context.Background(), 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected repository call")
	}

	repo = stubOrderRepository{markPaymentFailedFn: func(context.Context, int64) (bool, error) {
		return false, domainErrors.ErrNotFound
	}}
	uc = NewPaymentUseCase(repo, payment.Registry{}, &stubNotifier{}, discardLogger(), "USD")
	if err := uc.ReconcileDenied(context.Background(), 404); err != nil {
		t.Fatalf("unknown order must be ignored: %v", err)
	}
}

func TestPaymentUseCaseReconcileRefunded(t *testing.T) {
	repo := stubOrderRepository{markPaymentRefundedFn: func(ctx context.Context, orderID int64, note string) (*model.Order, bool, error) {
		return &model.Order{ID: orderID, Number: "ORD-9", Status: model.OrderStatusCancelled, PaymentStatus: model.PaymentStatusRefunded}, true, nil
	}}
	notifier := &stubNotifier{}
	uc := NewPaymentUseCase(repo, payment.Registry{}, notifier, discardLogger(), "USD")

	if err := uc.ReconcileRefunded(context.Background(), 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.events) != 1 || notifier.events[0] != model.OrderStatusCancelled {
		t.Fatalf("expected CANCELLED notification, got %v", notifier.events)
	}
}

func TestPaymentUseCaseReconcileRefundedDuplicateDoesNotNotify(t *testing.T) {
	repo := stubOrderRepository{markPaymentRefundedFn: func(ctx context.Context, orderID int64, note string) (*model.Order, bool, error) {
		return &model.Order{ID: orderID, PaymentStatus: model.PaymentStatusRefunded}, false, nil
	}}
	notifier := &stubNotifier{}
	uc := NewPaymentUseCase(repo, payment.Registry{}, notifier, discardLogger(), "USD")

	if err := uc.ReconcileRefunded(context.Background(), 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatal("duplicate refund must not notify")
	}
}
