package repository

import (
	"context"

	"github.com/okateva/resto/internal/domain/model"
)

// PromoRepository provides promo code lookups. Usage accounting is part of
// the order creation transaction.
type PromoRepository interface {
	GetByCode(ctx context.Context, code string) (*model.PromoCode, error)
}
