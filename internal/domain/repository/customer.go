package repository

import (
	"context"

	"github.com/okateva/resto/internal/domain/model"
)

// CustomerRepository exposes customer aggregates for reads; all writes to
// the aggregates happen inside order lifecycle transactions.
type CustomerRepository interface {
	Get(ctx context.Context, id int64) (*model.Customer, error)
}
