package repository

import (
	"context"

	"github.com/okateva/resto/internal/domain/model"
)

// MenuRepository provides read access to the menu fields the order core
// depends on.
type MenuRepository interface {
	GetItems(ctx context.Context, ids []int64) (map[int64]model.MenuItem, error)
}
