package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/okateva/resto/internal/domain/errors"
	"github.com/okateva/resto/internal/domain/model"
	"github.com/okateva/resto/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool the storage uses; pgxmock provides
// a compatible implementation for tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL. Per-order
// consistency relies entirely on transactions here: every multi-step
// mutation reads the current row under FOR UPDATE and writes the new state
// inside the same transaction.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type menuRepository struct {
	storage *Storage
}

type customerRepository struct {
	storage *Storage
}

type promoRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Menu() repository.MenuRepository {
	return &menuRepository{storage: s}
}

func (s *Storage) Customers() repository.CustomerRepository {
	return &customerRepository{storage: s}
}

func (s *Storage) Promos() repository.PromoRepository {
	return &promoRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
            id BIGINT PRIMARY KEY,
            total_orders INT NOT NULL DEFAULT 0,
            total_spent DOUBLE PRECISION NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS menu_items (
            id SERIAL PRIMARY KEY,
            restaurant_id BIGINT NOT NULL,
            name TEXT NOT NULL,
            price DOUBLE PRECISION NOT NULL,
            available BOOLEAN NOT NULL DEFAULT TRUE,
            track_inventory BOOLEAN NOT NULL DEFAULT FALSE,
            stock_quantity INT
        )`,
		`CREATE TABLE IF NOT EXISTS promo_codes (
            id SERIAL PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            kind TEXT NOT NULL,
            value DOUBLE PRECISION NOT NULL,
            min_order DOUBLE PRECISION NOT NULL DEFAULT 0,
            max_discount DOUBLE PRECISION,
            usage_limit INT,
            usage_count INT NOT NULL DEFAULT 0,
            valid_from TIMESTAMPTZ NOT NULL,
            valid_until TIMESTAMPTZ NOT NULL,
            active BOOLEAN NOT NULL DEFAULT TRUE
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            number TEXT UNIQUE NOT NULL,
            restaurant_id BIGINT NOT NULL,
            customer_id BIGINT NOT NULL,
            fulfillment TEXT NOT NULL,
            status TEXT NOT NULL,
            payment_status TEXT NOT NULL,
            payment_method TEXT NOT NULL,
            transaction_id TEXT,
            subtotal DOUBLE PRECISION NOT NULL,
            tax_amount DOUBLE PRECISION NOT NULL,
            service_fee DOUBLE PRECISION NOT NULL,
            tip_amount DOUBLE PRECISION NOT NULL,
            delivery_fee DOUBLE PRECISION NOT NULL,
            discount DOUBLE PRECISION NOT NULL,
            total DOUBLE PRECISION NOT NULL,
            promo_code_id BIGINT REFERENCES promo_codes(id),
            delivery_address_id BIGINT,
            table_number TEXT,
            pickup_time TIMESTAMPTZ,
            contact_phone TEXT,
            side_effects_reversed BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id SERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            menu_item_id BIGINT NOT NULL REFERENCES menu_items(id),
            name TEXT NOT NULL,
            unit_price DOUBLE PRECISION NOT NULL,
            quantity INT NOT NULL,
            customizations JSONB,
            instructions TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS order_status_history (
            id SERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            status TEXT NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            actor TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_abandoned ON orders(status, payment_status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_history_order ON order_status_history(order_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, number, restaurant_id, customer_id, fulfillment, status, payment_status,
        payment_method, transaction_id, subtotal, tax_amount, service_fee, tip_amount,
        delivery_fee, discount, total, promo_code_id, delivery_address_id, table_number,
        pickup_time, contact_phone, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.Number, &o.RestaurantID, &o.CustomerID, &o.Fulfillment, &o.Status,
		&o.PaymentStatus, &o.PaymentMethod, &o.TransactionID, &o.Subtotal, &o.TaxAmount,
		&o.ServiceFee, &o.TipAmount, &o.DeliveryFee, &o.Discount, &o.Total,
		&o.PromoCodeID, &o.DeliveryAddressID, &o.TableNumber, &o.PickupTime,
		&o.ContactPhone, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.Order, items []model.OrderItem) (*model.Order, []model.OrderItem, error) {
	stored := *order
	storedItems := make([]model.OrderItem, len(items))
	copy(storedItems, items)

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO orders (
                number, restaurant_id, customer_id, fulfillment, status, payment_status,
                payment_method, subtotal, tax_amount, service_fee, tip_amount, delivery_fee,
                discount, total, promo_code_id, delivery_address_id, table_number,
                pickup_time, contact_phone)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
            RETURNING id, created_at, updated_at`
		err := tx.QueryRow(ctx, insertOrder,
			stored.Number, stored.RestaurantID, stored.CustomerID, stored.Fulfillment,
			model.OrderStatusPending, model.PaymentStatusPending, stored.PaymentMethod,
			stored.Subtotal, stored.TaxAmount, stored.ServiceFee, stored.TipAmount,
			stored.DeliveryFee, stored.Discount, stored.Total, stored.PromoCodeID,
			stored.DeliveryAddressID, stored.TableNumber, stored.PickupTime, stored.ContactPhone,
		).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domainErrors.ErrAlreadyExists
			}
			return err
		}
		stored.Status = model.OrderStatusPending
		stored.PaymentStatus = model.PaymentStatusPending

		const insertItem = `INSERT INTO order_items (order_id, menu_item_id, name, unit_price, quantity, customizations, instructions)
            VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`
		for i := range storedItems {
			storedItems[i].OrderID = stored.ID
			var custom []byte
			if len(storedItems[i].Customizations) > 0 {
				custom, err = json.Marshal(storedItems[i].Customizations)
				if err != nil {
					return fmt.Errorf("encode customizations: %w", err)
				}
			}
			if err := tx.QueryRow(ctx, insertItem,
				stored.ID, storedItems[i].MenuItemID, storedItems[i].Name,
				storedItems[i].UnitPrice, storedItems[i].Quantity, custom,
				storedItems[i].Instructions,
			).Scan(&storedItems[i].ID); err != nil {
				return err
			}
		}

		if err := insertHistoryTx(ctx, tx, stored.ID, model.OrderStatusPending, "order created", model.ActorCustomer); err != nil {
			return err
		}

		const bumpCustomer = `INSERT INTO customers (id, total_orders, total_spent)
            VALUES ($1, 1, $2)
            ON CONFLICT (id) DO UPDATE
            SET total_orders = customers.total_orders + 1,
                total_spent = customers.total_spent + EXCLUDED.total_spent`
		if _, err := tx.Exec(ctx, bumpCustomer, stored.CustomerID, stored.Total); err != nil {
			return err
		}

		if stored.PromoCodeID != nil {
			const spendPromo = `UPDATE promo_codes SET usage_count = usage_count + 1
                WHERE id=$1 AND active AND (usage_limit IS NULL OR usage_count < usage_limit)`
			tag, err := tx.Exec(ctx, spendPromo, *stored.PromoCodeID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return domainErrors.ErrPromoInvalid
			}
		}

		for _, it := range storedItems {
			if err := decrementStockTx(ctx, tx, it.MenuItemID, it.Quantity); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &stored, storedItems, nil
}

func decrementStockTx(ctx context.Context, tx pgx.Tx, menuItemID int64, quantity int) error {
	const lockItem = `SELECT track_inventory, stock_quantity FROM menu_items WHERE id=$1 FOR UPDATE`
	var track bool
	var stock *int
	if err := tx.QueryRow(ctx, lockItem, menuItemID).Scan(&track, &stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrMenuItemUnavailable
		}
		return err
	}
	if !track || stock == nil {
		return nil
	}
	if *stock < quantity {
		return domainErrors.ErrOutOfStock
	}
	_, err := tx.Exec(ctx, `UPDATE menu_items SET stock_quantity = stock_quantity - $1 WHERE id=$2`, quantity, menuItemID)
	return err
}

// restoreInventoryTx returns every trackable line item of the order to stock.
func restoreInventoryTx(ctx context.Context, tx pgx.Tx, orderID int64) error {
	const restore = `UPDATE menu_items m
        SET stock_quantity = m.stock_quantity + oi.quantity
        FROM order_items oi
        WHERE oi.order_id = $1 AND oi.menu_item_id = m.id
          AND m.track_inventory AND m.stock_quantity IS NOT NULL`
	_, err := tx.Exec(ctx, restore, orderID)
	return err
}

func insertHistoryTx(ctx context.Context, tx pgx.Tx, orderID int64, status model.OrderStatus, note, actor string) error {
	const insert = `INSERT INTO order_status_history (order_id, status, note, actor) VALUES ($1,$2,$3,$4)`
	_, err := tx.Exec(ctx, insert, orderID, status, note, actor)
	return err
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, []model.OrderItem, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domainErrors.ErrNotFound
		}
		return nil, nil, err
	}

	items, err := r.itemsFor(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

func (r *orderRepository) itemsFor(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	const query = `SELECT id, order_id, menu_item_id, name, unit_price, quantity, customizations, instructions
        FROM order_items WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		var custom []byte
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.UnitPrice, &it.Quantity, &custom, &it.Instructions); err != nil {
			return nil, err
		}
		if len(custom) > 0 {
			if err := json.Unmarshal(custom, &it.Customizations); err != nil {
				return nil, fmt.Errorf("decode customizations: %w", err)
			}
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id=$1 ORDER BY created_at DESC LIMIT $2`
	return r.listOrders(ctx, query, customerID, limit)
}

func (r *orderRepository) ListRecent(ctx context.Context, restaurantID int64, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id=$1 ORDER BY created_at DESC LIMIT $2`
	return r.listOrders(ctx, query, restaurantID, limit)
}

func (r *orderRepository) History(ctx context.Context, orderID int64) ([]model.StatusHistory, error) {
	const query = `SELECT id, order_id, status, note, actor, created_at
        FROM order_status_history WHERE order_id=$1 ORDER BY created_at, id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.StatusHistory
	for rows.Next() {
		var h model.StatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.Note, &h.Actor, &h.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// lockedOrder is the per-order state read under FOR UPDATE before any
// lifecycle write.
type lockedOrder struct {
	status        model.OrderStatus
	paymentStatus model.PaymentStatus
	paymentMethod model.PaymentMethod
	customerID    int64
	total         float64
	reversed      bool
}

func lockOrderTx(ctx context.Context, tx pgx.Tx, orderID int64) (*lockedOrder, error) {
	const query = `SELECT status, payment_status, payment_method, customer_id, total, side_effects_reversed
        FROM orders WHERE id=$1 FOR UPDATE`
	var st lockedOrder
	err := tx.QueryRow(ctx, query, orderID).Scan(&st.status, &st.paymentStatus, &st.paymentMethod, &st.customerID, &st.total, &st.reversed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

// reverseSideEffectsTx restores inventory and optionally the order count,
// always subtracting the order total from lifetime spend. Callers gate it
// on side_effects_reversed so it applies exactly once per order.
func reverseSideEffectsTx(ctx context.Context, tx pgx.Tx, orderID, customerID int64, total float64, reverseOrderCount bool) error {
	if err := restoreInventoryTx(ctx, tx, orderID); err != nil {
		return err
	}
	orderDelta := 0
	if reverseOrderCount {
		orderDelta = 1
	}
	const reverseCustomer = `UPDATE customers
        SET total_orders = total_orders - $2, total_spent = total_spent - $3
        WHERE id=$1`
	if _, err := tx.Exec(ctx, reverseCustomer, customerID, orderDelta, total); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `UPDATE orders SET side_effects_reversed = TRUE WHERE id=$1`, orderID)
	return err
}

func (r *orderRepository) Transition(ctx context.Context, orderID int64, next model.OrderStatus, note, actor string, staff bool) (*model.Order, error) {
	var updated *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		current, err := lockOrderTx(ctx, tx, orderID)
		if err != nil {
			return err
		}

		allowed, reason := model.TransitionAllowed(current.status, next, staff)
		if !allowed {
			return domainErrors.InvalidTransitionError{
				From:   string(current.status),
				To:     string(next),
				Reason: reason,
			}
		}

		if _, err := tx.Exec(ctx, `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`, next, orderID); err != nil {
			return err
		}

		// Cash is collected in person; acceptance is the capture point.
		if next == model.OrderStatusAccepted &&
			current.paymentMethod == model.PaymentMethodCash &&
			current.paymentStatus == model.PaymentStatusPending {
			if _, err := tx.Exec(ctx, `UPDATE orders SET payment_status=$1 WHERE id=$2`, model.PaymentStatusCompleted, orderID); err != nil {
				return err
			}
		}

		if err := insertHistoryTx(ctx, tx, orderID, next, note, actor); err != nil {
			return err
		}

		if (next == model.OrderStatusCancelled || next == model.OrderStatusRejected) &&
			current.paymentStatus != model.PaymentStatusRefunded && !current.reversed {
			if err := reverseSideEffectsTx(ctx, tx, orderID, current.customerID, current.total, true); err != nil {
				return err
			}
		}

		query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
		updated, err = scanOrder(tx.QueryRow(ctx, query, orderID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *orderRepository) MarkPaymentCompleted(ctx context.Context, orderID int64, transactionID, note string) (*model.Order, bool, error) {
	var updated *model.Order
	applied := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		current, err := lockOrderTx(ctx, tx, orderID)
		if err != nil {
			return err
		}

		query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`

		// Duplicate webhook delivery: already settled, nothing to do.
		if current.paymentStatus == model.PaymentStatusCompleted {
			updated, err = scanOrder(tx.QueryRow(ctx, query, orderID))
			return err
		}

		// A capture landing after the order was cancelled or rejected must
		// not settle it: a CANCELLED order never carries COMPLETED payment.
		// The money mismatch is resolved by the explicit refund path.
		if current.status == model.OrderStatusCancelled || current.status == model.OrderStatusRejected {
			updated, err = scanOrder(tx.QueryRow(ctx, query, orderID))
			return err
		}

		const settle = `UPDATE orders SET payment_status=$1, transaction_id=$2, updated_at=NOW() WHERE id=$3`
		if _, err := tx.Exec(ctx, settle, model.PaymentStatusCompleted, transactionID, orderID); err != nil {
			return err
		}

		// Advance fulfillment only from PENDING.
		if current.status == model.OrderStatusPending {
			if _, err := tx.Exec(ctx, `UPDATE orders SET status=$1 WHERE id=$2`, model.OrderStatusAccepted, orderID); err != nil {
				return err
			}
			if err := insertHistoryTx(ctx, tx, orderID, model.OrderStatusAccepted, note, model.ActorSystem); err != nil {
				return err
			}
		}

		applied = true
		updated, err = scanOrder(tx.QueryRow(ctx, query, orderID))
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return updated, applied, nil
}

func (r *orderRepository) MarkPaymentFailed(ctx context.Context, orderID int64) (bool, error) {
	applied := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		current, err := lockOrderTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if current.paymentStatus != model.PaymentStatusPending {
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE orders SET payment_status=$1, updated_at=NOW() WHERE id=$2`, model.PaymentStatusFailed, orderID); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *orderRepository) MarkPaymentRefunded(ctx context.Context, orderID int64, note string) (*model.Order, bool, error) {
	var updated *model.Order
	applied := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		current, err := lockOrderTx(ctx, tx, orderID)
		if err != nil {
			return err
		}

		query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`

		if current.paymentStatus == model.PaymentStatusRefunded {
			updated, err = scanOrder(tx.QueryRow(ctx, query, orderID))
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE orders SET payment_status=$1, updated_at=NOW() WHERE id=$2`, model.PaymentStatusRefunded, orderID); err != nil {
			return err
		}

		if current.status != model.OrderStatusCancelled && current.status != model.OrderStatusRejected {
			if _, err := tx.Exec(ctx, `UPDATE orders SET status=$1 WHERE id=$2`, model.OrderStatusCancelled, orderID); err != nil {
				return err
			}
			if err := insertHistoryTx(ctx, tx, orderID, model.OrderStatusCancelled, note, model.ActorSystem); err != nil {
				return err
			}
		}

		// A refund does not unmake the order: lifetime spend shrinks, the
		// order count stays.
		if !current.reversed {
			if err := reverseSideEffectsTx(ctx, tx, orderID, current.customerID, current.total, false); err != nil {
				return err
			}
		}

		applied = true
		updated, err = scanOrder(tx.QueryRow(ctx, query, orderID))
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return updated, applied, nil
}

func (r *orderRepository) SelectAbandoned(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	// SKIP LOCKED keeps concurrent sweeps off each other's batches.
	query := `SELECT ` + orderColumns + ` FROM orders
        WHERE status=$1 AND payment_status=$2 AND created_at < $3
        ORDER BY created_at LIMIT $4
        FOR UPDATE SKIP LOCKED`
	var result []model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, model.OrderStatusPending, model.PaymentStatusPending, cutoff, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			order, err := scanOrder(rows)
			if err != nil {
				return err
			}
			result = append(result, *order)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) CancelAbandoned(ctx context.Context, orderID int64, cutoff time.Time, note string) (bool, error) {
	applied := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		// Conditional re-check under lock: a payment completing between the
		// sweeper's select and this transaction wins, and the cancel becomes
		// a no-op.
		const query = `SELECT customer_id, total FROM orders
            WHERE id=$1 AND status=$2 AND payment_status=$3 AND created_at < $4
            FOR UPDATE`
		var customerID int64
		var total float64
		err := tx.QueryRow(ctx, query, orderID, model.OrderStatusPending, model.PaymentStatusPending, cutoff).Scan(&customerID, &total)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`, model.OrderStatusCancelled, orderID); err != nil {
			return err
		}
		if err := insertHistoryTx(ctx, tx, orderID, model.OrderStatusCancelled, note, model.ActorSystem); err != nil {
			return err
		}
		if err := reverseSideEffectsTx(ctx, tx, orderID, customerID, total, true); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// --- MenuRepository implementation ---

func (r *menuRepository) GetItems(ctx context.Context, ids []int64) (map[int64]model.MenuItem, error) {
	const query = `SELECT id, restaurant_id, name, price, available, track_inventory, stock_quantity
        FROM menu_items WHERE id = ANY($1)`
	rows, err := r.storage.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]model.MenuItem, len(ids))
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Price, &m.Available, &m.TrackInventory, &m.StockQuantity); err != nil {
			return nil, err
		}
		result[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- CustomerRepository implementation ---

func (r *customerRepository) Get(ctx context.Context, id int64) (*model.Customer, error) {
	const query = `SELECT id, total_orders, total_spent, created_at FROM customers WHERE id=$1`
	var c model.Customer
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.TotalOrders, &c.TotalSpent, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.Customer{ID: id}, nil
		}
		return nil, err
	}
	return &c, nil
}

// --- PromoRepository implementation ---

func (r *promoRepository) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	const query = `SELECT id, code, kind, value, min_order, max_discount, usage_limit, usage_count,
            valid_from, valid_until, active
        FROM promo_codes WHERE code=$1`
	var p model.PromoCode
	err := r.storage.pool.QueryRow(ctx, query, code).Scan(
		&p.ID, &p.Code, &p.Type, &p.Value, &p.MinOrder, &p.MaxDiscount,
		&p.UsageLimit, &p.UsageCount, &p.ValidFrom, &p.ValidUntil, &p.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
