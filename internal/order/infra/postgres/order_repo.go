package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minshop/commerce/internal/order/app"
	"github.com/minshop/commerce/internal/order/domain"
)

const orderColumns = `id, user_id, order_number, status, total_amount, payment_method, payment_id,
	shipping_address, shipping_code, notes, cancel_reason, refund_reason,
	created_at, updated_at, paid_at, shipped_at, delivered_at, cancelled_at, refunded_at`

const itemColumns = `id, order_id, product_id, product_name, product_image, quantity, price, total_price, attributes`

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) execTX(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %w; rollback err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

func (r *OrderRepo) CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	var created domain.Order

	err := r.execTX(ctx, func(tx *sql.Tx) error {
		// The conditional decrement is the authoritative stock check: two
		// concurrent orders cannot both take the last unit.
		for i, item := range order.Items {
			prodID, err := uuid.Parse(item.ProductID)
			if err != nil {
				return fmt.Errorf("item %d: invalid product id: %w", i, err)
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock_quantity = stock_quantity - $1, updated_at = now()
				WHERE id = $2 AND stock_quantity >= $1`,
				item.Quantity, prodID)
			if err != nil {
				return fmt.Errorf("decrement stock for product %s: %w", item.ProductID, err)
			}

			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return stockFailure(ctx, tx, prodID)
			}
		}

		orderID := uuid.New()
		row := tx.QueryRowContext(ctx, `
			INSERT INTO orders (id, user_id, order_number, status, total_amount,
				payment_method, shipping_address, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+orderColumns,
			orderID, order.UserID, order.OrderNumber, order.Status, order.TotalAmount,
			nullString(order.PaymentMethod), nullString(order.ShippingAddress), nullString(order.Notes))

		o, err := scanOrder(row)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		items := make([]domain.OrderItem, 0, len(order.Items))
		for i, item := range order.Items {
			itemRow := tx.QueryRowContext(ctx, `
				INSERT INTO order_items (id, order_id, product_id, product_name, product_image,
					quantity, price, total_price, attributes)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				RETURNING `+itemColumns,
				uuid.New(), orderID, item.ProductID, item.ProductName, nullString(item.ProductImage),
				item.Quantity, item.Price, item.TotalPrice, nullString(item.Attributes))

			saved, err := scanItem(itemRow)
			if err != nil {
				return fmt.Errorf("insert item %d: %w", i, err)
			}
			items = append(items, saved)
		}

		o.Items = items
		created = o
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return created, nil
}

// stockFailure classifies a failed conditional decrement: missing product or
// insufficient stock.
func stockFailure(ctx context.Context, tx *sql.Tx, prodID uuid.UUID) error {
	var (
		name  string
		stock int64
	)
	err := tx.QueryRowContext(ctx,
		`SELECT name, stock_quantity FROM products WHERE id = $1`, prodID).Scan(&name, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("product %s: %w", prodID, app.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return &domain.InsufficientStockError{ProductName: name, Stock: stock}
}

func (r *OrderRepo) GetByIDAndUser(ctx context.Context, orderID, userID string) (domain.Order, error) {
	oID, err := uuid.Parse(orderID)
	if err != nil {
		return domain.Order{}, app.ErrNotFound
	}
	uID, err := uuid.Parse(userID)
	if err != nil {
		return domain.Order{}, app.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, oID, uID)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM order_items WHERE order_id = $1 ORDER BY created_at`, oID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return domain.Order{}, err
		}
		order.Items = append(order.Items, item)
	}

	return order, rows.Err()
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string, f app.ListFilter) ([]app.OrderSummary, int64, error) {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, app.ErrNotFound
	}

	where := []string{"user_id = $1"}
	args := []any{uID}
	if f.Status != nil {
		args = append(args, *f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("order_number ILIKE $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM orders WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s,
			(SELECT count(*) FROM order_items oi WHERE oi.order_id = orders.id) AS item_count
		FROM orders
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []app.OrderSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, summary)
	}

	return out, total, rows.Err()
}

func (r *OrderRepo) CancelOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	oID, err := uuid.Parse(order.ID)
	if err != nil {
		return domain.Order{}, app.ErrNotFound
	}

	var cancelled domain.Order

	err = r.execTX(ctx, func(tx *sql.Tx) error {
		// Conditional on a cancellable status so a concurrent cancel (or a
		// concurrent forward transition) cannot restore stock twice.
		row := tx.QueryRowContext(ctx, `
			UPDATE orders
			SET status = $1, cancel_reason = $2, cancelled_at = $3, updated_at = now()
			WHERE id = $4 AND status IN ('PENDING', 'PAID', 'PROCESSING')
			RETURNING `+orderColumns,
			domain.OrderStatusCancelled, nullString(order.CancelReason), order.CancelledAt, oID)

		o, err := scanOrder(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: order no longer cancellable", domain.ErrInvalidState)
		}
		if err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}

		for _, item := range order.Items {
			prodID, err := uuid.Parse(item.ProductID)
			if err != nil {
				return fmt.Errorf("invalid product id on item %s: %w", item.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock_quantity = stock_quantity + $1, updated_at = now()
				WHERE id = $2`,
				item.Quantity, prodID); err != nil {
				return fmt.Errorf("restore stock for product %s: %w", item.ProductID, err)
			}
		}

		o.Items = order.Items
		cancelled = o
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return cancelled, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o          domain.Order
		id, userID uuid.UUID

		paymentMethod, paymentID, shippingAddress sql.NullString
		shippingCode, notes                       sql.NullString
		cancelReason, refundReason                sql.NullString

		paidAt, shippedAt, deliveredAt sql.NullTime
		cancelledAt, refundedAt        sql.NullTime
	)

	err := row.Scan(&id, &userID, &o.OrderNumber, &o.Status, &o.TotalAmount,
		&paymentMethod, &paymentID, &shippingAddress, &shippingCode, &notes,
		&cancelReason, &refundReason,
		&o.CreatedAt, &o.UpdatedAt, &paidAt, &shippedAt, &deliveredAt, &cancelledAt, &refundedAt)
	if err != nil {
		return domain.Order{}, err
	}

	o.ID = id.String()
	o.UserID = userID.String()
	o.PaymentMethod = paymentMethod.String
	o.PaymentID = paymentID.String
	o.ShippingAddress = shippingAddress.String
	o.ShippingCode = shippingCode.String
	o.Notes = notes.String
	o.CancelReason = cancelReason.String
	o.RefundReason = refundReason.String
	o.PaidAt = nullableTime(paidAt)
	o.ShippedAt = nullableTime(shippedAt)
	o.DeliveredAt = nullableTime(deliveredAt)
	o.CancelledAt = nullableTime(cancelledAt)
	o.RefundedAt = nullableTime(refundedAt)

	return o, nil
}

func scanItem(row rowScanner) (domain.OrderItem, error) {
	var (
		item                     domain.OrderItem
		id, orderID, productID   uuid.UUID
		productImage, attributes sql.NullString
	)

	err := row.Scan(&id, &orderID, &productID, &item.ProductName, &productImage,
		&item.Quantity, &item.Price, &item.TotalPrice, &attributes)
	if err != nil {
		return domain.OrderItem{}, err
	}

	item.ID = id.String()
	item.OrderID = orderID.String()
	item.ProductID = productID.String()
	item.ProductImage = productImage.String
	item.Attributes = attributes.String

	return item, nil
}

func scanSummary(row rowScanner) (app.OrderSummary, error) {
	var (
		o          domain.Order
		id, userID uuid.UUID

		paymentMethod, paymentID, shippingAddress sql.NullString
		shippingCode, notes                       sql.NullString
		cancelReason, refundReason                sql.NullString

		paidAt, shippedAt, deliveredAt sql.NullTime
		cancelledAt, refundedAt        sql.NullTime

		itemCount int64
	)

	err := row.Scan(&id, &userID, &o.OrderNumber, &o.Status, &o.TotalAmount,
		&paymentMethod, &paymentID, &shippingAddress, &shippingCode, &notes,
		&cancelReason, &refundReason,
		&o.CreatedAt, &o.UpdatedAt, &paidAt, &shippedAt, &deliveredAt, &cancelledAt, &refundedAt,
		&itemCount)
	if err != nil {
		return app.OrderSummary{}, err
	}

	o.ID = id.String()
	o.UserID = userID.String()
	o.CancelledAt = nullableTime(cancelledAt)

	return app.OrderSummary{Order: o, ItemCount: itemCount}, nil
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
