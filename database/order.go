package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/candleworks/fulfil/internal/apierror"
	"github.com/candleworks/fulfil/model"
	"github.com/lib/pq"
)

const orderCacheTTL = time.Minute

func orderCacheKey(orderID string) string {
	return fmt.Sprintf("order:%s", orderID)
}

func (d Datasource) CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	destinationJSON, err := json.Marshal(order.DestinationAddress)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal destination address", err)
	}
	metaDataJSON, err := json.Marshal(order.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	if order.OrderID == "" {
		order.OrderID = model.GenerateUUIDWithSuffix("ord")
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt

	_, err = d.Conn.ExecContext(ctx, `
		INSERT INTO fulfil.orders (order_id, quantity, destination_address, shipping_cost_collected, payment_transfer_id, created_at, updated_at, meta_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, order.OrderID, order.Quantity, destinationJSON, order.ShippingCostCollected, newNullString(order.PaymentTransferID), order.CreatedAt, order.UpdatedAt, metaDataJSON)

	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return nil, apierror.NewAPIError(apierror.ErrConflict, "Order with this ID already exists", err)
			default:
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Database error occurred", err)
			}
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create order", err)
	}

	return order, nil
}

func (d Datasource) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	if d.Cache != nil {
		cached := model.Order{}
		if err := d.Cache.Get(ctx, orderCacheKey(orderID), &cached); err == nil && cached.OrderID != "" {
			return &cached, nil
		}
	}

	order, err := d.queryOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if d.Cache != nil {
		_ = d.Cache.Set(ctx, orderCacheKey(orderID), order, orderCacheTTL)
	}
	return order, nil
}

// GetOrderUncached reads the order straight from Postgres. The cache's local
// tier is per-process, so a write on another instance can leave this one with
// a stale entry until the TTL runs out. Guard reads ahead of the billable
// label purchase and the fee reversal must see the persisted record, never a
// cached copy.
func (d Datasource) GetOrderUncached(ctx context.Context, orderID string) (*model.Order, error) {
	return d.queryOrder(ctx, orderID)
}

func (d Datasource) queryOrder(ctx context.Context, orderID string) (*model.Order, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT id, order_id, quantity, destination_address, shipping_cost_collected, payment_transfer_id,
			tracking_id, tracking_code, label_url, carrier, service, label_generated_at,
			shipping_fee_captured_at, shipping_fee_amount_cents, transfer_reversal_id,
			created_at, updated_at, meta_data
		FROM fulfil.orders
		WHERE order_id = $1
	`, orderID)

	order, err := scanOrderRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Order with ID '%s' not found", orderID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan order data", err)
	}
	return order, nil
}

func (d Datasource) GetAllOrders(ctx context.Context, limit, offset int) ([]model.Order, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, order_id, quantity, destination_address, shipping_cost_collected, payment_transfer_id,
			tracking_id, tracking_code, label_url, carrier, service, label_generated_at,
			shipping_fee_captured_at, shipping_fee_amount_cents, transfer_reversal_id,
			created_at, updated_at, meta_data
		FROM fulfil.orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve orders", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrderRow(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan order data", err)
		}
		orders = append(orders, *order)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over orders", err)
	}

	return orders, nil
}

// SaveLabelResult persists a purchased label onto the order. The write is
// conditional on the order still being unlabeled; losing the race surfaces as
// CONFLICT so the caller re-reads and returns the winner's label instead of
// erroring.
func (d Datasource) SaveLabelResult(ctx context.Context, orderID string, result *model.LabelResult, generatedAt time.Time) error {
	res, err := d.Conn.ExecContext(ctx, `
		UPDATE fulfil.orders
		SET tracking_id = $2, tracking_code = $3, label_url = $4, carrier = $5, service = $6,
			label_generated_at = $7, updated_at = $8
		WHERE order_id = $1 AND (tracking_code IS NULL OR tracking_code = '')
	`, orderID, result.TrackingID, result.TrackingCode, result.LabelURL, result.Carrier, result.Service, generatedAt, time.Now())
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to save label result", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read label write result", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Order '%s' is already labeled or does not exist", orderID), nil)
	}

	d.invalidateOrder(ctx, orderID)
	return nil
}

// MarkShippingFeeCaptured stamps the reconciliation guard. Conditional on the
// fee not being captured yet so the reversal is recorded at most once.
func (d Datasource) MarkShippingFeeCaptured(ctx context.Context, orderID string, capturedAt time.Time, amountCents int64, reversalID string) error {
	res, err := d.Conn.ExecContext(ctx, `
		UPDATE fulfil.orders
		SET shipping_fee_captured_at = $2, shipping_fee_amount_cents = $3, transfer_reversal_id = $4, updated_at = $5
		WHERE order_id = $1 AND shipping_fee_captured_at IS NULL
	`, orderID, capturedAt, amountCents, reversalID, time.Now())
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark shipping fee captured", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read fee capture write result", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Shipping fee for order '%s' is already captured or order does not exist", orderID), nil)
	}

	d.invalidateOrder(ctx, orderID)
	return nil
}

func (d Datasource) invalidateOrder(ctx context.Context, orderID string) {
	if d.Cache != nil {
		_ = d.Cache.Delete(ctx, orderCacheKey(orderID))
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrderRow(row rowScanner) (*model.Order, error) {
	order := model.Order{}
	var destinationJSON []byte
	var metaDataJSON []byte
	var paymentTransferID, trackingID, trackingCode, labelURL, carrier, service, transferReversalID sql.NullString
	var labelGeneratedAt, shippingFeeCapturedAt sql.NullTime

	err := row.Scan(&order.ID, &order.OrderID, &order.Quantity, &destinationJSON, &order.ShippingCostCollected,
		&paymentTransferID, &trackingID, &trackingCode, &labelURL, &carrier, &service, &labelGeneratedAt,
		&shippingFeeCapturedAt, &order.ShippingFeeAmountCents, &transferReversalID,
		&order.CreatedAt, &order.UpdatedAt, &metaDataJSON)
	if err != nil {
		return nil, err
	}

	if len(destinationJSON) > 0 {
		if err := json.Unmarshal(destinationJSON, &order.DestinationAddress); err != nil {
			return nil, err
		}
	}
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &order.MetaData); err != nil {
			return nil, err
		}
	}

	order.PaymentTransferID = paymentTransferID.String
	order.TrackingID = trackingID.String
	order.TrackingCode = trackingCode.String
	order.LabelURL = labelURL.String
	order.Carrier = carrier.String
	order.Service = service.String
	if labelGeneratedAt.Valid {
		order.LabelGeneratedAt = &labelGeneratedAt.Time
	}
	if shippingFeeCapturedAt.Valid {
		order.ShippingFeeCapturedAt = &shippingFeeCapturedAt.Time
	}
	order.TransferReversalID = transferReversalID.String

	return &order, nil
}

func newNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
