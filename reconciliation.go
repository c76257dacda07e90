/*
Copyright 2025 Candleworks Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package fulfil

import (
	"context"
	"math"
	"time"

	"github.com/candleworks/fulfil/internal/notification"
	"github.com/candleworks/fulfil/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ReconciliationResult records a completed shipping-fee claw-back.
type ReconciliationResult struct {
	OrderID     string    `json:"order_id"`
	TransferID  string    `json:"transfer_id"`
	ReversalID  string    `json:"reversal_id"`
	AmountCents int64     `json:"amount_cents"`
	CapturedAt  time.Time `json:"captured_at"`
}

// ReconcileShippingFee claws the collected shipping fee back from the
// sub-merchant's split-payment transfer after a label has been purchased. The
// store collected the fee from the customer but routed the full order total
// to the sub-merchant, and the store pays for postage, so the collected
// amount is reversed regardless of what the label actually cost.
//
// A nil result with a nil error means reconciliation was skipped: the order
// has no transfer, nothing was collected, or the fee is already captured.
// shipping_fee_captured_at guards the reversal so it runs at most once no
// matter how often fulfillment is retried.
func (f *Fulfil) ReconcileShippingFee(ctx context.Context, orderID string) (*ReconciliationResult, error) {
	// Uncached read for the same reason as label issuance: the capture guard
	// must be judged against the persisted record.
	order, err := f.datasource.GetOrderUncached(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.PaymentTransferID == "" {
		logrus.Infof("reconciliation skipped for order %s: no payment transfer", orderID)
		return nil, nil
	}
	if order.FeeCaptured() {
		logrus.Infof("reconciliation skipped for order %s: fee already captured at %v", orderID, order.ShippingFeeCapturedAt)
		return nil, nil
	}
	if math.IsNaN(order.ShippingCostCollected) || math.IsInf(order.ShippingCostCollected, 0) {
		logrus.Warnf("reconciliation skipped for order %s: collected amount is not finite", orderID)
		return nil, nil
	}

	amountCents := model.RateToCents(order.ShippingCostCollected)
	if amountCents <= 0 {
		logrus.Infof("reconciliation skipped for order %s: nothing collected", orderID)
		return nil, nil
	}

	reversalID, err := f.payments.ReverseTransfer(ctx, order.PaymentTransferID, amountCents)
	if err != nil {
		wrapped := errors.Wrapf(err, "shipping fee reversal failed for order %s", orderID)
		notification.NotifyError(wrapped)
		return nil, wrapped
	}

	capturedAt := time.Now()
	if err := f.datasource.MarkShippingFeeCaptured(ctx, orderID, capturedAt, amountCents, reversalID); err != nil {
		// The reversal went through but the guard write did not. Surface it
		// loudly: an operator has to look before any retry reverses again.
		wrapped := errors.Wrapf(err, "reversal %s succeeded but fee capture was not recorded for order %s", reversalID, orderID)
		notification.NotifyError(wrapped)
		return nil, wrapped
	}

	logrus.Infof("order %s shipping fee reconciled: reversed %d cents from %s (%s)", orderID, amountCents, order.PaymentTransferID, reversalID)
	return &ReconciliationResult{
		OrderID:     orderID,
		TransferID:  order.PaymentTransferID,
		ReversalID:  reversalID,
		AmountCents: amountCents,
		CapturedAt:  capturedAt,
	}, nil
}
