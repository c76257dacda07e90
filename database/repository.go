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

package database

import (
	"context"
	"time"

	"github.com/candleworks/fulfil/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	order // Interface for order-record operations
}

// order defines methods for the order record store. Both mutating methods are
// conditional writes: they succeed only while their guard column is still
// unset, which is what makes label purchase and fee capture race-safe.
type order interface {
	CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error)                                                   // Persists a new paid, unlabeled order
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)                                                          // Retrieves an order by ID, cache-first
	GetOrderUncached(ctx context.Context, orderID string) (*model.Order, error)                                                  // Retrieves an order straight from the store, for guard reads
	GetAllOrders(ctx context.Context, limit, offset int) ([]model.Order, error)                                                  // Retrieves orders for the admin surface
	SaveLabelResult(ctx context.Context, orderID string, result *model.LabelResult, generatedAt time.Time) error                 // Conditional write, fails with CONFLICT when already labeled
	MarkShippingFeeCaptured(ctx context.Context, orderID string, capturedAt time.Time, amountCents int64, reversalID string) error // Conditional write, fails with CONFLICT when already captured
}
