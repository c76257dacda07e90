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
	"time"

	"github.com/candleworks/fulfil/config"
	"github.com/candleworks/fulfil/database"
	"github.com/candleworks/fulfil/internal/carrier"
	"github.com/candleworks/fulfil/internal/payments"
	"github.com/candleworks/fulfil/model"
)

// Fulfil represents the main struct for the fulfillment service. It owns the
// order record store plus the two outbound collaborators: the rate-shopping/
// label-purchase API and the payment processor.
type Fulfil struct {
	datasource database.IDataSource
	carrier    carrier.RateShopper
	payments   payments.TransferReverser
	creds      *carrier.CredentialProvider

	parcelSpec     model.ParcelSpec
	surchargeCents int64
	origin         model.Address
}

// NewFulfil initializes a new instance of Fulfil with the provided database
// datasource. It fetches the configuration and builds the carrier and payment
// clients from it; the carrier credential provider is constructed here once
// and shared read-only afterwards.
func NewFulfil(db database.IDataSource) (*Fulfil, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	carrierTimeout := time.Duration(configuration.Carrier.TimeoutSec) * time.Second
	creds := carrier.NewCredentialProvider(configuration.Carrier.ApiKey, configuration.Carrier.BaseUrl, carrierTimeout)

	origin := model.Address{
		Name:       configuration.Origin.Name,
		Line1:      configuration.Origin.Line1,
		Line2:      configuration.Origin.Line2,
		City:       configuration.Origin.City,
		State:      configuration.Origin.State,
		PostalCode: configuration.Origin.PostalCode,
		Country:    configuration.Origin.Country,
	}

	carrierClient := carrier.NewClient(creds, configuration.Carrier.BaseUrl, origin, carrierTimeout)
	paymentsClient := payments.NewClient(configuration.Stripe.SecretKey, time.Duration(configuration.Stripe.TimeoutSec)*time.Second)

	newFulfil := &Fulfil{
		datasource: db,
		carrier:    carrierClient,
		payments:   paymentsClient,
		creds:      creds,
		parcelSpec: model.ParcelSpec{
			UnitWeightOz: configuration.Shipping.UnitWeightOz,
			LengthIn:     configuration.Shipping.BoxLengthIn,
			WidthIn:      configuration.Shipping.BoxWidthIn,
			BaseHeightIn: configuration.Shipping.BoxBaseHeightIn,
		},
		surchargeCents: configuration.Shipping.SurchargeCents,
		origin:         origin,
	}
	return newFulfil, nil
}

// VerifyCarrierCredentials proves the configured carrier API key works. It is
// called once at startup so a bad key fails fast instead of surfacing on the
// first customer quote.
func (f *Fulfil) VerifyCarrierCredentials(ctx context.Context) error {
	return f.creds.Verify(ctx)
}

// CreateOrder persists a paid, unlabeled order produced by the upstream
// checkout flow.
func (f *Fulfil) CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	order.DestinationAddress.ApplyDefaults()
	if order.Quantity < 1 {
		order.Quantity = 1
	}
	return f.datasource.CreateOrder(ctx, order)
}

// GetOrder retrieves an order by its ID.
func (f *Fulfil) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return f.datasource.GetOrder(ctx, orderID)
}

// GetAllOrders retrieves orders for the admin surface.
func (f *Fulfil) GetAllOrders(ctx context.Context, limit, offset int) ([]model.Order, error) {
	return f.datasource.GetAllOrders(ctx, limit, offset)
}
