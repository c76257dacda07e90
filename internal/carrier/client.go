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

package carrier

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/candleworks/fulfil/internal/apierror"
	"github.com/candleworks/fulfil/internal/request"
	"github.com/candleworks/fulfil/model"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Shipment is a created-but-unpurchased shipment: an aggregator-side id plus
// the rate list quoted for it.
type Shipment struct {
	ShipmentID string
	Rates      []model.CarrierRate
}

// PurchasedLabel is the outcome of buying one rate of a shipment.
type PurchasedLabel struct {
	TrackingCode string
	LabelURL     string
	Carrier      string
	Service      string
}

// RateShopper is the surface the fulfillment core depends on. The production
// implementation is Client; tests swap in a testify mock.
type RateShopper interface {
	CreateShipment(ctx context.Context, to model.Address, parcel model.Parcel) (*Shipment, error)
	BuyShipment(ctx context.Context, shipmentID, rateID string) (*PurchasedLabel, error)
}

// Client talks to the EasyPost-style rate-shopping/label-purchase API.
type Client struct {
	creds   *CredentialProvider
	baseURL string
	origin  model.Address
	timeout time.Duration
}

func NewClient(creds *CredentialProvider, baseURL string, origin model.Address, timeout time.Duration) *Client {
	origin.ApplyDefaults()
	return &Client{creds: creds, baseURL: baseURL, origin: origin, timeout: timeout}
}

// CreateShipment registers a shipment with the aggregator and returns the
// quoted rate list. Creating a shipment is free and safe to retry, so
// transient failures are retried with exponential backoff before giving up.
func (c *Client) CreateShipment(ctx context.Context, to model.Address, parcel model.Parcel) (*Shipment, error) {
	to.ApplyDefaults()
	payload := createShipmentRequest{
		Shipment: shipmentPayload{
			ToAddress:   toAddressPayload(to),
			FromAddress: toAddressPayload(c.origin),
			Parcel: parcelPayload{
				Length: parcel.LengthIn,
				Width:  parcel.WidthIn,
				Height: parcel.HeightIn,
				Weight: parcel.WeightOz,
			},
		},
	}

	var response shipmentResponse
	operation := func() error {
		return c.post(ctx, fmt.Sprintf("%s/shipments", c.baseURL), payload, &response)
	}
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx))
	if err != nil {
		return nil, err
	}

	if err := response.validate(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrExternalAPI, "Carrier returned an unusable shipment response", err)
	}

	rates := make([]model.CarrierRate, 0, len(response.Rates))
	for _, entry := range response.Rates {
		rate, err := entry.toCarrierRate()
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrExternalAPI, "Carrier returned a malformed rate", err)
		}
		rates = append(rates, rate)
	}

	return &Shipment{ShipmentID: response.ID, Rates: rates}, nil
}

// BuyShipment purchases the label for the selected rate. This is the billable
// call: it is never retried here, the caller's idempotency guard owns retry
// safety.
func (c *Client) BuyShipment(ctx context.Context, shipmentID, rateID string) (*PurchasedLabel, error) {
	var payload buyShipmentRequest
	payload.Rate.ID = rateID

	var response buyShipmentResponse
	err := c.post(ctx, fmt.Sprintf("%s/shipments/%s/buy", c.baseURL, shipmentID), payload, &response)
	if err != nil {
		return nil, err
	}

	if err := response.validate(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrExternalAPI, "Carrier returned an unusable buy response", err)
	}

	label := &PurchasedLabel{
		TrackingCode: response.TrackingCode,
		LabelURL:     response.PostageLabel.LabelURL,
	}
	if response.SelectedRate != nil {
		label.Carrier = response.SelectedRate.Carrier
		label.Service = response.SelectedRate.Service
	}
	return label, nil
}

func (c *Client) post(ctx context.Context, url string, payload, response interface{}) error {
	body, err := request.ToJsonReq(payload)
	if err != nil {
		return backoff.Permanent(apierror.NewAPIError(apierror.ErrInternalServer, "Failed to encode carrier request", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return backoff.Permanent(apierror.NewAPIError(apierror.ErrInternalServer, "Failed to build carrier request", err))
	}
	req.Header.Set("Authorization", "Basic "+request.BasicAuth(c.creds.Key(), ""))

	resp, err := request.CallWithTimeout(req, response, c.timeout)
	if err != nil {
		if isTimeout(err) {
			logrus.Errorf("carrier call timed out: %v", err)
			return apierror.NewAPIError(apierror.ErrTimeout, "Carrier API timed out", err)
		}
		return apierror.NewAPIError(apierror.ErrExternalAPI, "Carrier API call failed", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := apierror.NewAPIError(apierror.ErrExternalAPI, fmt.Sprintf("Carrier API returned status %d", resp.StatusCode), errors.Errorf("status %d from %s", resp.StatusCode, url))
		if resp.StatusCode < http.StatusInternalServerError {
			// 4xx will not heal on retry
			return backoff.Permanent(apiErr)
		}
		return apiErr
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
