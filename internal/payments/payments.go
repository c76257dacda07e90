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

package payments

import (
	"context"
	"net/http"
	"time"

	"github.com/candleworks/fulfil/internal/apierror"
	"github.com/pkg/errors"
	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// TransferReverser claws back previously transferred funds from a
// sub-merchant. The production implementation wraps the Stripe SDK; tests
// swap in a testify mock.
type TransferReverser interface {
	ReverseTransfer(ctx context.Context, transferID string, amountCents int64) (string, error)
}

// Client is the Stripe-backed TransferReverser.
type Client struct {
	sc *client.API
}

func NewClient(secretKey string, timeout time.Duration) *Client {
	sc := &client.API{}
	sc.Init(secretKey, stripe.NewBackends(&http.Client{Timeout: timeout}))
	return &Client{sc: sc}
}

// ReverseTransfer issues a partial reversal of the given transfer for exactly
// amountCents. The reversal never touches the original customer charge; it
// only pulls the shipping fee back from the sub-merchant's transfer.
func (c *Client) ReverseTransfer(ctx context.Context, transferID string, amountCents int64) (string, error) {
	if transferID == "" {
		return "", errors.New("transfer id is required")
	}
	if amountCents <= 0 {
		return "", errors.Errorf("reversal amount must be positive, got %d", amountCents)
	}

	params := &stripe.TransferReversalParams{
		ID:     stripe.String(transferID),
		Amount: stripe.Int64(amountCents),
	}
	params.Context = ctx

	reversal, err := c.sc.TransferReversals.New(params)
	if err != nil {
		if isTimeout(err) {
			return "", apierror.NewAPIError(apierror.ErrTimeout, "Payment processor timed out", err)
		}
		return "", errors.Wrapf(err, "transfer reversal failed for %s", transferID)
	}
	return reversal.ID, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
