package model

import (
	"encoding/json"
	"time"
)

// Address is the shipping destination captured at checkout.
// Country defaults to "US" when the storefront omits it.
type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a *Address) ApplyDefaults() {
	if a.Country == "" {
		a.Country = "US"
	}
}

// Order is the persisted fulfillment record, keyed by OrderID. It is created
// upstream as "paid, no label yet" and mutated here by label issuance and
// shipping-fee reconciliation.
type Order struct {
	ID                     int64                  `json:"-"`
	OrderID                string                 `json:"order_id"`
	Quantity               int                    `json:"quantity"`
	DestinationAddress     Address                `json:"destination_address"`
	ShippingCostCollected  float64                `json:"shipping_cost_collected"`
	PaymentTransferID      string                 `json:"payment_transfer_id,omitempty"`
	TrackingID             string                 `json:"tracking_id,omitempty"`
	TrackingCode           string                 `json:"tracking_code,omitempty"`
	LabelURL               string                 `json:"label_url,omitempty"`
	Carrier                string                 `json:"carrier,omitempty"`
	Service                string                 `json:"service,omitempty"`
	LabelGeneratedAt       *time.Time             `json:"label_generated_at,omitempty"`
	ShippingFeeCapturedAt  *time.Time             `json:"shipping_fee_captured_at,omitempty"`
	ShippingFeeAmountCents int64                  `json:"shipping_fee_amount_cents,omitempty"`
	TransferReversalID     string                 `json:"transfer_reversal_id,omitempty"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
	MetaData               map[string]interface{} `json:"meta_data,omitempty"`
}

// IsLabeled reports whether a label has already been purchased for this order.
// The presence of a tracking code together with a label URL is the ground
// truth; there is no separate status column.
func (order *Order) IsLabeled() bool {
	return order.TrackingCode != "" && order.LabelURL != ""
}

// FeeCaptured reports whether shipping-fee reconciliation has already run.
func (order *Order) FeeCaptured() bool {
	return order.ShippingFeeCapturedAt != nil && !order.ShippingFeeCapturedAt.IsZero()
}

// LabelResult returns the stored outcome of a label purchase.
func (order *Order) LabelResult() *LabelResult {
	return &LabelResult{
		TrackingID:   order.TrackingID,
		TrackingCode: order.TrackingCode,
		LabelURL:     order.LabelURL,
		Carrier:      order.Carrier,
		Service:      order.Service,
	}
}

// LabelResult is what the fulfillment flow hands back to the storefront once
// a label exists, whether freshly purchased or previously stored.
type LabelResult struct {
	TrackingID   string `json:"tracking_id"`
	TrackingCode string `json:"tracking_code"`
	LabelURL     string `json:"label_url"`
	Carrier      string `json:"carrier"`
	Service      string `json:"service"`
}

func (order *Order) ToJSON() ([]byte, error) {
	return json.Marshal(order)
}
