package model

import (
	"github.com/candleworks/fulfil/model"
)

type DestinationAddress struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (d DestinationAddress) ToAddress() model.Address {
	address := model.Address{
		Name:       d.Name,
		Line1:      d.Line1,
		Line2:      d.Line2,
		City:       d.City,
		State:      d.State,
		PostalCode: d.PostalCode,
		Country:    d.Country,
	}
	address.ApplyDefaults()
	return address
}

type CreateQuote struct {
	Destination DestinationAddress `json:"destination"`
	Quantity    int                `json:"quantity"`
}

type CreateLabel struct {
	OrderID     string              `json:"order_id"`
	Destination *DestinationAddress `json:"destination"`
	Quantity    int                 `json:"quantity"`
}

type CreateOrder struct {
	OrderID               string                 `json:"order_id"`
	Quantity              int                    `json:"quantity"`
	Destination           DestinationAddress     `json:"destination"`
	ShippingCostCollected float64                `json:"shipping_cost_collected"`
	PaymentTransferID     string                 `json:"payment_transfer_id"`
	MetaData              map[string]interface{} `json:"meta_data"`
}

func (o *CreateOrder) ToOrder() *model.Order {
	return &model.Order{
		OrderID:               o.OrderID,
		Quantity:              o.Quantity,
		DestinationAddress:    o.Destination.ToAddress(),
		ShippingCostCollected: o.ShippingCostCollected,
		PaymentTransferID:     o.PaymentTransferID,
		MetaData:              o.MetaData,
	}
}

// QuoteResponse is the checkout-facing price for one destination/quantity
// pair. AmountCents is the retail amount the storefront charges.
type QuoteResponse struct {
	Success       bool    `json:"success"`
	AmountCents   int64   `json:"shipping_amount_cents"`
	Rate          float64 `json:"rate"`
	Currency      string  `json:"currency"`
	Carrier       string  `json:"carrier"`
	Service       string  `json:"service"`
	DeliveryDays  *int    `json:"delivery_days,omitempty"`
	Quantity      int     `json:"quantity"`
	TotalWeightOz float64 `json:"total_weight_oz"`
	BoxHeightIn   float64 `json:"box_height_in"`
}

// LabelResponse reports a purchased (or previously stored) label. The
// reconciliation fields are informational: a failed fee capture never fails
// the label.
type LabelResponse struct {
	Success                  bool   `json:"success"`
	OrderID                  string `json:"order_id"`
	TrackingID               string `json:"tracking_id"`
	TrackingCode             string `json:"tracking_code"`
	LabelURL                 string `json:"label_url"`
	Carrier                  string `json:"carrier"`
	Service                  string `json:"service"`
	ShippingFeeTransferID    string `json:"shipping_fee_transfer_id,omitempty"`
	ShippingFeeTransferError string `json:"shipping_fee_transfer_error,omitempty"`
}
