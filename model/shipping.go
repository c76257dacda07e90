package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CarrierRate is one entry of the rate list returned by the rate-shopping API
// for a single shipment. The list is consumed by SelectRate and discarded.
type CarrierRate struct {
	RateID       string  `json:"rate_id"`
	Carrier      string  `json:"carrier"`
	Service      string  `json:"service"`
	Currency     string  `json:"currency"`
	Rate         float64 `json:"rate"`
	DeliveryDays *int    `json:"delivery_days,omitempty"`
}

// ShippingQuote is the checkout-time price produced from a selected rate.
// It is ephemeral and never persisted; a fresh one is computed per call.
type ShippingQuote struct {
	Carrier        string  `json:"carrier"`
	Service        string  `json:"service"`
	Currency       string  `json:"currency"`
	Rate           float64 `json:"rate"`
	DeliveryDays   *int    `json:"delivery_days,omitempty"`
	TotalWeightOz  float64 `json:"total_weight_oz"`
	ParcelHeightIn float64 `json:"parcel_height_in"`
	SurchargeCents int64   `json:"surcharge_cents"`
	AmountCents    int64   `json:"amount_cents"`
	FinalPrice     float64 `json:"final_price"`
}

// Parcel describes the box handed to the rate-shopping API.
type Parcel struct {
	LengthIn float64 `json:"length_in"`
	WidthIn  float64 `json:"width_in"`
	HeightIn float64 `json:"height_in"`
	WeightOz float64 `json:"weight_oz"`
}

// ParcelSpec holds the fixed per-product packaging constants. Weight and box
// dimensions are store configuration, never user input.
type ParcelSpec struct {
	UnitWeightOz float64
	LengthIn     float64
	WidthIn      float64
	BaseHeightIn float64
}

// QuoteParcel builds the parcel used for checkout-time rate shopping. Height
// scales linearly with quantity to model stacked-item packaging; this drives
// carrier pricing tiers and must match the store's historical quoting.
func (s ParcelSpec) QuoteParcel(quantity int) Parcel {
	if quantity < 1 {
		quantity = 1
	}
	return Parcel{
		LengthIn: s.LengthIn,
		WidthIn:  s.WidthIn,
		HeightIn: s.BaseHeightIn * float64(quantity),
		WeightOz: s.UnitWeightOz * float64(quantity),
	}
}

// LabelParcel builds the parcel used at label-purchase time. Unlike
// QuoteParcel the height stays fixed at the base box height regardless of
// quantity, while weight still scales. The store has always purchased labels
// against the base box, so quoting and purchasing intentionally disagree on
// height; changing either side would shift historical pricing.
func (s ParcelSpec) LabelParcel(quantity int) Parcel {
	if quantity < 1 {
		quantity = 1
	}
	return Parcel{
		LengthIn: s.LengthIn,
		WidthIn:  s.WidthIn,
		HeightIn: s.BaseHeightIn,
		WeightOz: s.UnitWeightOz * float64(quantity),
	}
}

func isUPS(carrier string) bool {
	return strings.Contains(strings.ToUpper(carrier), "UPS")
}

// SelectRate reduces a rate list to the single rate the store will use.
// UPS rates (substring match, so UPSDAP qualifies) win over everything else;
// failing that, exact USPS entries; failing that, the whole list. Within the
// candidate set the numerically lowest rate wins, first occurrence breaking
// ties. Returns nil for an empty list.
func SelectRate(rates []CarrierRate) *CarrierRate {
	if len(rates) == 0 {
		return nil
	}

	var ups, usps []CarrierRate
	for _, rate := range rates {
		if isUPS(rate.Carrier) {
			ups = append(ups, rate)
		} else if rate.Carrier == "USPS" {
			usps = append(usps, rate)
		}
	}

	candidates := rates
	if len(ups) > 0 {
		candidates = ups
	} else if len(usps) > 0 {
		candidates = usps
	}

	cheapest := candidates[0]
	for _, rate := range candidates[1:] {
		if rate.Rate < cheapest.Rate {
			cheapest = rate
		}
	}
	return &cheapest
}

// RateToCents rounds a decimal dollar amount to the nearest cent and returns
// it as integer cents.
func RateToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// PriceQuote applies the store's fixed shipping surcharge to a selected
// carrier rate. The raw rate is rounded to the nearest cent first and the
// surcharge added after, so the retail price never drifts a cent from the
// quoted carrier amount.
func PriceQuote(rate CarrierRate, parcel Parcel, surchargeCents int64) ShippingQuote {
	amountCents := RateToCents(rate.Rate) + surchargeCents
	finalPrice, _ := decimal.NewFromInt(amountCents).Div(decimal.NewFromInt(100)).Float64()
	return ShippingQuote{
		Carrier:        rate.Carrier,
		Service:        rate.Service,
		Currency:       rate.Currency,
		Rate:           rate.Rate,
		DeliveryDays:   rate.DeliveryDays,
		TotalWeightOz:  parcel.WeightOz,
		ParcelHeightIn: parcel.HeightIn,
		SurchargeCents: surchargeCents,
		AmountCents:    amountCents,
		FinalPrice:     finalPrice,
	}
}
