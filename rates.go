package fulfil

import (
	"context"

	"github.com/candleworks/fulfil/internal/apierror"
	"github.com/candleworks/fulfil/model"
	"github.com/sirupsen/logrus"
)

// GetShippingQuote runs the checkout-time flow: rate-shop the destination with
// a quantity-scaled parcel, reduce the rate list to one rate, and apply the
// store surcharge. Nothing is persisted; every call produces a fresh quote.
func (f *Fulfil) GetShippingQuote(ctx context.Context, destination model.Address, quantity int) (*model.ShippingQuote, error) {
	if err := validateDestination(destination); err != nil {
		return nil, err
	}
	if quantity < 1 {
		quantity = 1
	}

	parcel := f.parcelSpec.QuoteParcel(quantity)
	shipment, err := f.carrier.CreateShipment(ctx, destination, parcel)
	if err != nil {
		logrus.Errorf("rate shopping failed: %v", err)
		return nil, err
	}

	selected := model.SelectRate(shipment.Rates)
	if selected == nil {
		return nil, apierror.NewAPIError(apierror.ErrNoRates, "No shipping rates available for this address", nil)
	}

	quote := model.PriceQuote(*selected, parcel, f.surchargeCents)
	logrus.Infof("quoted %s %s: wholesale %.2f retail %.2f (qty %d, %.0foz)",
		quote.Carrier, quote.Service, quote.Rate, quote.FinalPrice, quantity, quote.TotalWeightOz)
	return &quote, nil
}

func validateDestination(destination model.Address) error {
	if destination.City == "" || destination.State == "" || destination.PostalCode == "" {
		return apierror.NewAPIError(apierror.ErrInvalidInput, "Destination must include city, state and postal code", nil)
	}
	return nil
}
