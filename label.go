package fulfil

import (
	"context"
	"time"

	"github.com/candleworks/fulfil/internal/apierror"
	"github.com/candleworks/fulfil/model"
	"github.com/sirupsen/logrus"
)

// IssueLabel purchases a shipping label for an order exactly once. The stored
// order record is the single source of truth for whether a label exists: an
// already-labeled order short-circuits before any external call, and the
// final persistence step is a conditional write so two racing requests cannot
// both bill a purchase. Failures before the purchase leave the order
// untouched, which keeps retries safe.
func (f *Fulfil) IssueLabel(ctx context.Context, orderID string, destination model.Address, quantity int) (*model.LabelResult, error) {
	// Guard read goes straight to the store: a cached copy can be stale on
	// this instance after another instance labeled the order.
	order, err := f.datasource.GetOrderUncached(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.IsLabeled() {
		logrus.Infof("order %s already labeled with %s, returning stored label", orderID, order.TrackingCode)
		return order.LabelResult(), nil
	}

	if quantity < 1 {
		quantity = order.Quantity
	}
	if quantity < 1 {
		quantity = 1
	}
	if destination.City == "" {
		destination = order.DestinationAddress
	}

	// Label-purchase parcels keep the base box height regardless of quantity,
	// unlike quote-time parcels.
	parcel := f.parcelSpec.LabelParcel(quantity)
	shipment, err := f.carrier.CreateShipment(ctx, destination, parcel)
	if err != nil {
		logrus.Errorf("rate shopping for order %s failed: %v", orderID, err)
		return nil, err
	}

	selected := model.SelectRate(shipment.Rates)
	if selected == nil {
		return nil, apierror.NewAPIError(apierror.ErrNoRates, "No shipping rates available for this order", nil)
	}

	// The billable call. Everything after it must either persist the label or
	// hand back the label someone else persisted first.
	label, err := f.carrier.BuyShipment(ctx, shipment.ShipmentID, selected.RateID)
	if err != nil {
		logrus.Errorf("label purchase for order %s failed: %v", orderID, err)
		return nil, err
	}

	result := &model.LabelResult{
		TrackingID:   label.TrackingCode,
		TrackingCode: label.TrackingCode,
		LabelURL:     label.LabelURL,
		Carrier:      label.Carrier,
		Service:      label.Service,
	}
	if result.Carrier == "" {
		result.Carrier = selected.Carrier
	}
	if result.Service == "" {
		result.Service = selected.Service
	}

	err = f.datasource.SaveLabelResult(ctx, orderID, result, time.Now())
	if err != nil {
		if apierror.HasCode(err, apierror.ErrConflict) {
			// Lost the race: a concurrent request labeled the order between
			// our read and our write. Its label is the one the customer got,
			// so return that.
			logrus.Warnf("order %s was labeled concurrently, returning the stored label", orderID)
			current, readErr := f.datasource.GetOrderUncached(ctx, orderID)
			if readErr != nil {
				return nil, readErr
			}
			if current.IsLabeled() {
				return current.LabelResult(), nil
			}
		}
		return nil, err
	}

	logrus.Infof("order %s labeled: %s %s tracking %s", orderID, result.Carrier, result.Service, result.TrackingCode)
	return result, nil
}
