package carrier

import (
	"strconv"

	"github.com/candleworks/fulfil/model"
	"github.com/pkg/errors"
)

// The carrier aggregator answers with loosely shaped JSON. Everything is
// validated here at the boundary and rejected early instead of letting
// half-formed shipment data reach the orchestrator.

type addressPayload struct {
	Name    string `json:"name,omitempty"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type parcelPayload struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

type createShipmentRequest struct {
	Shipment shipmentPayload `json:"shipment"`
}

type shipmentPayload struct {
	ToAddress   addressPayload `json:"to_address"`
	FromAddress addressPayload `json:"from_address"`
	Parcel      parcelPayload  `json:"parcel"`
}

type ratePayload struct {
	ID           string `json:"id"`
	Carrier      string `json:"carrier"`
	Service      string `json:"service"`
	Currency     string `json:"currency"`
	Rate         string `json:"rate"`
	DeliveryDays *int   `json:"delivery_days"`
}

type shipmentResponse struct {
	ID    string            `json:"id"`
	Rates []ratePayload     `json:"rates"`
	Error *carrierErrorBody `json:"error"`
}

type buyShipmentRequest struct {
	Rate struct {
		ID string `json:"id"`
	} `json:"rate"`
}

type postageLabelPayload struct {
	LabelURL string `json:"label_url"`
}

type buyShipmentResponse struct {
	ID           string               `json:"id"`
	TrackingCode string               `json:"tracking_code"`
	PostageLabel *postageLabelPayload `json:"postage_label"`
	SelectedRate *ratePayload         `json:"selected_rate"`
	Error        *carrierErrorBody    `json:"error"`
}

type carrierErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toAddressPayload(a model.Address) addressPayload {
	return addressPayload{
		Name:    a.Name,
		Street1: a.Line1,
		Street2: a.Line2,
		City:    a.City,
		State:   a.State,
		Zip:     a.PostalCode,
		Country: a.Country,
	}
}

// toCarrierRate validates one rate entry. Rates come over the wire as decimal
// strings; anything unparseable means the response is unusable.
func (r ratePayload) toCarrierRate() (model.CarrierRate, error) {
	if r.ID == "" || r.Carrier == "" {
		return model.CarrierRate{}, errors.New("rate entry missing id or carrier")
	}
	price, err := strconv.ParseFloat(r.Rate, 64)
	if err != nil {
		return model.CarrierRate{}, errors.Wrapf(err, "rate entry %s has malformed price %q", r.ID, r.Rate)
	}
	return model.CarrierRate{
		RateID:       r.ID,
		Carrier:      r.Carrier,
		Service:      r.Service,
		Currency:     r.Currency,
		Rate:         price,
		DeliveryDays: r.DeliveryDays,
	}, nil
}

func (s *shipmentResponse) validate() error {
	if s.Error != nil {
		return errors.Errorf("carrier error %s: %s", s.Error.Code, s.Error.Message)
	}
	if s.ID == "" {
		return errors.New("shipment response missing id")
	}
	return nil
}

func (b *buyShipmentResponse) validate() error {
	if b.Error != nil {
		return errors.Errorf("carrier error %s: %s", b.Error.Code, b.Error.Message)
	}
	if b.TrackingCode == "" {
		return errors.New("buy response missing tracking code")
	}
	if b.PostageLabel == nil || b.PostageLabel.LabelURL == "" {
		return errors.New("buy response missing postage label url")
	}
	return nil
}
