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
package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func (d DestinationAddress) validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.City, validation.Required),
		validation.Field(&d.State, validation.Required),
		validation.Field(&d.PostalCode, validation.Required),
	)
}

func (q *CreateQuote) ValidateCreateQuote() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Destination, validation.By(func(value interface{}) error {
			destination, ok := value.(DestinationAddress)
			if !ok {
				return errors.New("invalid destination type")
			}
			return destination.validate()
		})),
		validation.Field(&q.Quantity, validation.Min(0)),
	)
}

func (l *CreateLabel) ValidateCreateLabel() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.OrderID, validation.Required),
		validation.Field(&l.Quantity, validation.Min(0)),
		validation.Field(&l.Destination, validation.By(func(value interface{}) error {
			destination, ok := value.(*DestinationAddress)
			if !ok || destination == nil {
				// destination falls back to the stored order address
				return nil
			}
			return destination.validate()
		})),
	)
}

func (o *CreateOrder) ValidateCreateOrder() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.OrderID, validation.Required),
		validation.Field(&o.Quantity, validation.Min(0)),
		validation.Field(&o.ShippingCostCollected, validation.Min(0.0)),
		validation.Field(&o.Destination, validation.By(func(value interface{}) error {
			destination, ok := value.(DestinationAddress)
			if !ok {
				return errors.New("invalid destination type")
			}
			return destination.validate()
		})),
	)
}
