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
package api

import (
	"net/http"

	model2 "github.com/candleworks/fulfil/api/model"
	"github.com/candleworks/fulfil/internal/apierror"
	"github.com/candleworks/fulfil/model"

	"github.com/gin-gonic/gin"
)

func (a Api) GetShippingQuote(c *gin.Context) {
	var newQuote model2.CreateQuote
	if err := c.ShouldBindJSON(&newQuote); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := newQuote.ValidateCreateQuote()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	quote, err := a.fulfil.GetShippingQuote(c.Request.Context(), newQuote.Destination.ToAddress(), newQuote.Quantity)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	quantity := newQuote.Quantity
	if quantity < 1 {
		quantity = 1
	}
	c.JSON(http.StatusOK, model2.QuoteResponse{
		Success:       true,
		AmountCents:   quote.AmountCents,
		Rate:          quote.FinalPrice,
		Currency:      quote.Currency,
		Carrier:       quote.Carrier,
		Service:       quote.Service,
		DeliveryDays:  quote.DeliveryDays,
		Quantity:      quantity,
		TotalWeightOz: quote.TotalWeightOz,
		BoxHeightIn:   quote.ParcelHeightIn,
	})
}

func (a Api) IssueLabel(c *gin.Context) {
	var newLabel model2.CreateLabel
	if err := c.ShouldBindJSON(&newLabel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := newLabel.ValidateCreateLabel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	var destination model.Address
	if newLabel.Destination != nil {
		destination = newLabel.Destination.ToAddress()
	}

	label, err := a.fulfil.IssueLabel(c.Request.Context(), newLabel.OrderID, destination, newLabel.Quantity)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	response := model2.LabelResponse{
		Success:      true,
		OrderID:      newLabel.OrderID,
		TrackingID:   label.TrackingID,
		TrackingCode: label.TrackingCode,
		LabelURL:     label.LabelURL,
		Carrier:      label.Carrier,
		Service:      label.Service,
	}

	// Fee reconciliation rides along with label issuance but never fails it.
	// A skip leaves both fields empty; a failure is reported for operator
	// follow-up while the label still ships.
	reconciliation, err := a.fulfil.ReconcileShippingFee(c.Request.Context(), newLabel.OrderID)
	if err != nil {
		response.ShippingFeeTransferError = err.Error()
	} else if reconciliation != nil {
		response.ShippingFeeTransferID = reconciliation.ReversalID
	}

	c.JSON(http.StatusOK, response)
}
