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
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/candleworks/fulfil"
	model2 "github.com/candleworks/fulfil/api/model"
	"github.com/candleworks/fulfil/config"
	"github.com/candleworks/fulfil/database/mocks"
	"github.com/candleworks/fulfil/internal/request"
	"github.com/candleworks/fulfil/model"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const carrierBaseURL = "https://api.easypost.test/v2"

type TestRequest struct {
	Payload  io.Reader
	Router   *gin.Engine
	Response interface{}
	Method   string
	Route    string
	Header   map[string]string
}

func SetUpTestRequest(s TestRequest) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(s.Method, s.Route, s.Payload)
	for key, value := range s.Header {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)

	err := json.NewDecoder(resp.Body).Decode(&s.Response)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func setupRouter() (*gin.Engine, *mocks.MockDataSource, error) {
	config.MockConfig(&config.Configuration{
		Redis:      config.RedisConfig{Dns: "localhost:6379"},
		DataSource: config.DataSourceConfig{Dns: "postgres://postgres:@localhost:5432/fulfil?sslmode=disable"},
		Carrier:    config.CarrierConfig{ApiKey: "EZTK_test", BaseUrl: carrierBaseURL, TimeoutSec: 5},
		Stripe:     config.StripeConfig{SecretKey: "sk_test_1", TimeoutSec: 5},
	})
	datasource := new(mocks.MockDataSource)
	service, err := fulfil.NewFulfil(datasource)
	if err != nil {
		return nil, nil, err
	}
	router := NewAPI(service).Router()
	return router, datasource, nil
}

func fakeDestination() model2.DestinationAddress {
	return model2.DestinationAddress{
		Name:       gofakeit.Name(),
		Line1:      gofakeit.Street(),
		City:       gofakeit.City(),
		State:      gofakeit.StateAbr(),
		PostalCode: gofakeit.Zip(),
		Country:    "US",
	}
}

func registerShipmentResponder(rates string) {
	httpmock.RegisterResponder("POST", carrierBaseURL+"/shipments",
		httpmock.NewStringResponder(http.StatusCreated, `{"id": "shp_1", "rates": `+rates+`}`))
}

func TestQuoteEndpoint(t *testing.T) {
	router, _, err := setupRouter()
	assert.NoError(t, err)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	registerShipmentResponder(`[
		{"id": "rate_usps", "carrier": "USPS", "service": "Priority", "currency": "USD", "rate": "5.95", "delivery_days": 3},
		{"id": "rate_ups", "carrier": "UPS", "service": "Ground", "currency": "USD", "rate": "7.655", "delivery_days": 4}
	]`)

	payload, err := request.ToJsonReq(&model2.CreateQuote{Destination: fakeDestination(), Quantity: 2})
	assert.NoError(t, err)

	var response model2.QuoteResponse
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  payload,
		Response: &response,
		Method:   "POST",
		Route:    "/shipping/quotes",
		Router:   router,
	})
	assert.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, response.Success)
	assert.Equal(t, "UPS", response.Carrier)
	assert.Equal(t, int64(866), response.AmountCents)
	assert.Equal(t, 8.66, response.Rate)
	assert.Equal(t, 2, response.Quantity)
	assert.Equal(t, 30.0, response.TotalWeightOz)
	assert.Equal(t, 8.0, response.BoxHeightIn)
}

func TestQuoteEndpointMissingDestination(t *testing.T) {
	router, _, err := setupRouter()
	assert.NoError(t, err)

	payload, err := request.ToJsonReq(&model2.CreateQuote{
		Destination: model2.DestinationAddress{City: gofakeit.City()},
		Quantity:    1,
	})
	assert.NoError(t, err)

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  payload,
		Response: &response,
		Method:   "POST",
		Route:    "/shipping/quotes",
		Router:   router,
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestQuoteEndpointNoRates(t *testing.T) {
	router, _, err := setupRouter()
	assert.NoError(t, err)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	registerShipmentResponder(`[]`)

	payload, err := request.ToJsonReq(&model2.CreateQuote{Destination: fakeDestination(), Quantity: 1})
	assert.NoError(t, err)

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  payload,
		Response: &response,
		Method:   "POST",
		Route:    "/shipping/quotes",
		Router:   router,
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.Code)
}

func TestLabelEndpoint(t *testing.T) {
	router, datasource, err := setupRouter()
	assert.NoError(t, err)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	registerShipmentResponder(`[
		{"id": "rate_ups", "carrier": "UPS", "service": "Ground", "currency": "USD", "rate": "7.10", "delivery_days": 4}
	]`)
	httpmock.RegisterResponder("POST", carrierBaseURL+"/shipments/shp_1/buy",
		httpmock.NewStringResponder(http.StatusOK, `{
			"id": "shp_1",
			"tracking_code": "1Z999",
			"postage_label": {"label_url": "https://labels.example.com/1Z999.png"},
			"selected_rate": {"id": "rate_ups", "carrier": "UPS", "service": "Ground", "currency": "USD", "rate": "7.10"}
		}`))

	order := &model.Order{
		OrderID:  "ord_1",
		Quantity: 2,
		DestinationAddress: model.Address{
			City: "Seattle", State: "WA", PostalCode: "98101", Country: "US",
		},
	}
	datasource.On("GetOrderUncached", mock.Anything, "ord_1").Return(order, nil)
	datasource.On("SaveLabelResult", mock.Anything, "ord_1", mock.Anything, mock.Anything).Return(nil)

	payload, err := request.ToJsonReq(&model2.CreateLabel{OrderID: "ord_1"})
	assert.NoError(t, err)

	var response model2.LabelResponse
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  payload,
		Response: &response,
		Method:   "POST",
		Route:    "/shipping/labels",
		Router:   router,
	})
	assert.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, response.Success)
	assert.Equal(t, "ord_1", response.OrderID)
	assert.Equal(t, "1Z999", response.TrackingCode)
	assert.Equal(t, "https://labels.example.com/1Z999.png", response.LabelURL)
	// no transfer on the order so reconciliation is a silent skip
	assert.Empty(t, response.ShippingFeeTransferID)
	assert.Empty(t, response.ShippingFeeTransferError)
	datasource.AssertExpectations(t)
}

func TestLabelEndpointWithReconciliation(t *testing.T) {
	router, datasource, err := setupRouter()
	assert.NoError(t, err)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	registerShipmentResponder(`[
		{"id": "rate_ups", "carrier": "UPS", "service": "Ground", "currency": "USD", "rate": "7.10", "delivery_days": 4}
	]`)
	httpmock.RegisterResponder("POST", carrierBaseURL+"/shipments/shp_1/buy",
		httpmock.NewStringResponder(http.StatusOK, `{
			"id": "shp_1",
			"tracking_code": "1Z999",
			"postage_label": {"label_url": "https://labels.example.com/1Z999.png"}
		}`))
	httpmock.RegisterResponder("POST", "https://api.stripe.com/v1/transfers/tr_1/reversals",
		httpmock.NewStringResponder(http.StatusOK, `{"id": "trr_1", "object": "transfer_reversal", "amount": 1234}`))

	order := &model.Order{
		OrderID:  "ord_1",
		Quantity: 1,
		DestinationAddress: model.Address{
			City: "Seattle", State: "WA", PostalCode: "98101", Country: "US",
		},
		ShippingCostCollected: 12.34,
		PaymentTransferID:     "tr_1",
	}
	datasource.On("GetOrderUncached", mock.Anything, "ord_1").Return(order, nil)
	datasource.On("SaveLabelResult", mock.Anything, "ord_1", mock.Anything, mock.Anything).Return(nil)
	datasource.On("MarkShippingFeeCaptured", mock.Anything, "ord_1", mock.Anything, int64(1234), "trr_1").Return(nil)

	payload, err := request.ToJsonReq(&model2.CreateLabel{OrderID: "ord_1"})
	assert.NoError(t, err)

	var response model2.LabelResponse
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  payload,
		Response: &response,
		Method:   "POST",
		Route:    "/shipping/labels",
		Router:   router,
	})
	assert.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, response.Success)
	assert.Equal(t, "trr_1", response.ShippingFeeTransferID)
	assert.Empty(t, response.ShippingFeeTransferError)
	datasource.AssertExpectations(t)
}

func TestLabelEndpointAlreadyLabeled(t *testing.T) {
	router, datasource, err := setupRouter()
	assert.NoError(t, err)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	order := &model.Order{
		OrderID:      "ord_1",
		Quantity:     1,
		TrackingID:   "1Z999",
		TrackingCode: "1Z999",
		LabelURL:     "https://labels.example.com/1Z999.png",
		Carrier:      "UPS",
		Service:      "Ground",
	}
	datasource.On("GetOrderUncached", mock.Anything, "ord_1").Return(order, nil)

	payload, err := request.ToJsonReq(&model2.CreateLabel{OrderID: "ord_1"})
	assert.NoError(t, err)

	var response model2.LabelResponse
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  payload,
		Response: &response,
		Method:   "POST",
		Route:    "/shipping/labels",
		Router:   router,
	})
	assert.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "1Z999", response.TrackingCode)
	// stored label returned without a single outbound carrier call
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestLabelEndpointMissingOrderID(t *testing.T) {
	router, _, err := setupRouter()
	assert.NoError(t, err)

	payload, err := request.ToJsonReq(&model2.CreateLabel{})
	assert.NoError(t, err)

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  payload,
		Response: &response,
		Method:   "POST",
		Route:    "/shipping/labels",
		Router:   router,
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
