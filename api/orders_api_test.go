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
	"testing"

	model2 "github.com/candleworks/fulfil/api/model"
	"github.com/candleworks/fulfil/internal/apierror"
	"github.com/candleworks/fulfil/internal/request"
	"github.com/candleworks/fulfil/model"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateOrderEndpoint(t *testing.T) {
	router, datasource, err := setupRouter()
	assert.NoError(t, err)

	newOrder := model2.CreateOrder{
		OrderID:               gofakeit.UUID(),
		Quantity:              2,
		Destination:           fakeDestination(),
		ShippingCostCollected: 8.66,
		PaymentTransferID:     "tr_" + gofakeit.LetterN(8),
	}

	datasource.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
		return o.OrderID == newOrder.OrderID && o.Quantity == 2
	})).Return(newOrder.ToOrder(), nil)

	payload, err := request.ToJsonReq(&newOrder)
	assert.NoError(t, err)

	var response model.Order
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  payload,
		Response: &response,
		Method:   "POST",
		Route:    "/orders",
		Router:   router,
	})
	assert.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, newOrder.OrderID, response.OrderID)
	datasource.AssertExpectations(t)
}

func TestCreateOrderEndpointMissingID(t *testing.T) {
	router, _, err := setupRouter()
	assert.NoError(t, err)

	payload, err := request.ToJsonReq(&model2.CreateOrder{Destination: fakeDestination()})
	assert.NoError(t, err)

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  payload,
		Response: &response,
		Method:   "POST",
		Route:    "/orders",
		Router:   router,
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetOrderEndpoint(t *testing.T) {
	router, datasource, err := setupRouter()
	assert.NoError(t, err)

	order := &model.Order{
		OrderID:  "ord_1",
		Quantity: 1,
		DestinationAddress: model.Address{
			City: "Seattle", State: "WA", PostalCode: "98101", Country: "US",
		},
	}
	datasource.On("GetOrder", mock.Anything, "ord_1").Return(order, nil)

	var response model.Order
	resp, err := SetUpTestRequest(TestRequest{
		Response: &response,
		Method:   "GET",
		Route:    "/orders/ord_1",
		Router:   router,
	})
	assert.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ord_1", response.OrderID)
}

func TestGetOrderEndpointNotFound(t *testing.T) {
	router, datasource, err := setupRouter()
	assert.NoError(t, err)

	datasource.On("GetOrder", mock.Anything, "ord_missing").
		Return(nil, apierror.NewAPIError(apierror.ErrNotFound, "Order not found", nil))

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Response: &response,
		Method:   "GET",
		Route:    "/orders/ord_missing",
		Router:   router,
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetAllOrdersEndpoint(t *testing.T) {
	router, datasource, err := setupRouter()
	assert.NoError(t, err)

	orders := []model.Order{
		{OrderID: "ord_1", Quantity: 1},
		{OrderID: "ord_2", Quantity: 3},
	}
	datasource.On("GetAllOrders", mock.Anything, 20, 0).Return(orders, nil)

	var response []model.Order
	resp, err := SetUpTestRequest(TestRequest{
		Response: &response,
		Method:   "GET",
		Route:    "/orders",
		Router:   router,
	})
	assert.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, response, 2)
	datasource.AssertExpectations(t)
}
