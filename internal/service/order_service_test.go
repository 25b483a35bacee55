package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "conftix/internal/errors"
	"conftix/internal/model"
)

func TestOrderService_CreateOrder(t *testing.T) {
	tests := []struct {
		name        string
		rate        model.OrderRate
		billingName string
		tickets     []TicketSpec
		wantField   string
	}{
		{
			name: "standard order",
			rate: model.RateStandard,
			tickets: []TicketSpec{
				{Description: "Conference ticket", Price: decimal.RequireFromString("95.00")},
			},
		},
		{
			name:        "corporate order with billing name",
			rate:        model.RateCorporate,
			billingName: "Sirius Cybernetics Corp.",
			tickets: []TicketSpec{
				{Description: "Corporate conference ticket", Price: decimal.RequireFromString("150.00")},
				{Description: "Corporate conference ticket", Price: decimal.RequireFromString("150.00")},
			},
		},
		{
			name: "corporate order requires billing name",
			rate: model.RateCorporate,
			tickets: []TicketSpec{
				{Price: decimal.RequireFromString("150.00")},
			},
			wantField: "billing_name",
		},
		{
			name:      "unknown rate",
			rate:      model.OrderRate("vip"),
			tickets:   []TicketSpec{{Price: decimal.RequireFromString("95.00")}},
			wantField: "rate",
		},
		{
			name:      "no tickets",
			rate:      model.RateStandard,
			wantField: "tickets",
		},
		{
			name:      "non-positive price",
			rate:      model.RateStandard,
			tickets:   []TicketSpec{{Price: decimal.Zero}},
			wantField: "tickets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockOrders := new(MockOrderRepository)
			if tt.wantField == "" {
				mockOrders.On("Create", mock.Anything, mock.AnythingOfType("*model.Order")).Return(nil)
			}

			svc := NewOrderService(mockOrders)
			order, err := svc.CreateOrder(context.Background(), 1, tt.rate, tt.billingName, tt.tickets)

			if tt.wantField != "" {
				assert.Nil(t, order)
				fieldErrs, ok := apperrors.AsFieldErrors(err)
				assert.True(t, ok, "expected FieldErrors, got %v", err)
				assert.Contains(t, fieldErrs, tt.wantField)
				mockOrders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, uint(1), order.UserID)
				assert.Equal(t, model.OrderStatusPending, order.Status)
				assert.Len(t, order.Tickets, len(tt.tickets))
				mockOrders.AssertExpectations(t)
			}
		})
	}
}

func TestOrderService_GetOrder_OwnershipEnforced(t *testing.T) {
	order := &model.Order{ID: uuid.New(), UserID: 2}

	mockOrders := new(MockOrderRepository)
	mockOrders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	svc := NewOrderService(mockOrders)
	got, err := svc.GetOrder(context.Background(), 1, order.ID)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
}

func TestOrderService_GetOrder_NotFound(t *testing.T) {
	orderID := uuid.New()

	mockOrders := new(MockOrderRepository)
	mockOrders.On("FindByID", mock.Anything, orderID).Return(nil, gorm.ErrRecordNotFound)

	svc := NewOrderService(mockOrders)
	_, err := svc.GetOrder(context.Background(), 1, orderID)

	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
}
