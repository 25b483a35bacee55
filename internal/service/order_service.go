package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "conftix/internal/errors"
	"conftix/internal/model"
	"conftix/internal/repository"
)

// TicketSpec describes one ticket line item on a new order.
type TicketSpec struct {
	Description string
	Price       decimal.Decimal
}

// OrderService creates and fetches ticket orders.
type OrderService interface {
	CreateOrder(ctx context.Context, userID uint, rate model.OrderRate, billingName string, tickets []TicketSpec) (*model.Order, error)
	GetOrder(ctx context.Context, userID uint, orderID uuid.UUID) (*model.Order, error)
}

type orderService struct {
	orders repository.OrderRepository
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository) OrderService {
	return &orderService{orders: orders}
}

// CreateOrder creates a pending order with its ticket line items. Corporate
// orders must carry the billing company name; it becomes the authoritative
// badge company for the buyer once the order is confirmed.
func (s *orderService) CreateOrder(ctx context.Context, userID uint, rate model.OrderRate, billingName string, tickets []TicketSpec) (*model.Order, error) {
	fieldErrs := apperrors.FieldErrors{}

	if rate != model.RateStandard && rate != model.RateCorporate {
		fieldErrs["rate"] = "Select a valid choice."
	}
	if rate == model.RateCorporate && billingName == "" {
		fieldErrs["billing_name"] = "This field is required."
	}
	if len(tickets) == 0 {
		fieldErrs["tickets"] = "An order must contain at least one ticket."
	}
	for _, t := range tickets {
		if t.Price.LessThanOrEqual(decimal.Zero) {
			fieldErrs["tickets"] = "Ticket prices must be positive."
			break
		}
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	order := &model.Order{
		UserID:      userID,
		Rate:        rate,
		Status:      model.OrderStatusPending,
		BillingName: billingName,
	}
	for _, t := range tickets {
		order.Tickets = append(order.Tickets, model.Ticket{
			Description: t.Description,
			Price:       t.Price,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// GetOrder returns an order owned by userID.
func (s *orderService) GetOrder(ctx context.Context, userID uint, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.ErrOrderNotFound
	}
	return order, nil
}
