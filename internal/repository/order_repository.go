package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"conftix/internal/model"
)

// OrderRepository defines order and ticket persistence operations.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// LatestConfirmedByUser returns the user's most recent confirmed order,
	// or nil when the user has none.
	LatestConfirmedByUser(ctx context.Context, userID uint) (*model.Order, error)
	SetCharge(ctx context.Context, id uuid.UUID, chargeID string, status model.OrderStatus) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	FindTicketByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Preload("Tickets").
		Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) LatestConfirmedByUser(ctx context.Context, userID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.OrderStatusConfirmed).
		Order("created_at DESC").
		First(&order).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) SetCharge(ctx context.Context, id uuid.UUID, chargeID string, status model.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"charge_id": chargeID, "status": status}).Error
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *orderRepository) FindTicketByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}
