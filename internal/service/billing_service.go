package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"conftix/internal/cache"
	apperrors "conftix/internal/errors"
	"conftix/internal/model"
	"conftix/internal/payment"
	"conftix/internal/repository"
)

// BillingService bridges order lifecycle events to the payment collaborator.
type BillingService interface {
	// CreateChargeForOrder charges the order total against a payment token
	// and confirms the order. A card decline is propagated unchanged and
	// leaves the order untouched; card failures are not transient, so there
	// is no retry.
	CreateChargeForOrder(ctx context.Context, orderID uuid.UUID, token string) (*model.Order, error)
	// RefundCharge refunds a charge in full by its provider id.
	RefundCharge(ctx context.Context, chargeID string) error
	// RefundOrder refunds an order's stored charge in full.
	RefundOrder(ctx context.Context, orderID uuid.UUID) error
	// RefundTicket refunds exactly one ticket's price against the parent
	// order's charge. The caller must own the parent order.
	RefundTicket(ctx context.Context, userID uint, ticketID uuid.UUID) error
}

type billingService struct {
	orders  repository.OrderRepository
	gateway payment.Gateway
	cache   *cache.Client
}

// NewBillingService creates a billing service.
func NewBillingService(orders repository.OrderRepository, gateway payment.Gateway, cacheClient *cache.Client) BillingService {
	return &billingService{orders: orders, gateway: gateway, cache: cacheClient}
}

func (s *billingService) CreateChargeForOrder(ctx context.Context, orderID uuid.UUID, token string) (*model.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderStatusConfirmed {
		return nil, apperrors.ErrOrderAlreadyPaid
	}

	amount := order.TotalMinorUnits()
	description := fmt.Sprintf("Tickets order %s", order.ID)

	chargeID, err := s.gateway.CreateCharge(ctx, amount, description, token)
	if err != nil {
		// Declined cards and transport failures alike leave the order in its
		// prior state; the caller owns user messaging and rollback.
		return nil, err
	}

	if err := s.orders.SetCharge(ctx, order.ID, chargeID, model.OrderStatusConfirmed); err != nil {
		return nil, fmt.Errorf("record charge %s: %w", chargeID, err)
	}

	// Confirming a corporate order changes the buyer's resolved company, so
	// the cached profile view must go.
	_ = s.cache.Delete(ctx, profileCacheKey(order.UserID))

	order.ChargeID = chargeID
	order.Status = model.OrderStatusConfirmed
	return order, nil
}

func (s *billingService) RefundCharge(ctx context.Context, chargeID string) error {
	return s.gateway.RefundCharge(ctx, chargeID)
}

func (s *billingService) RefundOrder(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.ChargeID == "" {
		return apperrors.ErrOrderNotCharged
	}
	return s.gateway.RefundCharge(ctx, order.ChargeID)
}

func (s *billingService) RefundTicket(ctx context.Context, userID uint, ticketID uuid.UUID) error {
	ticket, err := s.orders.FindTicketByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTicketNotFound
		}
		return err
	}

	order, err := s.findOrder(ctx, ticket.OrderID)
	if err != nil {
		return err
	}
	// Another user's ticket is indistinguishable from a missing one.
	if order.UserID != userID {
		return apperrors.ErrTicketNotFound
	}
	if order.ChargeID == "" {
		return apperrors.ErrOrderNotCharged
	}

	return s.gateway.RefundPartial(ctx, order.ChargeID, ticket.PriceMinorUnits())
}

func (s *billingService) findOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}
