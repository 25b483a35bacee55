package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"conftix/internal/errors"
	"conftix/internal/model"
	"conftix/internal/service"
)

// OrderHandler handles order and billing endpoints.
type OrderHandler struct {
	orderService   service.OrderService
	billingService service.BillingService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orderService service.OrderService, billingService service.BillingService) *OrderHandler {
	return &OrderHandler{orderService: orderService, billingService: billingService}
}

// TicketRequest is one ticket line item on a new order.
type TicketRequest struct {
	Description string `json:"description"`
	Price       string `json:"price" validate:"required"`
}

// CreateOrderRequest represents a new ticket order.
type CreateOrderRequest struct {
	Rate        string          `json:"rate" validate:"required"`
	BillingName string          `json:"billing_name"`
	Tickets     []TicketRequest `json:"tickets" validate:"required"`
}

// PayOrderRequest carries the payment token for charging an order.
type PayOrderRequest struct {
	Token string `json:"token" validate:"required"`
}

// ChargeResponse reports the outcome of charging an order.
type ChargeResponse struct {
	OrderID  string `json:"order_id"`
	ChargeID string `json:"charge_id"`
	Status   string `json:"status"`
}

// CreateOrder godoc
// @Summary Create a pending ticket order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateOrderRequest true "Order data"
// @Success 201 {object} model.Order
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tickets := make([]service.TicketSpec, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		price, err := decimal.NewFromString(t.Price)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid ticket price",
				Code:  "INVALID_PRICE",
			})
		}
		tickets = append(tickets, service.TicketSpec{Description: t.Description, Price: price})
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), userID, model.OrderRate(req.Rate), req.BillingName, tickets)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, order)
}

// GetOrder godoc
// @Summary Fetch one of the current user's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} model.Order
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid order ID",
			Code:  "INVALID_UUID",
		})
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, order)
}

// PayOrder godoc
// @Summary Charge an order against a payment token
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body PayOrderRequest true "Payment token"
// @Success 200 {object} ChargeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /orders/{id}/pay [post]
func (h *OrderHandler) PayOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid order ID",
			Code:  "INVALID_UUID",
		})
	}

	var req PayOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	// Ownership check before any money moves.
	if _, err := h.orderService.GetOrder(ctx, userID, orderID); err != nil {
		return respondError(err)
	}

	order, err := h.billingService.CreateChargeForOrder(ctx, orderID, req.Token)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusOK, ChargeResponse{
		OrderID:  order.ID.String(),
		ChargeID: order.ChargeID,
		Status:   string(order.Status),
	})
}

// RefundOrder godoc
// @Summary Refund an order's charge in full
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /orders/{id}/refund [post]
func (h *OrderHandler) RefundOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid order ID",
			Code:  "INVALID_UUID",
		})
	}

	ctx := c.Request().Context()
	if _, err := h.orderService.GetOrder(ctx, userID, orderID); err != nil {
		return respondError(err)
	}

	if err := h.billingService.RefundOrder(ctx, orderID); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "refund requested"})
}

// RefundTicket godoc
// @Summary Refund a single ticket's price
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tickets/{id}/refund [post]
func (h *OrderHandler) RefundTicket(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid ticket ID",
			Code:  "INVALID_UUID",
		})
	}

	if err := h.billingService.RefundTicket(c.Request().Context(), userID, ticketID); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "refund requested"})
}
