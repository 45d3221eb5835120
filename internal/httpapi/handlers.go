package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

type CartService interface {
	Provision(ctx context.Context, ownerID string) (domain.Cart, error)
	AddItem(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (domain.CartItem, error)
	SetItemQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (domain.CartItem, error)
	RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) error
	ListItems(ctx context.Context, ownerID string) (domain.CartListing, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, ownerID string, addressID uuid.UUID) (domain.Order, error)
	GetOrder(ctx context.Context, ownerID string, orderID uuid.UUID) (domain.Order, error)
	ListOrders(ctx context.Context, ownerID string, page, pageSize int) (domain.OrderPage, error)
	Cancel(ctx context.Context, ownerID string, orderID uuid.UUID) (domain.Order, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	MarkDone(ctx context.Context, ownerID string, orderID uuid.UUID) (domain.Order, error)
}

type PaymentService interface {
	StartPayment(ctx context.Context, ownerID string, orderID uuid.UUID) (string, error)
}

type handler struct {
	carts    CartService
	orders   OrderService
	payments PaymentService
}

func (h *handler) provisionCart(c *gin.Context) {
	cart, err := h.carts.Provision(c.Request.Context(), userID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handler) listCartItems(c *gin.Context) {
	listing, err := h.carts.ListItems(c.Request.Context(), userID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCartListingResponse(listing))
}

func (h *handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		abortBadRequest(c, err)
		return
	}

	item, err := h.carts.AddItem(c.Request.Context(), userID(c), productID, req.Quantity)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toCartItemResponse(item))
}

func (h *handler) setCartItemQuantity(c *gin.Context) {
	productID, ok := uuidParam(c, "productID")
	if !ok {
		return
	}

	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	item, err := h.carts.SetItemQuantity(c.Request.Context(), userID(c), productID, req.Quantity)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCartItemResponse(item))
}

func (h *handler) removeCartItem(c *gin.Context) {
	productID, ok := uuidParam(c, "productID")
	if !ok {
		return
	}

	if err := h.carts.RemoveItem(c.Request.Context(), userID(c), productID); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		abortBadRequest(c, err)
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), userID(c), addressID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *handler) listOrders(c *gin.Context) {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortBadRequest(c, err)
		return
	}

	page, err := h.orders.ListOrders(c.Request.Context(), userID(c), q.Page, q.PageSize)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderPageResponse(page))
}

func (h *handler) getOrder(c *gin.Context) {
	orderID, ok := uuidParam(c, "orderID")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), userID(c), orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *handler) cancelOrder(c *gin.Context) {
	h.transition(c, func(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
		return h.orders.Cancel(ctx, userID(c), orderID)
	})
}

func (h *handler) markOrderDone(c *gin.Context) {
	h.transition(c, func(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
		return h.orders.MarkDone(ctx, userID(c), orderID)
	})
}

func (h *handler) markOrderDelivered(c *gin.Context) {
	h.transition(c, h.orders.MarkDelivered)
}

func (h *handler) transition(c *gin.Context, apply func(ctx context.Context, orderID uuid.UUID) (domain.Order, error)) {
	orderID, ok := uuidParam(c, "orderID")
	if !ok {
		return
	}

	order, err := apply(c.Request.Context(), orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *handler) startPayment(c *gin.Context) {
	orderID, ok := uuidParam(c, "orderID")
	if !ok {
		return
	}

	url, err := h.payments.StartPayment(c.Request.Context(), userID(c), orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentResponse{OrderID: orderID, PaymentURL: url})
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		abortBadRequest(c, fmt.Errorf("%s is not a valid uuid", name))
		return uuid.Nil, false
	}

	return id, true
}
