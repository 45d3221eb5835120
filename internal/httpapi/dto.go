package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
)

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type createOrderRequest struct {
	AddressID string `json:"address_id" binding:"required,uuid"`
}

type listOrdersQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1"`
}

type cartResponse struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type cartItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type cartLineResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	FinalPrice  string    `json:"final_price"`
}

type cartListingResponse struct {
	OwnerID  string             `json:"owner_id"`
	Items    []cartLineResponse `json:"items"`
	Total    string             `json:"total"`
	Currency string             `json:"currency"`
}

type orderLineResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	FinalPrice  string    `json:"final_price"`
}

type addressResponse struct {
	HouseNumberAndStreet string `json:"house_number_and_street"`
	Area                 string `json:"area,omitempty"`
	Town                 string `json:"town"`
	County               string `json:"county,omitempty"`
	Postcode             string `json:"postcode"`
	Country              string `json:"country"`
}

type orderResponse struct {
	ID         uuid.UUID           `json:"id"`
	OwnerID    string              `json:"owner_id"`
	Status     domain.OrderStatus  `json:"status"`
	IsPaid     bool                `json:"is_paid"`
	TotalCost  string              `json:"total_cost"`
	Currency   string              `json:"currency"`
	Lines      []orderLineResponse `json:"lines"`
	Address    addressResponse     `json:"address"`
	CreatedAt  time.Time           `json:"created_at"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type orderPageResponse struct {
	Orders   []orderResponse `json:"orders"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Total    int             `json:"total"`
}

type paymentResponse struct {
	OrderID    uuid.UUID `json:"order_id"`
	PaymentURL string    `json:"payment_url"`
}

func amount(m domain.Money) string {
	return m.Amount.StringFixed(2)
}

func toCartResponse(c domain.Cart) cartResponse {
	return cartResponse{ID: c.ID, OwnerID: c.OwnerID, CreatedAt: c.CreatedAt}
}

func toCartItemResponse(i domain.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:        i.ID,
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func toCartListingResponse(l domain.CartListing) cartListingResponse {
	items := make([]cartLineResponse, 0, len(l.Lines))
	for _, line := range l.Lines {
		items = append(items, cartLineResponse{
			ProductID:   line.Item.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Item.Quantity,
			UnitPrice:   amount(line.UnitPrice),
			FinalPrice:  amount(line.FinalPrice),
		})
	}

	return cartListingResponse{
		OwnerID:  l.OwnerID,
		Items:    items,
		Total:    amount(l.Total),
		Currency: l.Total.Currency.String(),
	}
}

func toOrderResponse(o domain.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, orderLineResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   amount(line.UnitPrice),
			FinalPrice:  amount(line.FinalPrice),
		})
	}

	return orderResponse{
		ID:        o.ID,
		OwnerID:   o.OwnerID,
		Status:    o.Status,
		IsPaid:    o.IsPaid,
		TotalCost: amount(o.TotalCost),
		Currency:  o.TotalCost.Currency.String(),
		Lines:     lines,
		Address: addressResponse{
			HouseNumberAndStreet: o.Address.HouseNumberAndStreet,
			Area:                 o.Address.Area,
			Town:                 o.Address.Town,
			County:               o.Address.County,
			Postcode:             o.Address.Postcode,
			Country:              o.Address.Country,
		},
		CreatedAt:  o.CreatedAt,
		FinishedAt: o.FinishedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func toOrderPageResponse(p domain.OrderPage) orderPageResponse {
	orders := make([]orderResponse, 0, len(p.Orders))
	for _, o := range p.Orders {
		orders = append(orders, toOrderResponse(o))
	}

	return orderPageResponse{
		Orders:   orders,
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    p.Total,
	}
}
