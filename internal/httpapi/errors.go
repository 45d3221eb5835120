package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/orderflow/internal/domain"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrInsufficientStock, http.StatusBadRequest, "insufficient_stock"},
	{domain.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{domain.ErrCurrencyMismatch, http.StatusBadRequest, "currency_mismatch"},
	{domain.ErrPaymentRequired, http.StatusPaymentRequired, "payment_required"},
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{domain.ErrGatewayFailure, http.StatusBadGateway, "gateway_failure"},
}

// abortWithError writes the error response for err and records err on the
// gin context for the request logger.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			c.AbortWithStatusJSON(m.status, errorBody{Error: errorDetail{Code: m.code, Message: err.Error()}})
			return
		}
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{
		Error: errorDetail{Code: "internal", Message: "internal error"},
	})
}

func abortBadRequest(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)

	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{
		Error: errorDetail{Code: "invalid_argument", Message: err.Error()},
	})
}
