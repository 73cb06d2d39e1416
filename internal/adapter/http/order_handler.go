package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/grigobio237-eng/Youniqle-sub001/internal/entity"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/usecase"
)

type OrderHandler struct {
	create *usecase.CreateOrder
	query  usecase.OrderStore
}

func NewOrderHandler(create *usecase.CreateOrder, query usecase.OrderStore) *OrderHandler {
	return &OrderHandler{create: create, query: query}
}

type createOrderReq struct {
	BuyerID string `json:"buyerId" binding:"required"`
	Items   []struct {
		ProductID string `json:"productId" binding:"required"`
		PartnerID string `json:"partnerId" binding:"required"`
		Name      string `json:"name"`
		UnitPrice int64  `json:"unitPrice" binding:"required,gt=0"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
	} `json:"items" binding:"required,min=1"`
}

type createOrderResp struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	TotalAmount int64  `json:"totalAmount"`
	Status      string `json:"status"`
}

// CreateOrder translates the checkout request into the use case input. The
// X-Idempotency-Key header guards against double submission.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	items := make([]domain.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.LineItem{
			ProductID: it.ProductID,
			PartnerID: it.PartnerID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	out, err := h.create.Execute(ctx, usecase.CreateOrderInput{
		BuyerID:        req.BuyerID,
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
		Items:          items,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, usecase.ErrDuplicateCheckout) {
			status = http.StatusConflict
		}
		if errors.Is(err, domain.ErrInvalidAmount) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, createOrderResp{
		OrderID:     out.OrderID,
		OrderNumber: out.OrderNumber,
		TotalAmount: out.TotalAmount,
		Status:      out.Status,
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	order, err := h.query.FindByOrderNumber(ctx, c.Param("orderNumber"))
	if err != nil {
		if errors.Is(err, usecase.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusOK, order)
}
