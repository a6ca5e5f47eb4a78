// Package httpx exposes the order workflow over gin.
package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dominusaudio/commerce-api/internal/domains/orders/application"
	types "github.com/dominusaudio/commerce-api/internal/domains/orders/application/types"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
	apierrors "github.com/dominusaudio/commerce-api/internal/shared/errors"
	"github.com/dominusaudio/commerce-api/internal/shared/identity"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
)

// Handler adapts the order service to the HTTP surface.
type Handler struct {
	svc       ports.Service
	responder *apierrors.Responder
}

func NewHandler(svc ports.Service) *Handler {
	return &Handler{
		svc:       svc,
		responder: apierrors.NewResponder(mapOrderError),
	}
}

// Register mounts the order routes. Customer routes go on the shared group;
// back-office routes sit behind the admin guard.
func (h *Handler) Register(r gin.IRouter, adminOnly gin.HandlerFunc) {
	grp := r.Group("/orders")
	grp.POST("", h.create)
	grp.GET("/my-orders", h.listMine)
	grp.GET("/my-orders/:id", h.getMine)

	admin := grp.Group("", adminOnly)
	admin.GET("", h.listAll)
	admin.GET("/dashboard", h.dashboard)
	admin.GET("/:id", h.get)
	admin.PATCH("/:id/status", h.updateStatus)
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	var shortage *application.InsufficientStockError
	var unavailable *application.ProductUnavailableError
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(ports.ErrNotFound.Error()), true
	case errors.Is(err, ports.ErrAddressNotFound):
		return apierrors.ErrNotFound.WithDetail(ports.ErrAddressNotFound.Error()), true
	case errors.Is(err, application.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(application.ErrForbidden.Error()), true
	case errors.Is(err, application.ErrEmptyCart):
		return apierrors.ErrValidation.WithDetail(application.ErrEmptyCart.Error()), true
	case errors.Is(err, application.ErrInvalidTransition):
		return apierrors.ErrValidation.WithDetail(application.ErrInvalidTransition.Error()), true
	case errors.As(err, &shortage):
		return apierrors.NewInsufficientStockProblem(shortage.Error(), shortage.Available), true
	case errors.As(err, &unavailable):
		return apierrors.ErrValidation.WithDetail(unavailable.Error()), true
	case errors.Is(err, ports.ErrDuplicateOrderNumber):
		return apierrors.ErrConflict.WithDetail("não foi possível gerar o número do pedido"), true
	}
	return apierrors.ProblemDetail{}, false
}

type createOrderRequest struct {
	ShippingAddressID string  `json:"shippingAddressId" binding:"required"`
	PaymentMethod     string  `json:"paymentMethod" binding:"required,oneof=PIX CREDIT_CARD DEBIT_CARD BOLETO"`
	ShippingMethod    string  `json:"shippingMethod"`
	ShippingCost      float64 `json:"shippingCost" binding:"gte=0"`
	CouponCode        string  `json:"couponCode"`
	Notes             string  `json:"notes"`
}

func (h *Handler) create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	order, err := h.svc.Create(c.Request.Context(), identity.UserID(c), types.CreateOrderInput{
		ShippingAddressID: req.ShippingAddressID,
		PaymentMethod:     domain.PaymentMethod(req.PaymentMethod),
		ShippingMethod:    req.ShippingMethod,
		ShippingCost:      decimal.NewFromFloat(req.ShippingCost),
		CouponCode:        req.CouponCode,
		Notes:             req.Notes,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

type updateStatusRequest struct {
	Status       string `json:"status" binding:"required,oneof=PENDING PAYMENT_CONFIRMED PROCESSING SHIPPED DELIVERED CANCELLED"`
	Comment      string `json:"comment"`
	TrackingCode string `json:"trackingCode"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	order, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), types.UpdateStatusInput{
		Status:       domain.Status(req.Status),
		Comment:      req.Comment,
		TrackingCode: req.TrackingCode,
	}, identity.UserID(c))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) get(c *gin.Context) {
	order, err := h.svc.FindByID(c.Request.Context(), c.Param("id"), "")
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) getMine(c *gin.Context) {
	order, err := h.svc.FindByID(c.Request.Context(), c.Param("id"), identity.UserID(c))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) listAll(c *gin.Context) {
	params := queryParams(c, 20)
	var filter ports.ListFilter
	if raw := c.Query("status"); raw != "" {
		status := domain.Status(raw)
		if !domain.ValidStatus(status) {
			h.responder.BadRequest(c, "status desconhecido: "+raw)
			return
		}
		filter.Status = &status
	}
	page, err := h.svc.FindAll(c.Request.Context(), filter, params)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(mapSlice(page.Data, toOrderResponse), page.Meta.Total, params))
}

func (h *Handler) listMine(c *gin.Context) {
	params := queryParams(c, 10)
	page, err := h.svc.FindByUser(c.Request.Context(), identity.UserID(c), params)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(mapSlice(page.Data, toOrderResponse), page.Meta.Total, params))
}

func (h *Handler) dashboard(c *gin.Context) {
	stats, err := h.svc.GetDashboardStats(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboardResponse{
		TotalOrders:   stats.TotalOrders,
		PendingOrders: stats.PendingOrders,
		TodayOrders:   stats.TodayOrders,
		MonthRevenue:  stats.MonthRevenue,
		RecentOrders:  mapSlice(stats.RecentOrders, toOrderResponse),
	})
}

func queryParams(c *gin.Context, defaultLimit int) pagination.Params {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return pagination.Normalize(page, limit, defaultLimit)
}

type orderResponse struct {
	ID                string                 `json:"id"`
	OrderNumber       string                 `json:"orderNumber"`
	UserID            string                 `json:"userId"`
	Status            string                 `json:"status"`
	Subtotal          decimal.Decimal        `json:"subtotal"`
	ShippingCost      decimal.Decimal        `json:"shippingCost"`
	Discount          decimal.Decimal        `json:"discount"`
	Total             decimal.Decimal        `json:"total"`
	ShippingAddressID string                 `json:"shippingAddressId"`
	ShippingMethod    string                 `json:"shippingMethod,omitempty"`
	Notes             string                 `json:"notes,omitempty"`
	TrackingCode      string                 `json:"trackingCode,omitempty"`
	CouponCode        string                 `json:"couponCode,omitempty"`
	Items             []orderItemResponse    `json:"items"`
	Payment           paymentResponse        `json:"payment"`
	StatusHistory     []statusChangeResponse `json:"statusHistory,omitempty"`
	PaidAt            *time.Time             `json:"paidAt,omitempty"`
	ShippedAt         *time.Time             `json:"shippedAt,omitempty"`
	DeliveredAt       *time.Time             `json:"deliveredAt,omitempty"`
	CancelledAt       *time.Time             `json:"cancelledAt,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

type orderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	ProductSKU  string          `json:"productSku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type paymentResponse struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Status string          `json:"status"`
	Amount decimal.Decimal `json:"amount"`
}

type statusChangeResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type dashboardResponse struct {
	TotalOrders   int64           `json:"totalOrders"`
	PendingOrders int64           `json:"pendingOrders"`
	TodayOrders   int64           `json:"todayOrders"`
	MonthRevenue  decimal.Decimal `json:"monthRevenue"`
	RecentOrders  []orderResponse `json:"recentOrders"`
}

func toOrderResponse(order *domain.Order) orderResponse {
	resp := orderResponse{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		UserID:            order.UserID,
		Status:            string(order.Status),
		Subtotal:          order.Subtotal,
		ShippingCost:      order.ShippingCost,
		Discount:          order.Discount,
		Total:             order.Total,
		ShippingAddressID: order.ShippingAddressID,
		ShippingMethod:    order.ShippingMethod,
		Notes:             order.Notes,
		TrackingCode:      order.TrackingCode,
		CouponCode:        order.CouponCode,
		PaidAt:            order.PaidAt,
		ShippedAt:         order.ShippedAt,
		DeliveredAt:       order.DeliveredAt,
		CancelledAt:       order.CancelledAt,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
		Payment: paymentResponse{
			ID:     order.Payment.ID,
			Method: string(order.Payment.Method),
			Status: string(order.Payment.Status),
			Amount: order.Payment.Amount,
		},
		Items: make([]orderItemResponse, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	for _, change := range order.StatusHistory {
		resp.StatusHistory = append(resp.StatusHistory, statusChangeResponse{
			ID:        change.ID,
			Status:    string(change.Status),
			Comment:   change.Comment,
			CreatedBy: change.CreatedBy,
			CreatedAt: change.CreatedAt,
		})
	}
	return resp
}

func mapSlice[T any, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
