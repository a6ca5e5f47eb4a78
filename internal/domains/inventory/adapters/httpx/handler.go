// Package httpx exposes the inventory ledger over gin. Admin only.
package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dominusaudio/commerce-api/internal/domains/inventory/application"
	types "github.com/dominusaudio/commerce-api/internal/domains/inventory/application/types"
	"github.com/dominusaudio/commerce-api/internal/domains/inventory/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/inventory/ports"
	apierrors "github.com/dominusaudio/commerce-api/internal/shared/errors"
	"github.com/dominusaudio/commerce-api/internal/shared/identity"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
)

// Handler adapts the ledger service to the HTTP surface.
type Handler struct {
	svc       ports.Service
	responder *apierrors.Responder
}

func NewHandler(svc ports.Service) *Handler {
	return &Handler{
		svc:       svc,
		responder: apierrors.NewResponder(mapLedgerError),
	}
}

// Register mounts the inventory routes on the given admin-guarded group.
func (h *Handler) Register(r gin.IRouter) {
	grp := r.Group("/inventory")
	grp.GET("", h.listAll)
	grp.GET("/low-stock", h.listLowStock)
	grp.GET("/product/:productId", h.getProductInventory)
	grp.GET("/:inventoryId/movements", h.listMovements)
	grp.POST("/product/:productId/adjust", h.adjustStock)
}

func mapLedgerError(err error) (apierrors.ProblemDetail, bool) {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(ports.ErrNotFound.Error()), true
	case errors.As(err, &insufficient):
		return apierrors.NewInsufficientStockProblem(insufficient.Error(), insufficient.Available), true
	case errors.Is(err, application.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

type adjustStockRequest struct {
	Type     string `json:"type" binding:"required,oneof=set add subtract"`
	Quantity *int   `json:"quantity" binding:"required,gte=0"`
	Reason   string `json:"reason"`
}

func (h *Handler) adjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	inv, err := h.svc.AdjustStock(c.Request.Context(), c.Param("productId"), types.AdjustStockInput{
		Type:     domain.AdjustmentType(req.Type),
		Quantity: *req.Quantity,
		Reason:   req.Reason,
	}, identity.UserID(c))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInventoryResponse(inv))
}

func (h *Handler) getProductInventory(c *gin.Context) {
	detail, err := h.svc.GetProductInventory(c.Request.Context(), c.Param("productId"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	resp := inventoryDetailResponse{
		inventoryResponse: toInventoryResponse(detail.Inventory),
		Movements:         toMovementResponses(detail.RecentMovements),
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listAll(c *gin.Context) {
	params := queryParams(c, 50)
	page, err := h.svc.GetAllInventory(c.Request.Context(), params)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(mapSlice(page.Data, toInventoryResponse), page.Meta.Total, params))
}

func (h *Handler) listLowStock(c *gin.Context) {
	params := queryParams(c, 20)
	page, err := h.svc.GetLowStock(c.Request.Context(), params)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(mapSlice(page.Data, toInventoryResponse), page.Meta.Total, params))
}

func (h *Handler) listMovements(c *gin.Context) {
	params := queryParams(c, 50)
	page, err := h.svc.GetMovementHistory(c.Request.Context(), c.Param("inventoryId"), params)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(toMovementResponses(page.Data), page.Meta.Total, params))
}

func queryParams(c *gin.Context, defaultLimit int) pagination.Params {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return pagination.Normalize(page, limit, defaultLimit)
}

type inventoryResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	Quantity    int       `json:"quantity"`
	ReservedQty int       `json:"reservedQty"`
	Available   int       `json:"available"`
	MinQuantity int       `json:"minQuantity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type inventoryDetailResponse struct {
	inventoryResponse
	Movements []movementResponse `json:"movements"`
}

type movementResponse struct {
	ID          string    `json:"id"`
	InventoryID string    `json:"inventoryId"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	PreviousQty int       `json:"previousQty"`
	NewQty      int       `json:"newQty"`
	Reason      string    `json:"reason,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toInventoryResponse(inv *domain.Inventory) inventoryResponse {
	return inventoryResponse{
		ID:          inv.ID,
		ProductID:   inv.ProductID,
		Quantity:    inv.Quantity,
		ReservedQty: inv.ReservedQty,
		Available:   inv.Available(),
		MinQuantity: inv.MinQuantity,
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}
}

func toMovementResponses(movements []*domain.StockMovement) []movementResponse {
	out := make([]movementResponse, 0, len(movements))
	for _, mv := range movements {
		out = append(out, movementResponse{
			ID:          mv.ID,
			InventoryID: mv.InventoryID,
			Type:        string(mv.Type),
			Quantity:    mv.Quantity,
			PreviousQty: mv.PreviousQty,
			NewQty:      mv.NewQty,
			Reason:      mv.Reason,
			Reference:   mv.Reference,
			CreatedBy:   mv.CreatedBy,
			CreatedAt:   mv.CreatedAt,
		})
	}
	return out
}

func mapSlice[T any, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
