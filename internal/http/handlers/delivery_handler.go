// README: Delivery lifecycle and settlement handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"feastly/internal/modules/delivery"
	"feastly/internal/types"
)

type DeliveryHandler struct {
	deliveries *delivery.Service
}

func NewDeliveryHandler(svc *delivery.Service) *DeliveryHandler {
	return &DeliveryHandler{deliveries: svc}
}

type createDeliveryReq struct {
	RestaurantID string `json:"restaurant_id"`
	Fee          int64  `json:"fee"`
	Currency     string `json:"currency"`
}

func (h *DeliveryHandler) Create(c *gin.Context) {
	var req createDeliveryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Currency == "" {
		req.Currency = "TWD"
	}
	id, err := h.deliveries.Create(c.Request.Context(), delivery.CreateCommand{
		RestaurantID: types.ID(req.RestaurantID),
		Fee:          types.Money{Amount: req.Fee, Currency: req.Currency},
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"id": id, "status": delivery.StatusNew})
}

func (h *DeliveryHandler) Get(c *gin.Context) {
	d, err := h.deliveries.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"id":            d.ID,
		"restaurant_id": d.RestaurantID,
		"driver_id":     d.DriverID,
		"status":        d.Status,
		"fee":           d.Fee.Amount,
		"currency":      d.Fee.Currency,
	})
}

type acceptDeliveryReq struct {
	DriverID string `json:"driver_id"`
}

func (h *DeliveryHandler) Accept(c *gin.Context) {
	var req acceptDeliveryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	h.advance(c, func(id types.ID) error {
		return h.deliveries.Accept(c.Request.Context(), delivery.AcceptCommand{
			DeliveryID: id,
			DriverID:   types.ID(req.DriverID),
		})
	})
}

func (h *DeliveryHandler) StartPreparing(c *gin.Context) {
	h.advance(c, func(id types.ID) error { return h.deliveries.StartPreparing(c.Request.Context(), id) })
}

func (h *DeliveryHandler) MarkReady(c *gin.Context) {
	h.advance(c, func(id types.ID) error { return h.deliveries.MarkReady(c.Request.Context(), id) })
}

func (h *DeliveryHandler) PickUp(c *gin.Context) {
	h.advance(c, func(id types.ID) error { return h.deliveries.PickUp(c.Request.Context(), id) })
}

func (h *DeliveryHandler) Depart(c *gin.Context) {
	h.advance(c, func(id types.ID) error { return h.deliveries.Depart(c.Request.Context(), id) })
}

func (h *DeliveryHandler) Complete(c *gin.Context) {
	h.advance(c, func(id types.ID) error { return h.deliveries.Complete(c.Request.Context(), id) })
}

type cancelDeliveryReq struct {
	ActorType string `json:"actor_type"`
	Reason    string `json:"reason"`
}

func (h *DeliveryHandler) Cancel(c *gin.Context) {
	var req cancelDeliveryReq
	_ = c.ShouldBindJSON(&req)
	h.advance(c, func(id types.ID) error {
		return h.deliveries.Cancel(c.Request.Context(), delivery.CancelCommand{
			DeliveryID: id,
			ActorType:  req.ActorType,
			Reason:     req.Reason,
		})
	})
}

// Settle creates the earnings record for a delivered delivery; repeating the
// call returns the same record.
func (h *DeliveryHandler) Settle(c *gin.Context) {
	rec, err := h.deliveries.Settle(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"delivery_id":     rec.DeliveryID,
		"driver_id":       rec.DriverID,
		"restaurant_id":   rec.RestaurantID,
		"fee":             rec.Fee.Amount,
		"driver_share":    rec.DriverShare.Amount,
		"platform_share":  rec.PlatformShare.Amount,
		"commission_rate": rec.CommissionRate,
		"settled_at":      rec.SettledAt,
	})
}

func (h *DeliveryHandler) advance(c *gin.Context, fn func(id types.ID) error) {
	id := types.ID(c.Param("id"))
	if err := fn(id); err != nil {
		writeDomainError(c, err)
		return
	}
	d, err := h.deliveries.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"id": d.ID, "status": d.Status})
}
