// README: Admin driver handlers plus driver availability and earnings endpoints.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"feastly/internal/http/middleware"
	"feastly/internal/modules/account"
	"feastly/internal/modules/driver"
	"feastly/internal/modules/earnings"
	"feastly/internal/modules/onboarding"
	"feastly/internal/types"
)

type DriverHandler struct {
	drivers    *driver.Service
	lifecycle  *account.Lifecycle
	onboarding *onboarding.Service
	earnings   *earnings.Service
}

func NewDriverHandler(
	drivers *driver.Service,
	lifecycle *account.Lifecycle,
	onb *onboarding.Service,
	earn *earnings.Service,
) *DriverHandler {
	return &DriverHandler{drivers: drivers, lifecycle: lifecycle, onboarding: onb, earnings: earn}
}

type driverResp struct {
	ID               types.ID `json:"id"`
	Name             string   `json:"name"`
	Status           string   `json:"status"`
	DeliveryStatus   string   `json:"delivery_status"`
	SuspensionReason *string  `json:"suspension_reason,omitempty"`
	PendingDays      int      `json:"pending_days"`
}

func toDriverResp(d driver.Driver, now time.Time) driverResp {
	return driverResp{
		ID:               d.ID,
		Name:             d.Name,
		Status:           string(d.Status),
		DeliveryStatus:   string(d.DeliveryStatus),
		SuspensionReason: d.SuspensionReason,
		PendingDays: onboarding.PendingDays(account.Snapshot{
			Status:       d.Status,
			PendingSince: d.PendingSince,
		}, now),
	}
}

type registerDriverReq struct {
	Name string `json:"name"`
}

func (h *DriverHandler) Register(c *gin.Context) {
	var req registerDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.drivers.Register(c.Request.Context(), driver.RegisterCommand{Name: req.Name})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"id": id, "status": account.StatusPending})
}

func (h *DriverHandler) List(c *gin.Context) {
	var f driver.Filter
	if raw := c.Query("status"); raw != "" {
		st, err := account.ParseStatus(raw)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		f.Status = &st
	}
	p := driver.Page{
		Limit:  atoiOrZero(c.Query("limit")),
		Offset: atoiOrZero(c.Query("offset")),
	}
	rows, err := h.drivers.List(c.Request.Context(), f, p)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	now := time.Now()
	out := make([]driverResp, 0, len(rows))
	for _, d := range rows {
		out = append(out, toDriverResp(d, now))
	}
	writeJSON(c, http.StatusOK, gin.H{"drivers": out})
}

func (h *DriverHandler) Get(c *gin.Context) {
	d, err := h.drivers.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toDriverResp(*d, time.Now()))
}

func (h *DriverHandler) Approve(c *gin.Context) {
	h.lifecycleAction(c, func(id types.ID, actor string) error {
		return h.onboarding.Approve(c.Request.Context(), id, actor)
	})
}

func (h *DriverHandler) Reject(c *gin.Context) {
	reason := bindReason(c)
	h.lifecycleAction(c, func(id types.ID, actor string) error {
		return h.onboarding.Reject(c.Request.Context(), id, actor, reason)
	})
}

func (h *DriverHandler) Suspend(c *gin.Context) {
	reason := bindReason(c)
	h.lifecycleAction(c, func(id types.ID, actor string) error {
		return h.lifecycle.Suspend(c.Request.Context(), id, actor, reason)
	})
}

func (h *DriverHandler) Reactivate(c *gin.Context) {
	h.lifecycleAction(c, func(id types.ID, actor string) error {
		return h.lifecycle.Reactivate(c.Request.Context(), id, actor)
	})
}

func (h *DriverHandler) RequestCorrections(c *gin.Context) {
	var req correctionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id := types.ID(c.Param("id"))
	if err := h.onboarding.RequestCorrections(c.Request.Context(), id, middleware.Actor(c), req.Message); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"id": id, "status": account.StatusPending})
}

func (h *DriverHandler) ListCorrections(c *gin.Context) {
	id := types.ID(c.Param("id"))
	if _, err := h.drivers.Get(c.Request.Context(), id); err != nil {
		writeDomainError(c, err)
		return
	}
	rows, err := h.onboarding.Corrections(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]correctionResp, 0, len(rows))
	for _, r := range rows {
		out = append(out, correctionResp{Actor: r.Actor, Message: r.Message, CreatedAt: r.CreatedAt})
	}
	writeJSON(c, http.StatusOK, gin.H{"correction_requests": out})
}

type deliveryStatusReq struct {
	DeliveryStatus string `json:"delivery_status"`
}

// SetDeliveryStatus is the driver-app availability toggle. Account status
// gates it: only active drivers may change availability.
func (h *DriverHandler) SetDeliveryStatus(c *gin.Context) {
	var req deliveryStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id := types.ID(c.Param("id"))
	ds, err := h.drivers.SetDeliveryStatus(c.Request.Context(), id, req.DeliveryStatus)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"id": id, "delivery_status": ds})
}

type earningsResp struct {
	DriverID      types.ID `json:"driver_id"`
	Window        string   `json:"window"`
	DriverTotal   int64    `json:"driver_total"`
	PlatformTotal int64    `json:"platform_total"`
	Deliveries    int      `json:"deliveries"`
}

// Earnings reports summed shares over a reporting window; the driver app's
// today / week / month / all-time tabs read this.
func (h *DriverHandler) Earnings(c *gin.Context) {
	id := types.ID(c.Param("id"))
	w, err := earnings.ParseWindow(c.DefaultQuery("window", string(earnings.WindowToday)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if _, err := h.drivers.Get(c.Request.Context(), id); err != nil {
		writeDomainError(c, err)
		return
	}
	totals, err := h.earnings.TotalsFor(c.Request.Context(), id, w)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, earningsResp{
		DriverID:      id,
		Window:        string(totals.Window),
		DriverTotal:   totals.DriverTotal,
		PlatformTotal: totals.PlatformTotal,
		Deliveries:    totals.Count,
	})
}

func (h *DriverHandler) lifecycleAction(c *gin.Context, fn func(id types.ID, actor string) error) {
	id := types.ID(c.Param("id"))
	if err := fn(id, middleware.Actor(c)); err != nil {
		writeDomainError(c, err)
		return
	}
	d, err := h.drivers.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toDriverResp(*d, time.Now()))
}
