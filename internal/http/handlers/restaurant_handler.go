// README: Admin restaurant handlers; listing, rate override, lifecycle actions.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"feastly/internal/http/middleware"
	"feastly/internal/modules/account"
	"feastly/internal/modules/commission"
	"feastly/internal/modules/onboarding"
	"feastly/internal/modules/restaurant"
	"feastly/internal/types"
)

type RestaurantHandler struct {
	restaurants *restaurant.Service
	lifecycle   *account.Lifecycle
	onboarding  *onboarding.Service
	commission  *commission.Service
}

func NewRestaurantHandler(
	restaurants *restaurant.Service,
	lifecycle *account.Lifecycle,
	onb *onboarding.Service,
	comm *commission.Service,
) *RestaurantHandler {
	return &RestaurantHandler{
		restaurants: restaurants,
		lifecycle:   lifecycle,
		onboarding:  onb,
		commission:  comm,
	}
}

type restaurantResp struct {
	ID               types.ID `json:"id"`
	Name             string   `json:"name"`
	Status           string   `json:"status"`
	CommissionRate   *float64 `json:"commission_rate"`
	SuspensionReason *string  `json:"suspension_reason,omitempty"`
	OpeningHours     string   `json:"opening_hours"`
	PendingDays      int      `json:"pending_days"`
}

func toRestaurantResp(r restaurant.Restaurant, now time.Time) restaurantResp {
	return restaurantResp{
		ID:               r.ID,
		Name:             r.Name,
		Status:           string(r.Status),
		CommissionRate:   r.CommissionRate,
		SuspensionReason: r.SuspensionReason,
		OpeningHours:     r.OpeningHours,
		PendingDays: onboarding.PendingDays(account.Snapshot{
			Status:       r.Status,
			PendingSince: r.PendingSince,
		}, now),
	}
}

type registerRestaurantReq struct {
	Name         string `json:"name"`
	OpeningHours string `json:"opening_hours"`
}

func (h *RestaurantHandler) Register(c *gin.Context) {
	var req registerRestaurantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.restaurants.Register(c.Request.Context(), restaurant.RegisterCommand{
		Name:         req.Name,
		OpeningHours: req.OpeningHours,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"id": id, "status": account.StatusPending})
}

func (h *RestaurantHandler) List(c *gin.Context) {
	var f restaurant.Filter
	if raw := c.Query("status"); raw != "" {
		st, err := account.ParseStatus(raw)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		f.Status = &st
	}
	p := restaurant.Page{
		Limit:  atoiOrZero(c.Query("limit")),
		Offset: atoiOrZero(c.Query("offset")),
	}
	rows, err := h.restaurants.List(c.Request.Context(), f, p)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	now := time.Now()
	out := make([]restaurantResp, 0, len(rows))
	for _, r := range rows {
		out = append(out, toRestaurantResp(r, now))
	}
	writeJSON(c, http.StatusOK, gin.H{"restaurants": out})
}

func (h *RestaurantHandler) Get(c *gin.Context) {
	r, err := h.restaurants.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toRestaurantResp(*r, time.Now()))
}

// updateRestaurantReq keeps commission_rate as raw JSON so an explicit null
// (clear the override) is distinguishable from an absent field.
type updateRestaurantReq struct {
	CommissionRate json.RawMessage `json:"commission_rate"`
}

func (h *RestaurantHandler) Update(c *gin.Context) {
	var req updateRestaurantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.CommissionRate) == 0 {
		writeError(c, http.StatusBadRequest, "commission_rate is required")
		return
	}
	id := types.ID(c.Param("id"))
	ctx := c.Request.Context()

	if string(req.CommissionRate) == "null" {
		if err := h.commission.ClearOverride(ctx, id); err != nil {
			writeDomainError(c, err)
			return
		}
	} else {
		var rate float64
		if err := json.Unmarshal(req.CommissionRate, &rate); err != nil {
			writeError(c, http.StatusBadRequest, "commission_rate must be a number or null")
			return
		}
		if err := h.commission.SetOverride(ctx, id, rate); err != nil {
			writeDomainError(c, err)
			return
		}
	}

	r, err := h.restaurants.Get(ctx, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toRestaurantResp(*r, time.Now()))
}

type reasonReq struct {
	Reason string `json:"reason"`
}

func (h *RestaurantHandler) Approve(c *gin.Context) {
	h.lifecycleAction(c, func(id types.ID, actor string) error {
		return h.onboarding.Approve(c.Request.Context(), id, actor)
	})
}

func (h *RestaurantHandler) Reject(c *gin.Context) {
	reason := bindReason(c)
	h.lifecycleAction(c, func(id types.ID, actor string) error {
		return h.onboarding.Reject(c.Request.Context(), id, actor, reason)
	})
}

func (h *RestaurantHandler) Suspend(c *gin.Context) {
	reason := bindReason(c)
	h.lifecycleAction(c, func(id types.ID, actor string) error {
		return h.lifecycle.Suspend(c.Request.Context(), id, actor, reason)
	})
}

func (h *RestaurantHandler) Reactivate(c *gin.Context) {
	h.lifecycleAction(c, func(id types.ID, actor string) error {
		return h.lifecycle.Reactivate(c.Request.Context(), id, actor)
	})
}

type correctionsReq struct {
	Message string `json:"message"`
}

func (h *RestaurantHandler) RequestCorrections(c *gin.Context) {
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

type correctionResp struct {
	Actor     string    `json:"actor"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *RestaurantHandler) ListCorrections(c *gin.Context) {
	id := types.ID(c.Param("id"))
	if _, err := h.restaurants.Get(c.Request.Context(), id); err != nil {
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

func (h *RestaurantHandler) lifecycleAction(c *gin.Context, fn func(id types.ID, actor string) error) {
	id := types.ID(c.Param("id"))
	if err := fn(id, middleware.Actor(c)); err != nil {
		writeDomainError(c, err)
		return
	}
	r, err := h.restaurants.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toRestaurantResp(*r, time.Now()))
}

// bindReason tolerates an empty body; reason validation happens in the
// lifecycle where the rules live.
func bindReason(c *gin.Context) string {
	var req reasonReq
	_ = c.ShouldBindJSON(&req)
	return req.Reason
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
