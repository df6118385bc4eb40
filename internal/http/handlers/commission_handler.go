// README: Admin commission-settings handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"feastly/internal/modules/commission"
)

type CommissionHandler struct {
	commission *commission.Service
}

func NewCommissionHandler(svc *commission.Service) *CommissionHandler {
	return &CommissionHandler{commission: svc}
}

type commissionSettingsResp struct {
	DefaultRatePercent float64    `json:"default_rate_percent"`
	Version            int        `json:"version"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

func settingsResp(st commission.Settings) commissionSettingsResp {
	resp := commissionSettingsResp{
		DefaultRatePercent: commission.Resolve(nil, st),
		Version:            st.Version,
	}
	if !st.UpdatedAt.IsZero() {
		t := st.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

func (h *CommissionHandler) Get(c *gin.Context) {
	st, err := h.commission.Settings(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, settingsResp(st))
}

type updateSettingsReq struct {
	DefaultRatePercent *float64 `json:"default_rate_percent"`
}

func (h *CommissionHandler) Update(c *gin.Context) {
	var req updateSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.DefaultRatePercent == nil {
		writeError(c, http.StatusBadRequest, "default_rate_percent is required")
		return
	}
	st, err := h.commission.SetPlatformDefault(c.Request.Context(), *req.DefaultRatePercent)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, settingsResp(st))
}
