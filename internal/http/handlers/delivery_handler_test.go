// README: Handler tests for the delivery endpoints; status-code contract over stubs.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"feastly/internal/http/handlers"
	"feastly/internal/modules/delivery"
	"feastly/internal/modules/earnings"
	"feastly/internal/types"
)

// memDeliveries is a test double for delivery.Storage.
type memDeliveries struct {
	rows map[types.ID]*delivery.Delivery
}

func newMemDeliveries() *memDeliveries {
	return &memDeliveries{rows: make(map[types.ID]*delivery.Delivery)}
}

func (m *memDeliveries) Create(_ context.Context, d *delivery.Delivery) error {
	cp := *d
	m.rows[d.ID] = &cp
	return nil
}

func (m *memDeliveries) Get(_ context.Context, id types.ID) (*delivery.Delivery, error) {
	d, ok := m.rows[id]
	if !ok {
		return nil, delivery.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDeliveries) UpdateStatusCAS(_ context.Context, id types.ID, from, to delivery.Status, version int, driverID *types.ID, cancelReason *string) (bool, error) {
	d, ok := m.rows[id]
	if !ok || d.Status != from || d.StatusVersion != version {
		return false, nil
	}
	d.Status = to
	d.StatusVersion++
	if driverID != nil {
		v := *driverID
		d.DriverID = &v
	}
	if cancelReason != nil {
		v := *cancelReason
		d.CancelReason = &v
	}
	if to == delivery.StatusDelivered {
		now := time.Now()
		d.DeliveredAt = &now
	}
	return true, nil
}

func (m *memDeliveries) AppendEvent(_ context.Context, _ *delivery.Event) error { return nil }

// memLedger is a test double for earnings.Ledger.
type memLedger struct {
	byDelivery map[types.ID]*earnings.Record
}

func newMemLedger() *memLedger {
	return &memLedger{byDelivery: make(map[types.ID]*earnings.Record)}
}

func (m *memLedger) Insert(_ context.Context, r *earnings.Record) (bool, error) {
	if _, ok := m.byDelivery[r.DeliveryID]; ok {
		return false, nil
	}
	cp := *r
	m.byDelivery[r.DeliveryID] = &cp
	return true, nil
}

func (m *memLedger) GetByDelivery(_ context.Context, deliveryID types.ID) (*earnings.Record, error) {
	r, ok := m.byDelivery[deliveryID]
	if !ok {
		return nil, earnings.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memLedger) ListByDriver(_ context.Context, _ types.ID, _ time.Time) ([]earnings.Record, error) {
	return nil, nil
}

func (m *memLedger) TotalsByDriver(_ context.Context, _ types.ID, w earnings.Window, _ time.Time, _ *time.Location) (earnings.Totals, error) {
	return earnings.Totals{Window: w}, nil
}

type fixedRates struct{ rate float64 }

func (f fixedRates) EffectiveRateFor(context.Context, types.ID) (float64, error) {
	return f.rate, nil
}

func buildDeliveryRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := delivery.NewService(newMemDeliveries(), fixedRates{rate: 15}, earnings.NewService(newMemLedger(), time.UTC))
	h := handlers.NewDeliveryHandler(svc)
	r := gin.New()
	r.POST("/api/deliveries", h.Create)
	r.GET("/api/deliveries/:id", h.Get)
	r.POST("/api/deliveries/:id/accept", h.Accept)
	r.POST("/api/deliveries/:id/preparing", h.StartPreparing)
	r.POST("/api/deliveries/:id/ready", h.MarkReady)
	r.POST("/api/deliveries/:id/pickup", h.PickUp)
	r.POST("/api/deliveries/:id/depart", h.Depart)
	r.POST("/api/deliveries/:id/complete", h.Complete)
	r.POST("/api/deliveries/:id/cancel", h.Cancel)
	r.POST("/api/deliveries/:id/settle", h.Settle)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createDelivery(t *testing.T, r *gin.Engine, fee int64) string {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/api/deliveries", map[string]any{
		"restaurant_id": "rest1",
		"fee":           fee,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.ID
}

func TestCreate_NegativeFee(t *testing.T) {
	r := buildDeliveryRouter()
	w := doRequest(t, r, http.MethodPost, "/api/deliveries", map[string]any{
		"restaurant_id": "rest1",
		"fee":           -100,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGet_Unknown(t *testing.T) {
	r := buildDeliveryRouter()
	w := doRequest(t, r, http.MethodGet, "/api/deliveries/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestPickup_OutOfOrder(t *testing.T) {
	r := buildDeliveryRouter()
	id := createDelivery(t, r, 1000)
	w := doRequest(t, r, http.MethodPost, "/api/deliveries/"+id+"/pickup", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("pickup from new: expected 409, got %d", w.Code)
	}
}

func TestSettle_BeforeDelivered(t *testing.T) {
	r := buildDeliveryRouter()
	id := createDelivery(t, r, 1000)
	w := doRequest(t, r, http.MethodPost, "/api/deliveries/"+id+"/settle", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("settle before delivered: expected 409, got %d", w.Code)
	}
}

func TestFullLifecycleAndSettle(t *testing.T) {
	r := buildDeliveryRouter()
	id := createDelivery(t, r, 1000)

	steps := []string{"accept", "preparing", "ready", "pickup", "depart", "complete"}
	for _, step := range steps {
		var body any
		if step == "accept" {
			body = map[string]any{"driver_id": "drv1"}
		}
		w := doRequest(t, r, http.MethodPost, "/api/deliveries/"+id+"/"+step, body)
		if w.Code != http.StatusOK {
			t.Fatalf("%s = %d, body %s", step, w.Code, w.Body.String())
		}
	}

	w := doRequest(t, r, http.MethodPost, "/api/deliveries/"+id+"/settle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("settle = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		DriverShare   int64 `json:"driver_share"`
		PlatformShare int64 `json:"platform_share"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode settle response: %v", err)
	}
	if resp.DriverShare != 700 || resp.PlatformShare != 300 {
		t.Errorf("split = %d/%d, want 700/300", resp.DriverShare, resp.PlatformShare)
	}

	// settling again returns the same record
	w2 := doRequest(t, r, http.MethodPost, "/api/deliveries/"+id+"/settle", nil)
	if w2.Code != http.StatusOK {
		t.Fatalf("repeat settle = %d", w2.Code)
	}
}

func TestCancel_Terminal(t *testing.T) {
	r := buildDeliveryRouter()
	id := createDelivery(t, r, 500)

	w := doRequest(t, r, http.MethodPost, "/api/deliveries/"+id+"/cancel", map[string]any{
		"actor_type": "restaurant",
		"reason":     "out of stock",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("cancel = %d, body %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, http.MethodPost, "/api/deliveries/"+id+"/accept", map[string]any{"driver_id": "drv1"})
	if w.Code != http.StatusConflict {
		t.Errorf("accept after cancel: expected 409, got %d", w.Code)
	}
}
