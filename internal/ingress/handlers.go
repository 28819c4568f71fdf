package ingress

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/rickgao/refbox-bridge/internal/connection"
	"github.com/rickgao/refbox-bridge/internal/model"
	"github.com/rickgao/refbox-bridge/internal/translate"
)

// OrderResponse is the body returned by POST /orders.
type OrderResponse struct {
	Sent    bool   `json:"sent"`
	OrderID string `json:"order_id"`
	Error   string `json:"error,omitempty"`
}

// RefboxStatus describes the refbox endpoint in health responses.
type RefboxStatus struct {
	Host  string `json:"host"`
	Port  uint32 `json:"port"`
	State string `json:"state"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string       `json:"status"` // "healthy" or "degraded"
	Refbox RefboxStatus `json:"refbox"`
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var order model.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeJSON(w, http.StatusBadRequest, OrderResponse{Error: "invalid order json: " + err.Error()})
		return
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	sent, err := s.bridge.SendOrder(order)
	if err != nil {
		var terr *translate.TranslationError
		if errors.As(err, &terr) {
			s.logger.Warn("order rejected", "order_id", order.ID, "error", err)
			writeJSON(w, http.StatusUnprocessableEntity, OrderResponse{OrderID: order.ID, Error: terr.Error()})
			return
		}
		s.logger.Error("order send failed", "order_id", order.ID, "error", err)
		writeJSON(w, http.StatusBadGateway, OrderResponse{OrderID: order.ID, Error: err.Error()})
		return
	}

	if !sent {
		s.logger.Warn("order not sent, refbox not connected",
			"order_id", order.ID,
			"state", s.bridge.State(),
		)
		writeJSON(w, http.StatusServiceUnavailable, OrderResponse{OrderID: order.ID, Error: "refbox not connected"})
		return
	}

	s.logger.Info("order forwarded", "order_id", order.ID, "items", len(order.Items))
	writeJSON(w, http.StatusOK, OrderResponse{Sent: true, OrderID: order.ID})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health())
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if err := s.bridge.Connect(); err != nil {
		status := http.StatusConflict
		if errors.Is(err, connection.ErrManagerClosed) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, s.health())
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.bridge.Disconnect()
	writeJSON(w, http.StatusAccepted, s.health())
}

func (s *Server) health() HealthResponse {
	state := s.bridge.State()
	status := "healthy"
	if state != connection.StateConnected {
		status = "degraded"
	}
	return HealthResponse{
		Status: status,
		Refbox: RefboxStatus{
			Host:  s.bridge.Host(),
			Port:  s.bridge.Port(),
			State: state.String(),
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
