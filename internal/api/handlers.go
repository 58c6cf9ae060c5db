package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"network-ai-monitor/internal/model"
	"network-ai-monitor/internal/rules"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const pingInterval = 30 * time.Second

type Handlers struct {
	store    *Storage
	engine   *rules.Engine
	logger   *logrus.Logger
	upgrader websocket.Upgrader
}

func NewHandlers(store *Storage, engine *rules.Engine, logger *logrus.Logger) *Handlers {
	return &Handlers{
		store:  store,
		engine: engine,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				logger.Debugf("WebSocket origin check: %s", r.Header.Get("Origin"))
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Interfaces handlers
func (h *Handlers) GetInterfaces(w http.ResponseWriter, r *http.Request) {
	readings := h.store.GetInterfaces()
	items := make([]InterfaceView, 0, len(readings))
	for _, cr := range readings {
		items = append(items, h.view(cr))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

func (h *Handlers) GetInterface(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	cr, ok := h.store.GetInterface(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Interface not found")
		return
	}

	writeJSON(w, http.StatusOK, h.view(cr))
}

func (h *Handlers) GetInterfaceHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	points, ok := h.store.GetHistory(id, limit)
	if !ok {
		writeError(w, http.StatusNotFound, "Interface not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"interface": id,
		"items":     points,
		"total":     len(points),
	})
}

// Alerts handlers
func (h *Handlers) GetAlerts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}

	alerts := h.store.GetAlerts(limit, r.URL.Query().Get("interface"), r.URL.Query().Get("class"))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": alerts,
		"total": len(alerts),
	})
}

func (h *Handlers) GetAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	alert := h.store.GetAlertByID(id)
	if alert == nil {
		writeError(w, http.StatusNotFound, "Alert not found")
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

func (h *Handlers) GetThresholds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default_class": h.engine.DefaultClass(),
		"classes":       h.engine.Profiles(),
	})
}

func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.GetStatus())
}

func (h *Handlers) StreamTicks(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}
	h.logger.Infof("WebSocket connection established from %s", r.RemoteAddr)
	defer func() {
		h.logger.Debugf("WebSocket connection closed for %s", r.RemoteAddr)
		conn.Close()
	}()

	sub := &TickSubscriber{
		ID:      uuid.NewString(),
		Channel: make(chan model.TickSnapshot, 16),
	}
	h.store.SubscribeTicks(sub)
	defer h.store.UnsubscribeTicks(sub)

	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(map[string]string{"type": "connected", "id": sub.ID}); err != nil {
		h.logger.Errorf("Failed to send initial message: %v", err)
		return
	}

	done := make(chan struct{})
	once := &sync.Once{}
	closeDone := func() {
		once.Do(func() {
			close(done)
		})
	}

	// Read messages in background to detect connection close
	go func() {
		defer closeDone()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	// All writes happen on this goroutine.
	for {
		select {
		case <-done:
			return
		case snapshot, ok := <-sub.Channel:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(snapshot); err != nil {
				h.logger.Debugf("WebSocket write error: %v", err)
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				h.logger.Debugf("Ping failed: %v", err)
				return
			}
		}
	}
}

func (h *Handlers) view(cr model.ClassifiedReading) InterfaceView {
	return InterfaceView{
		ClassifiedReading: cr,
		Profile:           h.engine.ProfileFor(cr.Class),
	}
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
