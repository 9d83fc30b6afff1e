package dashboard

import (
	"encoding/json"
	"log"
	"time"

	"github.com/mschirtzinger/spimrelay/internal/monitor"
)

// Handler turns monitor results into dashboard messages.
// It implements monitor.Observer.
type Handler struct {
	server *Server
	logger *log.Logger
}

// NewHandler creates a handler that broadcasts through server
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{server: server, logger: logger}
}

// Observe broadcasts a transfer message and the updated totals.
func (h *Handler) Observe(res monitor.Result) {
	data := TransferData{
		Source:      res.Source,
		Destination: res.Destination,
		Trigger:     string(res.Trigger),
		Status:      "copied",
	}
	if res.Err != nil {
		data.Status = "failed"
		data.Error = res.Err.Error()
	}

	at := res.At
	if at.IsZero() {
		at = time.Now()
	}

	h.send(MessageTypeTransfer, at, data)
	h.send(MessageTypeStats, at, h.server.Stats())
}

func (h *Handler) send(typ MessageType, at time.Time, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Printf("Failed to marshal %s data: %v", typ, err)
		return
	}
	h.server.Broadcast(Message{
		Type:      typ,
		Timestamp: at,
		Data:      data,
	})
}
