package venue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	streamReconnBaseDelay = 1 * time.Second
	streamReconnMaxDelay  = 30 * time.Second
	streamPingPeriod      = 15 * time.Second
)

// TelemetrySink receives descriptor updates from a stream; the redis
// telemetry cache implements it.
type TelemetrySink interface {
	PutDescriptor(ctx context.Context, d model.VenueDescriptor) error
}

// telemetryMsg is one update pushed by a venue's websocket feed.
type telemetryMsg struct {
	Venue        string          `json:"venue"`
	APYBps       int64           `json:"apy_bps"`
	Healthy      bool            `json:"healthy"`
	TotalManaged decimal.Decimal `json:"total_managed_assets"`
}

// TelemetryStream subscribes to a remote venue's websocket telemetry
// feed and keeps the registry descriptor (and optional sink) current.
// It reconnects with exponential backoff until stopped.
type TelemetryStream struct {
	wsURL    string
	registry *Registry
	sink     TelemetrySink
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewTelemetryStream(wsURL string, registry *Registry, sink TelemetrySink) *TelemetryStream {
	ctx, cancel := context.WithCancel(context.Background())
	return &TelemetryStream{
		wsURL:    wsURL,
		registry: registry,
		sink:     sink,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the connection loop in a background goroutine.
func (s *TelemetryStream) Start() {
	go s.runLoop()
}

func (s *TelemetryStream) Stop() {
	s.cancel()
}

func (s *TelemetryStream) runLoop() {
	delay := streamReconnBaseDelay

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(s.wsURL, nil)
		if err != nil {
			logger.Error("telemetry dial failed", "url", s.wsURL, "error", err, "retry_in", delay)
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > streamReconnMaxDelay {
				delay = streamReconnMaxDelay
			}
			continue
		}

		delay = streamReconnBaseDelay

		if err := conn.WriteJSON(map[string]any{
			"type":    "subscribe",
			"channel": "telemetry",
		}); err != nil {
			logger.Error("telemetry subscribe failed", "error", err)
			conn.Close()
			continue
		}

		s.readLoop(conn)
		conn.Close()
	}
}

func (s *TelemetryStream) readLoop(conn *websocket.Conn) {
	readTimeout := streamPingPeriod + 10*time.Second

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	// Keep-alive pinger; a dead peer trips the read deadline.
	pingCtx, stopPing := context.WithCancel(s.ctx)
	defer stopPing()
	go func() {
		ticker := time.NewTicker(streamPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
					return
				}
			}
		}
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			logger.Error("telemetry read failed", "error", err)
			return
		}
		s.handleMessage(message)
	}
}

func (s *TelemetryStream) handleMessage(message []byte) {
	var msg telemetryMsg
	if err := json.Unmarshal(message, &msg); err != nil || msg.Venue == "" {
		// Control frame or junk; skip.
		return
	}

	d, ok := s.registry.Descriptor(msg.Venue)
	if !ok {
		return
	}
	d.CurrentAPYBps = msg.APYBps
	d.Healthy = msg.Healthy
	d.TotalManaged = msg.TotalManaged
	d.ObservedAt = time.Now().UTC()
	s.registry.UpdateDescriptor(d)

	if s.sink != nil {
		ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
		if err := s.sink.PutDescriptor(ctx, d); err != nil {
			logger.Warn("telemetry sink write failed", "venue", d.Name, "error", err)
		}
		cancel()
	}
}
