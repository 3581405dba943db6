package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/aristath/marketpulse/internal/events"
	"github.com/aristath/marketpulse/internal/utils"
)

const (
	streamBuffer       = 64
	streamWriteTimeout = 5 * time.Second
	streamPingInterval = 30 * time.Second
)

// EventsStreamHandler pushes bus events to websocket clients
type EventsStreamHandler struct {
	bus     *events.Bus
	origins []string
	log     zerolog.Logger
}

// NewEventsStreamHandler creates a new events stream handler.
// origins are the allowed browser origins; "*" allows any.
func NewEventsStreamHandler(bus *events.Bus, origins []string, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		bus:     bus,
		origins: origins,
		log:     log.With().Str("component", "events_stream").Logger(),
	}
}

// ServeHTTP handles GET /api/stream. Optional ?types=A,B limits the event types.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rawTypes := utils.ParseCSV(r.URL.Query().Get("types"))
	types := events.ParseEventTypes(rawTypes)
	if len(rawTypes) > 0 && len(types) == 0 {
		http.Error(w, "no known event types in ?types=", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, h.acceptOptions())
	if err != nil {
		// Accept already wrote the HTTP error
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.CloseNow()

	ch, cancel := h.bus.Subscribe(streamBuffer, types...)
	defer cancel()

	// The client only listens; CloseRead handles control frames and
	// cancels ctx when the client goes away
	ctx := conn.CloseRead(r.Context())

	subscribed := make([]string, len(types))
	for i, t := range types {
		subscribed[i] = string(t)
	}
	h.log.Info().Strs("types", subscribed).Msg("Client connected to event stream")

	if err := h.write(ctx, conn, map[string]interface{}{
		"type":  "connected",
		"types": subscribed,
	}); err != nil {
		return
	}

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from event stream")
			return

		case event, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "stream closed")
				return
			}
			if err := h.write(ctx, conn, event); err != nil {
				h.log.Debug().Err(err).Msg("Failed to send event, closing stream")
				return
			}

		case <-ping.C:
			pingCtx, cancelPing := context.WithTimeout(ctx, streamWriteTimeout)
			err := conn.Ping(pingCtx)
			cancelPing()
			if err != nil {
				h.log.Debug().Err(err).Msg("Ping failed, closing stream")
				return
			}
		}
	}
}

func (h *EventsStreamHandler) acceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{}
	for _, origin := range h.origins {
		if origin == "*" {
			opts.InsecureSkipVerify = true
			return opts
		}
		// Patterns match the origin host
		host := strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://")
		opts.OriginPatterns = append(opts.OriginPatterns, host)
	}
	return opts
}

func (h *EventsStreamHandler) write(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to marshal event")
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
