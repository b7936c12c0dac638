package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ducminhle1904/stock-insight/internal/monitoring"
	"github.com/ducminhle1904/stock-insight/pkg/data"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsReadLimit  = 4096
)

// QuoteHub pushes fresh quotes to websocket clients. Each client subscribes
// to the symbols it wants; the hub polls the provider once per interval for
// the union of all subscriptions and fans the results out.
type QuoteHub struct {
	provider data.QuoteProvider
	interval time.Duration
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[*wsClient]bool

	stop     chan struct{}
	stopOnce sync.Once
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	hub  *QuoteHub

	subMu   sync.RWMutex
	symbols map[string]bool
}

// wsCommand is the client→server message: subscribe or unsubscribe a list of
// symbols.
type wsCommand struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}

func NewQuoteHub(provider data.QuoteProvider, interval time.Duration, logger *slog.Logger) *QuoteHub {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	return &QuoteHub{
		provider: provider,
		interval: interval,
		logger:   logger,
		clients:  make(map[*wsClient]bool),
		stop:     make(chan struct{}),
	}
}

// Start launches the polling loop.
func (h *QuoteHub) Start() {
	go h.run()
}

// Stop ends the polling loop and disconnects every client.
func (h *QuoteHub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *QuoteHub) run() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			h.closeAll()
			return
		case <-ticker.C:
			h.pushQuotes()
		}
	}
}

func (h *QuoteHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.conn.Close()
		delete(h.clients, client)
		close(client.send)
	}
}

// pushQuotes fetches every subscribed symbol once and fans each quote out to
// the clients watching it.
func (h *QuoteHub) pushQuotes() {
	if h.provider == nil {
		return
	}
	symbols := h.subscribedSymbols()
	if len(symbols) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.interval)
	defer cancel()

	for _, symbol := range symbols {
		quote, err := h.provider.GetQuote(ctx, symbol)
		if err != nil {
			monitoring.RecordProviderRequest(h.provider.GetName(), "error")
			h.logger.Debug("quote stream fetch failed", "symbol", symbol, "error", err)
			continue
		}
		monitoring.RecordProviderRequest(h.provider.GetName(), "ok")
		monitoring.UpdateQuotePrice(symbol, quote.Price)

		envelope, err := json.Marshal(map[string]any{
			"type": "quote",
			"data": toQuoteDTO(quote),
		})
		if err != nil {
			continue
		}
		h.broadcast(symbol, envelope)
	}
}

func (h *QuoteHub) subscribedSymbols() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := make(map[string]bool)
	for client := range h.clients {
		client.subMu.RLock()
		for symbol := range client.symbols {
			set[symbol] = true
		}
		client.subMu.RUnlock()
	}
	symbols := make([]string, 0, len(set))
	for symbol := range set {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// broadcast delivers one envelope to every client subscribed to symbol.
// Slow clients are skipped instead of blocking the loop.
func (h *QuoteHub) broadcast(symbol string, envelope []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.subscribedTo(symbol) {
			continue
		}
		select {
		case client.send <- envelope:
		default:
		}
	}
}

// HandleWS upgrades the connection and registers the client. Initial
// subscriptions may ride along as ?symbols=AAPL,MSFT.
func (h *QuoteHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		conn:    conn,
		send:    make(chan []byte, 256),
		hub:     h,
		symbols: make(map[string]bool),
	}
	if raw := r.URL.Query().Get("symbols"); raw != "" {
		client.subscribe(splitSymbols(raw))
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client connected", "clients", count)

	go client.writePump()
	go client.readPump()
}

// RemoveClient unregisters a client and releases its send queue.
func (h *QuoteHub) RemoveClient(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// ClientCount reports connected websocket clients.
func (h *QuoteHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *wsClient) subscribedTo(symbol string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return c.symbols[symbol]
}

func (c *wsClient) subscribe(symbols []string) []string {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, s := range symbols {
		if s = normalizeSymbol(s); s != "" {
			c.symbols[s] = true
		}
	}
	return c.currentLocked()
}

func (c *wsClient) unsubscribe(symbols []string) []string {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, s := range symbols {
		delete(c.symbols, normalizeSymbol(s))
	}
	return c.currentLocked()
}

func (c *wsClient) currentLocked() []string {
	out := make([]string, 0, len(c.symbols))
	for s := range c.symbols {
		out = append(out, s)
	}
	return out
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))

			// Coalesce queued envelopes into one frame, newline separated.
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(msg)
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.RemoveClient(c)
		c.conn.Close()
		c.hub.logger.Info("ws client disconnected", "clients", c.hub.ClientCount())
	}()

	c.conn.SetReadLimit(wsReadLimit)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd wsCommand
		if json.Unmarshal(msg, &cmd) != nil {
			continue
		}

		switch cmd.Action {
		case "subscribe":
			c.ack("subscribed", c.subscribe(cmd.Symbols))
		case "unsubscribe":
			c.ack("subscribed", c.unsubscribe(cmd.Symbols))
		}
	}
}

// ack confirms the client's current subscription set.
func (c *wsClient) ack(kind string, symbols []string) {
	envelope, err := json.Marshal(map[string]any{
		"type":    kind,
		"symbols": symbols,
	})
	if err != nil {
		return
	}
	select {
	case c.send <- envelope:
	default:
	}
}

func splitSymbols(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := normalizeSymbol(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
