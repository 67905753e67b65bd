package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/iamsorenl/Autogen-Chat-Demo/cron"
	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// WebPingJobName is the scheduler job that pings websocket clients.
const WebPingJobName = "web-ping"

// WebConfig holds web channel configuration.
type WebConfig struct {
	Addr         string        // Listen address (default: localhost:8765)
	PingInterval time.Duration // Keepalive ping period (default: 30s)
	Status       http.Handler  // Served at /api/status when set
	Scheduler    *cron.Scheduler
}

// WebChannel serves websocket clients. Every accepted socket is registered
// with the bridge and every text frame it sends is routed.
type WebChannel struct {
	addr         string
	pingInterval time.Duration
	status       http.Handler
	scheduler    *cron.Scheduler
	hub          Hub

	wg     sync.WaitGroup
	server *http.Server
	bound  string

	mu    sync.Mutex
	conns map[string]*wsConn
}

// wsConn adapts a websocket to bridge.Conn.
type wsConn struct {
	id   string
	conn *websocket.Conn
}

type webInboundMessage struct {
	Text string `json:"text"`
}

// NewWebChannel creates a new web channel.
func NewWebChannel(hub Hub, cfg WebConfig) *WebChannel {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		addr = runtimecfg.WebChannelDefaultAddr
	}
	ping := cfg.PingInterval
	if ping <= 0 {
		ping = runtimecfg.WebChannelDefaultPingInterval
	}
	return &WebChannel{
		addr:         addr,
		pingInterval: ping,
		status:       cfg.Status,
		scheduler:    cfg.Scheduler,
		hub:          hub,
		conns:        make(map[string]*wsConn),
	}
}

// Name returns the channel name.
func (w *WebChannel) Name() string { return "web" }

// Addr returns the bound listen address once started, else the configured one.
func (w *WebChannel) Addr() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.bound != "" {
		return w.bound
	}
	return w.addr
}

// Start starts the web server.
func (w *WebChannel) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", http.HandlerFunc(w.handleWS))
	if w.status != nil {
		mux.Handle("/api/status", w.status)
	}
	mux.Handle("/", http.HandlerFunc(w.handleRoot))

	w.server = &http.Server{
		Addr:              w.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", w.addr)
	if err != nil {
		return fmt.Errorf("web channel listen failed on %s: %w", w.addr, err)
	}

	bindAddr := ln.Addr().String()
	w.mu.Lock()
	w.bound = bindAddr
	w.mu.Unlock()
	logger.Info("web channel started", "addr", bindAddr, "url", webSocketURLFromAddr(bindAddr))

	if w.scheduler != nil {
		if err := w.scheduler.Every(WebPingJobName, w.pingInterval, w.pingAll); err != nil {
			_ = ln.Close()
			return err
		}
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if serveErr := w.server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("web channel server error", "err", serveErr)
		}
	}()

	return nil
}

// Stop closes every websocket and shuts the server down.
func (w *WebChannel) Stop() error {
	if w.scheduler != nil {
		w.scheduler.Remove(WebPingJobName)
	}

	w.mu.Lock()
	conns := make([]*wsConn, 0, len(w.conns))
	for _, c := range w.conns {
		conns = append(conns, c)
	}
	w.mu.Unlock()

	for _, c := range conns {
		_ = c.conn.Close(websocket.StatusGoingAway, "shutdown")
	}

	if w.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), runtimecfg.WebChannelShutdownTimeout)
		defer cancel()
		if err := w.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("web channel shutdown error", "err", err)
		}
	}

	w.wg.Wait()
	logger.Info("web channel stopped")
	return nil
}

func (w *WebChannel) handleRoot(rw http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(rw, r)
		return
	}
	w.handleWS(rw, r)
}

func (w *WebChannel) handleWS(rw http.ResponseWriter, r *http.Request) {
	// Clients are local pages and tools served from any origin.
	conn, err := websocket.Accept(rw, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		logger.Debug("websocket accept failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	conn.SetReadLimit(runtimecfg.WebChannelReadLimitBytes)

	client := &wsConn{id: "web:" + uuid.NewString(), conn: conn}
	w.track(client)
	w.hub.Registry().Register(client)

	w.wg.Add(1)
	defer w.wg.Done()
	defer func() {
		w.hub.Registry().Unregister(client.id)
		w.untrack(client)
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	w.readLoop(r.Context(), client)
}

// readLoop routes every inbound frame until the socket fails or closes.
func (w *WebChannel) readLoop(ctx context.Context, client *wsConn) {
	for {
		typ, data, err := client.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Debug("websocket closed", "conn", client.id, "status", status)
			} else {
				logger.Debug("websocket read ended", "conn", client.id, "err", err)
			}
			return
		}
		if typ != websocket.MessageText {
			logger.Warn("ignoring non-text websocket frame", "conn", client.id, "type", typ)
			continue
		}

		var req webInboundMessage
		if err := json.Unmarshal(data, &req); err != nil {
			logger.Warn("malformed client message", "conn", client.id, "err", err)
			continue
		}
		text := strings.TrimSpace(req.Text)
		if text == "" {
			logger.Warn("client message has no text", "conn", client.id, "bytes", len(data))
			continue
		}
		w.hub.Route(text)
	}
}

// pingAll pings every socket; one that fails to answer in time is closed.
func (w *WebChannel) pingAll(ctx context.Context) {
	w.mu.Lock()
	conns := make([]*wsConn, 0, len(w.conns))
	for _, c := range w.conns {
		conns = append(conns, c)
	}
	w.mu.Unlock()

	for _, c := range conns {
		pingCtx, cancel := context.WithTimeout(ctx, runtimecfg.WebChannelPingTimeout)
		err := c.conn.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("websocket ping failed, closing", "conn", c.id, "err", err)
			_ = c.conn.Close(websocket.StatusPolicyViolation, "ping timeout")
		}
	}
}

func (w *WebChannel) track(c *wsConn) {
	w.mu.Lock()
	w.conns[c.id] = c
	w.mu.Unlock()
}

func (w *WebChannel) untrack(c *wsConn) {
	w.mu.Lock()
	delete(w.conns, c.id)
	w.mu.Unlock()
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(ctx context.Context, payload []byte) error {
	if err := c.conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("websocket send failed: %w", err)
	}
	return nil
}

func webSocketURLFromAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "ws://" + addr + "/ws"
	}

	host = strings.TrimSpace(host)
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("ws://%s/ws", net.JoinHostPort(host, port))
}
