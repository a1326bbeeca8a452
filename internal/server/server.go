// Package server streams an animation to browser clients over websockets.
// Each frame is pushed as a JSON message; /scene and /status serve the
// current state over plain HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/websocket"

	"github.com/san-kum/neurovis/internal/anim"
	"github.com/san-kum/neurovis/internal/export"
	"github.com/san-kum/neurovis/internal/metrics"
	"github.com/san-kum/neurovis/internal/scene"
)

type MessageType string

const (
	MsgScene    MessageType = "scene"
	MsgFrame    MessageType = "frame"
	MsgFinished MessageType = "finished"
	MsgPause    MessageType = "pause"
	MsgResume   MessageType = "resume"
	MsgRestart  MessageType = "restart"
)

type Message struct {
	Type  MessageType         `json:"type"`
	Frame *metrics.FrameStats `json:"frame,omitempty"`
	Scene *export.SceneData   `json:"scene,omitempty"`
}

type Status struct {
	State   string `json:"state"`
	Frame   int    `json:"frame"`
	Frames  int    `json:"frames"`
	Step    int64  `json:"step"`
	Clients int    `json:"clients"`
	Paused  bool   `json:"paused"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return websocket.Message.Send(c.conn, string(data))
}

// Server owns a driver. All driver access goes through mu.
type Server struct {
	mu       sync.RWMutex
	driver   *anim.Driver
	variant  string
	paused   bool
	loop     bool
	restart  bool
	interval time.Duration

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]*client

	logger *log.Logger
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithLoop restarts the animation from the first timestep once it finishes.
func WithLoop(loop bool) Option {
	return func(s *Server) { s.loop = loop }
}

func WithInterval(d time.Duration) Option {
	return func(s *Server) { s.interval = d }
}

func New(d *anim.Driver, variant string, opts ...Option) *Server {
	s := &Server{
		driver:   d,
		variant:  variant,
		interval: 800 * time.Millisecond,
		clients:  make(map[*websocket.Conn]*client),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	d.AddObserver(anim.ObserverFunc(s.onFrame))
	return s
}

// onFrame runs with mu held by the ticking goroutine.
func (s *Server) onFrame(sc *scene.Scene) {
	fs := metrics.Stats(sc)
	s.broadcast(Message{Type: MsgFrame, Frame: &fs})
}

func (s *Server) broadcast(msg Message) {
	s.clientsMu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.clientsMu.Unlock()

	for _, c := range targets {
		if err := c.send(msg); err != nil {
			s.logger.Warn("ws send failed", "remote", c.conn.Request().RemoteAddr, "err", err)
		}
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", websocket.Handler(s.handleWS))
	mux.HandleFunc("/scene", s.handleScene)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

func (s *Server) snapshot() export.SceneData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return export.NewSceneData(s.variant, s.driver.Scene(), nil)
}

func (s *Server) Status() Status {
	s.mu.RLock()
	st := Status{
		State:  s.driver.State().String(),
		Frame:  s.driver.Cursor(),
		Frames: s.driver.Len(),
		Step:   s.driver.Step(),
		Paused: s.paused,
	}
	s.mu.RUnlock()

	s.clientsMu.Lock()
	st.Clients = len(s.clients)
	s.clientsMu.Unlock()
	return st
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := export.WriteJSON(w, s.snapshot()); err != nil {
		s.logger.Error("write scene", "err", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Status()); err != nil {
		s.logger.Error("write status", "err", err)
	}
}

func (s *Server) handleWS(ws *websocket.Conn) {
	c := &client{conn: ws}
	s.clientsMu.Lock()
	s.clients[ws] = c
	s.clientsMu.Unlock()
	s.logger.Info("client connected", "remote", ws.Request().RemoteAddr)

	defer func() {
		ws.Close()
		s.clientsMu.Lock()
		delete(s.clients, ws)
		s.clientsMu.Unlock()
		s.logger.Info("client disconnected", "remote", ws.Request().RemoteAddr)
	}()

	data := s.snapshot()
	if err := c.send(Message{Type: MsgScene, Scene: &data}); err != nil {
		return
	}

	for {
		var raw string
		if err := websocket.Message.Receive(ws, &raw); err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Warn("ws read error", "err", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			s.logger.Warn("ws parse error", "err", err)
			continue
		}
		s.control(msg.Type)
	}
}

func (s *Server) control(t MessageType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t {
	case MsgPause:
		s.paused = true
	case MsgResume:
		s.paused = false
	case MsgRestart:
		s.restart = true
	}
}

// Step performs one scheduler tick: start, advance or restart the driver.
// It reports whether a new frame was produced.
func (s *Server) Step(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restart {
		s.restart = false
		s.driver.Reset()
	}

	switch s.driver.State() {
	case anim.Idle:
		if err := s.driver.Start(ctx); err != nil {
			return false, err
		}
		return !s.driver.Done(), nil
	case anim.Finished:
		if !s.loop {
			return false, nil
		}
		s.driver.Reset()
		if err := s.driver.Start(ctx); err != nil {
			return false, err
		}
		return !s.driver.Done(), nil
	}

	if s.paused {
		return false, nil
	}
	if err := s.driver.Tick(ctx); err != nil {
		return false, err
	}
	if s.driver.Done() {
		s.broadcast(Message{Type: MsgFinished})
		return false, nil
	}
	return true, nil
}

// Run ticks the driver every interval until ctx is cancelled. A failed
// load is logged and the server keeps serving the last good frame.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if _, err := s.Step(ctx); err != nil {
		s.logger.Error("start", "err", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Step(ctx); err != nil {
				s.logger.Error("tick", "err", err)
			}
		}
	}
}

// ListenAndServe serves Handler on addr and drives the animation until ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	go s.Run(ctx)

	s.logger.Info("listening", "addr", addr)
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
