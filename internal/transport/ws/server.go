// Package ws streams solver events to websocket clients.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"boxhaul/internal/gridio"
	"boxhaul/internal/haul"
	"boxhaul/internal/logging"
	"boxhaul/internal/runner"
)

type Options struct {
	Logger *slog.Logger
	Runner *runner.Runner
	// Grid holds the read options used when a request leaves them unset.
	// The zero value means a header line with a fallback size of 20.
	Grid gridio.ReadOptions
	// AllowRemote accepts non-loopback peers.
	AllowRemote bool
}

type Server struct {
	log    *slog.Logger
	runner *runner.Runner
	grid   gridio.ReadOptions
	remote bool

	upgrader websocket.Upgrader
}

func NewServer(opts Options) *Server {
	s := &Server{
		log:    opts.Logger,
		runner: opts.Runner,
		grid:   opts.Grid,
		remote: opts.AllowRemote,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	if s.grid == (gridio.ReadOptions{}) {
		s.grid = gridio.ReadOptions{Size: 20, Header: true}
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if s.runner == nil {
		s.runner = &runner.Runner{Logger: s.log}
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !s.remote && !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out := make(chan []byte, 1024)
		done := make(chan struct{})

		// Writer goroutine.
		go func() {
			defer close(done)
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()
		send := func(v any) bool {
			b, err := json.Marshal(v)
			if err != nil {
				return false
			}
			select {
			case out <- b:
				return true
			case <-ctx.Done():
				return false
			}
		}

		// Reader loop: one solve per SOLVE message, in order.
		for ctx.Err() == nil {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			typ, err := decodeType(msg)
			if err != nil || typ != TypeSolve {
				send(ErrorMsg{Type: TypeError, Error: "expected SOLVE"})
				continue
			}
			var req SolveMsg
			if err := json.Unmarshal(msg, &req); err != nil {
				send(ErrorMsg{Type: TypeError, Error: err.Error()})
				continue
			}
			s.solve(ctx, req, send)
		}

		close(out)
		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
		}
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
	}
}

func (s *Server) solve(ctx context.Context, req SolveMsg, send func(any) bool) {
	opts := s.grid
	if req.Header != nil {
		opts.Header = *req.Header
	}
	if req.Size > 0 {
		opts.Size = req.Size
	}
	g, err := gridio.Read(strings.NewReader(req.Grid), opts)
	if err != nil {
		send(ErrorMsg{Type: TypeError, Error: err.Error()})
		return
	}
	source := req.Source
	if source == "" {
		source = "ws"
	}
	id := runner.NewRunID()
	o, err := s.runner.Solve(ctx, id, source, g, func(ev haul.Event) {
		send(EventMsg{Type: TypeEvent, Run: id, Event: ev})
	})
	if err != nil {
		s.log.Error("solve failed", "run", id, "err", err)
		send(ErrorMsg{Type: TypeError, Error: err.Error()})
		return
	}
	done := DoneMsg{Type: TypeDone, Run: id, Actions: actionString(o.Actions), Report: o.Report}
	if o.Err != nil {
		done.Error = o.Err.Error()
	}
	send(done)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
