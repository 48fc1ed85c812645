package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/shirtform/pkg/form"
	"github.com/vango-dev/shirtform/pkg/protocol"
	"github.com/vango-dev/shirtform/pkg/session"
)

// outboxSize is the number of server messages buffered per session.
const outboxSize = 64

// closeGrace bounds the controller teardown when a session closes.
const closeGrace = time.Second

// liveSession is one socket with its own loop and controller.
type liveSession struct {
	id     string
	server *Server
	conn   *websocket.Conn
	loop   *session.Loop
	ctl    *form.Controller
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	out       chan protocol.Message
	done      chan struct{}
	closeOnce sync.Once
}

// handleWebSocket upgrades the request and runs a live session until the
// client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		s.metrics.RecordWebSocketError("upgrade")
		return
	}

	ls := s.newLiveSession(conn)
	if err := s.register(ls); err != nil {
		s.logger.Warn("session rejected", "error", err)
		ls.cancel()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}
	ls.run()
}

func (s *Server) newLiveSession(conn *websocket.Conn) *liveSession {
	id := generateSessionID()
	logger := s.logger.With("session_id", id)
	ctx, cancel := context.WithCancel(context.Background())

	ls := &liveSession{
		id:     id,
		server: s,
		conn:   conn,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		out:    make(chan protocol.Message, outboxSize),
		done:   make(chan struct{}),
	}
	ls.loop = session.NewLoop(logger, session.WithPanicHandler(func(pe *session.PanicError) {
		ls.send(protocol.Error(protocol.CodeServerError, "Internal error"))
	}))

	opts := []form.Option{
		form.WithCatalog(s.catalog),
		form.WithLogger(logger),
		form.WithMode(s.config.Mode),
		form.WithDispatcher(ls.loop),
		form.WithContext(ctx),
	}
	if s.metrics != nil {
		opts = append(opts, form.WithObserver(s.metrics))
	}
	ls.ctl = form.NewController(s.schema, opts...)
	return ls
}

// run mounts the controller, then reads until the connection ends.
func (ls *liveSession) run() {
	defer ls.server.unregister(ls)
	defer ls.Close()

	go ls.loop.Run(ls.ctx)
	go ls.writeLoop()

	err := ls.loop.Do(ls.ctx, func() error {
		if err := ls.ctl.Mount(); err != nil {
			return err
		}
		_, err := ls.ctl.Subscribe(func(st form.State) {
			ls.send(protocol.State(st))
		})
		return err
	})
	if err != nil {
		ls.logger.Error("mount failed", "error", err)
		return
	}

	ls.server.metrics.SessionOpened()
	defer ls.server.metrics.SessionClosed()
	ls.logger.Info("session opened", "mode", ls.server.config.Mode.String())

	ls.readLoop()
}

// readLoop decodes client events and queues them on the loop.
func (ls *liveSession) readLoop() {
	cfg := ls.server.config
	ls.conn.SetReadLimit(cfg.MaxMessageBytes)
	ls.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	ls.conn.SetPongHandler(func(string) error {
		return ls.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	for {
		mt, data, err := ls.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) {
				ls.logger.Warn("read error", "error", err)
				ls.server.metrics.RecordWebSocketError("read")
			}
			return
		}
		ls.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))

		if mt != websocket.TextMessage {
			ls.send(protocol.Error(protocol.CodeInvalidEvent, "expected a text message"))
			continue
		}

		ev, err := protocol.DecodeEvent(data)
		if err != nil {
			ls.logger.Warn("invalid event", "error", err)
			ls.server.metrics.RecordEvent("invalid", 0, err)
			ls.send(protocol.Error(protocol.CodeInvalidEvent, err.Error()))
			continue
		}

		switch err := ls.loop.TryDispatch(func() { ls.handleEvent(ev) }); {
		case errors.Is(err, session.ErrQueueFull):
			ls.send(protocol.Error(protocol.CodeRateLimited, "too many events"))
		case errors.Is(err, session.ErrClosed):
			return
		}
	}
}

// handleEvent runs on the loop.
func (ls *liveSession) handleEvent(ev protocol.Event) {
	start := time.Now()
	_, end := ls.server.tracing.StartEvent(ls.ctx, ls.id, ev)

	err := ls.apply(ev)

	end(err)
	ls.server.metrics.RecordEvent(ev.Type, time.Since(start), err)
	if err != nil {
		ls.logger.Debug("event rejected", "type", ev.Type, "name", ev.Name, "error", err)
		ls.send(protocol.Error(errorCode(err), err.Error()))
	}
}

func (ls *liveSession) apply(ev protocol.Event) error {
	switch ev.Type {
	case protocol.EventInput:
		field, ok := form.ParseField(ev.Name)
		if !ok {
			return fmt.Errorf("%w: %q", form.ErrUnknownField, ev.Name)
		}
		return ls.ctl.SetText(field, ev.Value)

	case protocol.EventToggle:
		return ls.ctl.ToggleAnimal(ev.Name, ev.Checked)

	case protocol.EventSubmit:
		values, err := ls.ctl.Submit()
		ls.server.metrics.RecordSubmission(err == nil)
		if err != nil {
			return err
		}
		ls.logger.Info("form submitted", "shirt_size", values.ShirtSize, "animals", len(values.Animals))
		ls.send(protocol.Submitted(values))
		return nil

	case protocol.EventReset:
		return ls.ctl.Reset()

	default:
		return fmt.Errorf("%w: unknown type %q", protocol.ErrInvalidEvent, ev.Type)
	}
}

func errorCode(err error) protocol.ErrorCode {
	switch {
	case errors.Is(err, form.ErrUnknownField):
		return protocol.CodeUnknownField
	case errors.Is(err, form.ErrUnknownAnimal):
		return protocol.CodeUnknownAnimal
	case errors.Is(err, form.ErrNotSubmittable):
		return protocol.CodeNotSubmittable
	case errors.Is(err, protocol.ErrInvalidEvent):
		return protocol.CodeInvalidEvent
	default:
		return protocol.CodeServerError
	}
}

// send queues msg for the writer without blocking. A client that cannot keep
// up is disconnected.
func (ls *liveSession) send(msg protocol.Message) {
	select {
	case <-ls.done:
		return
	default:
	}
	select {
	case ls.out <- msg:
	default:
		ls.logger.Warn("outbound queue full, closing session", "error", ErrOutboxFull)
		ls.server.metrics.RecordWebSocketError("outbox_full")
		go ls.Close()
	}
}

// writeLoop is the only writer of data frames. It also sends heartbeats.
func (ls *liveSession) writeLoop() {
	cfg := ls.server.config
	ping := time.NewTicker(cfg.ReadTimeout / 2)
	defer ping.Stop()

	for {
		select {
		case msg := <-ls.out:
			data, err := msg.Encode()
			if err != nil {
				ls.logger.Error("encode failed", "error", err)
				continue
			}
			ls.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := ls.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				ls.logger.Warn("write error", "error", err)
				ls.server.metrics.RecordWebSocketError("write")
				go ls.Close()
				return
			}

		case <-ping.C:
			if err := ls.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(cfg.WriteTimeout)); err != nil {
				go ls.Close()
				return
			}

		case <-ls.done:
			return
		}
	}
}

// Close disposes the controller, stops the loop and closes the socket. It
// must not be called from the loop goroutine.
func (ls *liveSession) Close() {
	ls.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeGrace)
		if err := ls.loop.Do(ctx, func() error { ls.ctl.Dispose(); return nil }); err != nil && !errors.Is(err, session.ErrClosed) {
			ls.logger.Warn("dispose did not complete", "error", err)
		}
		cancel()

		ls.loop.Close()
		ls.cancel()
		close(ls.done)

		ls.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		ls.conn.Close()

		ls.logger.Info("session closed")
	})
}

// Done is closed once the session has closed.
func (ls *liveSession) Done() <-chan struct{} {
	return ls.done
}
