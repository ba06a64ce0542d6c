// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package web

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sirseerhq/sirseer-profile/internal/eventloop"
	"github.com/sirseerhq/sirseer-profile/internal/screen"
	"github.com/sirseerhq/sirseer-profile/internal/urlparams"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	closeTimeout   = 5 * time.Second
)

// Client message types.
const (
	msgInput    = "input"
	msgNext     = "next"
	msgPrevious = "previous"
	msgActivate = "activate"
	msgLeave    = "leave"
)

// Server frame types.
const (
	frameLocation = "location"
	frameView     = "view"
)

// clientMessage is one browser event.
type clientMessage struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Index int    `json:"index,omitempty"`
}

// serverFrame is pushed to the browser: either a new location to push onto
// its history or a rendered view.
type serverFrame struct {
	Type  string `json:"type"`
	State string `json:"state,omitempty"`
	Query string `json:"query,omitempty"`
	HTML  string `json:"html,omitempty"`
	URL   string `json:"url,omitempty"`
}

// screenActions is the part of *screen.Screen driven by browser events.
type screenActions interface {
	Type(text string)
	NextPage()
	PreviousPage()
	ActivateBar(i int)
	LeaveBar(i int)
}

// eventFor maps a client message onto the screen action it triggers.
func eventFor(a screenActions, msg clientMessage) (func(), error) {
	switch msg.Type {
	case msgInput:
		return func() { a.Type(msg.Text) }, nil
	case msgNext:
		return a.NextPage, nil
	case msgPrevious:
		return a.PreviousPage, nil
	case msgActivate:
		return func() { a.ActivateBar(msg.Index) }, nil
	case msgLeave:
		return func() { a.LeaveBar(msg.Index) }, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// session is one live screen bound to a websocket. The screen runs on the
// session's loop; frames are coalesced into an outbox drained by writePump.
type session struct {
	id     string
	conn   *websocket.Conn
	logger *slog.Logger

	mu        sync.Mutex
	locations []string
	view      *screen.View
	wake      chan struct{}
}

func (s *Server) serveScreen(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already replied.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sess := &session{
		id:   uuid.NewString(),
		conn: conn,
		wake: make(chan struct{}, 1),
	}
	sess.logger = s.logger.With("session", sess.id)
	defer s.opts.Metrics.SessionOpened()()

	loc, err := urlparams.NewLocation(initialLocation(c.Request.URL.RawQuery))
	if err != nil {
		sess.logger.Warn("invalid location", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	loop := eventloop.New()
	go loop.Run(ctx)

	var scr *screen.Screen
	err = loop.Call(ctx, func() {
		scr = screen.New(ctx, screen.Config{
			Client:      s.opts.Client,
			Store:       loc,
			Clock:       s.opts.Clock,
			Loop:        loop,
			SearchDelay: s.opts.SearchDelay,
			SettleDelay: s.opts.SettleDelay,
			PageSize:    s.opts.PageSize,
			Logger:      sess.logger,
		})
		loc.OnChange(sess.pushLocation)
		scr.Subscribe(sess.pushView)
		sess.pushView(scr.View())
	})
	if err != nil {
		loop.Close()
		loop.Wait()
		return
	}
	sess.logger.Info("session opened", "location", loc.String())

	written := make(chan struct{})
	go func() {
		defer close(written)
		sess.writePump(ctx)
	}()
	s.readPump(ctx, sess, loop, scr)

	closeCtx, stop := context.WithTimeout(context.Background(), closeTimeout)
	_ = loop.Call(closeCtx, scr.Close)
	stop()
	loop.Close()
	cancel()
	<-written
	loop.Wait()
	sess.logger.Info("session closed")
}

func initialLocation(rawQuery string) string {
	if rawQuery == "" {
		return "/"
	}
	return "/?" + rawQuery
}

// readPump dispatches browser events onto the loop until the connection
// fails or ctx is done.
func (s *Server) readPump(ctx context.Context, sess *session, loop *eventloop.Loop, scr *screen.Screen) {
	sess.conn.SetReadLimit(maxMessageSize)
	_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for ctx.Err() == nil {
		var msg clientMessage
		if err := sess.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
		fn, err := eventFor(scr, msg)
		if err != nil {
			sess.logger.Debug("ignoring message", "error", err)
			continue
		}
		s.opts.Metrics.ScreenEvent(msg.Type)
		if !loop.Post(fn) {
			return
		}
	}
}

// pushLocation is called on the loop after each URL change.
func (sess *session) pushLocation(loc string) {
	sess.mu.Lock()
	sess.locations = append(sess.locations, loc)
	sess.mu.Unlock()
	sess.signal()
}

// pushView is called on the loop after each screen change. Only the latest
// view is kept.
func (sess *session) pushView(v screen.View) {
	sess.mu.Lock()
	sess.view = &v
	sess.mu.Unlock()
	sess.signal()
}

func (sess *session) signal() {
	select {
	case sess.wake <- struct{}{}:
	default:
	}
}

func (sess *session) take() ([]string, *screen.View) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	locs, v := sess.locations, sess.view
	sess.locations, sess.view = nil, nil
	return locs, v
}

// writePump drains the outbox to the connection. Locations are sent before
// the view they produced.
func (sess *session) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer sess.conn.Close()

	for {
		select {
		case <-ctx.Done():
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = sess.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		case <-sess.wake:
		}

		locs, v := sess.take()
		for _, loc := range locs {
			if err := sess.write(serverFrame{Type: frameLocation, URL: loc}); err != nil {
				return
			}
		}
		if v == nil {
			continue
		}
		frame, err := viewFrame(*v)
		if err != nil {
			sess.logger.Error("render failed", "error", err)
			continue
		}
		if err := sess.write(frame); err != nil {
			return
		}
	}
}

func (sess *session) write(frame serverFrame) error {
	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sess.conn.WriteJSON(frame); err != nil {
		sess.logger.Debug("websocket write failed", "error", err)
		return err
	}
	return nil
}

func viewFrame(v screen.View) (serverFrame, error) {
	var buf bytes.Buffer
	if err := renderView(&buf, v); err != nil {
		return serverFrame{}, err
	}
	return serverFrame{
		Type:  frameView,
		State: v.State.String(),
		Query: v.Query,
		HTML:  buf.String(),
	}, nil
}
