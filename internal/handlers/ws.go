package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pathbuilder/core/internal/canvas"
	"github.com/pathbuilder/core/internal/parser"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stream pushes every repainted frame of a session to a websocket client.
// Messages from the client are input events and are dispatched to the store.
func (a *API) stream(w http.ResponseWriter, r *http.Request) {
	s, err := a.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := a.logger.With(zap.String("session", s.ID))
	frames, unsubscribe := s.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn("websocket read", zap.Error(err))
				}
				return
			}

			var ev canvas.Event
			if err := json.Unmarshal(msg, &ev); err != nil {
				logger.Debug("ignoring malformed event", zap.Error(err))
				continue
			}
			if err := parser.ValidateStruct(&ev); err != nil {
				logger.Debug("ignoring invalid event", zap.Error(err))
				continue
			}
			err = s.Do(func(st *canvas.Store) error {
				_, err := st.Dispatch(ev)
				return err
			})
			if err != nil {
				logger.Warn("event failed", zap.String("type", ev.Type), zap.Error(err))
			}
		}
	}()

	for {
		select {
		case f, ok := <-frames:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(f); err != nil {
				logger.Debug("websocket write", zap.Error(err))
				return
			}
		case <-closed:
			return
		}
	}
}
