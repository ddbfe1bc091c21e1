package brand

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"github.com/louisbranch/typeshelf/internal/fonts"
	"github.com/louisbranch/typeshelf/internal/platform/timeouts"
	"github.com/louisbranch/typeshelf/internal/services/web/fontstore"
	webi18n "github.com/louisbranch/typeshelf/internal/services/web/platform/i18n"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/lifecycle"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/requestmeta"
	webtemplates "github.com/louisbranch/typeshelf/internal/services/web/templates"
)

const subscribeEffect = "subscribe-fonts"

var errCrossOrigin = errors.New("live view requires a same-origin handshake")

// liveFrame is one server push to a live typography view.
type liveFrame struct {
	Count int          `json:"count"`
	Fonts []fonts.Font `json:"fonts"`
	HTML  string       `json:"html"`
}

func (h handlers) liveServer() http.Handler {
	return websocket.Server{
		Handshake: func(_ *websocket.Config, r *http.Request) error {
			if !requestmeta.HasSameOriginProof(r, h.policy) {
				return errCrossOrigin
			}
			return nil
		},
		Handler: h.serveLive,
	}
}

// serveLive is one live mount. It pushes the current list on connect and
// after every store change until the client goes away.
func (h handlers) serveLive(ws *websocket.Conn) {
	r := ws.Request()
	if h.store == nil || !h.Authorized(r) {
		_ = ws.Close()
		return
	}

	mount := lifecycle.NewMount()
	defer mount.Unmount()

	updates := make(chan struct{}, 1)
	if sub, ok := h.store.(fontstore.Subscriber); ok {
		mount.Effect(subscribeEffect, h.store, func() func() {
			return sub.Subscribe(func() {
				select {
				case updates <- struct{}{}:
				default:
				}
			})
		})
	}
	h.requestLoad(context.WithoutCancel(r.Context()), mount)

	closed := make(chan struct{})
	defer func() {
		_ = ws.Close()
		<-closed
	}()
	go func() {
		defer close(closed)
		var discard string
		for {
			if err := websocket.Message.Receive(ws, &discard); err != nil {
				return
			}
		}
	}()

	loc := webi18n.Printer(h.RequestLocaleTag(r))
	for {
		if err := h.push(ws, r, loc); err != nil {
			h.logger.Debug("live typography push stopped", zap.Error(err))
			return
		}
		select {
		case <-closed:
			return
		case <-updates:
		}
	}
}

func (h handlers) push(ws *websocket.Conn, r *http.Request, loc webtemplates.Localizer) error {
	v := h.currentView(r, loc)
	var buf bytes.Buffer
	if err := v.component.Render(r.Context(), &buf); err != nil {
		return err
	}
	if err := ws.SetWriteDeadline(time.Now().Add(timeouts.LiveWrite)); err != nil {
		return err
	}
	return websocket.JSON.Send(ws, liveFrame{Count: len(v.list), Fonts: v.list, HTML: buf.String()})
}
