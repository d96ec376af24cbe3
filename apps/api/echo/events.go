package echoapi

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/mtembezi/maktaba/core"
)

const (
	eventsWriteTimeout = 10 * time.Second
	eventsPingPeriod   = 54 * time.Second
)

var eventsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type eventsApi struct {
	broker core.Broker
	logger core.Logger
}

func registerEventsAPI(g *echo.Group, deps ServerDeps) {
	api := eventsApi{
		broker: deps.Broker,
		logger: deps.Logger,
	}

	// browsers cannot set headers on websocket dials; the JWT rides in the query string
	cfg := appJWTConfig
	cfg.TokenLookup = "query:token"

	g.GET("/events", api.subscribe, middleware.JWTWithConfig(cfg))
}

// subscribe upgrades the connection to a websocket and streams change events
// until the client goes away. Events carry identifiers only; clients refetch
// changed entities over the regular API.
func (api *eventsApi) subscribe(ctx echo.Context) error {
	conn, err := eventsUpgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return errors.Wrap(err, "upgrading connection")
	}
	defer conn.Close()

	subCtx, cancel := context.WithCancel(ctx.Request().Context())
	defer cancel()
	sub := api.broker.Subscribe(subCtx)

	// drain client frames; a read error means the client is gone
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(eventsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-sub:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				api.logger.Debug(fmt.Sprintf("dropping events subscriber: %v", err))
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}
