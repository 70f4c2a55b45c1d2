package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edulink/backend/core/announcement"
)

type announcementApi struct {
	svc announcement.Service
}

func registerAnnouncementAPI(g *echo.Group, auth echo.MiddlewareFunc, deps ServerDeps) {
	api := announcementApi{svc: deps.AnnouncementSvc}

	ag := g.Group("/announcements", auth)
	ag.GET("", api.query)
	ag.GET("/stream", api.stream)
}

func (api *announcementApi) query(ctx echo.Context) error {
	anns, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	if anns == nil {
		anns = []announcement.Announcement{}
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *announcementApi) stream(ctx echo.Context) error {
	feed, err := api.svc.Watch(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "subscribing to announcements")
	}
	defer feed.Stop()

	return streamSSE(ctx, func(w http.ResponseWriter, flush func()) error {
		for {
			select {
			case anns, ok := <-feed.C:
				if !ok {
					return nil
				}
				if err := writeSSEEvent(w, anns); err != nil {
					return err
				}
				flush()
			case <-ctx.Request().Context().Done():
				return nil
			}
		}
	})
}
