package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edulink/backend/core/student"
)

type studentApi struct {
	svc student.Service
}

func registerStudentAPI(g *echo.Group, auth echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{svc: deps.StudentSvc}

	sg := g.Group("/students", auth)
	sg.GET("", api.query)
	sg.POST("/:id/sign", api.sign)

	dg := g.Group("/dashboard", auth)
	dg.GET("", api.dashboard)
	dg.GET("/stream", api.dashboardStream)

	g.GET("/wellbeing", api.wellbeing, auth)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) dashboard(ctx echo.Context) error {
	summary, err := api.svc.Summary(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

// dashboardStream re-emits the dashboard counts on every roster change as
// server-sent events. The subscription stops when the client disconnects.
func (api *studentApi) dashboardStream(ctx echo.Context) error {
	feed, err := api.svc.Watch(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "subscribing to roster")
	}
	defer feed.Stop()

	return streamSSE(ctx, func(w http.ResponseWriter, flush func()) error {
		for {
			select {
			case students, ok := <-feed.C:
				if !ok {
					return nil
				}
				if err := writeSSEEvent(w, student.Summarize(students)); err != nil {
					return err
				}
				flush()
			case <-ctx.Request().Context().Done():
				return nil
			}
		}
	})
}

func (api *studentApi) wellbeing(ctx echo.Context) error {
	alerts, err := api.svc.Alerts(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying alerts")
	}
	if alerts == nil {
		alerts = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, alerts)
}

func (api *studentApi) sign(ctx echo.Context) error {
	usr, err := requireContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Sign(ctx.Request().Context(), ctx.Param("id"), &usr); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "signing report")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Report signed."})
}

type SuccessResponse struct {
	Success string `json:"success"`
}

// SSE plumbing shared by the stream endpoints.

func streamSSE(ctx echo.Context, run func(w http.ResponseWriter, flush func()) error) error {
	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	flusher, ok := res.Writer.(http.Flusher)
	if !ok {
		return errors.New("streaming unsupported by response writer")
	}
	flusher.Flush()

	return run(res.Writer, flusher.Flush)
}

func writeSSEEvent(w http.ResponseWriter, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encoding event")
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return errors.Wrap(err, "writing event")
	}
	return nil
}
