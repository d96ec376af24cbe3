package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mtembezi/maktaba/core/department"
	"github.com/mtembezi/maktaba/core/note"
	"github.com/mtembezi/maktaba/core/user"
)

type statsApi struct {
	userSvc user.Service
	deptSvc department.Service
	noteSvc note.Service
}

// StatsResponse reports row counts for the admin dashboard.
type StatsResponse struct {
	Users       int `json:"users"`
	Departments int `json:"departments"`
	Notes       int `json:"notes"`
}

func registerStatsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := statsApi{
		userSvc: deps.UserSvc,
		deptSvc: deps.DeptSvc,
		noteSvc: deps.NoteSvc,
	}

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.GET("/stats", api.retrieve)
}

func (api *statsApi) retrieve(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	users, err := api.userSvc.Count(reqCtx)
	if err != nil {
		return errors.Wrap(err, "counting users")
	}
	depts, err := api.deptSvc.Count(reqCtx)
	if err != nil {
		return errors.Wrap(err, "counting departments")
	}
	notes, err := api.noteSvc.Count(reqCtx)
	if err != nil {
		return errors.Wrap(err, "counting notes")
	}

	return ctx.JSON(http.StatusOK, StatsResponse{
		Users:       users,
		Departments: depts,
		Notes:       notes,
	})
}
