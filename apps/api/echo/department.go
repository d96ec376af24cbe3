package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mtembezi/maktaba/core/department"
)

type departmentApi struct {
	svc      department.Service
	validate *validator.Validate
}

func registerDepartmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := departmentApi{
		svc:      deps.DeptSvc,
		validate: deps.Validate,
	}

	dg := g.Group("/departments", jwt)
	dg.GET("", api.query)
	dg.POST("", api.create, adminMiddleware())
	dg.DELETE("", api.destroyMultiple, adminMiddleware())

	// detail endpoints
	detail := dg.Group("/:id")
	detail.GET("", api.retrieve)
	detail.PUT("", api.update, adminMiddleware())
	detail.DELETE("", api.destroy, adminMiddleware())
}

// Handlers

func (api *departmentApi) create(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data department.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	if err := data.Validate(reqCtx, api.validate, api.svc); err != nil {
		return err
	}

	dept, err := api.svc.Create(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "creating department")
	}

	return ctx.JSON(http.StatusCreated, dept)
}

func (api *departmentApi) query(ctx echo.Context) error {
	filter := new(department.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []department.Department{})
	}
	filter.Clean()
	filter.CreatedFrom, filter.CreatedTo = bindCreatedRange(ctx)
	ordering := new(Ordering)
	ordering.Bind(ctx)

	depts, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	if depts == nil {
		depts = []department.Department{}
	}
	return ctx.JSON(http.StatusOK, depts)
}

func (api *departmentApi) retrieve(ctx echo.Context) error {
	dept, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == department.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding department by ID")
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *departmentApi) update(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	dept, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == department.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding department by ID")
	}

	var data department.UpdateDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDepartment")
	}
	if err := data.Validate(reqCtx, dept, api.validate, api.svc); err != nil {
		return err
	}

	dept, err = api.svc.Update(reqCtx, dept.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating department")
	}

	return ctx.JSON(http.StatusOK, dept)
}

func (api *departmentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == department.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting department")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *departmentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		if errors.Cause(err) == department.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting departments")
	}
	return ctx.NoContent(http.StatusNoContent)
}
