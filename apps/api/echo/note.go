package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mtembezi/maktaba/core"
	"github.com/mtembezi/maktaba/core/note"
)

var errNoteNotFoundInCtx = errors.New("note object not found in echo.Context")

type noteApi struct {
	svc      note.Service
	validate *validator.Validate
	logger   core.Logger
}

func registerNoteAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := noteApi{
		svc:      deps.NoteSvc,
		validate: deps.Validate,
		logger:   deps.Logger,
	}

	ng := g.Group("/notes", jwt)
	ng.GET("", api.query)
	ng.POST("", api.create, facultyMiddleware())

	// detail endpoints
	detail := ng.Group("/:id", noteObjectMiddleware(api.svc))
	detail.GET("", api.retrieve)
	detail.GET("/download", api.download)
	detail.PUT("", api.update, noteOwnerOrAdminMiddleware())
	detail.DELETE("", api.destroy, noteOwnerOrAdminMiddleware())
}

// Handlers

func (api *noteApi) create(ctx echo.Context) error {
	var data note.NewNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNote")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	up := note.Upload{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Content:     f,
	}
	n, err := api.svc.Create(ctx.Request().Context(), data, up, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "creating note")
	}

	return ctx.JSON(http.StatusCreated, n)
}

func (api *noteApi) query(ctx echo.Context) error {
	filter := new(note.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []note.Note{})
	}
	filter.Clean()
	filter.CreatedFrom, filter.CreatedTo = bindCreatedRange(ctx)
	ordering := new(Ordering)
	ordering.Bind(ctx)

	notes, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying notes")
	}
	if notes == nil {
		notes = []note.Note{}
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *noteApi) retrieve(ctx echo.Context) error {
	n, ok := ctx.Get("object").(note.Note)
	if !ok {
		return errors.Wrap(errNoteNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *noteApi) download(ctx echo.Context) error {
	n, ok := ctx.Get("object").(note.Note)
	if !ok {
		return errors.Wrap(errNoteNotFoundInCtx, "retrieving object from context")
	}

	f, err := api.svc.Open(ctx.Request().Context(), n)
	if err != nil {
		if errors.Cause(err) == core.ErrFileNotFound {
			api.logger.Error(fmt.Sprintf("stored file missing for note %s", n.ID), err)
			return errHttpNotFound
		}
		return errors.Wrap(err, "opening note file")
	}
	defer f.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", n.FileName))
	return ctx.Stream(http.StatusOK, n.ContentType, f)
}

func (api *noteApi) update(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	n, ok := ctx.Get("object").(note.Note)
	if !ok {
		return errors.Wrap(errNoteNotFoundInCtx, "retrieving object from context")
	}

	var data note.UpdateNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNote")
	}
	if err := data.Validate(n, api.validate); err != nil {
		return err
	}

	n, err := api.svc.Update(reqCtx, n.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating note")
	}

	return ctx.JSON(http.StatusOK, n)
}

func (api *noteApi) destroy(ctx echo.Context) error {
	n, ok := ctx.Get("object").(note.Note)
	if !ok {
		return errors.Wrap(errNoteNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), n.ID); err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// noteObjectMiddleware loads the target Note into the context, or 404s.
func noteObjectMiddleware(svc note.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			n, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == note.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding note by ID")
			}
			ctx.Set("object", n)
			return next(ctx)
		}
	}
}

// noteOwnerOrAdminMiddleware lets the note's uploader and admin accounts through.
// It must run after noteObjectMiddleware.
func noteOwnerOrAdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			n, ok := ctx.Get("object").(note.Note)
			if !ok {
				return errors.Wrap(errNoteNotFoundInCtx, "retrieving object from context")
			}
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if n.UploaderID == claims.Subject || claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
