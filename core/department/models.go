package department

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mtembezi/maktaba/core"
)

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewDepartment contains information needed to create a new Department.
type NewDepartment struct {
	Name string `json:"name" validate:"required,alphanum_"`
}

func (nd *NewDepartment) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nd.Name = core.CleanString(nd.Name)

	if err := validate.Struct(nd); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(ctx, nd.Name)
}

// UpdateDepartment defines what information may be provided to modify an
// existing Department. An empty Name is left unchanged.
type UpdateDepartment struct {
	Name string `json:"name" validate:"required,alphanum_"`
}

func (ud *UpdateDepartment) Validate(ctx context.Context, origDept Department, validate *validator.Validate, svc Service) error {
	name := core.CleanString(ud.Name)
	if name != "" {
		ud.Name = name
	} else {
		ud.Name = origDept.Name
	}

	if err := validate.Struct(ud); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(ctx, ud.Name, origDept)
}

type QueryFilter struct {
	Search string `query:"search"`

	// time bounds are parsed by the transport layer. echo's binder cannot set time.Time.
	CreatedFrom time.Time `query:"-"`
	CreatedTo   time.Time `query:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// GetFilter selects a single Department by one of its unique attributes.
// ID takes precedence when both are set.
type GetFilter struct {
	ID   string
	Name string
}
