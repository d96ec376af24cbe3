package department

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mtembezi/maktaba/core"
)

var (
	// errors
	ErrNotFound   = errors.New("department not found")
	ErrNameExists = errors.New("a department with this name already exists")
	ErrInUse      = errors.New("department still has users or notes attached to it")
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string, excludedDepts ...Department) error
		CreateDepartment(ctx context.Context, dept Department) (Department, error)
		// QueryDepartments applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Department.Name.
		QueryDepartments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Department, error)
		GetDepartment(ctx context.Context, filter GetFilter) (Department, error)
		UpdateDepartment(ctx context.Context, dept Department) (Department, error)
		DeleteDepartmentsByID(ctx context.Context, ids []string) (int, error)
		CountDepartments(ctx context.Context) (int, error)
	}

	Service interface {
		CheckNameUniqueness(ctx context.Context, name string, excludedDepts ...Department) error
		Create(ctx context.Context, nd NewDepartment) (Department, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Department, error)
		GetByID(ctx context.Context, id string) (Department, error)
		GetByName(ctx context.Context, name string) (Department, error)
		Update(ctx context.Context, id string, ud UpdateDepartment) (Department, error)
		Delete(ctx context.Context, ids ...string) error
		Count(ctx context.Context) (int, error)
	}

	service struct {
		repo   Repository
		broker core.Broker
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, broker core.Broker) Service {
	return &service{
		repo:   repo,
		broker: broker,
	}
}

func (svc *service) CheckNameUniqueness(ctx context.Context, name string, excludedDepts ...Department) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name, excludedDepts...); err != nil {
		if errors.Cause(err) == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nd NewDepartment) (Department, error) {
	now := time.Now().UTC()
	dept, err := svc.repo.CreateDepartment(ctx, Department{
		Name:      nd.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Department{}, err
	}

	svc.publish(core.EventActionCreated, dept.ID)
	return dept, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Department, error) {
	return svc.repo.QueryDepartments(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Department, error) {
	return svc.repo.GetDepartment(ctx, GetFilter{ID: id})
}

func (svc *service) GetByName(ctx context.Context, name string) (Department, error) {
	return svc.repo.GetDepartment(ctx, GetFilter{Name: core.CleanString(name)})
}

func (svc *service) Update(ctx context.Context, id string, ud UpdateDepartment) (Department, error) {
	dept, err := svc.repo.GetDepartment(ctx, GetFilter{ID: id})
	if err != nil {
		return Department{}, err
	}

	dept.Name = ud.Name
	dept.UpdatedAt = time.Now().UTC()

	dept, err = svc.repo.UpdateDepartment(ctx, dept)
	if err != nil {
		return Department{}, err
	}

	svc.publish(core.EventActionUpdated, dept.ID)
	return dept, nil
}

// Delete removes departments by ID. Departments still referenced by users or
// notes are not removed; the broken reference surfaces as a validation error.
func (svc *service) Delete(ctx context.Context, ids ...string) error {
	n, err := svc.repo.DeleteDepartmentsByID(ctx, ids)
	if err != nil {
		if errors.Cause(err) == ErrInUse {
			return core.NewValidationError(err)
		}
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	svc.publish(core.EventActionDeleted, ids...)
	return nil
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountDepartments(ctx)
}

func (svc *service) publish(action string, ids ...string) {
	if svc.broker == nil {
		return
	}
	events := make([]core.Event, 0, len(ids))
	for _, id := range ids {
		events = append(events, core.NewEvent(core.EventTableDepartment, action, id))
	}
	svc.broker.Publish(events...)
}
