package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mtembezi/maktaba/core"
	"github.com/mtembezi/maktaba/core/department"
)

const deptTable = "department"

var (
	deptColumns = []string{"id", "name", "created_at", "updated_at"}

	deptOrderings = map[string]string{
		"name":       "name",
		"created_at": "created_at",
	}
)

type deptRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type deptRepository struct {
	db *sqlx.DB
}

var _ department.Repository = (*deptRepository)(nil) // interface compliance check

func NewDepartmentRepository(db *sqlx.DB) *deptRepository {
	return &deptRepository{db: db}
}

func (repo deptRepository) pack(dept department.Department) deptRow {
	return deptRow{
		ID:        dept.ID,
		Name:      dept.Name,
		CreatedAt: dept.CreatedAt.UTC(),
		UpdatedAt: dept.UpdatedAt.UTC(),
	}
}

func (repo deptRepository) unpack(row deptRow) department.Department {
	return department.Department{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to department.ErrNotFound
func (repo deptRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return department.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// trapConstraintErr maps violated constraints to domain errors.
func (repo deptRepository) trapConstraintErr(err error, msg string) error {
	if pqErr, ok := pqErrWithCode(err, pqUniqueViolation); ok && pqErr.Constraint == deptNameKey {
		return department.ErrNameExists
	}
	return errors.Wrap(err, msg)
}

func (repo deptRepository) CheckNameUniqueness(ctx context.Context, name string, excludedDepts ...department.Department) error {
	b := psql.Select("COUNT(*)").From(deptTable).Where(sq.Expr("LOWER(name) = LOWER(?)", name))
	if len(excludedDepts) > 0 {
		ids := make([]string, 0, len(excludedDepts))
		for _, dept := range excludedDepts {
			ids = append(ids, dept.ID)
		}
		b = b.Where(sq.NotEq{"id": ids})
	}
	q, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	var cnt int
	if err = repo.db.GetContext(ctx, &cnt, q, args...); err != nil {
		return errors.Wrap(err, "checking department uniqueness")
	}
	if cnt > 0 {
		return department.ErrNameExists
	}
	return nil
}

func (repo deptRepository) CreateDepartment(ctx context.Context, dept department.Department) (department.Department, error) {
	dept.ID = uuid.New().String()
	row := repo.pack(dept)

	q, args, err := psql.Insert(deptTable).
		Columns(deptColumns...).
		Values(row.ID, row.Name, row.CreatedAt, row.UpdatedAt).
		ToSql()
	if err != nil {
		return department.Department{}, errors.Wrap(err, "building query")
	}

	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return department.Department{}, repo.trapConstraintErr(err, "inserting department")
	}
	return dept, nil
}

func (repo deptRepository) QueryDepartments(ctx context.Context, filter *department.QueryFilter, ordering []core.DBOrdering) ([]department.Department, error) {
	b := psql.Select(deptColumns...).From(deptTable)

	if filter != nil {
		if filter.Search != "" {
			b = b.Where(sq.ILike{"name": "%" + filter.Search + "%"})
		}
		if !filter.CreatedFrom.IsZero() {
			b = b.Where(sq.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
		}
		if !filter.CreatedTo.IsZero() {
			b = b.Where(sq.LtOrEq{"created_at": filter.CreatedTo.UTC()})
		}
	}

	b = applyOrdering(b, ordering, deptOrderings)
	q, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []deptRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying departments")
	}

	depts := make([]department.Department, 0, len(rows))
	for _, row := range rows {
		depts = append(depts, repo.unpack(row))
	}
	return depts, nil
}

func (repo deptRepository) GetDepartment(ctx context.Context, filter department.GetFilter) (department.Department, error) {
	b := psql.Select(deptColumns...).From(deptTable)

	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return department.Department{}, department.ErrNotFound
		}
		b = b.Where(sq.Eq{"id": filter.ID})
	} else if filter.Name != "" {
		b = b.Where(sq.Expr("LOWER(name) = LOWER(?)", filter.Name))
	} else {
		return department.Department{}, department.ErrNotFound
	}

	q, args, err := b.ToSql()
	if err != nil {
		return department.Department{}, errors.Wrap(err, "building query")
	}

	var row deptRow
	if err = repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return department.Department{}, repo.trapNoRowsErr(err, "finding department")
	}
	return repo.unpack(row), nil
}

func (repo deptRepository) UpdateDepartment(ctx context.Context, dept department.Department) (department.Department, error) {
	row := repo.pack(dept)

	q, args, err := psql.Update(deptTable).
		Set("name", row.Name).
		Set("updated_at", row.UpdatedAt).
		Where(sq.Eq{"id": dept.ID}).
		ToSql()
	if err != nil {
		return department.Department{}, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return department.Department{}, repo.trapConstraintErr(err, "updating department")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return department.Department{}, department.ErrNotFound
	}
	return dept, nil
}

func (repo deptRepository) DeleteDepartmentsByID(ctx context.Context, ids []string) (int, error) {
	q, args, err := psql.Delete(deptTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		// users or notes still reference the department
		if _, ok := pqErrWithCode(err, pqFKViolation); ok {
			return 0, department.ErrInUse
		}
		return 0, errors.Wrap(err, "deleting departments")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting departments")
	}
	return int(n), nil
}

func (repo deptRepository) CountDepartments(ctx context.Context) (int, error) {
	q, _, err := psql.Select("COUNT(*)").From(deptTable).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}

	var cnt int
	if err = repo.db.GetContext(ctx, &cnt, q); err != nil {
		return 0, errors.Wrap(err, "counting departments")
	}
	return cnt, nil
}
