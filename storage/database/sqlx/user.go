package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mtembezi/maktaba/core"
	"github.com/mtembezi/maktaba/core/user"
)

const userTable = `"user"`

var (
	userColumns = []string{
		"id", "name", "email", "role", "department_id", "is_active",
		"password_hash", "created_at", "updated_at", "last_login",
	}

	userOrderings = map[string]string{
		"name":       "name",
		"email":      "email",
		"role":       "role",
		"created_at": "created_at",
		"last_login": "last_login",
	}
)

type userRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	DepartmentID null.String `db:"department_id"`
	IsActive     null.Bool   `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) pack(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Email:        usr.Email,
		Role:         usr.Role,
		DepartmentID: null.StringFromPtr(usr.DepartmentID),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unpack(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Role:         row.Role,
		DepartmentID: row.DepartmentID.Ptr(),
		IsActive:     row.IsActive.Ptr(),
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLogin:    row.LastLogin.Time,
	}
}

func (repo userRepository) unpackSlice(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.unpack(row))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// trapConstraintErr maps violated constraints to domain errors.
func (repo userRepository) trapConstraintErr(err error, msg string) error {
	if pqErr, ok := pqErrWithCode(err, pqUniqueViolation); ok && pqErr.Constraint == userEmailKey {
		return user.ErrEmailExists
	}
	if pqErr, ok := pqErrWithCode(err, pqFKViolation); ok && pqErr.Constraint == userDeptFKey {
		return user.ErrDepartmentNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	b := psql.Select("COUNT(*)").From(userTable).Where(sq.Eq{"email": email})
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		b = b.Where(sq.NotEq{"id": ids})
	}
	q, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	var cnt int
	if err = repo.db.GetContext(ctx, &cnt, q, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if cnt > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := repo.pack(usr)

	q, args, err := psql.Insert(userTable).
		Columns(userColumns...).
		Values(row.ID, row.Name, row.Email, row.Role, row.DepartmentID, row.IsActive,
			row.PasswordHash, row.CreatedAt, row.UpdatedAt, row.LastLogin).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}

	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return user.User{}, repo.trapConstraintErr(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	b := psql.Select(userColumns...).From(userTable)

	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			b = b.Where(sq.Or{sq.ILike{"name": val}, sq.ILike{"email": val}})
		}
		if filter.Role != "" {
			b = b.Where(sq.Eq{"role": filter.Role})
		}
		if filter.DepartmentID != "" {
			// a malformed id can never match
			if _, err := uuid.Parse(filter.DepartmentID); err != nil {
				return []user.User{}, nil
			}
			b = b.Where(sq.Eq{"department_id": filter.DepartmentID})
		}
		if filter.IsActive != nil {
			b = b.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		if !filter.CreatedFrom.IsZero() {
			b = b.Where(sq.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
		}
		if !filter.CreatedTo.IsZero() {
			b = b.Where(sq.LtOrEq{"created_at": filter.CreatedTo.UTC()})
		}
	}

	b = applyOrdering(b, ordering, userOrderings)
	q, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []userRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unpackSlice(rows), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	b := psql.Select(userColumns...).From(userTable)

	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		b = b.Where(sq.Eq{"id": filter.ID})
	} else if filter.Email != "" {
		b = b.Where(sq.Eq{"email": filter.Email})
	} else {
		return user.User{}, user.ErrNotFound
	}

	q, args, err := b.ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}

	var row userRow
	if err = repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.unpack(row), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := repo.pack(usr)

	q, args, err := psql.Update(userTable).
		Set("name", row.Name).
		Set("email", row.Email).
		Set("role", row.Role).
		Set("department_id", row.DepartmentID).
		Set("is_active", row.IsActive).
		Set("password_hash", row.PasswordHash).
		Set("updated_at", row.UpdatedAt).
		Set("last_login", row.LastLogin).
		Where(sq.Eq{"id": usr.ID}).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return user.User{}, repo.trapConstraintErr(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	return repo.UpdateUser(ctx, usr)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string) (int, error) {
	q, args, err := psql.Delete(userTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		if pqErr, ok := pqErrWithCode(err, pqFKViolation); ok && pqErr.Constraint == noteUploaderFKey {
			return 0, user.ErrInUse
		}
		return 0, errors.Wrap(err, "deleting users")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(n), nil
}

func (repo userRepository) CountUsers(ctx context.Context) (int, error) {
	q, _, err := psql.Select("COUNT(*)").From(userTable).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}

	var cnt int
	if err = repo.db.GetContext(ctx, &cnt, q); err != nil {
		return 0, errors.Wrap(err, "counting users")
	}
	return cnt, nil
}
