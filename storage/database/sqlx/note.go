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
	"github.com/mtembezi/maktaba/core/note"
)

const noteTable = "note"

var (
	noteColumns = []string{
		"id", "title", "file_path", "file_name", "file_size", "content_type",
		"uploader_id", "department_id", "created_at", "updated_at",
	}

	noteOrderings = map[string]string{
		"title":      "title",
		"created_at": "created_at",
	}
)

type noteRow struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	FilePath     string    `db:"file_path"`
	FileName     string    `db:"file_name"`
	FileSize     int64     `db:"file_size"`
	ContentType  string    `db:"content_type"`
	UploaderID   string    `db:"uploader_id"`
	DepartmentID string    `db:"department_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type noteRepository struct {
	db *sqlx.DB
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(db *sqlx.DB) *noteRepository {
	return &noteRepository{db: db}
}

func (repo noteRepository) pack(n note.Note) noteRow {
	return noteRow{
		ID:           n.ID,
		Title:        n.Title,
		FilePath:     n.FilePath,
		FileName:     n.FileName,
		FileSize:     n.FileSize,
		ContentType:  n.ContentType,
		UploaderID:   n.UploaderID,
		DepartmentID: n.DepartmentID,
		CreatedAt:    n.CreatedAt.UTC(),
		UpdatedAt:    n.UpdatedAt.UTC(),
	}
}

func (repo noteRepository) unpack(row noteRow) note.Note {
	return note.Note{
		ID:           row.ID,
		Title:        row.Title,
		FilePath:     row.FilePath,
		FileName:     row.FileName,
		FileSize:     row.FileSize,
		ContentType:  row.ContentType,
		UploaderID:   row.UploaderID,
		DepartmentID: row.DepartmentID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to note.ErrNotFound
func (repo noteRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return note.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// trapConstraintErr maps violated constraints to domain errors.
func (repo noteRepository) trapConstraintErr(err error, msg string) error {
	if pqErr, ok := pqErrWithCode(err, pqFKViolation); ok {
		switch pqErr.Constraint {
		case noteDeptFKey:
			return note.ErrDepartmentNotFound
		case noteUploaderFKey:
			return note.ErrUploaderNotFound
		}
	}
	return errors.Wrap(err, msg)
}

func (repo noteRepository) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	n.ID = uuid.New().String()
	row := repo.pack(n)

	q, args, err := psql.Insert(noteTable).
		Columns(noteColumns...).
		Values(row.ID, row.Title, row.FilePath, row.FileName, row.FileSize, row.ContentType,
			row.UploaderID, row.DepartmentID, row.CreatedAt, row.UpdatedAt).
		ToSql()
	if err != nil {
		return note.Note{}, errors.Wrap(err, "building query")
	}

	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return note.Note{}, repo.trapConstraintErr(err, "inserting note")
	}
	return n, nil
}

func (repo noteRepository) QueryNotes(ctx context.Context, filter *note.QueryFilter, ordering []core.DBOrdering) ([]note.Note, error) {
	b := psql.Select(noteColumns...).From(noteTable)

	if filter != nil {
		if filter.Search != "" {
			b = b.Where(sq.ILike{"title": "%" + filter.Search + "%"})
		}
		if filter.DepartmentID != "" {
			// a malformed id can never match
			if _, err := uuid.Parse(filter.DepartmentID); err != nil {
				return []note.Note{}, nil
			}
			b = b.Where(sq.Eq{"department_id": filter.DepartmentID})
		}
		if filter.UploaderID != "" {
			if _, err := uuid.Parse(filter.UploaderID); err != nil {
				return []note.Note{}, nil
			}
			b = b.Where(sq.Eq{"uploader_id": filter.UploaderID})
		}
		if !filter.CreatedFrom.IsZero() {
			b = b.Where(sq.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
		}
		if !filter.CreatedTo.IsZero() {
			b = b.Where(sq.LtOrEq{"created_at": filter.CreatedTo.UTC()})
		}
		if len(filter.IDs) > 0 {
			b = b.Where(sq.Eq{"id": filter.IDs})
		}
	}

	b = applyOrdering(b, ordering, noteOrderings)
	q, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []noteRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying notes")
	}

	notes := make([]note.Note, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, repo.unpack(row))
	}
	return notes, nil
}

func (repo noteRepository) GetNote(ctx context.Context, filter note.GetFilter) (note.Note, error) {
	if filter.ID == "" {
		return note.Note{}, note.ErrNotFound
	}
	if _, err := uuid.Parse(filter.ID); err != nil {
		return note.Note{}, note.ErrNotFound
	}

	q, args, err := psql.Select(noteColumns...).From(noteTable).Where(sq.Eq{"id": filter.ID}).ToSql()
	if err != nil {
		return note.Note{}, errors.Wrap(err, "building query")
	}

	var row noteRow
	if err = repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return note.Note{}, repo.trapNoRowsErr(err, "finding note")
	}
	return repo.unpack(row), nil
}

func (repo noteRepository) UpdateNote(ctx context.Context, n note.Note) (note.Note, error) {
	row := repo.pack(n)

	q, args, err := psql.Update(noteTable).
		Set("title", row.Title).
		Set("department_id", row.DepartmentID).
		Set("updated_at", row.UpdatedAt).
		Where(sq.Eq{"id": n.ID}).
		ToSql()
	if err != nil {
		return note.Note{}, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return note.Note{}, repo.trapConstraintErr(err, "updating note")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return note.Note{}, note.ErrNotFound
	}
	return n, nil
}

func (repo noteRepository) DeleteNotesByID(ctx context.Context, ids []string) (int, error) {
	q, args, err := psql.Delete(noteTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting notes")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting notes")
	}
	return int(cnt), nil
}

func (repo noteRepository) CountNotes(ctx context.Context) (int, error) {
	q, _, err := psql.Select("COUNT(*)").From(noteTable).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}

	var cnt int
	if err = repo.db.GetContext(ctx, &cnt, q); err != nil {
		return 0, errors.Wrap(err, "counting notes")
	}
	return cnt, nil
}
