package note

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mtembezi/maktaba/core"
)

const fileKeyPrefix = "notes/"

var (
	// errors
	ErrNotFound           = errors.New("note not found")
	ErrDepartmentNotFound = errors.New("department does not exist")
	ErrUploaderNotFound   = errors.New("uploader does not exist")

	errFileEmpty    = errors.New("file is empty")
	errFileTooLarge = errors.New("file exceeds the maximum upload size")
	errFileType     = errors.New("file type is not allowed")
)

type (
	Repository interface {
		CreateNote(ctx context.Context, n Note) (Note, error)
		// QueryNotes applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Note.Title.
		QueryNotes(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Note, error)
		GetNote(ctx context.Context, filter GetFilter) (Note, error)
		UpdateNote(ctx context.Context, n Note) (Note, error)
		DeleteNotesByID(ctx context.Context, ids []string) (int, error)
		CountNotes(ctx context.Context) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nn NewNote, up Upload, uploaderID string) (Note, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Note, error)
		GetByID(ctx context.Context, id string) (Note, error)
		Open(ctx context.Context, n Note) (io.ReadCloser, error)
		Update(ctx context.Context, id string, un UpdateNote) (Note, error)
		Delete(ctx context.Context, ids ...string) error
		Count(ctx context.Context) (int, error)
	}

	service struct {
		repo   Repository
		store  core.FileStore
		broker core.Broker
		conf   *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, store core.FileStore, broker core.Broker, conf *core.Config) Service {
	return &service{
		repo:   repo,
		store:  store,
		broker: broker,
		conf:   conf,
	}
}

// Create stores the uploaded file first, then inserts the Note row; the stored
// file is removed again when the insert fails.
func (svc *service) Create(ctx context.Context, nn NewNote, up Upload, uploaderID string) (Note, error) {
	ext, err := svc.checkUpload(up)
	if err != nil {
		return Note{}, err
	}

	contentType, content, err := sniffContentType(up)
	if err != nil {
		return Note{}, errors.Wrap(err, "reading upload")
	}

	key := fileKeyPrefix + uuid.New().String() + ext
	size, err := svc.store.Save(ctx, key, content)
	if err != nil {
		return Note{}, errors.Wrap(err, "storing upload")
	}

	now := time.Now().UTC()
	n := Note{
		Title:        nn.Title,
		FilePath:     key,
		FileName:     filepath.Base(up.Name),
		FileSize:     size,
		ContentType:  contentType,
		UploaderID:   uploaderID,
		DepartmentID: nn.DepartmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	n, err = svc.repo.CreateNote(ctx, n)
	if err != nil {
		_ = svc.store.Remove(ctx, key)
		return Note{}, svc.trapRefErr(err)
	}

	svc.publish(core.EventActionCreated, n.ID)
	return n, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Note, error) {
	return svc.repo.QueryNotes(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Note, error) {
	return svc.repo.GetNote(ctx, GetFilter{ID: id})
}

// Open streams the stored file of a Note.
func (svc *service) Open(ctx context.Context, n Note) (io.ReadCloser, error) {
	return svc.store.Open(ctx, n.FilePath)
}

func (svc *service) Update(ctx context.Context, id string, un UpdateNote) (Note, error) {
	n, err := svc.repo.GetNote(ctx, GetFilter{ID: id})
	if err != nil {
		return Note{}, err
	}

	n.Title = un.Title
	if un.DepartmentID != "" {
		n.DepartmentID = un.DepartmentID
	}
	n.UpdatedAt = time.Now().UTC()

	n, err = svc.repo.UpdateNote(ctx, n)
	if err != nil {
		return Note{}, svc.trapRefErr(err)
	}

	svc.publish(core.EventActionUpdated, n.ID)
	return n, nil
}

// Delete removes the Note rows, then their stored files.
func (svc *service) Delete(ctx context.Context, ids ...string) error {
	notes, err := svc.repo.QueryNotes(ctx, &QueryFilter{IDs: ids}, nil)
	if err != nil {
		return err
	}

	n, err := svc.repo.DeleteNotesByID(ctx, ids)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	for _, note := range notes {
		_ = svc.store.Remove(ctx, note.FilePath)
	}
	svc.publish(core.EventActionDeleted, ids...)
	return nil
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountNotes(ctx)
}

// checkUpload applies the upload policy from config and returns the
// lower-cased file extension.
func (svc *service) checkUpload(up Upload) (string, error) {
	fileErr := func(err error) error {
		return core.NewValidationError(err, core.FieldError{Field: "file", Error: err.Error()})
	}

	if up.Size <= 0 {
		return "", fileErr(errFileEmpty)
	}
	if max := svc.conf.Storage.MaxUploadSize; max > 0 && up.Size > max {
		return "", fileErr(errFileTooLarge)
	}

	ext := strings.ToLower(filepath.Ext(up.Name))
	for _, allowed := range svc.conf.Storage.AllowedExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", fileErr(errFileType)
}

func (svc *service) trapRefErr(err error) error {
	switch errors.Cause(err) {
	case ErrDepartmentNotFound:
		return core.NewValidationError(err, core.FieldError{Field: "department_id", Error: ErrDepartmentNotFound.Error()})
	case ErrUploaderNotFound:
		return core.NewValidationError(err, core.FieldError{Field: "uploader_id", Error: ErrUploaderNotFound.Error()})
	}
	return err
}

func (svc *service) publish(action string, ids ...string) {
	if svc.broker == nil {
		return
	}
	events := make([]core.Event, 0, len(ids))
	for _, id := range ids {
		events = append(events, core.NewEvent(core.EventTableNote, action, id))
	}
	svc.broker.Publish(events...)
}

// sniffContentType determines the upload's content type from its first bytes
// when the client did not provide a usable one.
func sniffContentType(up Upload) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(up.Content, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head = head[:n]

	contentType := up.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(head)
	}
	return contentType, io.MultiReader(bytes.NewReader(head), up.Content), nil
}
