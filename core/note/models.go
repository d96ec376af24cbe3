package note

import (
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mtembezi/maktaba/core"
)

type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	FilePath     string    `json:"file_path"` // storage key, never a client-provided path
	FileName     string    `json:"file_name"` // original name, for downloads only
	FileSize     int64     `json:"file_size"`
	ContentType  string    `json:"content_type"`
	UploaderID   string    `json:"uploader_id"`
	DepartmentID string    `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// Upload carries the file part of a note upload.
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

// NewNote contains information needed to create a new Note.
type NewNote struct {
	Title        string `json:"title" form:"title" validate:"required"`
	DepartmentID string `json:"department_id" form:"department_id" validate:"required,uuid4"`
}

func (nn *NewNote) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.DepartmentID = core.CleanString(nn.DepartmentID)
	return validate.Struct(nn)
}

// UpdateNote defines what information may be provided to modify an existing
// Note. Empty fields are left unchanged; the file itself cannot be replaced.
type UpdateNote struct {
	Title        string `json:"title"`
	DepartmentID string `json:"department_id" validate:"omitempty,uuid4"`
}

func (un *UpdateNote) Validate(origNote Note, validate *validator.Validate) error {
	title := core.CleanString(un.Title)
	if title != "" {
		un.Title = title
	} else {
		un.Title = origNote.Title
	}
	un.DepartmentID = core.CleanString(un.DepartmentID)
	return validate.Struct(un)
}

type QueryFilter struct {
	Search       string   `query:"search"`
	DepartmentID string   `query:"department"`
	UploaderID   string   `query:"uploader"`
	IDs          []string `query:"-"`

	// time bounds are parsed by the transport layer. echo's binder cannot set time.Time.
	CreatedFrom time.Time `query:"-"`
	CreatedTo   time.Time `query:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.DepartmentID == "" && qf.UploaderID == "" &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero() && len(qf.IDs) == 0
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.DepartmentID = core.CleanString(qf.DepartmentID)
	qf.UploaderID = core.CleanString(qf.UploaderID)
}

// GetFilter selects a single Note.
type GetFilter struct {
	ID string
}
