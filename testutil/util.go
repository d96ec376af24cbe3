// Package testutil provides factories shared by integration tests.
package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mtembezi/maktaba/core/department"
	"github.com/mtembezi/maktaba/core/note"
	"github.com/mtembezi/maktaba/core/user"
	inmemdb "github.com/mtembezi/maktaba/storage/database/inmem"
)

func ResetDB(t *testing.T, db *inmemdb.DB) {
	db.Reset()
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role, deptID string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	usr.SetDepartment(deptID)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateDepartment(
	t *testing.T,
	repo department.Repository,
	name string,
	createdAt ...time.Time,
) department.Department {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	dept, err := repo.CreateDepartment(context.Background(), department.Department{
		Name:      name,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateDepartment() failed: %v", err)
	}
	return dept
}

func CreateNote(
	t *testing.T,
	repo note.Repository,
	title string,
	uploader user.User,
	dept department.Department,
	createdAt ...time.Time,
) note.Note {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	n, err := repo.CreateNote(context.Background(), note.Note{
		Title:        title,
		FilePath:     "notes/" + uuid.New().String() + ".pdf",
		FileName:     strings.ToLower(strings.ReplaceAll(title, " ", "-")) + ".pdf",
		FileSize:     1 << 10,
		ContentType:  "application/pdf",
		UploaderID:   uploader.ID,
		DepartmentID: dept.ID,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	})
	if err != nil {
		t.Fatalf("CreateNote() failed: %v", err)
	}
	return n
}
