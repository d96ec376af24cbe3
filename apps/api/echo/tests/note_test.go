package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mtembezi/maktaba/core"
	"github.com/mtembezi/maktaba/core/note"
	"github.com/mtembezi/maktaba/core/user"
	"github.com/mtembezi/maktaba/testutil"
)

type noteFile struct {
	name    string
	content []byte
}

// newNoteUploadRequest builds a multipart/form-data POST to /v1/notes.
// A nil file omits the file part altogether.
func newNoteUploadRequest(t *testing.T, token string, fields map[string]string, file *noteFile) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField() failed, %v", err)
		}
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", file.name)
		if err != nil {
			t.Fatalf("CreateFormFile() failed, %v", err)
		}
		if _, err = fw.Write(file.content); err != nil {
			t.Fatalf("Write() failed, %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() failed, %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/notes", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

// uploadNote creates a note through the API so that its file really exists in storage.
func uploadNote(t *testing.T, token, title, deptID string, file noteFile) note.Note {
	fields := map[string]string{"title": title, "department_id": deptID}
	req, rec := newNoteUploadRequest(t, token, fields, &file)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("uploadNote() failed! code = %v; data = %v", rec.Code, rec.Body.String())
	}
	var n note.Note
	if err := json.Unmarshal(rec.Body.Bytes(), &n); err != nil {
		t.Fatalf("uploadNote() failed! err %v", err)
	}
	return n
}

func Test_noteApi_noteQuery(t *testing.T) {
	testutil.ResetDB(t, db)

	path := func(v url.Values) string { return "/v1/notes?" + v.Encode() }

	now := time.Now()
	t1 := now.Add(1 * time.Hour)
	t2 := now.Add(2 * time.Hour)
	t3 := now.Add(3 * time.Hour)

	sci := testutil.CreateDepartment(t, deptRepo, "Computer Science")
	math := testutil.CreateDepartment(t, deptRepo, "Mathematics")
	prof1 := testutil.CreateUser(t, usrRepo, "Prof Mab", "mab@test.cd", "", user.RoleFaculty, sci.ID, true)
	prof2 := testutil.CreateUser(t, usrRepo, "Prof Zed", "zed@test.cd", "", user.RoleFaculty, math.ID, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, sci.ID, true)

	n1 := testutil.CreateNote(t, noteRepo, "Intro to Algorithms", prof1, sci, t1)
	n2 := testutil.CreateNote(t, noteRepo, "Calculus I", prof2, math, t2)
	n3 := testutil.CreateNote(t, noteRepo, "Data Structures", prof1, sci, t3)
	n4 := testutil.CreateNote(t, noteRepo, "Algebra Basics", prof2, math)

	studentToken := getToken(t, student)
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/notes", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Get all", path: "/v1/notes", token: studentToken,
			wantData: marchallList(t, n1, n2, n3, n4),
		},
		// filtering
		{name: "search (unknown)", path: path(url.Values{"search": {"lol"}}), token: studentToken, wantData: empty},
		{name: "search=al", path: path(url.Values{"search": {"al"}}), token: studentToken, wantData: marchallList(t, n1, n2, n4)},
		{name: "search=algo", path: path(url.Values{"search": {"algo"}}), token: studentToken, wantData: marchallList(t, n1)},
		{name: "department", path: path(url.Values{"department": {sci.ID}}), token: studentToken, wantData: marchallList(t, n1, n3)},
		{name: "uploader", path: path(url.Values{"uploader": {prof2.ID}}), token: studentToken, wantData: marchallList(t, n2, n4)},
		{
			name: "department & uploader mismatch", token: studentToken, wantData: empty,
			path: path(url.Values{"department": {sci.ID}, "uploader": {prof2.ID}}),
		},
		{
			name: "created_from", token: studentToken, wantData: marchallList(t, n2, n3),
			path: path(url.Values{"created_from": {t2.Format(time.RFC3339)}}),
		},
		{
			name: "created_to", token: studentToken, wantData: marchallList(t, n1, n4),
			path: path(url.Values{"created_to": {t1.Format(time.RFC3339)}}),
		},
		{
			name: "created_from - created_to", token: studentToken, wantData: marchallList(t, n1, n2),
			path: path(url.Values{"created_from": {t1.Format(time.RFC3339)}, "created_to": {t2.Format(time.RFC3339)}}),
		},
		// ordering
		{
			name: "order by title", path: path(url.Values{"ordering": {"title"}}), token: studentToken,
			wantData: marchallList(t, n4, n2, n3, n1),
		},
		{
			name: "order by -created_at", path: path(url.Values{"ordering": {"-created_at"}}), token: studentToken,
			wantData: marchallList(t, n3, n2, n1, n4),
		},
		// filtering & ordering
		{
			name: "filtering & ordering", token: studentToken, wantData: marchallList(t, n3, n1),
			path: path(url.Values{"department": {sci.ID}, "ordering": {"-created_at"}}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_noteApi_noteCreate(t *testing.T) {
	testutil.ResetDB(t, db)

	sci := testutil.CreateDepartment(t, deptRepo, "Computer Science")
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, sci.ID, true)
	prof := testutil.CreateUser(t, usrRepo, "Prof Mab", "mab@test.cd", "", user.RoleFaculty, sci.ID, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, "", true)

	profToken := getToken(t, prof)
	reqMsg := "this field is required"
	pdfContent := []byte("%PDF-1.4\n% mocked lecture notes\n")
	okFields := map[string]string{"title": "Intro to Algorithms", "department_id": sci.ID}

	type createCheck func(t *testing.T, created note.Note)
	type payload struct {
		fields map[string]string
		file   *noteFile
	}
	tests := []struct {
		name     string
		token    string
		payload  payload
		wantCode int
		wantData []byte
		extra    interface{}
	}{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Faculty required", token: getToken(t, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: profToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, note.NewNote{Title: reqMsg, DepartmentID: reqMsg}),
		},
		{
			name: "invalid department ID", token: profToken, wantCode: http.StatusBadRequest,
			payload:  payload{fields: map[string]string{"title": "Intro", "department_id": "lol"}},
			wantData: marchallObj(t, map[string]string{"department_id": "department_id must be a valid version 4 UUID"}),
		},
		{
			name: "file is required", token: profToken, wantCode: http.StatusBadRequest,
			payload:  payload{fields: okFields},
			wantData: marchallObj(t, map[string]string{"file": "file is required"}),
		},
		{
			name: "empty file", token: profToken, wantCode: http.StatusBadRequest,
			payload:  payload{fields: okFields, file: &noteFile{name: "algos.pdf"}},
			wantData: marchallObj(t, map[string]string{"file": "file is empty"}),
		},
		{
			name: "file type not allowed", token: profToken, wantCode: http.StatusBadRequest,
			payload:  payload{fields: okFields, file: &noteFile{name: "algos.exe", content: []byte("MZgarbage")}},
			wantData: marchallObj(t, map[string]string{"file": "file type is not allowed"}),
		},
		{
			name: "unknown department", token: profToken, wantCode: http.StatusBadRequest,
			payload: payload{
				fields: map[string]string{"title": "Intro", "department_id": uuid.New().String()},
				file:   &noteFile{name: "algos.pdf", content: pdfContent},
			},
			wantData: marchallObj(t, map[string]string{"department_id": "department does not exist"}),
		},
		{
			name: "created", token: profToken, wantCode: http.StatusCreated,
			payload: payload{fields: okFields, file: &noteFile{name: "Algos Final.PDF", content: pdfContent}},
			extra: createCheck(func(t *testing.T, created note.Note) {
				if created.ID == "" {
					t.Error("failed! empty ID")
				}
				if created.Title != "Intro to Algorithms" {
					t.Errorf("failed! Title = %v", created.Title)
				}
				if created.FileName != "Algos Final.PDF" {
					t.Errorf("failed! FileName = %v", created.FileName)
				}
				if created.FileSize != int64(len(pdfContent)) {
					t.Errorf("failed! FileSize = %v", created.FileSize)
				}
				if created.ContentType != "application/pdf" {
					t.Errorf("failed! ContentType = %v", created.ContentType)
				}
				if created.UploaderID != prof.ID {
					t.Errorf("failed! UploaderID = %v", created.UploaderID)
				}
				if created.DepartmentID != sci.ID {
					t.Errorf("failed! DepartmentID = %v", created.DepartmentID)
				}
				// the storage key is generated, never the client's file name
				if !strings.HasPrefix(created.FilePath, "notes/") || !strings.HasSuffix(created.FilePath, ".pdf") {
					t.Errorf("failed! FilePath = %v", created.FilePath)
				}
				if _, err := noteRepo.GetNote(context.Background(), note.GetFilter{ID: created.ID}); err != nil {
					t.Errorf("GetNote() failed, %v", err)
				}
				f, err := store.Open(context.Background(), created.FilePath)
				if err != nil {
					t.Fatalf("store.Open() failed, %v", err)
				}
				f.Close()
			}),
		},
		{
			name: "Admin may also upload", token: getToken(t, admin), wantCode: http.StatusCreated,
			payload: payload{
				fields: map[string]string{"title": "Campus Guidelines", "department_id": sci.ID},
				file:   &noteFile{name: "guidelines.pdf", content: pdfContent},
			},
			extra: createCheck(func(t *testing.T, created note.Note) {
				if created.UploaderID != admin.ID {
					t.Errorf("failed! UploaderID = %v", created.UploaderID)
				}
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newNoteUploadRequest(t, tt.token, tt.payload.fields, tt.payload.file)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var created note.Note
				if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if chk, ok := tt.extra.(createCheck); ok {
					chk(t, created)
				}
				return
			}
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
		})
	}

	t.Run("Max upload size", func(t *testing.T) {
		maxSize := core.Conf.Storage.MaxUploadSize
		core.Conf.Storage.MaxUploadSize = 8
		defer func() { core.Conf.Storage.MaxUploadSize = maxSize }()

		req, rec := newNoteUploadRequest(t, profToken, okFields, &noteFile{name: "big.pdf", content: pdfContent})
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"file": "file exceeds the maximum upload size"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_noteApi_noteRetrieve(t *testing.T) {
	testutil.ResetDB(t, db)

	sci := testutil.CreateDepartment(t, deptRepo, "Computer Science")
	prof := testutil.CreateUser(t, usrRepo, "Prof Mab", "mab@test.cd", "", user.RoleFaculty, sci.ID, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, sci.ID, true)
	n := testutil.CreateNote(t, noteRepo, "Intro to Algorithms", prof, sci)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Any account may browse", token: getToken(t, student), wantCode: http.StatusOK, wantData: marchallObj(t, n)},
		{
			name: "Unknown ID", path: "/v1/notes/lol", token: getToken(t, student), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.path == "" {
			tt.path = fmt.Sprintf("/v1/notes/%s", n.ID)
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_noteApi_noteDownload(t *testing.T) {
	testutil.ResetDB(t, db)

	sci := testutil.CreateDepartment(t, deptRepo, "Computer Science")
	prof := testutil.CreateUser(t, usrRepo, "Prof Mab", "mab@test.cd", "", user.RoleFaculty, sci.ID, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, sci.ID, true)

	content := []byte("%PDF-1.4\n% mocked lecture notes\n")
	n := uploadNote(t, getToken(t, prof), "Intro to Algorithms", sci.ID, noteFile{name: "Algos v1.pdf", content: content})
	// created behind the API's back, its file was never stored
	ghost := testutil.CreateNote(t, noteRepo, "Ghost Notes", prof, sci)

	studentToken := getToken(t, student)
	download := func(id string) string { return fmt.Sprintf("/v1/notes/%s/download", id) }

	tests := []httpTest{
		{name: "Auth required", path: download(n.ID), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Stored file is missing", path: download(ghost.ID), token: studentToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Unknown ID", path: download("lol"), token: studentToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Downloaded", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, download(n.ID), studentToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; data = %v", rec.Code, rec.Body.String())
		}
		if !bytes.Equal(rec.Body.Bytes(), content) {
			t.Errorf("failed! body = %q", rec.Body.String())
		}
		if got, want := rec.Header().Get("Content-Disposition"), `attachment; filename="Algos v1.pdf"`; got != want {
			t.Errorf("failed! Content-Disposition = %v; want %v", got, want)
		}
		if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
			t.Errorf("failed! Content-Type = %v", got)
		}
	})
}

func Test_noteApi_noteUpdate(t *testing.T) {
	testutil.ResetDB(t, db)

	sci := testutil.CreateDepartment(t, deptRepo, "Computer Science")
	math := testutil.CreateDepartment(t, deptRepo, "Mathematics")
	prof1 := testutil.CreateUser(t, usrRepo, "Prof Mab", "mab@test.cd", "", user.RoleFaculty, sci.ID, true)
	prof2 := testutil.CreateUser(t, usrRepo, "Prof Zed", "zed@test.cd", "", user.RoleFaculty, math.ID, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, sci.ID, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, "", true)
	n := testutil.CreateNote(t, noteRepo, "Draft Notes", prof1, sci)

	ownerToken := getToken(t, prof1)
	adminToken := getToken(t, admin)

	type updCheck func(t *testing.T, updated note.Note)
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Students cannot edit", token: getToken(t, student), wantCode: http.StatusForbidden,
			body:     marchallObj(t, note.UpdateNote{Title: "Hacked"}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Only the uploader may edit", token: getToken(t, prof2), wantCode: http.StatusForbidden,
			body:     marchallObj(t, note.UpdateNote{Title: "Hacked"}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "invalid department ID", token: ownerToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, note.UpdateNote{DepartmentID: "lol"}),
			wantData: marchallObj(t, map[string]string{"department_id": "department_id must be a valid version 4 UUID"}),
		},
		{
			name: "unknown department", token: ownerToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, note.UpdateNote{DepartmentID: uuid.New().String()}),
			wantData: marchallObj(t, map[string]string{"department_id": "department does not exist"}),
		},
		{
			name: "Empty update keeps fields", token: ownerToken, wantCode: http.StatusOK, body: []byte("{}"),
			extra: updCheck(func(t *testing.T, updated note.Note) {
				if updated.Title != "Draft Notes" {
					t.Errorf("failed! Title = %v", updated.Title)
				}
				if updated.DepartmentID != sci.ID {
					t.Errorf("failed! DepartmentID = %v", updated.DepartmentID)
				}
			}),
		},
		{
			name: "Renamed by owner", token: ownerToken, wantCode: http.StatusOK,
			body: marchallObj(t, note.UpdateNote{Title: "Final Notes"}),
			extra: updCheck(func(t *testing.T, updated note.Note) {
				if updated.Title != "Final Notes" {
					t.Errorf("failed! Title = %v", updated.Title)
				}
				refreshed, err := noteRepo.GetNote(context.Background(), note.GetFilter{ID: updated.ID})
				if err != nil {
					t.Fatalf("GetNote() failed, %v", err)
				}
				if refreshed.Title != "Final Notes" {
					t.Errorf("failed! stored Title = %v", refreshed.Title)
				}
			}),
		},
		{
			name: "Moved by admin", token: adminToken, wantCode: http.StatusOK,
			body: marchallObj(t, note.UpdateNote{DepartmentID: math.ID}),
			extra: updCheck(func(t *testing.T, updated note.Note) {
				if updated.DepartmentID != math.ID {
					t.Errorf("failed! DepartmentID = %v", updated.DepartmentID)
				}
				if updated.Title != "Final Notes" {
					t.Errorf("failed! Title = %v", updated.Title)
				}
			}),
		},
		{
			name: "Unknown ID", path: "/v1/notes/lol", token: adminToken, wantCode: http.StatusNotFound,
			body:     marchallObj(t, note.UpdateNote{Title: "Ghost"}),
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut
		if tt.path == "" {
			tt.path = fmt.Sprintf("/v1/notes/%s", n.ID)
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var updated note.Note
				if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if chk, ok := tt.extra.(updCheck); ok {
					chk(t, updated)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_noteApi_noteDestroy(t *testing.T) {
	testutil.ResetDB(t, db)

	sci := testutil.CreateDepartment(t, deptRepo, "Computer Science")
	prof1 := testutil.CreateUser(t, usrRepo, "Prof Mab", "mab@test.cd", "", user.RoleFaculty, sci.ID, true)
	prof2 := testutil.CreateUser(t, usrRepo, "Prof Zed", "zed@test.cd", "", user.RoleFaculty, sci.ID, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, sci.ID, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, "", true)

	ownerToken := getToken(t, prof1)
	content := []byte("%PDF-1.4\n% mocked lecture notes\n")
	n1 := uploadNote(t, ownerToken, "Intro to Algorithms", sci.ID, noteFile{name: "algos.pdf", content: content})
	n2 := uploadNote(t, ownerToken, "Data Structures", sci.ID, noteFile{name: "structs.pdf", content: content})

	detail := func(id string) string { return fmt.Sprintf("/v1/notes/%s", id) }

	tests := []httpTest{
		{name: "Auth required", path: detail(n1.ID), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Students cannot delete", path: detail(n1.ID), token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Only the uploader may delete", path: detail(n1.ID), token: getToken(t, prof2),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Deleted by owner", path: detail(n1.ID), token: ownerToken, wantCode: http.StatusNoContent, extra: n1},
		{name: "Admin may delete any note", path: detail(n2.ID), token: getToken(t, admin), wantCode: http.StatusNoContent, extra: n2},
		{
			name: "Already gone", path: detail(n1.ID), token: ownerToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusNoContent {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				deleted := tt.extra.(note.Note)
				if _, err := noteRepo.GetNote(context.Background(), note.GetFilter{ID: deleted.ID}); err != note.ErrNotFound {
					t.Errorf("GetNote() error = %v, want %v", err, note.ErrNotFound)
				}
				// the stored file goes with the row
				if _, err := store.Open(context.Background(), deleted.FilePath); err != core.ErrFileNotFound {
					t.Errorf("store.Open() error = %v, want %v", err, core.ErrFileNotFound)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
