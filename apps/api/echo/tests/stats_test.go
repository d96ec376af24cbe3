package tests

import (
	"net/http"
	"testing"

	"github.com/mtembezi/maktaba/apps/api/echo"
	"github.com/mtembezi/maktaba/core/user"
	"github.com/mtembezi/maktaba/testutil"
)

func Test_statsApi_statsRetrieve(t *testing.T) {
	testutil.ResetDB(t, db)

	sci := testutil.CreateDepartment(t, deptRepo, "Computer Science")
	math := testutil.CreateDepartment(t, deptRepo, "Mathematics")
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, sci.ID, true)
	prof := testutil.CreateUser(t, usrRepo, "Prof Mab", "mab@test.cd", "", user.RoleFaculty, sci.ID, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, "", true)
	testutil.CreateNote(t, noteRepo, "Intro to Algorithms", prof, sci)
	testutil.CreateNote(t, noteRepo, "Calculus I", prof, math)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Faculty is not admin", token: getToken(t, prof), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Counts", token: getToken(t, admin), wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.StatsResponse{Users: 3, Departments: 2, Notes: 2}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/admin/stats"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
