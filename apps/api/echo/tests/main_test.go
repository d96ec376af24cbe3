package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/mtembezi/maktaba/apps/api/echo"
	"github.com/mtembezi/maktaba/core"
	"github.com/mtembezi/maktaba/core/department"
	"github.com/mtembezi/maktaba/core/note"
	"github.com/mtembezi/maktaba/core/user"
	emailsvc "github.com/mtembezi/maktaba/services/email"
	logsvc "github.com/mtembezi/maktaba/services/logger"
	realtimesvc "github.com/mtembezi/maktaba/services/realtime"
	inmemdb "github.com/mtembezi/maktaba/storage/database/inmem"
	filestore "github.com/mtembezi/maktaba/storage/files"
)

var (
	db       *inmemdb.DB
	app      Server
	broker   core.Broker
	store    core.FileStore
	usrRepo  user.Repository
	deptRepo department.Repository
	noteRepo note.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	core.Conf.Debug = false
	core.Conf.TestMode = true

	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))

	// set up DB & repos
	var err error
	db, err = inmemdb.Open()
	if err != nil {
		fmt.Printf("inmemdb.Open(): %v", err)
		os.Exit(1)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	deptRepo = inmemdb.NewDepartmentRepository(db)
	noteRepo = inmemdb.NewNoteRepository(db)

	// set up file storage
	storeRoot, err := os.MkdirTemp("", "maktaba-uploads")
	if err != nil {
		fmt.Printf("os.MkdirTemp(): %v", err)
		os.Exit(1)
	}
	store, err = filestore.NewDiskStore(storeRoot)
	if err != nil {
		fmt.Printf("filestore.NewDiskStore(): %v", err)
		os.Exit(1)
	}

	// set up services
	broker = realtimesvc.NewInprocBroker()
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, broker, core.Conf)
	deptSvc := department.NewService(deptRepo, broker)
	noteSvc := note.NewService(noteRepo, store, broker, core.Conf)

	// set up validation & templates
	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(logger)
	user.LoadCommonPasswords(logger)

	// set up server
	app = NewServer(ServerDeps{
		Conf:       core.Conf,
		Logger:     logger,
		UserSvc:    usrSvc,
		DeptSvc:    deptSvc,
		NoteSvc:    noteSvc,
		Broker:     broker,
		Validate:   validate,
		Translator: translator,
	})

	// run tests
	code := m.Run()

	// clean up
	if err = os.RemoveAll(storeRoot); err != nil {
		fmt.Printf("os.RemoveAll(): %v", err)
		os.Exit(1)
	}

	os.Exit(code)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	// unordered match for lists
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if ok1 && ok2 {
		return assert.ElementsMatch(t, l1, l2), nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
