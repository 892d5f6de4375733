package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/studylog/apps/api/echo"
	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/admin"
	"github.com/trezcool/studylog/core/study"
	emailsvc "github.com/trezcool/studylog/services/email"
	inmemdb "github.com/trezcool/studylog/storage/database/inmem"
	testutil "github.com/trezcool/studylog/tests"
)

var (
	admRepo  admin.Repository
	sessRepo study.SessionRepository
	subRepo  study.SubjectRepository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) Server {
	t.Helper()

	conf := &core.Config{
		TestMode:                  true,
		AppName:                   "StudyLog",
		SecretKey:                 "secret",
		FrontendBaseURL:           "http://localhost:8080",
		DefaultFromEmail:          "noreply@test.test",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	// set up DB & repos
	db := inmemdb.NewDB()
	admRepo = inmemdb.NewAdminRepository(db)
	sessRepo = inmemdb.NewSessionRepository(db)
	subRepo = inmemdb.NewSubjectRepository(db)

	// set up services
	logger := testutil.Logger{}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	studySvc := study.NewService(sessRepo, subRepo, logger, conf)
	admSvc := admin.NewServiceMock(admRepo, mailSvc, conf)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	study.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     logger,
			StudySvc:   studySvc,
			AdminSvc:   admSvc,
			Validate:   validate,
			Translator: translator,
		},
	)
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

func getToken(t *testing.T, adm admin.Admin) string {
	claims := GetAdminClaims(adm)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
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
	return assert.ElementsMatch(t, j1, j2), nil
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
