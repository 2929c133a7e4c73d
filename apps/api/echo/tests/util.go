package tests

import (
	"bytes"
	"context"
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

	. "github.com/examcenter/backend/apps/api/echo"
	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/admin"
	"github.com/examcenter/backend/core/contact"
	"github.com/examcenter/backend/core/course"
	"github.com/examcenter/backend/core/resource"
	"github.com/examcenter/backend/core/testdate"
	"github.com/examcenter/backend/core/trainer"
	blobsvc "github.com/examcenter/backend/services/blob"
	emailsvc "github.com/examcenter/backend/services/email"
	logsvc "github.com/examcenter/backend/services/logger"
	"github.com/examcenter/backend/storage/cache"
	inmemdb "github.com/examcenter/backend/storage/database/inmem"
	"github.com/examcenter/backend/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

// identityMock accepts the tokens it knows.
type identityMock map[string]admin.Identity

func (m identityMock) Verify(_ context.Context, token string) (admin.Identity, error) {
	if id, ok := m[token]; ok {
		return id, nil
	}
	return admin.Identity{}, admin.ErrInvalidIdentity
}

// challengeMock accepts the token "human" only.
type challengeMock struct{}

func (challengeMock) Verify(_ context.Context, token, _ string) (bool, error) {
	return token == "human", nil
}

type env struct {
	conf  *core.Config
	app   *Server
	blobs *blobsvc.ConsoleStore

	testDateRepo testdate.Repository
	courseRepo   course.Repository
	trainerRepo  trainer.Repository
	resourceRepo resource.Repository
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func setup(t *testing.T) *env {
	t.Helper()
	return setupWith(t, nil)
}

// setupWith is setup with the test date service reading through wrap(e.testDateRepo).
func setupWith(t *testing.T, wrap func(testdate.Repository) testdate.Repository) *env {
	t.Helper()
	conf := testutil.NewConfig()
	logger := logsvc.NewDiscardLogger()

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, logger)

	// set up DB & repos
	db := inmemdb.NewDB()
	e := &env{
		conf:         conf,
		blobs:        blobsvc.NewConsoleStore(logger),
		testDateRepo: inmemdb.NewTestDateRepository(db),
		courseRepo:   inmemdb.NewCourseRepository(db),
		trainerRepo:  inmemdb.NewTrainerRepository(db),
		resourceRepo: inmemdb.NewResourceRepository(db),
	}

	// set up services
	verifier := identityMock{
		"google-admin":    {Subject: "g-1", Email: "Admin@Example.com", Name: "Site Admin"},
		"google-stranger": {Subject: "g-2", Email: "stranger@example.com"},
	}
	svcRepo := e.testDateRepo
	if wrap != nil {
		svcRepo = wrap(svcRepo)
	}
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	emailsvc.ResetSentMessages()

	e.app = NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		AdminSvc:    admin.NewService(verifier, admin.ParseAllowlist(conf.AdminEmails)),
		TestDateSvc: testdate.NewService(svcRepo, cache.NewMemoryCache(time.Minute), logger, conf.Location()),
		CourseSvc:   course.NewService(e.courseRepo, conf.Location()),
		TrainerSvc:  trainer.NewService(e.trainerRepo, e.blobs, logger),
		ResourceSvc: resource.NewService(e.resourceRepo, e.blobs, logger),
		ContactSvc:  contact.NewService(challengeMock{}, mailSvc, conf.ContactRecipients),
	})
	return e
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

func (e *env) serve(tt httpTest) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	e.app.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, conf *core.Config, adm admin.Admin) string {
	token, err := GenerateToken(GetAdminClaims(conf, adm), conf.SecretKey)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func adminToken(t *testing.T, conf *core.Config) string {
	return getToken(t, conf, admin.Admin{Subject: "g-1", Email: "admin@example.com", Name: "Site Admin"})
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
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	if _, ok := j2.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func unmarshal(rec *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}
