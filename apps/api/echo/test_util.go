package echoapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/profconnect/backend/core"
	"github.com/profconnect/backend/core/session"
	"github.com/profconnect/backend/core/teacher"
	emailsvc "github.com/profconnect/backend/services/email"
	uploadsvc "github.com/profconnect/backend/services/upload"
	inmemdb "github.com/profconnect/backend/storage/database/inmem"
)

type testApp struct {
	server   Server
	svc      *teacher.Service
	repo     teacher.Repository
	sessions session.Store
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := core.NewConfig()
	conf.TestMode = true

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewTeacherRepository(db)
	svc := teacher.NewService(repo, emailsvc.NewConsoleService(conf), conf)
	sessions := session.NewMemoryStore(conf.Server.SessionTTL)

	uploads, err := uploadsvc.NewDiskStorage(t.TempDir())
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	validate := validator.New()
	translator := newTestTranslator()
	core.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testLogger{t},
		TeacherSvc:     svc,
		Sessions:       sessions,
		Uploads:        uploads,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return &testApp{server: server, svc: svc, repo: repo, sessions: sessions}
}

func newTestTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// testLogger routes server errors to the test log.
type testLogger struct{ t *testing.T }

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Logf("DEBUG: %s %v", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Logf("INFO: %s %v", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Logf("WARN: %s %v", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Logf("ERROR: %s %v", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s %v", msg, args) }

func (app *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func newJSONRequest(t *testing.T, method, path string, data interface{}, cookies ...*http.Cookie) *http.Request {
	t.Helper()

	var body bytes.Buffer
	if data != nil {
		if err := json.NewEncoder(&body).Encode(data); err != nil {
			t.Fatalf("newJSONRequest() failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func newFormRequest(t *testing.T, method, path string, fields map[string]string, cookies ...*http.Cookie) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("newFormRequest() failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("newFormRequest() failed: %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func registrationForm(name, email string) map[string]string {
	return map[string]string{
		"name":           name,
		"email":          email,
		"title":          "Prof",
		"school":         "SOT",
		"department":     "CSE",
		"cabinNumber":    "101",
		"password":       "s3cret",
		"availableSlots": `{"Mon":["9-10"]}`,
	}
}

// register creates a profile over HTTP and returns the created record and
// the session cookie established by registration.
func (app *testApp) register(t *testing.T, name, email string) (teacher.Teacher, *http.Cookie) {
	t.Helper()

	rec := app.do(newFormRequest(t, http.MethodPost, "/api/teachers", registrationForm(name, email)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register() failed: code = %v, body = %s", rec.Code, rec.Body.String())
	}

	var created teacher.Teacher
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("register() failed: %v", err)
	}
	return created, sessionCookie(t, rec)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatal("sessionCookie() failed: no session cookie set")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decodeBody() failed: %v (body = %s)", err, rec.Body.String())
	}
	return body
}
