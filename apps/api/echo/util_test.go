package echoapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/markmywords/apps/api/echo"
	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/annotation"
	"github.com/trezcool/markmywords/core/document"
	"github.com/trezcool/markmywords/core/hierarchy"
	"github.com/trezcool/markmywords/core/session"
	"github.com/trezcool/markmywords/services/canvas"
	inmemdb "github.com/trezcool/markmywords/storage/database/inmem"
	testutil "github.com/trezcool/markmywords/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	server *echoapi.Server
	state  *document.State
	store  *inmemdb.Store
	logger *testutil.Logger
	ctrl   *session.Controller
}

func setup(t *testing.T, strictReferences ...bool) testApp {
	t.Helper()

	conf := &core.Config{
		Env:       "TEST",
		AppName:   "MarkMyWords",
		TestMode:  true,
		SecretKey: "test-secret",
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
		Canvas:    core.CanvasConfig{Width: 800, Height: 600},
	}

	st, store, logger := testutil.NewState(t)

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	annotation.RegisterValidators(validate, translator)

	strict := len(strictReferences) > 0 && strictReferences[0]
	ctrl := session.NewController(st)
	svc := hierarchy.NewService(st, validate, strict)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Session:        ctrl,
		Theme:          session.NewTheme(),
		Hierarchy:      svc,
		Pad:            annotation.NewPad(svc, ctrl),
		Raster:         canvas.NewRaster(conf.Canvas.Width, conf.Canvas.Height),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	t.Cleanup(func() { _ = server.Close() })

	return testApp{server: server, state: st, store: store, logger: logger, ctrl: ctrl}
}

// do serves req and returns the recorded response.
func (app testApp) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	app.server.ServeHTTP(rec, req)
	return rec
}

func (app testApp) login(t *testing.T, username, password string) string {
	t.Helper()

	body := marchallObj(t, echoapi.LoginRequest{Username: username, Password: password})
	rec := app.do(newRequest(http.MethodPost, "/v1/session/login", body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp echoapi.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
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

type upload struct {
	filename    string
	contentType string
	content     []byte
}

// newTaskRequest builds the multipart form used to upload a task; a nil file omits the file part.
func newTaskRequest(t *testing.T, token string, fields map[string]string, file *upload) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.filename))
		if file.contentType != "" {
			h.Set("Content-Type", file.contentType)
		}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := app.do(newAuthRequest(method, tt.path, tt.token, tt.body))
			checkCodeAndData(t, tt, rec)
		})
	}
}
