package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/takanag/nenga/api/echo"
	"github.com/takanag/nenga/core"
	"github.com/takanag/nenga/core/greeting"
	"github.com/takanag/nenga/core/user"
	emailsvc "github.com/takanag/nenga/services/email"
	logsvc "github.com/takanag/nenga/services/logger"
	mediasvc "github.com/takanag/nenga/services/media"
	translatesvc "github.com/takanag/nenga/services/translate"
	inmemdb "github.com/takanag/nenga/storage/database/inmem"
)

var (
	conf      *core.Config
	usrRepo   user.Repository
	greetRepo greeting.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) Server {
	return setupWithGreetingRepo(t, nil)
}

// setupWithGreetingRepo lets a test wrap the greeting repository, e.g. to
// inject storage failures.
func setupWithGreetingRepo(t *testing.T, wrap func(greeting.Repository) greeting.Repository) Server {
	t.Helper()

	conf = &core.Config{
		Debug:           false,
		TestMode:        true,
		AppName:         "Nenga",
		SecretKey:       "test-secret-key",
		FrontendBaseURL: "http://localhost:8000",
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Media: core.MediaConfig{
			Root:           t.TempDir(),
			BaseURL:        "/media",
			MaxUploadSize:  10 << 20,
			ImageMaxWidth:  1200,
			ThumbMaxWidth:  400,
			HeaderMaxWidth: 1920,
			JPEGQuality:    85,
		},
	}

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)

	// set up DB & repos
	db := inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	greetRepo = inmemdb.NewGreetingRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleService(conf)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	translateSvc := translatesvc.NewChain(logger, conf)
	svcRepo := greetRepo
	if wrap != nil {
		svcRepo = wrap(greetRepo)
	}
	greetingSvc := greeting.NewService(svcRepo, translateSvc, logger, conf)

	store, err := mediasvc.NewDiskStore(conf)
	if err != nil {
		t.Fatalf("NewDiskStore() failed: %v", err)
	}
	media := mediasvc.NewProcessor(store, conf)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	greeting.InitValidators(validate, translator)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			GreetingSvc:    greetingSvc,
			TranslateSvc:   translateSvc,
			Media:          media,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
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

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(conf, usr)
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

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
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
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
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
