package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	echoapi "github.com/trezcool/elimu/apps/api/echo"
	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/academic"
	"github.com/trezcool/elimu/core/record"
	"github.com/trezcool/elimu/core/user"
	logsvc "github.com/trezcool/elimu/services/logger"
	"github.com/trezcool/elimu/storage/database"
	testutil "github.com/trezcool/elimu/tests"
)

type env struct {
	app   echoapi.Server
	conf  *core.Config
	store record.Store
}

func setup(t *testing.T) *env {
	t.Helper()

	conf, err := core.NewConfig()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	conf.Debug = false
	conf.TestMode = true

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "TEST : ", log.LstdFlags),
		conf,
	)
	logger.Enable(false)

	store := database.NewStore(testutil.OpenDB(t))
	validate, translator := core.NewValidator()

	app := echoapi.NewServer(&echoapi.Options{
		Conf:           conf,
		Logger:         logger,
		DisableReqLogs: true,
		UserSvc:        user.NewService(store),
		AcademicSvc:    academic.NewService(store),
		Validate:       validate,
		Translator:     translator,
	})
	return &env{app: app, conf: conf, store: store}
}

// token signs a request token for an account row.
func (e *env) token(t *testing.T, usr record.Row, table record.Table) string {
	t.Helper()
	claims := echoapi.GetAccountClaims(e.conf, usr, table)
	token, err := echoapi.GenerateToken(e.conf, claims)
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

func (e *env) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("do() failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.app.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := make(map[string]interface{})
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decodeMap() failed: %v; body: %s", err, rec.Body.String())
	}
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decodeList() failed: %v; body: %s", err, rec.Body.String())
	}
	return out
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func signupBody(uname string) map[string]interface{} {
	return map[string]interface{}{
		"username":            uname,
		"password":            "secret123",
		"email":               uname + "@test.sc",
		"fullName":            "Admin " + uname,
		"phoneNumber":         "0700000000",
		"schoolName":          uname + " School",
		"schoolAddress":       "1 School Rd",
		"schoolContactNumber": "0700000001",
		"schoolEmail":         "office@" + uname + ".sc",
		"schoolRegisterId":    "REG-" + uname,
		"governmentId":        "GOV-" + uname,
		"agreementToTerms":    true,
	}
}
