package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type stepBody struct {
	Steps int `json:"steps" default:"1" validate:"gte=1,lte=100"`
}

func newContext(body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	var req stepBody
	if errs := ReadAndValidateRequest(newContext(""), &req); errs != nil {
		t.Fatalf("unexpected errors %+v", errs)
	}
	if req.Steps != 1 {
		t.Fatalf("steps = %d, want default 1", req.Steps)
	}
}

func TestReadAndValidateRequestRange(t *testing.T) {
	var req stepBody
	errs := ReadAndValidateRequest(newContext(`{"steps": 500}`), &req)
	if len(errs) != 1 {
		t.Fatalf("expected one validation error, got %+v", errs)
	}
	e := errs[0]
	if e.Code != "ERR_LTE" || e.Field != "steps" || e.Params["max"] != "100" {
		t.Fatalf("unexpected error %+v", e)
	}
}

func TestReadAndValidateRequestMalformed(t *testing.T) {
	var req stepBody
	errs := ReadAndValidateRequest(newContext(`{"steps": "many"`), &req)
	if len(errs) != 1 || errs[0].Code != "ERR_UNKNOWN" {
		t.Fatalf("expected bind error, got %+v", errs)
	}
}
