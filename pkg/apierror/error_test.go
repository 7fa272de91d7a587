package apierror

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, WithDetails(http.StatusBadRequest, "out of range", "air_temp: out of range (must be <= 400)"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	want := `{"error":"out of range","details":["air_temp: out of range (must be <= 400)"]}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestWrite_OmitsEmptyDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, Internal("internal error"))
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"internal error"}` {
		t.Errorf("body = %s", got)
	}
}

func TestError_String(t *testing.T) {
	if got := NotFound("route").Error(); got != "[404] route not found" {
		t.Errorf("Error() = %q", got)
	}
}
