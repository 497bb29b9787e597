package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testCookieExport = `[
  {"domain": ".instagram.com", "name": "sessionid", "value": "s3cret", "path": "/", "secure": true, "expirationDate": 1999999999}
]`

func TestCookieInstall_OK(t *testing.T) {
	env := newTestEnv(t)
	h := NewCookieHandler(env.cookies, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cookies", bytes.NewBufferString(testCookieExport))
	w := httptest.NewRecorder()
	h.Install(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp InstallResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.CookieCount != 1 {
		t.Errorf("cookie count = %d, want 1", resp.CookieCount)
	}
}

func TestCookieInstall_RequeuesParked(t *testing.T) {
	env := newTestEnv(t)
	h := NewCookieHandler(env.cookies, testLogger())

	env.pending.Park("user-1", "https://instagram.com/reel/abc/")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cookies", bytes.NewBufferString(testCookieExport))
	w := httptest.NewRecorder()
	h.Install(w, req)

	var resp InstallResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Resubmitted) != 1 {
		t.Errorf("resubmitted = %v, want one job", resp.Resubmitted)
	}
}

func TestCookieInstall_InvalidExport(t *testing.T) {
	env := newTestEnv(t)
	h := NewCookieHandler(env.cookies, testLogger())

	for _, body := range []string{"not json", "[]"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cookies", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		h.Install(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestCookieStatus(t *testing.T) {
	env := newTestEnv(t)
	h := NewCookieHandler(env.cookies, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cookies", nil)
	w := httptest.NewRecorder()
	h.Status(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var st struct {
		Installed   bool `json:"installed"`
		PendingAuth int  `json:"pending_auth"`
	}
	json.Unmarshal(w.Body.Bytes(), &st)
	if st.Installed {
		t.Error("fresh store should report not installed")
	}
}
