package service

import (
	"context"
	"testing"

	"github.com/vidforge/vidforge/internal/authwait"
	"github.com/vidforge/vidforge/pkg/cookies"
)

const cookieExport = `[
  {"domain": ".instagram.com", "name": "sessionid", "value": "s3cret", "path": "/", "secure": true, "expirationDate": 1999999999},
  {"domain": ".instagram.com", "name": "csrftoken", "value": "tok", "path": "/", "secure": true, "expirationDate": 1999999999}
]`

func newCookieService(t *testing.T, svc *AcquireService, pending *authwait.Store) *CookieService {
	t.Helper()
	store, err := cookies.NewStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return NewCookieService(store, pending, svc, nil)
}

func TestCookieInstall_RequeuesParkedRequests(t *testing.T) {
	svc, jobs, _, pending := newTestService(t, &fakeChain{}, nil)
	cs := newCookieService(t, svc, pending)

	pending.Park("user-1", "https://instagram.com/reel/abc/")
	pending.Park("user-2", "https://tiktok.com/@u/video/9")

	result, err := cs.Install(context.Background(), []byte(cookieExport))
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if result.CookieCount != 2 {
		t.Errorf("cookie count = %d, want 2", result.CookieCount)
	}
	if len(result.Resubmitted) != 2 {
		t.Fatalf("resubmitted = %v, want 2 jobs", result.Resubmitted)
	}
	if pending.Len() != 0 {
		t.Error("pending store should be drained")
	}

	queued, _ := jobs.List(context.Background(), 0)
	if len(queued) != 2 {
		t.Errorf("queued jobs = %d, want 2", len(queued))
	}
}

func TestCookieInstall_RejectsEmptyExport(t *testing.T) {
	svc, _, _, pending := newTestService(t, &fakeChain{}, nil)
	cs := newCookieService(t, svc, pending)

	pending.Park("user-1", "https://instagram.com/reel/abc/")

	if _, err := cs.Install(context.Background(), []byte(`[]`)); err == nil {
		t.Fatal("empty export must be rejected")
	}
	// A failed install must not consume parked requests.
	if pending.Len() != 1 {
		t.Errorf("pending = %d, want 1", pending.Len())
	}
}

func TestCookieStatus_ReportsPendingAuth(t *testing.T) {
	svc, _, _, pending := newTestService(t, &fakeChain{}, nil)
	cs := newCookieService(t, svc, pending)

	st := cs.Status()
	if st.Installed || st.PendingAuth != 0 {
		t.Errorf("fresh status = %+v", st)
	}

	pending.Park("user-1", "https://instagram.com/reel/abc/")
	if _, err := cs.Install(context.Background(), []byte(cookieExport)); err != nil {
		t.Fatalf("install: %v", err)
	}

	st = cs.Status()
	if !st.Installed || st.CookieCount != 2 || st.PendingAuth != 0 {
		t.Errorf("status after install = %+v", st)
	}
}
