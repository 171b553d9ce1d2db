package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPChecker_StatusOK(t *testing.T) {
	var gotMethod, gotUA string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(200)
	}))
	defer s.Close()

	chk := NewHTTPChecker(2*time.Second, "")
	out := chk.Check(context.Background(), s.URL)
	if !out.Up {
		t.Fatalf("want up, got %+v", out)
	}
	if out.StatusCode != 200 {
		t.Fatalf("want status 200, got %d", out.StatusCode)
	}
	if out.Reason != "" {
		t.Fatalf("want empty reason when up, got %q", out.Reason)
	}
	if out.ResponseTimeMS == nil || *out.ResponseTimeMS < 0 {
		t.Fatalf("want non-negative response time, got %v", out.ResponseTimeMS)
	}
	if gotMethod != http.MethodHead {
		t.Fatalf("want HEAD request, got %s", gotMethod)
	}
	if gotUA != DefaultUserAgent {
		t.Fatalf("want identifying user agent, got %q", gotUA)
	}
}

func TestHTTPChecker_Status500(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer s.Close()

	out := NewHTTPChecker(2*time.Second, "").Check(context.Background(), s.URL)
	if out.Up {
		t.Fatalf("want down, got %+v", out)
	}
	if out.StatusCode != 500 || out.Reason != "HTTP 500" {
		t.Fatalf("want HTTP 500, got status=%d reason=%q", out.StatusCode, out.Reason)
	}
	if out.ResponseTimeMS == nil {
		t.Fatalf("a response arrived, latency should be recorded")
	}
}

func TestHTTPChecker_NonSuccessCodesAreDown(t *testing.T) {
	for _, code := range []int{http.StatusNotModified, http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusServiceUnavailable} {
		s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		out := NewHTTPChecker(2*time.Second, "").Check(context.Background(), s.URL)
		s.Close()
		if out.Up {
			t.Fatalf("code %d: want down, got up", code)
		}
	}
}

func TestHTTPChecker_CustomUserAgent(t *testing.T) {
	var gotUA string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(204)
	}))
	defer s.Close()

	out := NewHTTPChecker(time.Second, "probe-test/2").Check(context.Background(), s.URL)
	if !out.Up {
		t.Fatalf("204 should be up, got %+v", out)
	}
	if gotUA != "probe-test/2" {
		t.Fatalf("user agent not applied: %q", gotUA)
	}
}

func TestHTTPChecker_TimeoutIsDownWithoutLatency(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	out := NewHTTPChecker(50*time.Millisecond, "").Check(context.Background(), s.URL)
	if out.Up {
		t.Fatalf("want down due to timeout, got %+v", out)
	}
	if out.StatusCode != 0 {
		t.Fatalf("want status 0 on transport error, got %d", out.StatusCode)
	}
	if out.ResponseTimeMS != nil {
		t.Fatalf("want nil latency on transport error, got %d", *out.ResponseTimeMS)
	}
	if out.Reason == "" {
		t.Fatalf("want transport error as reason")
	}
}

func TestHTTPChecker_ConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	out := NewHTTPChecker(time.Second, "").Check(context.Background(), "http://"+addr)
	if out.Up || out.StatusCode != 0 {
		t.Fatalf("want transport failure, got %+v", out)
	}
	if !strings.Contains(out.Reason, "refused") {
		t.Logf("reason did not mention refusal (platform dependent): %q", out.Reason)
	}
}

func TestHTTPChecker_MalformedURL(t *testing.T) {
	out := NewHTTPChecker(time.Second, "").Check(context.Background(), "http://[::1")
	if out.Up || out.Reason == "" {
		t.Fatalf("want down with reason, got %+v", out)
	}
}

func TestClassify(t *testing.T) {
	cases := map[int]bool{199: false, 200: true, 250: true, 299: true, 300: false, 500: false}
	for code, want := range cases {
		if got := Classify(code); got != want {
			t.Fatalf("Classify(%d)=%v want %v", code, got, want)
		}
	}
}
