package main

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %s: %v", url, err)
	}

	return resp, string(body)
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path        string
		status      int
		contentType string
		contains    string
	}{
		{"/", http.StatusOK, "text/html; charset=utf-8", `src="/assets/app.js"`},
		{"/healthz", http.StatusOK, "text/plain; charset=utf-8", "Ok"},
		{"/version", http.StatusOK, "text/plain; charset=utf-8", "taboo v" + releaseVersion},
		{"/robots.txt", http.StatusOK, "text/plain; charset=utf-8", "Disallow: /"},
		{"/assets/app.js", http.StatusOK, "text/javascript; charset=utf-8", "WebSocket"},
		{"/assets/app.css", http.StatusOK, "text/css; charset=utf-8", ".card"},
		{"/favicons/favicon.svg", http.StatusOK, "image/svg+xml", "<svg"},
		{"/assets/missing.js", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, srv.URL+tt.path)

			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.contentType != "" && resp.Header.Get("Content-Type") != tt.contentType {
				t.Errorf("content type = %q, want %q", resp.Header.Get("Content-Type"), tt.contentType)
			}
			if !strings.Contains(body, tt.contains) {
				t.Errorf("body does not contain %q", tt.contains)
			}
		})
	}
}

func TestHomePageTemplated(t *testing.T) {
	srv := newTestServer(t)

	resp, body := get(t, srv.URL+"/")
	if strings.Contains(body, "{{") {
		t.Error("home page has unfilled placeholders")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}

func TestQRCode(t *testing.T) {
	srv := newTestServer(t)

	resp, body := get(t, srv.URL+"/qr")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.HasPrefix(body, "\x89PNG") {
		t.Error("body is not a PNG")
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		remote string
		header string
		value  string
		want   string
	}{
		{"10.0.0.1:1234", "", "", "10.0.0.1:1234"},
		{"10.0.0.1:1234", "X-Real-IP", "192.0.2.7", "192.0.2.7:1234"},
		{"10.0.0.1:1234", "CF-Connecting-IP", "2001:db8::1", "[2001:db8::1]:1234"},
		{"10.0.0.1:1234", "X-Real-IP", "not-an-ip", "10.0.0.1:1234"},
	}

	for _, tt := range tests {
		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = tt.remote
		if tt.header != "" {
			r.Header.Set(tt.header, tt.value)
		}

		if got := realIP(r); got != tt.want {
			t.Errorf("realIP(%s %s=%s) = %q, want %q", tt.remote, tt.header, tt.value, got, tt.want)
		}
	}
}

func TestHumanReadableSize(t *testing.T) {
	tests := map[int64]string{
		0:         "0 B",
		999:       "999 B",
		1000:      "1.0 kB",
		1500000:   "1.5 MB",
		123456789: "123.5 MB",
	}

	for in, want := range tests {
		if got := humanReadableSize(in); got != want {
			t.Errorf("humanReadableSize(%d) = %q, want %q", in, got, want)
		}
	}
}
