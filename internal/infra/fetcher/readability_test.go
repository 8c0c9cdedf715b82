package fetcher_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"newsharvest/internal/infra/fetcher"
	"newsharvest/internal/usecase/collect"
)

// testContentConfig disables the private IP check so fetchers can talk to
// httptest servers on the loopback interface.
func testContentConfig() fetcher.ContentFetchConfig {
	cfg := fetcher.DefaultConfig()
	cfg.DenyPrivateIPs = false
	return cfg
}

func TestFetchContent_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "NewsHarvestBot/1.0" {
			t.Errorf("User-Agent = %q, want %q", got, "NewsHarvestBot/1.0")
		}

		html := `<!DOCTYPE html>
<html>
<head><title>Matéria de teste</title></head>
<body>
	<article>
		<h1>Título da matéria</h1>
		<p>Primeiro parágrafo do corpo da matéria com contexto suficiente.</p>
		<p>Segundo parágrafo com mais informação relevante para extração.</p>
		<p>Terceiro parágrafo para garantir conteúdo legível o bastante.</p>
	</article>
</body>
</html>`
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(html)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	f := fetcher.NewReadabilityFetcher(testContentConfig())

	content, err := f.FetchContent(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchContent() error = %v", err)
	}
	if content == "" {
		t.Fatal("content is empty")
	}
	if !strings.Contains(content, "Primeiro parágrafo") {
		t.Errorf("content = %q, want the first paragraph in it", content)
	}
}

func TestFetchContent_InvalidURL(t *testing.T) {
	f := fetcher.NewReadabilityFetcher(fetcher.DefaultConfig())

	tests := []struct {
		name string
		url  string
	}{
		{name: "malformed URL", url: "not-a-valid-url"},
		{name: "URL with spaces", url: "http://example .com/article"},
		{name: "empty URL", url: ""},
		{name: "file scheme", url: "file:///etc/passwd"},
		{name: "ftp scheme", url: "ftp://ftp.example.com/file.txt"},
		{name: "javascript scheme", url: "javascript:alert('xss')"},
		{name: "data scheme", url: "data:text/html,<h1>test</h1>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.FetchContent(context.Background(), tt.url)
			if !errors.Is(err, collect.ErrInvalidURL) {
				t.Errorf("FetchContent() error = %v, want ErrInvalidURL", err)
			}
		})
	}
}

func TestFetchContent_PrivateIPDenied(t *testing.T) {
	cfg := fetcher.DefaultConfig()
	cfg.DenyPrivateIPs = true
	f := fetcher.NewReadabilityFetcher(cfg)

	tests := []struct {
		name string
		url  string
	}{
		{name: "localhost", url: "http://localhost/article"},
		{name: "loopback with port", url: "http://127.0.0.1:6379/"},
		{name: "10.x.x.x", url: "http://10.0.0.1/article"},
		{name: "192.168.x.x", url: "http://192.168.1.1/article"},
		{name: "172.16-31.x.x", url: "http://172.16.0.1/article"},
		{name: "IPv6 loopback", url: "http://[::1]/article"},
		{name: "cloud metadata", url: "http://169.254.169.254/latest/meta-data/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.FetchContent(context.Background(), tt.url)
			if !errors.Is(err, collect.ErrPrivateIP) {
				t.Errorf("FetchContent() error = %v, want ErrPrivateIP", err)
			}
		})
	}
}

func TestFetchContent_HTTPError(t *testing.T) {
	statuses := []int{
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
	}

	for _, status := range statuses {
		t.Run(fmt.Sprintf("HTTP %d", status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			defer server.Close()

			f := fetcher.NewReadabilityFetcher(testContentConfig())

			_, err := f.FetchContent(context.Background(), server.URL)
			if err == nil {
				t.Fatalf("FetchContent() error = nil, want error for HTTP %d", status)
			}
			if !strings.Contains(err.Error(), fmt.Sprintf("%d", status)) {
				t.Errorf("error = %v, want status code %d in it", err, status)
			}
		})
	}
}

func TestFetchContent_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html := fmt.Sprintf(`<html><body><article><p>%s</p></article></body></html>`,
			strings.Repeat("x", 4096))
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(html)); err != nil {
			t.Logf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	cfg := testContentConfig()
	cfg.MaxBodySize = 1024
	f := fetcher.NewReadabilityFetcher(cfg)

	_, err := f.FetchContent(context.Background(), server.URL)
	if !errors.Is(err, collect.ErrBodyTooLarge) {
		t.Fatalf("FetchContent() error = %v, want ErrBodyTooLarge", err)
	}
}

func TestFetchContent_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		if _, err := w.Write([]byte("too late")); err != nil {
			t.Logf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	cfg := testContentConfig()
	cfg.Timeout = 500 * time.Millisecond
	f := fetcher.NewReadabilityFetcher(cfg)

	_, err := f.FetchContent(context.Background(), server.URL)
	if !errors.Is(err, collect.ErrTimeout) {
		t.Fatalf("FetchContent() error = %v, want ErrTimeout", err)
	}
}

func TestFetchContent_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("response")); err != nil {
			t.Logf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	f := fetcher.NewReadabilityFetcher(testContentConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.FetchContent(ctx, server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("FetchContent() error = %v, want context.Canceled", err)
	}
}

func TestFetchContent_ExtractionFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html := `<!DOCTYPE html>
<html>
<head><title>Página vazia</title></head>
<body><!-- nenhum conteúdo --></body>
</html>`
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(html)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	f := fetcher.NewReadabilityFetcher(testContentConfig())

	// Readability may still synthesize a fragment from an empty page; only the
	// error classification is pinned down here.
	content, err := f.FetchContent(context.Background(), server.URL)
	if err != nil {
		if !errors.Is(err, collect.ErrExtractionFailed) {
			t.Errorf("FetchContent() error = %v, want ErrExtractionFailed", err)
		}
		return
	}
	if strings.Contains(content, "nenhum conteúdo") {
		t.Errorf("content = %q, must not contain HTML comments", content)
	}
}

func TestFetchContent_FollowsRedirects(t *testing.T) {
	finalServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html := `<!DOCTYPE html>
<html><head><title>Destino final</title></head>
<body><article><h1>Conteúdo final</h1><p>Chegou depois do redirecionamento.</p></article></body>
</html>`
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(html)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer finalServer.Close()

	initialServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, finalServer.URL, http.StatusFound)
	}))
	defer initialServer.Close()

	f := fetcher.NewReadabilityFetcher(testContentConfig())

	content, err := f.FetchContent(context.Background(), initialServer.URL)
	if err != nil {
		t.Fatalf("FetchContent() error = %v", err)
	}
	if !strings.Contains(content, "Conteúdo final") {
		t.Errorf("content = %q, want the final destination body", content)
	}
}

func TestFetchContent_TooManyRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer server.Close()

	cfg := testContentConfig()
	cfg.MaxRedirects = 2
	f := fetcher.NewReadabilityFetcher(cfg)

	_, err := f.FetchContent(context.Background(), server.URL)
	if !errors.Is(err, collect.ErrTooManyRedirects) {
		t.Fatalf("FetchContent() error = %v, want ErrTooManyRedirects", err)
	}
}

func TestFetchContent_CircuitBreakerOpens(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := fetcher.NewReadabilityFetcher(testContentConfig())

	// The content-fetch breaker needs ten observed requests before the
	// failure ratio can trip it.
	for i := 0; i < 10; i++ {
		if _, err := f.FetchContent(context.Background(), server.URL); err == nil {
			t.Fatalf("request %d: error = nil, want HTTP error", i)
		}
	}

	before := requests
	_, err := f.FetchContent(context.Background(), server.URL)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("FetchContent() error = %v, want ErrOpenState", err)
	}
	if requests != before {
		t.Errorf("requests = %d, want %d (open breaker must fail fast)", requests, before)
	}
}
