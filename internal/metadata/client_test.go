package metadata

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(server.URL, "test-key", 2*time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	return client
}

func TestHTTPClientFetch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/metadata" {
			t.Errorf("path = %q, want /metadata", r.URL.Path)
		}
		if got := r.URL.Query().Get("title"); got != "Inception" {
			t.Errorf("title = %q, want Inception", got)
		}
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("api key = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
            "title": "Inception",
            "posterUrl": "https://img.example/inception.jpg",
            "synopsis": "A thief steals secrets through dreams.",
            "director": "Christopher Nolan",
            "cast": ["Leonardo DiCaprio", "Elliot Page"]
        }`)
	})

	result, err := client.Fetch(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Director == nil || *result.Director != "Christopher Nolan" {
		t.Errorf("director = %v", result.Director)
	}
	if result.PosterURL == nil || *result.PosterURL != "https://img.example/inception.jpg" {
		t.Errorf("posterUrl = %v", result.PosterURL)
	}
	if len(result.Cast) != 2 {
		t.Errorf("cast = %v", result.Cast)
	}
}

func TestHTTPClientFetch_BlankFieldsNormalized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"title": "Sparse", "director": "   ", "synopsis": null}`)
	})

	result, err := client.Fetch(context.Background(), "Sparse")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Director != nil {
		t.Errorf("blank director = %v, want nil", result.Director)
	}
	if result.Synopsis != nil || result.PosterURL != nil {
		t.Errorf("missing fields not nil: %+v", result)
	}
}

func TestHTTPClientFetch_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := client.Fetch(context.Background(), "Unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("404 error = %v, want ErrNotFound", err)
	}
}

func TestHTTPClientFetch_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Fetch(context.Background(), "Broken")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("500 error = %v, want non-nil and not ErrNotFound", err)
	}
}

func TestNoopClient(t *testing.T) {
	if _, err := (Noop{}).Fetch(context.Background(), "Anything"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("noop error = %v, want ErrNotFound", err)
	}
}

func FuzzNormalize(f *testing.F) {
	f.Add("")
	f.Add("   ")
	f.Add("Christopher Nolan")
	f.Add("\tpadded\n")

	f.Fuzz(func(t *testing.T, input string) {
		got := normalize(&input)
		if got == nil {
			return
		}
		if *got == "" {
			t.Fatalf("normalize(%q) returned empty non-nil string", input)
		}
		if *got != input && len(*got) >= len(input) {
			t.Fatalf("normalize(%q) = %q, trimmed result should be shorter", input, *got)
		}
	})
}
