package gcs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	return &Client{
		defaultBucket: "bucket",
		tokenSource: &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
			return "token", time.Now().Add(time.Hour), nil
		}},
		httpClient: &http.Client{Transport: rt},
	}
}

func TestReadObjectSuccess(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(req *http.Request) *http.Response {
		if req.Method != http.MethodGet {
			t.Fatalf("expected GET, got %s", req.Method)
		}
		if req.Header.Get("Authorization") != "Bearer token" {
			t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
		}
		if !strings.Contains(req.URL.RawQuery, "alt=media") {
			t.Fatalf("expected alt=media in query, got %s", req.URL.RawQuery)
		}
		header := http.Header{}
		header.Set("Content-Type", "application/pdf")
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("plan-bytes")),
			Header:     header,
		}
	})

	data, info, err := client.ReadObject(context.Background(), "plans/strength-2026.pdf")
	if err != nil {
		t.Fatalf("ReadObject: %v", err)
	}
	if string(data) != "plan-bytes" {
		t.Fatalf("unexpected payload %q", data)
	}
	if info.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type %s", info.ContentType)
	}
	if info.Size != int64(len("plan-bytes")) {
		t.Fatalf("unexpected size %d", info.Size)
	}
	if info.Bucket != "bucket" {
		t.Fatalf("unexpected bucket %s", info.Bucket)
	}
}

func TestReadObjectNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(req *http.Request) *http.Response {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     http.Header{},
		}
	})

	_, _, err := client.ReadObject(context.Background(), "plans/missing.pdf")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestReadObjectServerError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(req *http.Request) *http.Response {
		return &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Status:     "503 Service Unavailable",
			Body:       io.NopCloser(strings.NewReader("backend unavailable")),
			Header:     http.Header{},
		}
	})

	_, _, err := client.ReadObject(context.Background(), "plans/strength-2026.pdf")
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if errors.Is(err, ErrObjectNotFound) {
		t.Fatal("5xx must not map to not-found")
	}
}

func TestReadObjectRequiresPath(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(req *http.Request) *http.Response {
		t.Fatal("no request expected")
		return nil
	})

	if _, _, err := client.ReadObject(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
