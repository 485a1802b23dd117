package vision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("\xff\xd8\xff\xe0fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantNil bool
		wantErr bool
		want    string
	}{
		{cfg: Config{Provider: "none"}, wantNil: true},
		{cfg: Config{}, wantNil: true},
		{cfg: Config{Provider: "Mistral", APIKey: "k"}, want: "*vision.PixtralDescriber"},
		{cfg: Config{Provider: "mistral"}, wantErr: true},
		{cfg: Config{Provider: "ollama"}, want: "*vision.OllamaDescriber"},
		{cfg: Config{Provider: "gpt-vision"}, wantErr: true},
	}
	for _, tt := range tests {
		d, err := New(tt.cfg)
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%+v) error = %v", tt.cfg, err)
			continue
		}
		if tt.wantNil && d != nil {
			t.Errorf("New(%+v) should return nil describer", tt.cfg)
		}
		if tt.want != "" && reflect.TypeOf(d).String() != tt.want {
			t.Errorf("New(%+v) = %T, want %s", tt.cfg, d, tt.want)
		}
	}
	if _, err := New(Config{Provider: "gpt-vision"}); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestPixtralDescribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []struct {
					Type     string `json:"type"`
					ImageURL struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != PixtralModel {
			t.Errorf("model = %s", req.Model)
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 ||
			!strings.HasPrefix(req.Messages[0].Content[1].ImageURL.URL, "data:image/jpeg;base64,") {
			t.Errorf("unexpected message: %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"pixtral-12b-2409",
			"choices":[{"index":0,"message":{"role":"assistant","content":"  A solar generator on a trailer. "},"finish_reason":"stop"},
			           {"index":1,"message":{"role":"assistant","content":""},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	d := NewPixtral("secret", "", srv.URL+"/v1", "")
	segs, err := d.Describe(context.Background(), writeImage(t, "exemple.jpg"))
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if len(segs) != 1 || segs[0] != "A solar generator on a trailer." {
		t.Fatalf("unexpected segments %q", segs)
	}
}

func TestPixtralDescribe_PropagatesTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"pixtral-12b-2409",
			"choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x1f},
		SpanID:     trace.SpanID{0x2e},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	if _, err := NewPixtral("k", "", srv.URL+"/v1", "").Describe(ctx, writeImage(t, "exemple.jpg")); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if !strings.Contains(traceparent, sc.TraceID().String()) {
		t.Fatalf("traceparent = %q, want trace %s", traceparent, sc.TraceID())
	}
}

func TestPixtralDescribe_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Unauthorized","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	d := NewPixtral("bad", "", srv.URL+"/v1", "")
	if _, err := d.Describe(context.Background(), writeImage(t, "a.png")); err == nil {
		t.Fatal("expected API error")
	}
	if _, err := d.Describe(context.Background(), filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Fatal("expected read error")
	}
}

func TestOllamaDescribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string   `json:"model"`
			Images []string `json:"images"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != DefaultOllamaModel || len(req.Images) != 1 {
			t.Errorf("unexpected request %+v", req)
		}
		w.Write([]byte(`{"response":"First paragraph.\n\nSecond paragraph.\n\n\n","done":true}`))
	}))
	defer srv.Close()

	segs, err := NewOllama(srv.URL, "", "").Describe(context.Background(), writeImage(t, "x.jpg"))
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if !reflect.DeepEqual(segs, []string{"First paragraph.", "Second paragraph."}) {
		t.Fatalf("unexpected segments %q", segs)
	}
}

func TestReadImage_SniffsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.bin")
	os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nrest"), 0o644)
	mt, b64, err := readImage(path)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if mt != "image/png" || b64 == "" {
		t.Fatalf("got %s %q", mt, b64)
	}
}
