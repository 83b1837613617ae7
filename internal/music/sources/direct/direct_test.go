package direct

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProbe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg; charset=utf-8")
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	})
	mux.HandleFunc("/list.m3u8", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
	})
	mux.HandleFunc("/nohead", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/ogg")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewProber(srv.Client())

	tests := []struct {
		path    string
		wantErr bool
	}{
		{"/stream", false},
		{"/page", true},
		{"/list.m3u8", false},
		{"/nohead", false},
		{"/missing", true},
	}
	for _, tt := range tests {
		_, err := p.Probe(context.Background(), srv.URL+tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("Probe(%s): err=%v, wantErr=%v", tt.path, err, tt.wantErr)
		}
	}
}

func TestDirectSource_Link(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/ogg")
	}))
	defer srv.Close()

	src := New(NewProber(srv.Client()))
	if !src.Match(srv.URL) || src.Match("not a link") {
		t.Fatal("unexpected Match result")
	}

	track, err := src.Link(srv.URL + "/radio")
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if track.SourceName != "direct" || len(track.AvailableParsers) != 1 || track.AvailableParsers[0] != "ffmpeg-link" {
		t.Errorf("unexpected track %+v", track)
	}
}
