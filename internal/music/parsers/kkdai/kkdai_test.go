package kkdai

import "testing"

func TestExtractYouTubeID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?list=x&v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ?t=42", "dQw4w9WgXcQ", false},
		{"https://music.youtube.com/watch?v=abc", "abc", false},
		{"https://www.youtube.com/watch", "", true},
		{"https://example.com/watch?v=abc", "", true},
	}

	for _, tt := range tests {
		got, err := extractYouTubeID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("extractYouTubeID(%q) err=%v, wantErr=%v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("extractYouTubeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
