package shared

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeTrackKey(t *testing.T) {
	tc := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{
			name:   "basic normalization",
			title:  "Song Title",
			artist: "Artist Name",
			want:   "song title|artist name",
		},
		{
			name:   "extra whitespace",
			title:  "  Song   Title  ",
			artist: "  Artist   Name  ",
			want:   "song title|artist name",
		},
		{
			name:   "mixed case",
			title:  "SoNg TiTlE",
			artist: "ArTiSt NaMe",
			want:   "song title|artist name",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTrackKey(tt.title, tt.artist)
			if got != tt.want {
				t.Errorf("normalizeTrackKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name    string
		seconds int
		want    string
	}{
		{name: "three minutes", seconds: 180, want: "3:00"},
		{name: "with seconds", seconds: 245, want: "4:05"},
		{name: "under a minute", seconds: 42, want: "0:42"},
		{name: "zero", seconds: 0, want: "0:00"},
		{name: "negative clamps to zero", seconds: -5, want: "0:00"},
		{name: "over an hour", seconds: 3725, want: "62:05"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDuration(tt.seconds)
			if got != tt.want {
				t.Errorf("FormatDuration(%d) = %v, want %v", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestVisibilityString(t *testing.T) {
	if got := VisibilityString(true); got != "Public" {
		t.Errorf("VisibilityString(true) = %v, want Public", got)
	}
	if got := VisibilityString(false); got != "Private" {
		t.Errorf("VisibilityString(false) = %v, want Private", got)
	}
}

func TestTruncateString(t *testing.T) {
	tc := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{name: "shorter than max", s: "hello", max: 10, want: "hello"},
		{name: "exactly max", s: "hello", max: 5, want: "hello"},
		{name: "longer than max", s: "hello world", max: 5, want: "hello"},
		{name: "zero max", s: "hello", max: 0, want: ""},
		{name: "multibyte runes", s: "日本語のタイトル", max: 3, want: "日本語"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateString(tt.s, tt.max)
			if got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
			}
		})
	}
}

func TestGenerateState(t *testing.T) {
	state, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	if len(state) != 32 {
		t.Errorf("GenerateState() length = %d, want 32", len(state))
	}

	other, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	if state == other {
		t.Error("GenerateState() returned identical tokens")
	}
}

func TestMarshalJSON(t *testing.T) {
	payload := map[string]string{"name": "Road Trip"}

	t.Run("pretty output is indented", func(t *testing.T) {
		data, err := MarshalJSON(payload, true)
		if err != nil {
			t.Fatalf("MarshalJSON() error = %v", err)
		}
		if !strings.Contains(string(data), "\n  ") {
			t.Errorf("expected indented output, got %s", data)
		}
	})

	t.Run("compact output round trips", func(t *testing.T) {
		data, err := MarshalJSON(payload, false)
		if err != nil {
			t.Fatalf("MarshalJSON() error = %v", err)
		}
		if strings.Contains(string(data), "\n") {
			t.Errorf("expected compact output, got %s", data)
		}

		var decoded map[string]string
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("failed to unmarshal output: %v", err)
		}
		if decoded["name"] != "Road Trip" {
			t.Errorf("round trip name = %v, want Road Trip", decoded["name"])
		}
	})
}
