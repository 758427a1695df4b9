package ffmpeg

import "testing"

func TestParseProbe(t *testing.T) {
	tests := []struct {
		name      string
		out       string
		wantDur   float64
		wantCodec string
	}{
		{"mp3", `{"streams":[{"codec_name":"mp3"}],"format":{"duration":"125.431000"}}`, 125.431, "mp3"},
		{"no streams", `{"format":{"duration":"3.5"}}`, 3.5, "N/A"},
		{"bad duration", `{"streams":[{"codec_name":"aac"}],"format":{"duration":"N/A"}}`, 0, "aac"},
	}

	for _, tt := range tests {
		info, err := parseProbe([]byte(tt.out))
		if err != nil {
			t.Errorf("%s: parseProbe error: %v", tt.name, err)
			continue
		}
		if info.Duration != tt.wantDur || info.Codec != tt.wantCodec {
			t.Errorf("%s: got %+v, want duration %v codec %s", tt.name, info, tt.wantDur, tt.wantCodec)
		}
	}

	if _, err := parseProbe([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestNeedsConversion(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.m4a", true},
		{"a.M4A", true},
		{"a.mp3", false},
		{"a.wav", false},
	}
	for _, tt := range tests {
		if got := NeedsConversion(tt.path); got != tt.want {
			t.Errorf("NeedsConversion(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
