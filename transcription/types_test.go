package transcription

import "testing"

func TestShiftSegments(t *testing.T) {
	in := []Segment{{Text: "a", Start: 0, End: 1.5}, {Text: "b", Start: 1.5, End: 3}}
	out := ShiftSegments(in, 1200)

	if out[0].Start != 1200 || out[0].End != 1201.5 || out[1].Start != 1201.5 || out[1].End != 1203 {
		t.Errorf("unexpected shift: %+v", out)
	}
	if in[0].Start != 0 {
		t.Error("input must not be modified")
	}
	if got := ShiftSegments(nil, 10); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestLanguageName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", "English"},
		{"fr", "French"},
		{"de", "German"},
		{"", ""},
		{"not a tag!", "not a tag!"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := LanguageName(tt.code); got != tt.want {
				t.Errorf("LanguageName(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}
