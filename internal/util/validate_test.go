package util

import "testing"

func TestValidateVideoID(t *testing.T) {
	valid := []string{"dQw4w9WgXcQ", "AAAAAAAAAAA", "a_b-c_d-e_f"}
	for _, id := range valid {
		if err := ValidateVideoID(id); err != nil {
			t.Errorf("ValidateVideoID(%q) unexpectedly failed: %v", id, err)
		}
	}

	invalid := []string{"", "short", "waaaaaaaaaytoolong", "bad!chars!!", "dQw4w9WgXc"}
	for _, id := range invalid {
		if err := ValidateVideoID(id); err == nil {
			t.Errorf("ValidateVideoID(%q) should have failed", id)
		}
	}
}

func TestValidateChannelID(t *testing.T) {
	if err := ValidateChannelID("UCAAAAAAAAAAAAAAAAAAAAAA"); err != nil {
		t.Errorf("Expected valid channel ID, got %v", err)
	}
	for _, id := range []string{"", "UCshort", "XXAAAAAAAAAAAAAAAAAAAAAA", "UCAAAAAAAAAAAAAAAAAAAAAAextra"} {
		if err := ValidateChannelID(id); err == nil {
			t.Errorf("ValidateChannelID(%q) should have failed", id)
		}
	}
}

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=30", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://example.com/video", "", true},
		{"https://www.youtube.com/playlist?list=x", "", true},
		{"ftp://www.youtube.com/watch?v=dQw4w9WgXcQ", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := ExtractVideoID(c.url)
		if c.wantErr {
			if err == nil {
				t.Errorf("ExtractVideoID(%q) should have failed", c.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("ExtractVideoID(%q) failed: %v", c.url, err)
			continue
		}
		if got != c.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestParseChannelURL(t *testing.T) {
	cases := []struct {
		url      string
		kind     string
		name     string
		wantErr  bool
	}{
		{"https://www.youtube.com/channel/UCAAAAAAAAAAAAAAAAAAAAAA", "channel", "UCAAAAAAAAAAAAAAAAAAAAAA", false},
		{"https://www.youtube.com/@somecreator", "handle", "somecreator", false},
		{"https://www.youtube.com/c/SomeChannel", "custom", "SomeChannel", false},
		{"https://www.youtube.com/user/olduser", "user", "olduser", false},
		{"https://www.youtube.com/channel/notachannelid", "", "", true},
		{"https://example.com/channel/UCAAAAAAAAAAAAAAAAAAAAAA", "", "", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "", "", true},
		{"", "", "", true},
	}
	for _, c := range cases {
		ref, err := ParseChannelURL(c.url)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseChannelURL(%q) should have failed", c.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseChannelURL(%q) failed: %v", c.url, err)
			continue
		}
		if ref.Kind != c.kind || ref.Name != c.name {
			t.Errorf("ParseChannelURL(%q) = {%s %s}, want {%s %s}", c.url, ref.Kind, ref.Name, c.kind, c.name)
		}
	}
}
