package models

import (
	"strings"
	"testing"
)

func validProfile() CompanyProfile {
	p := CompanyProfile{
		ID:          "profile-1",
		UserID:      "user-1",
		CompanyName: "Acme",
		Industry:    "technology",
		CompanySize: "1-10",
	}
	p.ApplyDefaults()
	return p
}

func TestValidate_Defaults(t *testing.T) {
	p := validProfile()
	if err := p.Validate(); err != nil {
		t.Fatalf("default profile should validate, got %v", err)
	}
	if p.PostsToGenerate != 10 || p.SloganSizePercent != 4 || p.LogoSizePercent != 13 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestValidate_PostsToGenerateBounds(t *testing.T) {
	for _, n := range []int{0, -1, 31, 100} {
		p := validProfile()
		p.PostsToGenerate = n
		if err := p.Validate(); err == nil {
			t.Fatalf("posts_to_generate=%d should be rejected", n)
		}
	}
	for _, n := range []int{1, 10, 30} {
		p := validProfile()
		p.PostsToGenerate = n
		if err := p.Validate(); err != nil {
			t.Fatalf("posts_to_generate=%d should be accepted, got %v", n, err)
		}
	}
}

func TestValidate_SloganSizeBounds(t *testing.T) {
	for _, n := range []int{1, 9, 50} {
		p := validProfile()
		p.SloganSizePercent = n
		err := p.Validate()
		if err == nil {
			t.Fatalf("slogan_size_percent=%d should be rejected", n)
		}
		if !strings.Contains(err.Error(), "slogan_size_percent") {
			t.Fatalf("error should name the field, got %v", err)
		}
	}
	for _, n := range []int{2, 8} {
		p := validProfile()
		p.SloganSizePercent = n
		if err := p.Validate(); err != nil {
			t.Fatalf("slogan_size_percent=%d should be accepted, got %v", n, err)
		}
	}
}

func TestValidate_LogoSizeBounds(t *testing.T) {
	for _, n := range []int{1, 26} {
		p := validProfile()
		p.LogoSizePercent = n
		if err := p.Validate(); err == nil {
			t.Fatalf("logo_size_percent=%d should be rejected", n)
		}
	}
}

func TestValidate_GradientHeightBounds(t *testing.T) {
	for _, n := range []int{9, 51} {
		p := validProfile()
		p.GradientHeightPercent = n
		if err := p.Validate(); err == nil {
			t.Fatalf("gradient_height_percent=%d should be rejected", n)
		}
	}
}

func TestValidate_LogoPositionEnum(t *testing.T) {
	accepted := []string{
		PositionTopCenter, PositionTopLeft, PositionTopRight,
		PositionBottomCenter, PositionBottomLeft, PositionBottomRight,
	}
	for _, pos := range accepted {
		p := validProfile()
		p.LogoPosition = pos
		if err := p.Validate(); err != nil {
			t.Fatalf("logo_position=%q should be accepted, got %v", pos, err)
		}
	}
	for _, pos := range []string{"center", "middle", "top", "bottom-middle", ""} {
		p := validProfile()
		p.LogoPosition = pos
		if err := p.Validate(); err == nil {
			t.Fatalf("logo_position=%q should be rejected", pos)
		}
	}
}

func TestValidate_SloganPositionEnum(t *testing.T) {
	p := validProfile()
	p.SloganPosition = PositionTopLeft
	if err := p.Validate(); err == nil {
		t.Fatal("slogan_position=top-left should be rejected")
	}
}

func TestValidate_GradientPositionEnum(t *testing.T) {
	p := validProfile()
	p.GradientPosition = "left"
	if err := p.Validate(); err == nil {
		t.Fatal("gradient_position=left should be rejected")
	}
}

func TestTemplateRender(t *testing.T) {
	tmpl := ContentTemplate{TemplateContent: "Visit {company} at {url} today"}
	got := tmpl.Render(map[string]string{"company": "Acme", "url": "acme.example"})
	want := "Visit Acme at acme.example today"
	if got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}

	// Unknown placeholders stay put.
	got = tmpl.Render(map[string]string{"company": "Acme"})
	if !strings.Contains(got, "{url}") {
		t.Fatalf("unresolved placeholder should remain, got %q", got)
	}
}

func TestEngagementRate(t *testing.T) {
	perf := PostPerformance{Likes: 10, Comments: 5, Shares: 5, Reach: 200}
	perf.RecalculateEngagementRate()
	if perf.EngagementRate == nil || *perf.EngagementRate != 10 {
		t.Fatalf("expected engagement rate 10, got %v", perf.EngagementRate)
	}

	perf.Reach = 0
	perf.RecalculateEngagementRate()
	if perf.EngagementRate != nil {
		t.Fatal("engagement rate should be nil when reach is zero")
	}
}

func TestEncodeDecodeStringList(t *testing.T) {
	if EncodeStringList(nil) != "" {
		t.Fatal("nil list should encode to empty string")
	}
	raw := EncodeStringList([]string{"#go", "#social"})
	items := DecodeStringList(raw)
	if len(items) != 2 || items[0] != "#go" {
		t.Fatalf("round trip failed: %v", items)
	}
	if DecodeStringList("not json") != nil {
		t.Fatal("malformed input should decode to nil")
	}
}
