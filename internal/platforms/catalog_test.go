package platforms

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCatalogLoadFromConfig(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "platforms.yaml")
	cfg := `platforms:
  - id: twitter
    enabled: true
    max_content_length: 280
    max_hashtags: 5
  - id: instagram
    enabled: false
    max_content_length: 2200
    requires_image: true
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("POSTFORGE_PLATFORMS_FILE", cfgPath)

	if err := InitFromEnvAndConfig(); err != nil {
		t.Fatalf("init catalog: %v", err)
	}

	twitter, ok := GetPlatform("twitter")
	if !ok {
		t.Fatal("expected twitter platform")
	}
	if !twitter.Enabled || twitter.MaxContentLen != 280 || twitter.MaxHashtags != 5 {
		t.Fatalf("unexpected twitter config: %+v", twitter)
	}

	instagram, ok := GetPlatform("instagram")
	if !ok {
		t.Fatal("expected instagram platform")
	}
	if instagram.Enabled {
		t.Fatal("expected instagram disabled")
	}

	if _, ok := GetPlatform("facebook"); ok {
		t.Fatal("config file should replace the defaults entirely")
	}
}

func TestCatalogDefaults(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	// Point the explicit path env at nothing so cwd configs can't leak in.
	t.Setenv("POSTFORGE_PLATFORMS_FILE", "")

	all := GetPlatforms()
	if len(all) != 7 {
		t.Fatalf("expected 7 default platforms, got %d", len(all))
	}

	instagram, ok := GetPlatform("instagram")
	if !ok {
		t.Fatal("expected instagram in defaults")
	}
	if !instagram.RequiresImage {
		t.Fatal("expected instagram to require an image")
	}
}

func TestValidateContent(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	t.Setenv("POSTFORGE_PLATFORMS_FILE", "")

	if err := ValidateContent("twitter", strings.Repeat("a", 281), 0, false); err == nil {
		t.Error("expected length error for twitter")
	}
	if err := ValidateContent("twitter", "short", 0, false); err != nil {
		t.Errorf("expected short tweet to pass, got: %v", err)
	}
	if err := ValidateContent("instagram", "caption", 0, false); err == nil {
		t.Error("expected image requirement error for instagram")
	}
	if err := ValidateContent("instagram", "caption", 0, true); err != nil {
		t.Errorf("expected instagram with image to pass, got: %v", err)
	}
	if err := ValidateContent("twitter", "x", 11, false); err == nil {
		t.Error("expected hashtag limit error for twitter")
	}
	if err := ValidateContent("myspace", "x", 0, false); err == nil {
		t.Error("expected unknown platform error")
	}
}
