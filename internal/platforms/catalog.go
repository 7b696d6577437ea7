package platforms

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Platforms []PlatformConfig `yaml:"platforms"`
}

// PlatformConfig is the YAML shape of one platform entry.
type PlatformConfig struct {
	ID            string `yaml:"id"`
	Enabled       *bool  `yaml:"enabled"`
	MaxContentLen int    `yaml:"max_content_length"`
	MaxHashtags   int    `yaml:"max_hashtags"`
	RequiresImage *bool  `yaml:"requires_image"`
}

// PlatformInfo describes a platform's publishing constraints.
type PlatformInfo struct {
	ID            string `json:"id"`
	Enabled       bool   `json:"enabled"`
	MaxContentLen int    `json:"max_content_length"`
	MaxHashtags   int    `json:"max_hashtags"`
	RequiresImage bool   `json:"requires_image"`
}

var (
	stateMu      sync.RWMutex
	initialized  bool
	platformByID map[string]PlatformInfo
	platformList []string
)

// InitFromEnvAndConfig loads the platform catalog from the YAML config file
// if one exists, falling back to built-in defaults.
func InitFromEnvAndConfig() error {
	platforms, err := loadPlatforms()

	stateMu.Lock()
	defer stateMu.Unlock()

	platformByID = make(map[string]PlatformInfo)
	platformList = platformList[:0]
	for _, p := range platforms {
		platformByID[p.ID] = p
		platformList = append(platformList, p.ID)
	}
	initialized = true
	return err
}

func ensureInitialized() {
	stateMu.RLock()
	ok := initialized
	stateMu.RUnlock()
	if ok {
		return
	}
	_ = InitFromEnvAndConfig()
}

// ResetForTest resets in-memory state so tests can force reload.
func ResetForTest() {
	stateMu.Lock()
	defer stateMu.Unlock()
	initialized = false
	platformByID = nil
	platformList = nil
}

// GetPlatforms returns all configured platforms.
func GetPlatforms() []PlatformInfo {
	ensureInitialized()

	stateMu.RLock()
	defer stateMu.RUnlock()

	result := make([]PlatformInfo, 0, len(platformList))
	for _, id := range platformList {
		if info, ok := platformByID[id]; ok {
			result = append(result, info)
		}
	}
	return result
}

// GetPlatform returns platform constraints by ID.
func GetPlatform(id string) (PlatformInfo, bool) {
	ensureInitialized()

	stateMu.RLock()
	defer stateMu.RUnlock()

	info, ok := platformByID[normalizeID(id)]
	return info, ok
}

// ValidateContent checks post content against a platform's constraints.
func ValidateContent(platformID, content string, hashtagCount int, hasImage bool) error {
	info, ok := GetPlatform(platformID)
	if !ok {
		return fmt.Errorf("platform %q is not in the catalog", platformID)
	}
	if !info.Enabled {
		return fmt.Errorf("platform %q is disabled", platformID)
	}
	if info.MaxContentLen > 0 && len([]rune(content)) > info.MaxContentLen {
		return fmt.Errorf("content exceeds %s limit of %d characters", info.ID, info.MaxContentLen)
	}
	if info.MaxHashtags > 0 && hashtagCount > info.MaxHashtags {
		return fmt.Errorf("too many hashtags for %s (max %d)", info.ID, info.MaxHashtags)
	}
	if info.RequiresImage && !hasImage {
		return fmt.Errorf("%s posts require an image", info.ID)
	}
	return nil
}

func loadPlatforms() ([]PlatformInfo, error) {
	cfgPlatforms, loadErr := loadConfigPlatforms()
	if len(cfgPlatforms) == 0 {
		cfgPlatforms = defaultPlatforms()
	}

	platforms := make([]PlatformInfo, 0, len(cfgPlatforms))
	for _, cfg := range cfgPlatforms {
		info, ok := normalizeConfig(cfg)
		if !ok {
			continue
		}
		platforms = append(platforms, info)
	}

	sort.SliceStable(platforms, func(i, j int) bool {
		return platforms[i].ID < platforms[j].ID
	})

	return platforms, loadErr
}

func loadConfigPlatforms() ([]PlatformConfig, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read platforms file %q: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse platforms file %q: %w", path, err)
	}

	return cfg.Platforms, nil
}

func resolveConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("POSTFORGE_PLATFORMS_FILE")); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}

	candidates := []string{
		"config/platforms.yaml",
		"./config/platforms.yaml",
		"/etc/postforge/platforms.yaml",
	}

	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != "" {
		candidates = append(candidates,
			filepath.Join(homeDir, ".config", "postforge", "platforms.yaml"),
		)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func normalizeConfig(cfg PlatformConfig) (PlatformInfo, bool) {
	id := normalizeID(cfg.ID)
	if id == "" {
		return PlatformInfo{}, false
	}

	enabled := true
	if cfg.Enabled != nil {
		enabled = *cfg.Enabled
	}
	requiresImage := false
	if cfg.RequiresImage != nil {
		requiresImage = *cfg.RequiresImage
	}

	return PlatformInfo{
		ID:            id,
		Enabled:       enabled,
		MaxContentLen: cfg.MaxContentLen,
		MaxHashtags:   cfg.MaxHashtags,
		RequiresImage: requiresImage,
	}, true
}

func normalizeID(id string) string {
	return strings.TrimSpace(strings.ToLower(id))
}

func boolPtr(v bool) *bool { return &v }

// defaultPlatforms holds the built-in catalog used when no config file is
// present. Limits follow each platform's published constraints.
func defaultPlatforms() []PlatformConfig {
	return []PlatformConfig{
		{ID: "facebook", MaxContentLen: 63206, MaxHashtags: 30},
		{ID: "instagram", MaxContentLen: 2200, MaxHashtags: 30, RequiresImage: boolPtr(true)},
		{ID: "linkedin", MaxContentLen: 3000, MaxHashtags: 30},
		{ID: "twitter", MaxContentLen: 280, MaxHashtags: 10},
		{ID: "telegram", MaxContentLen: 4096, MaxHashtags: 50},
		{ID: "youtube", MaxContentLen: 5000, MaxHashtags: 15, RequiresImage: boolPtr(true)},
		{ID: "tiktok", MaxContentLen: 2200, MaxHashtags: 30, RequiresImage: boolPtr(true)},
	}
}
