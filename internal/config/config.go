package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultModel        = "gpt-4o-mini"
	DefaultSearchDepth  = "basic"
	DefaultMaxResults   = 5
	DefaultMaxToolCalls = 5
)

// Environment variables that override the active profile
const (
	EnvHome         = "RORIATLAS_HOME"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvOpenAIBase   = "OPENAI_BASE_URL"
	EnvOpenAIModel  = "OPENAI_MODEL"
	EnvTavilyAPIKey = "TAVILY_API_KEY"
)

type Profile struct {
	APIKey                  string `json:"api_key"`
	BaseURL                 string `json:"base_url,omitempty"`
	Model                   string `json:"model"`
	SearchAPIKey            string `json:"search_api_key"`
	SearchDepth             string `json:"search_depth,omitempty"`
	SearchMaxResults        int    `json:"search_max_results,omitempty"`
	MaxToolCalls            int    `json:"max_tool_calls,omitempty"`
	DisableStructuredOutput bool   `json:"disable_structured_output,omitempty"`
}

type Config struct {
	Profiles       map[string]Profile `json:"profiles"`
	ActiveProfile  string             `json:"active_profile"`
	currentProfile *Profile
	path           string
}

// LoadConfig reads the profile file, creating a default one on first use.
// A .env file in the working directory is loaded into the environment first.
func LoadConfig() (*Config, error) {
	// Missing .env is the common case
	_ = godotenv.Load()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	// Ensure config directory exists
	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// Load existing config or create default
	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.path = configPath

	// Validate and set current profile
	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	return config, nil
}

// UseProfile selects a profile for this process without saving it
func (c *Config) UseProfile(name string) error {
	profile, exists := c.Profiles[name]
	if !exists {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	c.ActiveProfile = name
	c.currentProfile = &profile
	return nil
}

// Missing names the credentials still needed to run
func (c *Config) Missing() []string {
	var missing []string
	if c.GetAPIKey() == "" {
		missing = append(missing, "model API key ("+EnvOpenAIKey+")")
	}
	if c.GetSearchAPIKey() == "" {
		missing = append(missing, "search API key ("+EnvTavilyAPIKey+")")
	}
	return missing
}

func (c *Config) GetAPIKey() string {
	if v := os.Getenv(EnvOpenAIKey); v != "" {
		return v
	}
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.APIKey
}

func (c *Config) GetModel() string {
	if v := os.Getenv(EnvOpenAIModel); v != "" {
		return v
	}
	if c.currentProfile == nil || c.currentProfile.Model == "" {
		return DefaultModel
	}
	return c.currentProfile.Model
}

func (c *Config) GetBaseURL() string {
	if v := os.Getenv(EnvOpenAIBase); v != "" {
		return v
	}
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.BaseURL
}

func (c *Config) GetSearchAPIKey() string {
	if v := os.Getenv(EnvTavilyAPIKey); v != "" {
		return v
	}
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.SearchAPIKey
}

func (c *Config) GetSearchDepth() string {
	if c.currentProfile == nil || c.currentProfile.SearchDepth == "" {
		return DefaultSearchDepth
	}
	return c.currentProfile.SearchDepth
}

func (c *Config) GetSearchMaxResults() int {
	if c.currentProfile == nil || c.currentProfile.SearchMaxResults <= 0 {
		return DefaultMaxResults
	}
	return c.currentProfile.SearchMaxResults
}

func (c *Config) GetMaxToolCalls() int {
	if c.currentProfile == nil || c.currentProfile.MaxToolCalls <= 0 {
		return DefaultMaxToolCalls
	}
	return c.currentProfile.MaxToolCalls
}

func (c *Config) StructuredOutput() bool {
	return c.currentProfile == nil || !c.currentProfile.DisableStructuredOutput
}

// Path is where Save writes
func (c *Config) Path() string {
	return c.path
}

func getConfigPath() (string, error) {
	var configDir string

	// Use RORIATLAS_HOME if set, otherwise use user's home directory
	if home := os.Getenv(EnvHome); home != "" {
		configDir = home
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".roriatlas", "config.json"), nil
}

func ensureConfigDir(configPath string) error {
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0755)
}

func loadConfigFile(configPath string) (*Config, error) {
	// If config file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultProfile is the profile written on first run
func DefaultProfile() Profile {
	return Profile{
		Model:            DefaultModel,
		SearchDepth:      DefaultSearchDepth,
		SearchMaxResults: DefaultMaxResults,
		MaxToolCalls:     DefaultMaxToolCalls,
	}
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			"default": DefaultProfile(),
		},
		ActiveProfile: "default",
	}

	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}

	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	if c.path == "" {
		configPath, err := getConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		c.path = configPath
	}

	return saveConfig(c, c.path)
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// Fall back to the first profile by name so the choice is stable
		names := c.ProfileNames()
		c.ActiveProfile = names[0]
		profile = c.Profiles[names[0]]
	}

	c.currentProfile = &profile
	return nil
}

// ProfileNames returns profile names in sorted order
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaskKey hides all but the last four characters of a secret
func MaskKey(key string) string {
	if key == "" {
		return "Not set"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
