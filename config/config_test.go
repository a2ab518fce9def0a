package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type testConfig struct {
	ServiceConfig `mapstructure:",squash"`
	Runpod        struct {
		ServerlessURL string `mapstructure:"serverless_url"`
		AuthToken     string `mapstructure:"auth_token"`
	} `mapstructure:"runpod"`
	APIKey string `mapstructure:"api_key"`
}

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }

func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "scribe"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected logging defaults, got level %q", cfg.Logging.Level)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "scribe", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "scribe", Environment: "staging"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "scribe", Environment: "qa"}, "config.environment must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfigWithYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	yamlContent := `
name: scribe
environment: staging
runpod:
  serverless_url: https://from-yaml.example
  auth_token: yaml-token
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RUNPOD_AUTH_TOKEN", "env-token")
	t.Setenv("API_KEY", "secret")

	var cfg testConfig
	if err := LoadConfig("scribe", &cfg, WithConfigFile(configPath), WithEnvFile(filepath.Join(dir, "missing.env"))); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "scribe" || cfg.Environment != "staging" {
		t.Errorf("expected YAML service fields, got %+v", cfg.ServiceConfig)
	}
	if cfg.Runpod.ServerlessURL != "https://from-yaml.example" {
		t.Errorf("expected YAML endpoint, got %q", cfg.Runpod.ServerlessURL)
	}
	if cfg.Runpod.AuthToken != "env-token" {
		t.Errorf("expected env override, got %q", cfg.Runpod.AuthToken)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("expected api_key from env, got %q", cfg.APIKey)
	}
}

func TestLoadConfigFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("RUNPOD_SERVERLESS_URL=https://dotenv.example\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("RUNPOD_SERVERLESS_URL") })

	var cfg testConfig
	if err := LoadConfig("scribe", &cfg, WithEnvFile(envPath), WithConfigFile(filepath.Join(dir, "none.yml"))); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Runpod.ServerlessURL != "https://dotenv.example" {
		t.Errorf("expected value from .env, got %q", cfg.Runpod.ServerlessURL)
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/scribe/config.yml": true,
		"../.env":                 true,
	}}
	r := &Resolver{FileSystem: fs}

	got := r.ResolveFiles("scribe", LoaderConfig{})
	if got.ConfigFile != "./cmd/scribe/config.yml" {
		t.Errorf("expected cmd config, got %q", got.ConfigFile)
	}
	if got.EnvFile != "../.env" {
		t.Errorf("expected ../.env, got %q", got.EnvFile)
	}

	explicit := r.ResolveFiles("scribe", LoaderConfig{ConfigFile: "x.yml", EnvFile: "y.env"})
	if explicit.ConfigFile != "x.yml" || explicit.EnvFile != "y.env" {
		t.Errorf("expected explicit paths to win, got %+v", explicit)
	}
}

func TestLoadConfigUsesFileSystemForEnv(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./.env": true}}
	var cfg testConfig
	if err := LoadConfig("scribe", &cfg, WithFileSystem(fs)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(fs.loaded) != 1 || fs.loaded[0] != "./.env" {
		t.Errorf("expected ./.env to be loaded, got %v", fs.loaded)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("RUNPOD_AUTH_TOKEN")
	for _, want := range []string{"runpod_auth_token", "runpod.auth.token", "runpod.auth_token"} {
		if !slices.Contains(got, want) {
			t.Errorf("expected %q in %v", want, got)
		}
	}
	if single := envKeyVariants("PORT"); len(single) != 1 || single[0] != "port" {
		t.Errorf("expected [port], got %v", single)
	}
}

func TestLoadConfigStripsQuotedEnvValues(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("API_KEY", ` "quoted-key" `)

	var cfg testConfig
	if err := LoadConfig("scribe", &cfg, WithConfigFile(filepath.Join(dir, "none.yml")), WithEnvFile(filepath.Join(dir, "none.env"))); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APIKey != "quoted-key" {
		t.Errorf("api_key = %q", cfg.APIKey)
	}
}
