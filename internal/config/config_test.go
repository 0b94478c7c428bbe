package config

import (
	"strings"
	"testing"
	"time"
)

func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 8501 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8501)
	}
	if cfg.Upload.ChunkSize != 10000 {
		t.Errorf("Upload.ChunkSize = %d, want %d", cfg.Upload.ChunkSize, 10000)
	}
	if cfg.Upload.MaxFileSize != 200<<20 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 200<<20)
	}
	if cfg.Session.CookieName != "nsqip_session" {
		t.Errorf("Session.CookieName = %q, want %q", cfg.Session.CookieName, "nsqip_session")
	}
	if cfg.Dataset.SpecialtyColumn != "SURGSPEC" || cfg.Dataset.CodeColumn != "CPT" || cfg.Dataset.SexColumn != "SEX" {
		t.Errorf("Dataset columns = %+v, want SURGSPEC/CPT/SEX", cfg.Dataset)
	}
	if cfg.Dataset.HistogramBins != 20 {
		t.Errorf("Dataset.HistogramBins = %d, want %d", cfg.Dataset.HistogramBins, 20)
	}
	if cfg.Dataset.ExportDir != "" {
		t.Errorf("Dataset.ExportDir = %q, want empty", cfg.Dataset.ExportDir)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics = %+v, want enabled at /metrics", cfg.Metrics)
	}
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"UPLOAD_MAX_CONCURRENT":    "10",
		"DATASET_CODE_COLUMN":      "PODIAG",
		"DATASET_EXPORT_DIR":       "/srv/exports",
		"SESSION_SECURE_COOKIE":    "true",
		"RATE_LIMIT_ENABLED":       "false",
		"RATE_LIMIT_UPLOAD":        "0",
		"DATASET_SPECIALTY_COLUMN": " SURGSPEC ",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Upload.MaxConcurrent != 10 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 10)
	}
	if cfg.Dataset.CodeColumn != "PODIAG" {
		t.Errorf("Dataset.CodeColumn = %q, want %q", cfg.Dataset.CodeColumn, "PODIAG")
	}
	if cfg.Dataset.SpecialtyColumn != "SURGSPEC" {
		t.Errorf("Dataset.SpecialtyColumn = %q, want trimmed SURGSPEC", cfg.Dataset.SpecialtyColumn)
	}
	if cfg.Dataset.ExportDir != "/srv/exports" {
		t.Errorf("Dataset.ExportDir = %q, want %q", cfg.Dataset.ExportDir, "/srv/exports")
	}
	if !cfg.Session.SecureCookie {
		t.Error("Session.SecureCookie = false, want true")
	}
	if cfg.Rate.Enabled {
		t.Error("Rate.Enabled = true, want false")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"PORT": "7000"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 7000)
	}

	cfg, err = LoadFrom(env(map[string]string{"PORT": "7000", "SERVER_PORT": "7001"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("Server.Port = %d, want primary variable %d", cfg.Server.Port, 7001)
	}
}

func TestLoad_Duration(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SERVER_READ_TIMEOUT":  "45s",
		"UPLOAD_MAX_WAIT_TIME": "1m30s",
		"SESSION_TTL":          "30m",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Upload.MaxWaitTime != 90*time.Second {
		t.Errorf("Upload.MaxWaitTime = %v, want %v", cfg.Upload.MaxWaitTime, 90*time.Second)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, 30*time.Minute)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SERVER_PORT", "http"},
		{"SESSION_TTL", "forever"},
		{"METRICS_ENABLED", "maybe"},
		{"UPLOAD_MAX_FILE_SIZE", "big"},
	}

	for _, tt := range tests {
		_, err := LoadFrom(env(map[string]string{tt.key: tt.value}))
		if err == nil {
			t.Errorf("LoadFrom(%s=%q) expected error", tt.key, tt.value)
			continue
		}
		if !strings.Contains(err.Error(), tt.key) {
			t.Errorf("error should mention %s: %v", tt.key, err)
		}
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"TRUSTED_PROXIES": "10.0.0.0/8, 172.16.0.0/12 , ,192.168.0.0/16",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies = %v, want %v", cfg.Security.TrustedProxies, expected)
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
}

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		in      string
		want    ByteSize
		wantErr bool
	}{
		{"1048576", 1 << 20, false},
		{"512KB", 512 << 10, false},
		{"100MB", 100 << 20, false},
		{"2 gb", 2 << 30, false},
		{"64B", 64, false},
		{"MB", 0, true},
		{"ten", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseByteSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseByteSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseByteSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		mention string
	}{
		{"invalid port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"zero chunk size", func(c *Config) { c.Upload.ChunkSize = 0 }, "UPLOAD_CHUNK_SIZE"},
		{"zero max files", func(c *Config) { c.Upload.MaxFiles = 0 }, "UPLOAD_MAX_FILES"},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }, "SESSION_TTL"},
		{"blank cookie", func(c *Config) { c.Session.CookieName = "" }, "SESSION_COOKIE_NAME"},
		{"same filter columns", func(c *Config) { c.Dataset.CodeColumn = c.Dataset.SpecialtyColumn }, "must differ"},
		{"zero bins", func(c *Config) { c.Dataset.HistogramBins = 0 }, "DATASET_HISTOGRAM_BINS"},
		{"rate enabled without limit", func(c *Config) { c.Rate.RequestsPerMinute = 0 }, "RATE_LIMIT_REQUESTS_PER_MINUTE"},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "METRICS_PATH"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.mention) {
				t.Errorf("error should mention %s: %v", tt.mention, err)
			}
		})
	}
}

func TestValidate_RateDisabledSkipsLimits(t *testing.T) {
	cfg := validConfig(t)
	cfg.Rate.Enabled = false
	cfg.Rate.RequestsPerMinute = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8501, ":8501"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
		{"::1", 443, "[::1]:443"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString(t *testing.T) {
	cfg := validConfig(t)
	str := cfg.String()
	for _, want := range []string{"127.0.0.1:8501", "SURGSPEC", "nsqip_session"} {
		if !strings.Contains(str, want) {
			t.Errorf("String() = %q, missing %q", str, want)
		}
	}
}
