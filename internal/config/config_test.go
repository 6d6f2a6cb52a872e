package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)

				assert.Equal(t, 8000, cfg.Server.Port)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "promptq_db", cfg.Database.Database)
				assert.True(t, cfg.Events.Enabled)
				assert.Equal(t, "prompt_events", cfg.Events.RabbitMQ.Exchange.Name)
				assert.Equal(t, "prompt-queue-api", cfg.App.Name)
				assert.Equal(t, time.Second, cfg.Worker.PollInterval)
				assert.Equal(t, "llama3.2", cfg.Worker.Generate.Model)
				assert.Equal(t, 120*time.Second, cfg.Worker.Generate.Timeout)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GENERATE_URL", "http://ollama.internal:11434/api/generate")
	t.Setenv("GENERATE_MODEL", "mistral")
	t.Setenv("GENERATE_TIMEOUT", "45s")
	t.Setenv("WORKER_POLL_INTERVAL", "250ms")
	t.Setenv("LOG_QUIET", "true")

	cfg, err := Load("testdata/valid_config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "http://ollama.internal:11434/api/generate", cfg.Worker.Generate.URL)
	assert.Equal(t, "mistral", cfg.Worker.Generate.Model)
	assert.Equal(t, 45*time.Second, cfg.Worker.Generate.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Worker.PollInterval)
	assert.True(t, cfg.Logging.Quiet)
}

func TestLoad_EnvOverrides_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		envKey    string
		envValue  string
		errString string
	}{
		{
			name:      "unparseable generate timeout",
			envKey:    "GENERATE_TIMEOUT",
			envValue:  "ninety seconds",
			errString: "invalid GENERATE_TIMEOUT",
		},
		{
			name:      "unparseable poll interval",
			envKey:    "WORKER_POLL_INTERVAL",
			envValue:  "250",
			errString: "invalid WORKER_POLL_INTERVAL",
		},
		{
			name:      "unparseable log quiet",
			envKey:    "LOG_QUIET",
			envValue:  "maybe",
			errString: "invalid LOG_QUIET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envValue)

			cfg, err := Load("testdata/valid_config.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errString)
			assert.Nil(t, cfg)
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8000},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "promptq_db",
		},
		Events: EventsConfig{
			Enabled: true,
			RabbitMQ: RabbitMQConfig{
				Host: "localhost",
				Port: 5672,
				Exchange: ExchangeConfig{
					Name: "prompt_events",
				},
			},
		},
		Worker: WorkerConfig{
			PollInterval: time.Second,
			Generate: GenerateConfig{
				URL:     "http://localhost:11434/api/generate",
				Model:   "llama3.2",
				Timeout: 120 * time.Second,
			},
		},
	}
}

func TestConfig_ValidateAPIConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errString string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:      "invalid server port - too low",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name:      "invalid server port - too high",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name:      "missing database host",
			mutate:    func(c *Config) { c.Database.Host = "" },
			wantErr:   true,
			errString: "database host is required",
		},
		{
			name:      "missing database name",
			mutate:    func(c *Config) { c.Database.Database = "" },
			wantErr:   true,
			errString: "database name is required",
		},
		{
			name:      "events enabled without rabbitmq host",
			mutate:    func(c *Config) { c.Events.RabbitMQ.Host = "" },
			wantErr:   true,
			errString: "rabbitmq host is required",
		},
		{
			name: "events disabled skips rabbitmq validation",
			mutate: func(c *Config) {
				c.Events.Enabled = false
				c.Events.RabbitMQ = RabbitMQConfig{}
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateAPIConfig()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateWorkerConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errString string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:      "zero poll interval",
			mutate:    func(c *Config) { c.Worker.PollInterval = 0 },
			wantErr:   true,
			errString: "poll_interval must be greater than 0",
		},
		{
			name:      "missing generate url",
			mutate:    func(c *Config) { c.Worker.Generate.URL = "" },
			wantErr:   true,
			errString: "generate url is required",
		},
		{
			name:      "missing generate model",
			mutate:    func(c *Config) { c.Worker.Generate.Model = "" },
			wantErr:   true,
			errString: "generate model is required",
		},
		{
			name:      "zero generate timeout",
			mutate:    func(c *Config) { c.Worker.Generate.Timeout = 0 },
			wantErr:   true,
			errString: "generate timeout must be greater than 0",
		},
		{
			name:      "missing database host",
			mutate:    func(c *Config) { c.Database.Host = "" },
			wantErr:   true,
			errString: "database host is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.ValidateWorkerConfig()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
