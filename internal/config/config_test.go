package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvWithDefault(t *testing.T) {
	testCases := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{
			name:         "should return env value when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "from_env",
			expected:     "from_env",
		},
		{
			name:         "should return default when env not set",
			key:          "MISSING_KEY",
			defaultValue: "default_value",
			envValue:     "",
			expected:     "default_value",
		},
		{
			name:         "should return empty string default",
			key:          "EMPTY_KEY",
			defaultValue: "",
			envValue:     "",
			expected:     "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			result := GetEnvWithDefault(tt.key, tt.defaultValue)

			if result != tt.expected {
				t.Errorf("GetEnvWithDefault() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestGetEnvAsType(t *testing.T) {
	t.Run("parses durations", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "90s")
		assert.Equal(t, 90*time.Second, GetEnvAsType("TEST_DURATION", time.Second))
	})

	t.Run("falls back on malformed duration", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "soon")
		assert.Equal(t, time.Second, GetEnvAsType("TEST_DURATION", time.Second))
	})

	t.Run("parses int64", func(t *testing.T) {
		t.Setenv("TEST_INT64", "1048576")
		assert.Equal(t, int64(1048576), GetEnvAsType[int64]("TEST_INT64", 1))
	})

	t.Run("parses bool", func(t *testing.T) {
		t.Setenv("TEST_BOOL", "false")
		assert.False(t, GetEnvAsType("TEST_BOOL", true))
	})
}

func TestLoadConfig(t *testing.T) {
	vars := []string{
		"APP_PORT", "APP_HOST", "APP_ENV", "LOG_LEVEL", "JWT_SECRET", "DATABASE_URL",
		"EVENTS_DRIVER", "TOKEN_TTL", "KAFKA_BROKERS", "AUTH_BOOTSTRAP",
	}

	cleanupTestEnv := func() {
		for _, v := range vars {
			os.Unsetenv(v)
		}
	}

	t.Run("successful config load with all env vars", func(t *testing.T) {
		cleanupTestEnv()
		defer cleanupTestEnv()
		os.Setenv("APP_PORT", "9000")
		os.Setenv("APP_HOST", "0.0.0.0")
		os.Setenv("LOG_LEVEL", "debug")
		os.Setenv("JWT_SECRET", "super_secret_jwt_key")
		os.Setenv("TOKEN_TTL", "48h")
		os.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 9000, config.Port)
		assert.Equal(t, "0.0.0.0", config.Host)
		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, 48*time.Hour, config.TokenTTL)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, config.KafkaBrokers)
	})

	t.Run("should fail with invalid port", func(t *testing.T) {
		cleanupTestEnv()
		defer cleanupTestEnv()
		os.Setenv("APP_PORT", "not_a_number")

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
	})

	t.Run("should fail with unknown events driver", func(t *testing.T) {
		cleanupTestEnv()
		defer cleanupTestEnv()
		os.Setenv("EVENTS_DRIVER", "carrier-pigeon")

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
	})

	t.Run("should refuse default secret in production", func(t *testing.T) {
		cleanupTestEnv()
		defer cleanupTestEnv()
		os.Setenv("APP_ENV", "production")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("should use defaults when optional env vars not set", func(t *testing.T) {
		cleanupTestEnv()
		defer cleanupTestEnv()

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 8080, config.Port)
		assert.Equal(t, "localhost", config.Host)
		assert.Equal(t, "info", config.LogLevel)
		assert.Equal(t, "sqlite", config.DBDriver)
		assert.Equal(t, 7*24*time.Hour, config.TokenTTL)
		assert.Equal(t, time.Hour, config.TokenPurgeEvery)
		assert.Equal(t, "admin_token", config.CookieName)
		assert.Equal(t, "log", config.EventsDriver)
		assert.Equal(t, 10, config.OutboxMaxTries)
		assert.True(t, config.AuthBootstrap)
	})
}

func TestConfigStringMasksSecrets(t *testing.T) {
	c := &Config{
		DatabaseURL: "postgres://app:hunter2@db:5432/food",
		DBPassword:  "hunter2",
		JWTSecret:   "jwt-hunter2",
	}

	s := c.String()

	assert.False(t, strings.Contains(s, "hunter2"), "secrets leaked: %s", s)
	assert.Contains(t, s, "app")
}

func BenchmarkGetEnvWithDefault(b *testing.B) {
	os.Setenv("BENCH_KEY", "test_value")
	defer os.Unsetenv("BENCH_KEY")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GetEnvWithDefault("BENCH_KEY", "default")
	}
}
