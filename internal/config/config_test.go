package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, DriverPostgres, cfg.DBDriver)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, BackendOpenSearch, cfg.SearchBackend)
				assert.Equal(t, "http", cfg.SearchProtocol)
				assert.Equal(t, "localhost", cfg.SearchHost)
				assert.Zero(t, cfg.SearchPort)
				assert.Equal(t, "inventory", cfg.SearchIndexName)
				assert.Equal(t, 5*time.Second, cfg.SearchConnectTimeout)
				assert.Equal(t, 30*time.Second, cfg.SearchRequestTimeout)
				assert.Equal(t, 5*time.Second, cfg.SearchDocumentTimeout)
				assert.Equal(t, 120*time.Second, cfg.SearchBulkTimeout)
				assert.Equal(t, 30*time.Second, cfg.SearchReconnectInterval)
				assert.Equal(t, 500, cfg.SyncFetchBatchSize)
				assert.Equal(t, 100, cfg.SyncUploadChunkSize)
				assert.Equal(t, 3, cfg.SyncMaxAttempts)
				assert.Zero(t, cfg.SyncChunkRatePerSec)
				assert.Equal(t, "searchsync", cfg.MetricsNamespace)
				assert.Empty(t, cfg.FieldEncryptionKey)
			},
		},
		{
			name: "load custom database configuration",
			envVars: map[string]string{
				"DB_DRIVER":                    "mysql",
				"DB_CONNECTION_STRING":         "user:password@tcp(localhost:3306)/backoffice?parseTime=true",
				"DB_MAX_OPEN_CONNECTIONS":      "50",
				"DB_MAX_IDLE_CONNECTIONS":      "10",
				"DB_CONN_MAX_LIFETIME_MINUTES": "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DriverMySQL, cfg.DBDriver)
				assert.Equal(t, "user:password@tcp(localhost:3306)/backoffice?parseTime=true", cfg.DBConnectionString)
				assert.Equal(t, 50, cfg.DBMaxOpenConnections)
				assert.Equal(t, 10, cfg.DBMaxIdleConnections)
				assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
			},
		},
		{
			name: "load custom search configuration",
			envVars: map[string]string{
				"SEARCH_BACKEND":                  "typesense",
				"SEARCH_PROTOCOL":                 "https",
				"SEARCH_HOST":                     "search.internal",
				"SEARCH_PORT":                     "443",
				"SEARCH_API_KEY":                  "xyz",
				"SEARCH_INDEX_NAME":               "items_v2",
				"SEARCH_DOCUMENT_TIMEOUT_SECONDS": "2",
				"SYNC_CHUNK_RATE_PER_SEC":         "2.5",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendTypesense, cfg.SearchBackend)
				assert.Equal(t, "https", cfg.SearchProtocol)
				assert.Equal(t, "search.internal", cfg.SearchHost)
				assert.Equal(t, 443, cfg.SearchPort)
				assert.Equal(t, "xyz", cfg.SearchAPIKey)
				assert.Equal(t, "items_v2", cfg.SearchIndexName)
				assert.Equal(t, 2*time.Second, cfg.SearchDocumentTimeout)
				assert.Equal(t, 2.5, cfg.SyncChunkRatePerSec)
			},
		},
		{
			name: "load field encryption and kms configuration",
			envVars: map[string]string{
				"FIELD_ENCRYPTION_KEY": "d2VsbA==",
				"KMS_PROVIDER":         "localsecrets",
				"KMS_KEY_URI":          "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4=",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "d2VsbA==", cfg.FieldEncryptionKey)
				assert.Equal(t, "localsecrets", cfg.KMSProvider)
				assert.True(t, strings.HasPrefix(cfg.KMSKeyURI, "base64key://"))
			},
		},
		{
			name: "load custom log level",
			envVars: map[string]string{
				"LOG_LEVEL": "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "debug", cfg.GetGinMode())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()

			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			tt.validate(t, Load())
		})
	}
}

func validConfig() *Config {
	os.Clearenv()
	cfg := Load()
	cfg.FieldEncryptionKey = strings.Repeat("ab", 32)
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	t.Run("defaults with a key are valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	tests := []struct {
		name   string
		mutate func(cfg *Config)
		field  string
	}{
		{"missing key", func(cfg *Config) { cfg.FieldEncryptionKey = "" }, "FieldEncryptionKey"},
		{"blank key", func(cfg *Config) { cfg.FieldEncryptionKey = "   " }, "FieldEncryptionKey"},
		{"unknown driver", func(cfg *Config) { cfg.DBDriver = "sqlite" }, "DBDriver"},
		{"unknown backend", func(cfg *Config) { cfg.SearchBackend = "solr" }, "SearchBackend"},
		{"bad protocol", func(cfg *Config) { cfg.SearchProtocol = "ftp" }, "SearchProtocol"},
		{"bad index name", func(cfg *Config) { cfg.SearchIndexName = "Inventory Items" }, "SearchIndexName"},
		{"batch too large", func(cfg *Config) { cfg.SyncFetchBatchSize = 5000 }, "SyncFetchBatchSize"},
		{"zero chunk", func(cfg *Config) { cfg.SyncUploadChunkSize = 0 }, "SyncUploadChunkSize"},
		{"negative rate", func(cfg *Config) { cfg.SyncChunkRatePerSec = -1 }, "SyncChunkRatePerSec"},
		{"kms provider without uri", func(cfg *Config) { cfg.KMSProvider = "hashivault" }, "KMSKeyURI"},
		{"bad log level", func(cfg *Config) { cfg.LogLevel = "verbose" }, "LogLevel"},
		{"padded search host", func(cfg *Config) { cfg.SearchHost = " opensearch" }, "SearchHost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestGetGinMode(t *testing.T) {
	for level, mode := range map[string]string{"debug": "debug", "info": "release", "error": "release", "": "release"} {
		cfg := &Config{LogLevel: level}
		assert.Equal(t, mode, cfg.GetGinMode(), level)
	}
}
