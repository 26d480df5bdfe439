package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.True(t, strings.HasPrefix(cfg.Database.DSN, "root:secret@tcp(localhost:3306)/"))
	assert.Equal(t, "dr_rajesh", cfg.DefaultDoctor.ID)
	assert.Equal(t, "Dr. Rajesh", cfg.DefaultDoctor.Name)
	assert.Equal(t, AvatarBackendDatabase, cfg.Avatars.Backend)
	assert.Equal(t, 15, cfg.JWTExpirationMinutes)
}

func TestLoadConfig_SQLiteDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_NAME", "local")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "local.db", cfg.Database.DSN)
}

func TestLoadConfig_ExplicitDSNWins(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://u:p@db/maternity")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/maternity", cfg.Database.DSN)
}

func TestLoadConfig_InvalidNumbers(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_MINUTES", "soon")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_EXPIRATION_MINUTES")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database:      DatabaseConfig{Driver: DriverSQLite},
			DefaultDoctor: DefaultDoctorConfig{ID: "dr_rajesh"},
			Avatars:       AvatarConfig{Backend: AvatarBackendDatabase, MaxBytes: 1024},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: "DB_DRIVER"},
		{name: "empty doctor", mutate: func(c *Config) { c.DefaultDoctor.ID = "" }, wantErr: "DEFAULT_DOCTOR_ID"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Avatars.Backend = AvatarBackendS3 }, wantErr: "AVATAR_S3_BUCKET"},
		{name: "s3 with bucket", mutate: func(c *Config) {
			c.Avatars.Backend = AvatarBackendS3
			c.Avatars.Bucket = "avatars"
		}},
		{name: "unknown backend", mutate: func(c *Config) { c.Avatars.Backend = "ftp" }, wantErr: "AVATAR_BACKEND"},
		{name: "zero max bytes", mutate: func(c *Config) { c.Avatars.MaxBytes = 0 }, wantErr: "AVATAR_MAX_BYTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
