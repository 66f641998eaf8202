package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Media   MediaConfig   `yaml:"media"`
	Session SessionConfig `yaml:"session"`
	Storage StorageConfig `yaml:"storage"`
	Journal JournalConfig `yaml:"journal"`
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

type BackendConfig struct {
	BaseURL     string `yaml:"base_url" default:"http://localhost:8000"`
	UploadPath  string `yaml:"upload_path" default:"/api/profile/images"`
	DeletePath  string `yaml:"delete_path" default:"/api/profile/images/delete"`
	RefreshPath string `yaml:"refresh_path" default:"/api/auth/refresh"`
	SessionPath string `yaml:"session_path" default:"/api/auth/session"`
	LoginURL    string `yaml:"login_url" default:"/login"`
}

type MediaConfig struct {
	MaxImages           int      `yaml:"max_images" default:"4"`
	AllowedMIMETypes    []string `yaml:"allowed_mime_types" default:"image/jpeg,image/png,image/webp,image/gif"`
	AllowedExtensions   []string `yaml:"allowed_extensions" default:".jpg,.jpeg,.png,.webp,.gif"`
	RejectedMIMETypes   []string `yaml:"rejected_mime_types" default:"image/heic,image/heif"`
	RejectedExtensions  []string `yaml:"rejected_extensions" default:".heic,.heif"`
	MaxFileSizeMB       int      `yaml:"max_file_size_mb" default:"10"`
	RemoteMaxFileSizeMB int      `yaml:"remote_max_file_size_mb" default:"5"`
}

type SessionConfig struct {
	RefreshTimeoutSeconds int `yaml:"refresh_timeout_seconds" default:"5"`
	MaxAuthRetries        int `yaml:"max_auth_retries" default:"1"`

	// HostBridgeURL, when set, points at the embedding host application's
	// local websocket endpoint; session refresh is then delegated to the host.
	HostBridgeURL string `yaml:"host_bridge_url" default:""`
}

type StorageConfig struct {
	// Driver selects the upload/delete backend: "http" or "s3".
	Driver string   `yaml:"driver" default:"http"`
	S3     S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket        string `yaml:"bucket" default:""`
	Region        string `yaml:"region" default:"auto"`
	Endpoint      string `yaml:"endpoint" default:""`
	PublicBaseURL string `yaml:"public_base_url" default:""`
	KeyPrefix     string `yaml:"key_prefix" default:"profile-images/"`
}

type JournalConfig struct {
	Path string `yaml:"path" default:"./cleanup.db"`
}

var AppConfig *Config

func LoadConfig(path string) error {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	// Try to read and parse the config file
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		AppConfig = config
		return nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	AppConfig = config
	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
