package alog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/lixenwraith/config"
)

// Config holds all logger configuration values. A Config handed to
// ApplyConfig becomes an immutable snapshot; use Clone to derive a new one.
type Config struct {
	// Output file and filtering
	Path  string `toml:"path" env:"PATH" validate:"required"`
	Level Level  `toml:"level" env:"LEVEL"` // Minimum level written

	// Rotation
	MaxSizeBytes int64 `toml:"max_size_bytes" env:"MAX_SIZE_BYTES" validate:"gte=0"`        // 0 disables rotation
	MaxBackups   int64 `toml:"max_backups" env:"MAX_BACKUPS" validate:"gte=0,lte=1024"` // 0 discards rotated content

	// Console echo
	EnableConsole bool   `toml:"enable_console" env:"ENABLE_CONSOLE"`
	ConsoleTarget string `toml:"console_target" env:"CONSOLE_TARGET" validate:"oneof=stdout stderr"`

	// Formatting
	Template string `toml:"template" env:"TEMPLATE" validate:"required"`
	Verbose  bool   `toml:"verbose" env:"VERBOSE"`                               // Capture caller file/function; DefaultTemplate is upgraded to VerboseTemplate
	Sanitize string `toml:"sanitize" env:"SANITIZE" validate:"oneof=raw txt escape"` // Message sanitizer policy

	// Queue and timers
	QueueCapacity      int64 `toml:"queue_capacity" env:"QUEUE_CAPACITY" validate:"gte=0"`          // 0 = unbounded, else drop-oldest
	FlushIntervalMs    int64 `toml:"flush_interval_ms" env:"FLUSH_INTERVAL_MS" validate:"gt=0"`     // Periodic fsync
	HeartbeatIntervalS int64 `toml:"heartbeat_interval_s" env:"HEARTBEAT_INTERVAL_S" validate:"gte=0"` // 0 disables heartbeats

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr" env:"INTERNAL_ERRORS_TO_STDERR"`
}

// envPrefix is prepended to every env tag by ApplyEnv
const envPrefix = "ALOG_"

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Path:  "./logs/app.log",
	Level: LevelInfo,

	MaxSizeBytes: defaultMaxSizeBytes,
	MaxBackups:   5,

	EnableConsole: true,
	ConsoleTarget: "stdout",

	Template: DefaultTemplate,
	Verbose:  false,
	Sanitize: "raw",

	QueueCapacity:      0,
	FlushIntervalMs:    100,
	HeartbeatIntervalS: 0,

	InternalErrorsToStderr: true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// effectiveTemplate returns the template the writer renders with.
func (c *Config) effectiveTemplate() string {
	if c.Verbose && c.Template == DefaultTemplate {
		return VerboseTemplate
	}
	return c.Template
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their config key
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if c == nil {
		return fmtErrorf("configuration cannot be nil")
	}

	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed '%s' (value: %v)", fe.Field(), fieldRule(fe), fe.Value()))
			}
			return fmtErrorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmtErrorf("invalid configuration: %w", err)
	}

	if !c.Level.Valid() {
		return fmtErrorf("invalid configuration: level: unknown level %d", int64(c.Level))
	}

	if strings.TrimSpace(c.Path) == "" {
		return fmtErrorf("invalid configuration: path: cannot be blank")
	}

	if strings.HasSuffix(c.Path, "/") {
		return fmtErrorf("invalid configuration: path: '%s' names a directory", c.Path)
	}

	return nil
}

func fieldRule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// NewConfigFromFile loads the [log] table of a TOML file over the defaults and returns a validated Config
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Use lixenwraith/config as a loader
	loader := config.New()

	if err := loader.RegisterStruct("log.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	// File over defaults only; the environment is applied by ApplyEnv under envPrefix
	opts := config.LoadOptions{Sources: []config.Source{config.SourceFile, config.SourceDefault}}

	// Missing file keeps the defaults
	if err := loader.LoadWithOptions(path, nil, opts); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "log.", cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overlays ALOG_* environment variables onto cfg. Unset variables leave fields untouched.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmtErrorf("failed to parse environment: %w", err)
	}
	return nil
}

// extractConfig copies values found by the loader into cfg, keyed by toml tag
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", tomlTag, err)
		}
	}

	return nil
}

var levelType = reflect.TypeOf(Level(0))

// setFieldValue sets a reflect.Value with type conversion. Levels accept names or numbers.
func setFieldValue(field reflect.Value, value any) error {
	if field.Type() == levelType {
		switch v := value.(type) {
		case string:
			lvl, err := ParseLevel(v)
			if err != nil {
				return err
			}
			field.SetInt(int64(lvl))
			return nil
		case Level:
			field.SetInt(int64(v))
			return nil
		}
	}

	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}
