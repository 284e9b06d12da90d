package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/depotbot/internal/sheet"
	"golang.org/x/text/language"
)

// MissingError reports every required environment variable that is not set.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return "required environment variables not set: " + strings.Join(e.Names, ", ")
}

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns a *MissingError (wrapped) if required values are missing.
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string
	if err := loadStruct(reflect.ValueOf(cfg).Elem(), &missing); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("config load: %w", &MissingError{Names: missing})
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MissingVars returns the names of absent required variables, if err
// carries them.
func MissingVars(err error) []string {
	var me *MissingError
	if errors.As(err, &me) {
		return me.Names
	}
	return nil
}

// loadStruct recursively populates struct fields from environment variables.
// Absent required variables are appended to missing instead of failing fast
// so the caller can report all of them at once.
func loadStruct(v reflect.Value, missing *[]string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal, missing); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		value := strings.TrimSpace(os.Getenv(envName))
		if value == "" && envAlt != "" {
			value = strings.TrimSpace(os.Getenv(envAlt))
		}

		if value == "" {
			if required {
				*missing = append(*missing, envName)
				continue
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			// Base 0 accepts 0x-prefixed color tags.
			i, err := strconv.ParseInt(value, 0, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string
	errs = append(errs, c.validateDiscord()...)
	errs = append(errs, c.validateSheet(true)...)
	errs = append(errs, c.validateReport()...)
	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateLogging()...)
	return joinErrors(errs)
}

// LoadPreview reads configuration for rendering a report offline. Chat
// settings are neither required nor validated, and the sheet URL is only
// required when needURL is set.
func LoadPreview(needURL bool) (*Config, error) {
	cfg := &Config{}

	var missing []string
	if err := loadStruct(reflect.ValueOf(cfg).Elem(), &missing); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	var still []string
	for _, name := range missing {
		switch {
		case name == "BOT_TOKEN" || name == "CHANNEL_ID":
		case name == "SHEET_CSV_URL" && !needURL:
		default:
			still = append(still, name)
		}
	}
	if len(still) > 0 {
		return nil, fmt.Errorf("config load: %w", &MissingError{Names: still})
	}

	var errs []string
	errs = append(errs, cfg.validateSheet(needURL)...)
	errs = append(errs, cfg.validateReport()...)
	errs = append(errs, cfg.validateLogging()...)
	if err := joinErrors(errs); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func joinErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
}

func (c *Config) validateDiscord() []string {
	var errs []string
	if c.Discord.Token == "" {
		errs = append(errs, "BOT_TOKEN is required")
	}
	if c.Discord.ChannelID <= 0 {
		errs = append(errs, fmt.Sprintf("CHANNEL_ID (%d) must be a positive channel id", c.Discord.ChannelID))
	}
	if c.Discord.CommandName == "" || strings.ContainsAny(c.Discord.CommandName, " \t") {
		errs = append(errs, fmt.Sprintf("COMMAND_NAME (%q) must be a single word", c.Discord.CommandName))
	}
	return errs
}

func (c *Config) validateSheet(needURL bool) []string {
	var errs []string
	if needURL {
		if u, err := url.Parse(c.Sheet.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, "SHEET_CSV_URL must be an absolute http(s) URL")
		}
	}
	if c.Sheet.Timeout <= 0 {
		errs = append(errs, "SHEET_TIMEOUT must be positive")
	}
	if c.Sheet.MaxBytes <= 0 {
		errs = append(errs, "SHEET_MAX_BYTES must be positive")
	}
	if c.Sheet.NameColumn == "" || c.Sheet.ValueColumn == "" || c.Sheet.ChangeColumn == "" {
		errs = append(errs, "SHEET_COLUMN_NAME, SHEET_COLUMN_VALUE and SHEET_COLUMN_CHANGE must not be empty")
	}
	switch strings.ToLower(c.Sheet.MissingFields) {
	case MissingFieldsZero, MissingFieldsSkip:
	default:
		errs = append(errs, fmt.Sprintf("SHEET_MISSING_FIELDS (%q) must be one of: zero, skip", c.Sheet.MissingFields))
	}
	return errs
}

func (c *Config) validateReport() []string {
	var errs []string
	if c.Schedule.Interval <= 0 {
		errs = append(errs, "SCHEDULE_INTERVAL must be positive")
	}
	if _, err := language.Parse(c.Report.Locale); err != nil {
		errs = append(errs, fmt.Sprintf("REPORT_LOCALE (%q) is not a valid language tag", c.Report.Locale))
	}
	if c.Report.Color < 0 || c.Report.Color > 0xFFFFFF {
		errs = append(errs, fmt.Sprintf("REPORT_COLOR (%d) must be an RGB value", c.Report.Color))
	}
	return errs
}

func (c *Config) validateServer() []string {
	if !c.Server.Enabled {
		return nil
	}
	var errs []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	return errs
}

func (c *Config) validateLogging() []string {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}
	return errs
}

// String returns a safe string representation of the config for logging.
// The bot token is masked and the sheet URL loses its query.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Discord: {Token: [MASKED], ChannelID: %d, Command: %q}, ",
		c.Discord.ChannelID, c.Discord.CommandPrefix+c.Discord.CommandName))
	b.WriteString(fmt.Sprintf("Sheet: {URL: %q, Timeout: %s, MissingFields: %q}, ",
		sheet.Redact(c.Sheet.URL), c.Sheet.Timeout, c.Sheet.MissingFields))
	b.WriteString(fmt.Sprintf("Schedule: {Interval: %s, RunOnStart: %v}, ",
		c.Schedule.Interval, c.Schedule.RunOnStart))
	b.WriteString(fmt.Sprintf("Server: {Enabled: %v, Addr: %q}, ",
		c.Server.Enabled, c.Server.Addr()))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
