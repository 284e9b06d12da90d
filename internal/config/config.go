// Package config provides centralized configuration management for the bot.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Discord  DiscordConfig
	Sheet    SheetConfig
	Schedule ScheduleConfig
	Report   ReportConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

// DiscordConfig holds chat platform settings.
type DiscordConfig struct {
	// Token is the bot credential (required)
	Token string `env:"BOT_TOKEN" envAlt:"DISCORD_TOKEN" required:"true"`

	// ChannelID is the destination channel for scheduled reports (required, 0 means unset)
	ChannelID int64 `env:"CHANNEL_ID" envAlt:"DISCORD_CHANNEL_ID" required:"true"`

	// CommandPrefix precedes the command name in chat (default: !)
	CommandPrefix string `env:"COMMAND_PREFIX" default:"!"`

	// CommandName is the on-demand report command (default: depot)
	CommandName string `env:"COMMAND_NAME" default:"depot"`
}

// SheetConfig holds the CSV source settings.
type SheetConfig struct {
	// URL is the published CSV export of the spreadsheet (required)
	URL string `env:"SHEET_CSV_URL" required:"true"`

	// Timeout bounds a single fetch, including reading the body (default: 15s)
	Timeout time.Duration `env:"SHEET_TIMEOUT" default:"15s"`

	// MaxBytes caps the response body size (default: 5MB)
	MaxBytes int64 `env:"SHEET_MAX_BYTES" default:"5242880"`

	// NameColumn is the header of the stock name column (default: Aktie)
	NameColumn string `env:"SHEET_COLUMN_NAME" default:"Aktie"`

	// ValueColumn is the header of the position value column (default: Wert)
	ValueColumn string `env:"SHEET_COLUMN_VALUE" default:"Wert"`

	// ChangeColumn is the header of the percent change column (default: Veränderung)
	ChangeColumn string `env:"SHEET_COLUMN_CHANGE" default:"Veränderung"`

	// MissingFields is the policy for rows with an unusable value: zero or skip (default: zero)
	MissingFields string `env:"SHEET_MISSING_FIELDS" default:"zero"`
}

// ScheduleConfig holds the recurring delivery settings.
type ScheduleConfig struct {
	// Interval is the refresh period (default: 10m)
	Interval time.Duration `env:"SCHEDULE_INTERVAL" default:"10m"`

	// RunOnStart runs one cycle as soon as the scheduler starts (default: true)
	RunOnStart bool `env:"SCHEDULE_RUN_ON_START" default:"true"`
}

// ReportConfig holds presentation settings.
type ReportConfig struct {
	// Title is the page title (default: Depotübersicht)
	Title string `env:"REPORT_TITLE" default:"Depotübersicht"`

	// Currency is appended to every formatted amount (default: €)
	Currency string `env:"REPORT_CURRENCY" default:"€"`

	// Locale is the BCP 47 tag used for number formatting (default: de)
	Locale string `env:"REPORT_LOCALE" default:"de"`

	// Color is the embed color tag, decimal or 0x-prefixed hex (default: 0x2ECC71)
	Color int `env:"REPORT_COLOR" default:"0x2ECC71"`
}

// ServerConfig holds the ops HTTP server settings.
type ServerConfig struct {
	// Enabled toggles the ops server (default: true)
	Enabled bool `env:"SERVER_ENABLED" default:"true"`

	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 10s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Missing-field policies for SheetConfig.MissingFields.
const (
	MissingFieldsZero = "zero"
	MissingFieldsSkip = "skip"
)

// ChannelIDString returns the channel id in the string form chat APIs use.
func (c *DiscordConfig) ChannelIDString() string {
	return strconv.FormatInt(c.ChannelID, 10)
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
