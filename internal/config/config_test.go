package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// setRequired sets only the variables Load cannot default.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "secret-token")
	t.Setenv("CHANNEL_ID", "123456789012345678")
	t.Setenv("SHEET_CSV_URL", "https://docs.example.com/sheet/export?format=csv")
}

// clearAll blanks every variable a test might have inherited.
func clearAll(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"BOT_TOKEN", "DISCORD_TOKEN", "CHANNEL_ID", "DISCORD_CHANNEL_ID", "SHEET_CSV_URL",
	} {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearAll(t)
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Discord.ChannelID != 123456789012345678 {
		t.Errorf("Discord.ChannelID = %d, want %d", cfg.Discord.ChannelID, int64(123456789012345678))
	}
	if cfg.Discord.CommandPrefix != "!" || cfg.Discord.CommandName != "depot" {
		t.Errorf("command = %q%q, want !depot", cfg.Discord.CommandPrefix, cfg.Discord.CommandName)
	}
	if cfg.Schedule.Interval != 10*time.Minute {
		t.Errorf("Schedule.Interval = %v, want %v", cfg.Schedule.Interval, 10*time.Minute)
	}
	if !cfg.Schedule.RunOnStart {
		t.Error("Schedule.RunOnStart = false, want true")
	}
	if cfg.Sheet.NameColumn != "Aktie" || cfg.Sheet.ValueColumn != "Wert" || cfg.Sheet.ChangeColumn != "Veränderung" {
		t.Errorf("columns = %q/%q/%q, want Aktie/Wert/Veränderung",
			cfg.Sheet.NameColumn, cfg.Sheet.ValueColumn, cfg.Sheet.ChangeColumn)
	}
	if cfg.Sheet.MissingFields != MissingFieldsZero {
		t.Errorf("Sheet.MissingFields = %q, want %q", cfg.Sheet.MissingFields, MissingFieldsZero)
	}
	if cfg.Sheet.Timeout != 15*time.Second {
		t.Errorf("Sheet.Timeout = %v, want %v", cfg.Sheet.Timeout, 15*time.Second)
	}
	if cfg.Report.Color != 0x2ECC71 {
		t.Errorf("Report.Color = %#x, want %#x", cfg.Report.Color, 0x2ECC71)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	clearAll(t)
	setRequired(t)
	t.Setenv("SCHEDULE_INTERVAL", "1m")
	t.Setenv("SHEET_MISSING_FIELDS", "skip")
	t.Setenv("REPORT_COLOR", "16711680")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Schedule.Interval != time.Minute {
		t.Errorf("Schedule.Interval = %v, want %v", cfg.Schedule.Interval, time.Minute)
	}
	if cfg.Sheet.MissingFields != MissingFieldsSkip {
		t.Errorf("Sheet.MissingFields = %q, want %q", cfg.Sheet.MissingFields, MissingFieldsSkip)
	}
	if cfg.Report.Color != 0xFF0000 {
		t.Errorf("Report.Color = %#x, want %#x", cfg.Report.Color, 0xFF0000)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	clearAll(t)
	t.Setenv("DISCORD_TOKEN", "alt-token")
	t.Setenv("DISCORD_CHANNEL_ID", "42")
	t.Setenv("SHEET_CSV_URL", "http://localhost/sheet.csv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Discord.Token != "alt-token" {
		t.Errorf("Discord.Token = %q, want %q", cfg.Discord.Token, "alt-token")
	}
	if cfg.Discord.ChannelIDString() != "42" {
		t.Errorf("ChannelIDString() = %q, want %q", cfg.Discord.ChannelIDString(), "42")
	}
}

func TestLoad_MissingRequiredListsAll(t *testing.T) {
	clearAll(t)

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing required variables")
	}

	var me *MissingError
	if !errors.As(err, &me) {
		t.Fatalf("error = %v, want *MissingError", err)
	}

	want := []string{"BOT_TOKEN", "CHANNEL_ID", "SHEET_CSV_URL"}
	got := MissingVars(err)
	if len(got) != len(want) {
		t.Fatalf("MissingVars() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MissingVars()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoad_ZeroChannelRejected(t *testing.T) {
	clearAll(t)
	setRequired(t)
	t.Setenv("CHANNEL_ID", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for CHANNEL_ID=0")
	}
	if !strings.Contains(err.Error(), "CHANNEL_ID") {
		t.Errorf("error should mention CHANNEL_ID: %v", err)
	}
}

func TestLoad_InvalidInteger(t *testing.T) {
	clearAll(t)
	setRequired(t)
	t.Setenv("CHANNEL_ID", "general")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for non-numeric CHANNEL_ID")
	}
	if !strings.Contains(err.Error(), "CHANNEL_ID") {
		t.Errorf("error should mention CHANNEL_ID: %v", err)
	}
}

func validConfig() *Config {
	return &Config{
		Discord:  DiscordConfig{Token: "t", ChannelID: 1, CommandPrefix: "!", CommandName: "depot"},
		Sheet:    SheetConfig{URL: "https://example.com/a.csv", Timeout: time.Second, MaxBytes: 1024, NameColumn: "a", ValueColumn: "b", ChangeColumn: "c", MissingFields: "zero"},
		Schedule: ScheduleConfig{Interval: time.Minute},
		Report:   ReportConfig{Title: "Depot", Currency: "€", Locale: "de", Color: 0x2ECC71},
		Server:   ServerConfig{Enabled: true, Port: 8080, ShutdownTimeout: time.Second},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		mention string
	}{
		{"relative url", func(c *Config) { c.Sheet.URL = "/sheet.csv" }, "SHEET_CSV_URL"},
		{"ftp url", func(c *Config) { c.Sheet.URL = "ftp://example.com/a.csv" }, "SHEET_CSV_URL"},
		{"zero interval", func(c *Config) { c.Schedule.Interval = 0 }, "SCHEDULE_INTERVAL"},
		{"bad policy", func(c *Config) { c.Sheet.MissingFields = "drop" }, "SHEET_MISSING_FIELDS"},
		{"bad locale", func(c *Config) { c.Report.Locale = "not a tag" }, "REPORT_LOCALE"},
		{"bad color", func(c *Config) { c.Report.Color = 0x1000000 }, "REPORT_COLOR"},
		{"bad port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"command with space", func(c *Config) { c.Discord.CommandName = "de pot" }, "COMMAND_NAME"},
	}

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() on valid config = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
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

func TestValidate_ServerDisabledSkipsPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Enabled = false
	cfg.Server.Port = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil when server disabled", err)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		got := cfg.Addr()
		if got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_MasksToken(t *testing.T) {
	cfg := validConfig()
	cfg.Discord.Token = "super-secret-token"
	str := cfg.String()
	if strings.Contains(str, "super-secret-token") {
		t.Error("String() should mask the bot token")
	}
	if !strings.Contains(str, "MASKED") {
		t.Error("String() should contain MASKED placeholder")
	}
}

func TestConfigString_RedactsSheetQuery(t *testing.T) {
	cfg := validConfig()
	cfg.Sheet.URL = "https://docs.example.com/spreadsheets/d/e/abc/pub?output=csv&key=s3cr3t"
	str := cfg.String()
	if strings.Contains(str, "s3cr3t") {
		t.Error("String() should drop the sheet URL query")
	}
	if !strings.Contains(str, "https://docs.example.com/spreadsheets/d/e/abc/pub") {
		t.Errorf("String() should keep the sheet URL path, got %s", str)
	}
}

func TestLoadPreview_WithoutChatSettings(t *testing.T) {
	clearAll(t)

	cfg, err := LoadPreview(false)
	if err != nil {
		t.Fatalf("LoadPreview(false) error = %v", err)
	}
	if cfg.Report.Title != "Depotübersicht" {
		t.Errorf("Report.Title = %q, want default", cfg.Report.Title)
	}
}

func TestLoadPreview_RequiresURLWhenFetching(t *testing.T) {
	clearAll(t)

	_, err := LoadPreview(true)
	if err == nil {
		t.Fatal("LoadPreview(true) expected error")
	}
	missing := MissingVars(err)
	if len(missing) != 1 || missing[0] != "SHEET_CSV_URL" {
		t.Errorf("MissingVars = %v, want [SHEET_CSV_URL]", missing)
	}
}
