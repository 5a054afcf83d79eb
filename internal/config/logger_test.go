package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/simp-lee/logger"
)

func boolPtr(b bool) *bool { return &b }

func TestSetupLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := SetupLogger(&LogConfig{Level: tt.level, Format: "text", Color: boolPtr(false)})
			if err != nil {
				t.Fatalf("SetupLogger error: %v", err)
			}
			defer log.Close()

			if !log.Enabled(context.Background(), tt.want) {
				t.Errorf("level %v should be enabled", tt.want)
			}
			if tt.want > slog.LevelDebug && log.Enabled(context.Background(), tt.want-1) {
				t.Errorf("level %v should be disabled", tt.want-1)
			}
			if slog.Default().Handler() != log.Handler() {
				t.Error("SetupLogger should install the logger as slog default")
			}
		})
	}
}

func TestSetupLogger_NilConfig(t *testing.T) {
	if _, err := SetupLogger(nil); err == nil {
		t.Fatal("SetupLogger(nil) should fail")
	}
}

func TestBuildLoggerOpts_Count(t *testing.T) {
	const console = 4
	const file = console + 2

	tests := []struct {
		name string
		cfg  *LogConfig
		want int
	}{
		{"console only", &LogConfig{Level: "info", Format: "json"}, console},
		{"rotation ignored without file", &LogConfig{Level: "info", Format: "text", MaxSizeMB: 10}, console},
		{"file", &LogConfig{Level: "info", Format: "json", FilePath: "/tmp/partsweb.log"}, file},
		{
			"file with rotation",
			&LogConfig{
				Level: "info", Format: "json", FilePath: "/tmp/partsweb.log",
				MaxSizeMB: 50, RetentionDays: 30, MaxBackups: 5, CompressRotated: boolPtr(false),
			},
			file + 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(BuildLoggerOpts(tt.cfg)); got != tt.want {
				t.Errorf("option count = %d; want %d", got, tt.want)
			}
		})
	}
	if BuildLoggerOpts(nil) != nil {
		t.Error("nil config should give nil options")
	}
}

func TestBuildLoggerOpts_FileLogger(t *testing.T) {
	opts := BuildLoggerOpts(&LogConfig{
		Level: "debug", Format: "json",
		FilePath:  filepath.Join(t.TempDir(), "partsweb.log"),
		MaxSizeMB: 1, MaxBackups: 1,
	})
	log, err := logger.New(opts...)
	if err != nil {
		t.Fatalf("logger.New failed: %v", err)
	}
	defer log.Close()
	log.Info("file logger ready")
}
