package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/servicemon/internal/app"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     *app.Config
		wantExit bool
		wantCode int
		wantMsg  string
	}{
		{
			name: "defaults without config",
			args: nil,
			want: &app.Config{LogFormat: "json", LogLevel: "info"},
		},
		{
			name: "config flag and positional paths",
			args: []string{"-config", "a.hcl", "-c", "conf.d", "extra.hcl"},
			want: &app.Config{
				ConfigPaths: []string{"a.hcl", "conf.d", "extra.hcl"},
				LogFormat:   "json",
				LogLevel:    "info",
			},
		},
		{
			name: "overrides",
			args: []string{"-service-name", "orders", "-host", "0.0.0.0", "-port", "6123", "-metrics", "-check-concurrency", "4", "-log-format", "TEXT", "-log-level", "Debug"},
			want: &app.Config{
				ServiceName:      "orders",
				Host:             "0.0.0.0",
				Port:             6123,
				Metrics:          true,
				CheckConcurrency: 4,
				LogFormat:        "text",
				LogLevel:         "debug",
			},
		},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "unknown flag", args: []string{"-nope"}, wantCode: 2, wantMsg: "flag provided but not defined: -nope"},
		{name: "bad log format", args: []string{"-log-format", "xml"}, wantCode: 2, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "trace"}, wantCode: 2, wantMsg: "invalid log-level"},
		{name: "bad port", args: []string{"-port", "99999"}, wantCode: 2, wantMsg: "out of range"},
		{name: "addr with host", args: []string{"-addr", "127.0.0.1:0", "-host", "0.0.0.0"}, wantCode: 2, wantMsg: "addr cannot be combined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}

			cfg, shouldExit, err := Parse(tt.args, out)

			if tt.wantCode != 0 {
				require.Error(t, err)
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tt.wantCode, exitErr.Code)
				assert.Contains(t, exitErr.Message, tt.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExit, shouldExit)
			if tt.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tt.want, cfg)
		})
	}
}
