package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/jacoelho/mfilter"
	"github.com/jacoelho/mfilter/internal/output"
)

func TestParse(t *testing.T) {
	tempDir := t.TempDir()
	queryFile := filepath.Join(tempDir, "query.yaml")
	dataFile := filepath.Join(tempDir, "data.json")
	varsFile := filepath.Join(tempDir, "vars.env")

	if err := os.WriteFile(queryFile, []byte("age: { $gte: 18 }"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dataFile, []byte(`[{"age": 20}]`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(varsFile, []byte("var1=value1\nvar2=value2"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		want     *Config
		wantExit int
	}{
		{
			name: "query text with defaults",
			args: []string{"mfilter", "-q", "{a: 1}", dataFile},
			want: &Config{
				DataFiles: []string{dataFile},
				QueryText: "{a: 1}",
				Type:      mfilter.TypeSet,
				Spec:      mfilter.SpecSubset,
				Format:    output.FormatJSON,
				LogLevel:  zapcore.WarnLevel,
				Variables: map[string]any{},
			},
		},
		{
			name: "no data file reads stdin",
			args: []string{"mfilter", "-q", "{a: 1}"},
			want: &Config{
				DataFiles: []string{"-"},
				QueryText: "{a: 1}",
				Type:      mfilter.TypeSet,
				Spec:      mfilter.SpecSubset,
				Format:    output.FormatJSON,
				LogLevel:  zapcore.WarnLevel,
				Variables: map[string]any{},
			},
		},
		{
			name: "all options",
			args: []string{
				"mfilter",
				"-query", queryFile,
				"-select", "$.items[*]",
				"-type", "single",
				"-spec", "boolean",
				"-format", "yaml",
				"-debug",
				"-variable-file", varsFile,
				"-variable", "var2=override",
				"-variable", "var3=value3",
				dataFile, "-",
			},
			want: &Config{
				DataFiles:    []string{dataFile, "-"},
				QueryFile:    queryFile,
				Select:       "$.items[*]",
				Type:         mfilter.TypeSingle,
				Spec:         mfilter.SpecBoolean,
				Format:       output.FormatYAML,
				LogLevel:     zapcore.DebugLevel,
				VariableFile: varsFile,
				Variables: map[string]any{
					"var1": "value1",
					"var2": "override",
					"var3": "value3",
				},
			},
		},
		{
			name:     "no arguments",
			args:     []string{},
			wantExit: 1,
		},
		{
			name:     "no query",
			args:     []string{"mfilter", dataFile},
			wantExit: 1,
		},
		{
			name:     "both query sources",
			args:     []string{"mfilter", "-query", queryFile, "-q", "{}", dataFile},
			wantExit: 1,
		},
		{
			name:     "missing query file",
			args:     []string{"mfilter", "-query", filepath.Join(tempDir, "nope.yaml"), dataFile},
			wantExit: 1,
		},
		{
			name:     "missing data file",
			args:     []string{"mfilter", "-q", "{}", filepath.Join(tempDir, "nope.json")},
			wantExit: 1,
		},
		{
			name:     "invalid type",
			args:     []string{"mfilter", "-q", "{}", "-type", "many", dataFile},
			wantExit: 1,
		},
		{
			name:     "invalid spec",
			args:     []string{"mfilter", "-q", "{}", "-spec", "count", dataFile},
			wantExit: 1,
		},
		{
			name:     "invalid format",
			args:     []string{"mfilter", "-q", "{}", "-format", "xml", dataFile},
			wantExit: 1,
		},
		{
			name:     "invalid variable",
			args:     []string{"mfilter", "-q", "{}", "-variable", "novalue", dataFile},
			wantExit: 1,
		},
		{
			name:     "missing variable file",
			args:     []string{"mfilter", "-q", "{}", "-variable-file", filepath.Join(tempDir, "nope.env"), dataFile},
			wantExit: 1,
		},
		{
			name:     "unknown flag",
			args:     []string{"mfilter", "-repeat", "2"},
			wantExit: 1,
		},
		{
			name:     "version",
			args:     []string{"mfilter", "-v"},
			wantExit: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, exitResult := Parse(tt.args)

			if tt.want == nil {
				if exitResult == nil {
					t.Fatalf("Parse() expected exit result, got config %+v", got)
				}
				if exitResult.ExitCode != tt.wantExit {
					t.Errorf("Parse() exit code = %d, want %d (%s)", exitResult.ExitCode, tt.wantExit, exitResult.Message)
				}
				return
			}

			if exitResult != nil {
				t.Fatalf("Parse() unexpected exit result: %s", exitResult.Message)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	t.Setenv("MFILTER_TYPE", "single")
	t.Setenv("MFILTER_SPEC", "index")
	t.Setenv("MFILTER_FORMAT", "yaml")
	t.Setenv("MFILTER_SELECT", "$.items[*]")
	t.Setenv("MFILTER_LOG_LEVEL", "info")

	cfg, exitResult := Parse([]string{"mfilter", "-q", "{}", "-spec", "boolean"})
	if exitResult != nil {
		t.Fatalf("Parse() unexpected exit result: %s", exitResult.Message)
	}

	if cfg.Type != mfilter.TypeSingle {
		t.Errorf("Type = %q, want single", cfg.Type)
	}
	if cfg.Spec != mfilter.SpecBoolean {
		t.Errorf("Spec = %q, flag should override the environment", cfg.Spec)
	}
	if cfg.Format != output.FormatYAML {
		t.Errorf("Format = %q, want yaml", cfg.Format)
	}
	if cfg.Select != "$.items[*]" {
		t.Errorf("Select = %q, want $.items[*]", cfg.Select)
	}
	if cfg.LogLevel != zapcore.InfoLevel {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if got := cfg.TestOptions(); got != (mfilter.TestOptions{Type: mfilter.TypeSingle, Spec: mfilter.SpecBoolean}) {
		t.Errorf("TestOptions() = %+v", got)
	}
}

func TestParseInvalidLogLevel(t *testing.T) {
	t.Setenv("MFILTER_LOG_LEVEL", "chatty")

	_, exitResult := Parse([]string{"mfilter", "-q", "{}"})
	if exitResult == nil || exitResult.ExitCode != 1 {
		t.Fatalf("Parse() exit result = %+v, want exit code 1", exitResult)
	}
	if !strings.Contains(exitResult.Message, ErrInvalidLogLevel.Error()) {
		t.Errorf("message %q does not report the log level", exitResult.Message)
	}
}

func TestParseHelpFlag(t *testing.T) {
	for _, arg := range []string{"-h", "-help", "--help"} {
		_, exitResult := Parse([]string{"mfilter", arg})
		if exitResult == nil {
			t.Fatalf("expected exit result for %s flag", arg)
		}
		if exitResult.ExitCode != 0 {
			t.Errorf("expected exit code 0 for %s, got %d", arg, exitResult.ExitCode)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			DataFiles: []string{"-"},
			QueryText: "{}",
			Type:      mfilter.TypeSet,
			Spec:      mfilter.SpecSubset,
			Format:    output.FormatJSON,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no query", mutate: func(c *Config) { c.QueryText = "" }, wantErr: ErrNoQuery},
		{name: "two queries", mutate: func(c *Config) { c.QueryFile = "q.yaml" }, wantErr: ErrConflictingQuery},
		{name: "type", mutate: func(c *Config) { c.Type = "" }, wantErr: ErrInvalidType},
		{name: "spec", mutate: func(c *Config) { c.Spec = "all" }, wantErr: ErrInvalidSpec},
		{name: "format", mutate: func(c *Config) { c.Format = "toml" }, wantErr: output.ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadVariableFile(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    map[string]any
		wantErr bool
	}{
		{
			name: "valid variables",
			content: `# Configuration
min=18
prefix=Ad

status=open`,
			want: map[string]any{"min": "18", "prefix": "Ad", "status": "open"},
		},
		{
			name:    "values with equals and spaces",
			content: "  expr = a=b  \n",
			want:    map[string]any{"expr": "a=b"},
		},
		{
			name:    "missing equals",
			content: "novalue",
			wantErr: true,
		},
		{
			name:    "empty key",
			content: "=value",
			wantErr: true,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(tempDir, "vars"+string(rune('a'+i))+".env")
			if err := os.WriteFile(file, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			got, err := loadVariableFile(file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadVariableFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("loadVariableFile() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := loadVariableFile(filepath.Join(tempDir, "missing.env")); err == nil {
		t.Error("loadVariableFile() expected error for missing file")
	}
}

func TestUsage(t *testing.T) {
	usage := Usage()

	expectedSections := []string{
		"mfilter - query documents",
		"Usage: mfilter [options]",
		"Options:",
		"--query",
		"--select",
		"--spec",
		"--help",
		"Examples:",
	}

	for _, section := range expectedSections {
		if !strings.Contains(usage, section) {
			t.Errorf("Usage() missing expected section: %s", section)
		}
	}
}

func TestVariablesFlag(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    map[string]any
		wantErr bool
	}{
		{
			name:   "empty",
			values: []string{},
			want:   map[string]any{},
		},
		{
			name:    "invalid format - no equals",
			values:  []string{"invalid"},
			wantErr: true,
		},
		{
			name:    "invalid format - empty name",
			values:  []string{"=value"},
			wantErr: true,
		},
		{
			name:   "empty value allowed",
			values: []string{"key="},
			want:   map[string]any{"key": ""},
		},
		{
			name:   "multiple equals",
			values: []string{"key=value=extra"},
			want:   map[string]any{"key": "value=extra"},
		},
		{
			name:   "multiple variables",
			values: []string{"key1=value1", "key2=value2"},
			want:   map[string]any{"key1": "value1", "key2": "value2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variables := make(variablesFlag)
			for _, value := range tt.values {
				err := variables.Set(value)
				if (err != nil) != tt.wantErr {
					t.Errorf("variablesFlag.Set() error = %v, wantErr %v", err, tt.wantErr)
					return
				}
			}

			if !tt.wantErr && !reflect.DeepEqual(map[string]any(variables), tt.want) {
				t.Errorf("variablesFlag = %v, want %v", variables, tt.want)
			}
		})
	}
}
