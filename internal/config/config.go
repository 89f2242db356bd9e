package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"go.uber.org/zap/zapcore"

	"github.com/jacoelho/mfilter"
	"github.com/jacoelho/mfilter/internal/exit"
	"github.com/jacoelho/mfilter/internal/loader"
	"github.com/jacoelho/mfilter/internal/output"
)

var (
	ErrNoArguments           = errors.New("no arguments provided")
	ErrNoQuery               = errors.New("no query specified")
	ErrConflictingQuery      = errors.New("-query and -q are mutually exclusive")
	ErrInvalidType           = errors.New("invalid input type")
	ErrInvalidSpec           = errors.New("invalid output spec")
	ErrInvalidLogLevel       = errors.New("invalid log level")
	ErrInvalidVariableFormat = errors.New("variable must be in format name=value")
	ErrEmptyVariableName     = errors.New("variable name cannot be empty")
)

// Environment holds the defaults read from MFILTER_* variables. Flags
// override them.
type Environment struct {
	Type     string `env:"MFILTER_TYPE" envDefault:"set"`
	Spec     string `env:"MFILTER_SPEC" envDefault:"subset"`
	Format   string `env:"MFILTER_FORMAT" envDefault:"json"`
	Select   string `env:"MFILTER_SELECT"`
	LogLevel string `env:"MFILTER_LOG_LEVEL" envDefault:"warn"`
}

// LoadEnvironment reads the environment defaults.
func LoadEnvironment() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return Environment{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

// Config represents the complete configuration for the mfilter tool.
type Config struct {
	// Inputs; "-" reads stdin.
	DataFiles []string

	// Query source, exactly one is set.
	QueryFile string
	QueryText string

	// JSONPath expression choosing the candidate set in each data file.
	Select string

	Type   mfilter.InputType
	Spec   mfilter.OutputSpec
	Format output.Format

	LogLevel zapcore.Level

	// Template variables
	VariableFile string
	Variables    map[string]any
}

// TestOptions returns the evaluation options for mfilter.Query.Test.
func (c *Config) TestOptions() mfilter.TestOptions {
	return mfilter.TestOptions{Type: c.Type, Spec: c.Spec}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	switch {
	case c.QueryFile == "" && c.QueryText == "":
		return ErrNoQuery
	case c.QueryFile != "" && c.QueryText != "":
		return ErrConflictingQuery
	}

	if c.QueryFile != "" {
		if _, err := os.Stat(c.QueryFile); err != nil {
			return fmt.Errorf("query file %s not found: %w", c.QueryFile, err)
		}
	}

	for _, file := range c.DataFiles {
		if file == loader.StdinName {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("data file %s not found: %w", file, err)
		}
	}

	switch c.Type {
	case mfilter.TypeSet, mfilter.TypeSingle:
	default:
		return fmt.Errorf("%w: %q (expected set or single)", ErrInvalidType, c.Type)
	}

	switch c.Spec {
	case mfilter.SpecSubset, mfilter.SpecBoolean, mfilter.SpecIndex:
	default:
		return fmt.Errorf("%w: %q (expected subset, boolean or index)", ErrInvalidSpec, c.Spec)
	}

	if _, err := output.ParseFormat(string(c.Format)); err != nil {
		return err
	}

	return nil
}

// variablesFlag implements flag.Value for parsing multiple -variable flags.
type variablesFlag map[string]any

func (v variablesFlag) String() string {
	var pairs []string
	for k, val := range v {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, val))
	}
	return strings.Join(pairs, ",")
}

// Set parses and stores a variable in name=value format.
func (v variablesFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("%w, got: %s", ErrInvalidVariableFormat, value)
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return ErrEmptyVariableName
	}

	v[name] = parts[1]
	return nil
}

// Parse parses command-line arguments on top of the environment defaults
// and returns a validated Config.
// If parsing fails or help or version is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	defaults, err := LoadEnvironment()
	if err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		queryFile    = fs.String("query", "", "Path to the query file")
		queryText    = fs.String("q", "", "Query text")
		selectExpr   = fs.String("select", defaults.Select, "JSONPath expression selecting the candidates")
		inputType    = fs.String("type", defaults.Type, "Input type: set or single")
		outputSpec   = fs.String("spec", defaults.Spec, "Output spec: subset, boolean or index")
		format       = fs.String("format", defaults.Format, "Output format: json or yaml")
		debug        = fs.Bool("debug", false, "Enable debug logging")
		version      = fs.Bool("version", false, "Show version information")
		variables    = make(variablesFlag)
		variableFile = fs.String("variable-file", "", "Path to key=value file containing template variables")
	)

	fs.BoolVar(version, "v", false, "Show version information")
	fs.Var(variables, "variable", "Variable in format name=value (can be used multiple times)")

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	if *version {
		return nil, exit.Success(fmt.Sprintf("mfilter %s\n", mfilter.Version))
	}

	level, err := zapcore.ParseLevel(defaults.LogLevel)
	if err != nil {
		return nil, exit.Errorf("Error: %v: %q\n\n%s", ErrInvalidLogLevel, defaults.LogLevel, Usage())
	}
	if *debug {
		level = zapcore.DebugLevel
	}

	files := fs.Args()
	if len(files) == 0 {
		files = []string{loader.StdinName}
	}

	// File variables first, command-line variables take precedence.
	finalVariables := make(map[string]any)
	if *variableFile != "" {
		fileVariables, err := loadVariableFile(*variableFile)
		if err != nil {
			return nil, exit.Errorf("Error: failed to load variable file: %v\n\n%s", err, Usage())
		}
		maps.Copy(finalVariables, fileVariables)
	}
	maps.Copy(finalVariables, variables)

	config := &Config{
		DataFiles:    files,
		QueryFile:    *queryFile,
		QueryText:    *queryText,
		Select:       *selectExpr,
		Type:         mfilter.InputType(*inputType),
		Spec:         mfilter.OutputSpec(*outputSpec),
		Format:       output.Format(*format),
		LogLevel:     level,
		VariableFile: *variableFile,
		Variables:    finalVariables,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// loadVariableFile loads variables from a key=value format file.
// It supports comments (lines starting with #) and empty lines.
func loadVariableFile(filename string) (map[string]any, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	variables := make(map[string]any)
	lines := strings.Split(string(data), "\n")

	for lineNum, line := range lines {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid format at line %d: %s (expected key=value)", lineNum+1, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if key == "" {
			return nil, fmt.Errorf("empty key at line %d: %s", lineNum+1, line)
		}

		variables[key] = value
	}

	return variables, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `mfilter - query documents with MongoDB-style filters

Usage: mfilter [options] [data-file ...]

Data files are JSON or YAML; "-" or no file reads standard input.

Options:
  --query FILE            Path to the query file (JSON or YAML)
  -q TEXT                 Query text
  --select JSONPATH       JSONPath expression selecting the candidates ($MFILTER_SELECT)
  --type TYPE             Input type: set or single (default: set, $MFILTER_TYPE)
  --spec SPEC             Output: subset, boolean or index (default: subset, $MFILTER_SPEC)
  --format FORMAT         Output format: json or yaml (default: json, $MFILTER_FORMAT)
  --variable NAME=VALUE   Template variable (can be used multiple times)
  --variable-file FILE    Path to key=value file containing template variables
  --debug                 Enable debug logging (default level: warn, $MFILTER_LOG_LEVEL)
  -h, --help              Show this help message
  -v, --version           Show version information

Examples:
  mfilter -q '{age: {$gte: 18}}' people.json
  mfilter -q '{tags: {$all: [a, b]}}' -spec index -format yaml items.yaml
  mfilter -query adults.yaml -variable MIN=21 people.json
  mfilter -q '{status: open}' -select '$.items[*]' response.json
  cat people.json | mfilter -q '{name: !regex "^A"}' -spec boolean`
}
