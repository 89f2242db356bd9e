package main

import (
	"fmt"
	"io"
	"os"

	"github.com/theory/jsonpath"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jacoelho/mfilter"
	"github.com/jacoelho/mfilter/internal/config"
	"github.com/jacoelho/mfilter/internal/exit"
	"github.com/jacoelho/mfilter/internal/loader"
	"github.com/jacoelho/mfilter/internal/output"
)

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, exitResult := config.Parse(args)
	if exitResult != nil {
		return report(exitResult, stdout, stderr)
	}

	logger := newLogger(cfg.LogLevel, stderr)
	defer func() { _ = logger.Sync() }()

	if exitResult := filter(cfg, logger, stdin, stdout); exitResult != nil {
		return report(exitResult, stdout, stderr)
	}
	return exit.CodeSuccess
}

// filter evaluates the query against every data file and writes one result
// document per file.
func filter(cfg *config.Config, logger *zap.Logger, stdin io.Reader, stdout io.Writer) *exit.Result {
	spec, err := readQuery(cfg)
	if err != nil {
		return exit.FromError(cfg.QueryFile, err)
	}

	var selector *jsonpath.Path
	if cfg.Select != "" {
		selector, err = jsonpath.Parse(cfg.Select)
		if err != nil {
			return exit.FromError("select", fmt.Errorf("invalid JSONPath %s: %w", cfg.Select, err))
		}
	}

	query := mfilter.Compile(spec, mfilter.WithLogger(logger))
	enc := output.NewEncoder(stdout, cfg.Format)

	for _, name := range cfg.DataFiles {
		data, err := loader.ReadData(name, stdin)
		if err != nil {
			return exit.FromError("", err)
		}

		if selector != nil {
			nodes := selector.Select(data)
			logger.Debug("candidates selected",
				zap.String("file", name),
				zap.String("select", cfg.Select),
				zap.Int("count", len(nodes)))
			data = []any(nodes)
		}

		result := query.Test(data, cfg.TestOptions())
		logger.Debug("data evaluated", zap.String("file", name))

		if err := enc.Encode(result); err != nil {
			return exit.FromError(name, err)
		}
	}

	return nil
}

func readQuery(cfg *config.Config) (any, error) {
	if cfg.QueryFile != "" {
		return loader.ReadQuery(cfg.QueryFile, cfg.Variables)
	}
	return loader.ParseQuery(cfg.QueryText, cfg.Variables)
}

// newLogger writes human readable entries at level and above to w.
func newLogger(level zapcore.Level, w io.Writer) *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zap.New(core)
}

// report prints r on the writer matching its exit code.
func report(r *exit.Result, stdout, stderr io.Writer) int {
	r.Output = stderr
	if r.ExitCode == exit.CodeSuccess {
		r.Output = stdout
	}
	r.Print()
	return r.ExitCode
}
