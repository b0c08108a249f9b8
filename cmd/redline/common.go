package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/redline-eval/redline/internal/logging"
	"github.com/redline-eval/redline/pkg/config"
)

// rootOpts holds the persistent flags shared by every command.
type rootOpts struct {
	configPath string
	logLevel   string
}

// load resolves the config file and builds a logger writing to stderr.
// Logs default to the console format unless the file asks otherwise.
func (o *rootOpts) load() (*config.Config, *zap.Logger, error) {
	path := o.configPath
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.FindConfigFile(wd)
		}
	}

	cfg := config.DefaultConfig()
	cfg.Log.Format = "console"
	cfg.Log.Level = "warn"
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, logging.New(cfg.Log), nil
}

// readNarrative reads from the named file, or from stdin for "" and "-".
func readNarrative(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading narrative: %w", err)
	}
	return string(data), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
