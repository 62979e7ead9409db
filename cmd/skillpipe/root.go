package main

import (
	"strings"

	"github.com/arvandy/skillpipe/internal/errs"
	"github.com/arvandy/skillpipe/internal/logger"
	"github.com/arvandy/skillpipe/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile   string
	debugFlag bool
	jsonFlag  bool

	rootCmd = &cobra.Command{
		Use:   "skillpipe",
		Short: "Document extraction and skill matching pipelines",
		Long: "skillpipe extracts and chunks text from PDF documents and matches " +
			"candidate skills against job descriptions using semantic and lexical similarity.",
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonFlag, "json", "j", false, "json format for logging")
}

// setup loads and validates the run configuration and builds the logger.
// Validation failures are ConfigErrors: the run aborts before any output.
func setup() (*config.Config, *zap.Logger, error) {
	log, err := logger.New(jsonFlag, debugFlag)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	if validationErrors := cfg.Validate(); len(validationErrors) > 0 {
		messages := make([]string, len(validationErrors))
		for i, ve := range validationErrors {
			messages[i] = ve.Error()
		}
		return nil, nil, &errs.ConfigError{Message: strings.Join(messages, "; ")}
	}

	return cfg, log, nil
}
