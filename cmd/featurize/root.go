package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/knowledge-engine/featurizer/internal/config"
	"github.com/knowledge-engine/featurizer/internal/textnorm"
)

type commandContext struct {
	configPath string
	pipeline   string
	verbose    bool

	cfg    *config.Config
	logger *logrus.Entry
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "featurize",
		Short:         "Normalize text, rank vocabularies and encode bag-of-words vectors",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&ctx.pipeline, "pipeline", "p", "", "Normalizer pipeline, overrides config")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newNormalizeCommand(ctx))
	rootCmd.AddCommand(newVocabCommand(ctx))
	rootCmd.AddCommand(newEncodeCommand(ctx))

	return rootCmd
}

func (c *commandContext) load(cmd *cobra.Command) error {
	cfg := config.Load()
	if c.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(c.configPath); err != nil {
			return err
		}
	}
	if c.pipeline != "" {
		cfg.Featurizer.Normalizers = c.pipeline
		cfg.Featurizer.Transliterate = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(cfg.LogLevel())
	if c.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	c.cfg = cfg
	c.logger = logger.WithField("service", "featurize")
	return nil
}

func (c *commandContext) normalizer() textnorm.Pipeline {
	// Validate already resolved the pipeline once.
	p, _ := c.cfg.Pipeline()
	return p
}

// readLines returns the lines of path, or of in when path is empty or "-".
func readLines(in io.Reader, path string) ([]string, error) {
	if !isStdin(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	var lines []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}

func inputPath(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func isStdin(path string) bool {
	return path == "" || path == "-"
}
