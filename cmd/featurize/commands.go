package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/knowledge-engine/featurizer/internal/bow"
	"github.com/knowledge-engine/featurizer/internal/vocab"
)

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [file]",
		Short: "Run each input line through the normalizer pipeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLines(cmd.InOrStdin(), inputPath(args))
			if err != nil {
				return err
			}
			pipeline := ctx.normalizer()
			out := cmd.OutOrStdout()
			for _, line := range lines {
				fmt.Fprintln(out, pipeline.Apply(line))
			}
			return nil
		},
	}
}

func newVocabCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "vocab [file]",
		Short: "Rank the words of a corpus, one document per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLines(cmd.InOrStdin(), inputPath(args))
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = ctx.cfg.Featurizer.VocabLimit
			}

			builder := buildVocabulary(ctx, lines)
			v := builder.ToVocabulary(limit)
			ctx.logger.WithField("documents", len(lines)).Debugf("Ranked %d of %d distinct words", v.Len(), builder.Len())

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(v.Map())
			}

			rows := make([][]string, 0, v.Len())
			for i, w := range v.Words() {
				rows = append(rows, []string{strconv.Itoa(i), w, strconv.Itoa(builder.Count(w))})
			}
			fmt.Fprintln(out, renderTable([]string{"Index", "Word", "Count"}, rows, []columnAlignment{alignRight, alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Keep only the top N words (0 keeps all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the word-to-index mapping as JSON")
	return cmd
}

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var corpusPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "encode --corpus FILE [file]",
		Short: "Encode each input line as a bag-of-words vector over the corpus vocabulary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if isStdin(corpusPath) && isStdin(inputPath(args)) {
				return errors.New("--corpus and the input cannot both be stdin")
			}
			corpus, err := readLines(cmd.InOrStdin(), corpusPath)
			if err != nil {
				return err
			}
			lines, err := readLines(cmd.InOrStdin(), inputPath(args))
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = ctx.cfg.Featurizer.VocabLimit
			}

			encoder := bow.NewEncoder(buildVocabulary(ctx, corpus).ToVocabulary(limit))
			pipeline := ctx.normalizer()
			ctx.logger.Debugf("Encoding %d lines over %d words", len(lines), encoder.Len())

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, line := range lines {
				if err := enc.Encode(encoder.Encode(pipeline.Apply(line))); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusPath, "corpus", "", "Corpus file used to build the vocabulary, one document per line")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Keep only the top N words (0 keeps all)")
	_ = cmd.MarkFlagRequired("corpus")
	return cmd
}

func buildVocabulary(ctx *commandContext, docs []string) *vocab.Builder {
	pipeline := ctx.normalizer()
	builder := vocab.NewBuilder()
	for _, doc := range docs {
		builder.Feed(pipeline.Apply(doc))
	}
	return builder
}
