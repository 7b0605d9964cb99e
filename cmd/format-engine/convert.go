// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/format-engine/internal/batch"
	"github.com/pdiddy/format-engine/internal/convert"
	"github.com/pdiddy/format-engine/internal/history"
	"github.com/pdiddy/format-engine/internal/payload"
	"github.com/pdiddy/format-engine/internal/session"
	"github.com/pdiddy/format-engine/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert files to a target format through the Claude API",
	Long: `Convert queues the given files, runs them through the Claude API in
order, and writes the converted output next to --out. Files are admitted
against a 5 MiB size ceiling and a type allow-list (images, PDF, text,
office documents); rejected files are reported without blocking the rest.

A failing file never aborts the batch. With --retry-failed, a second
pass re-attempts only the files that failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("to", "", "target format (json, xml, csv, markdown, html, latex, sql, yaml, word, text, mermaid)")
	convertCmd.Flags().String("instructions", "", "additional instructions applied to every conversion")
	convertCmd.Flags().String("out", "", "output directory (default \"converted\")")
	convertCmd.Flags().String("model", "", "AI model identifier")
	convertCmd.Flags().Bool("retry-failed", false, "run a retry pass for files that failed")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := conversionConfig(cmd)
	if !cfg.Target.Valid() {
		return fmt.Errorf("unknown target format %q (run 'format-engine formats')", cfg.Target)
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("no API key: add .secrets/anthropic-api-key or set conversion.api_key")
	}

	sess := session.New(cfg.Target)
	sess.SetInstructions(cfg.Instructions)

	var payloads []types.Payload
	for _, path := range args {
		p, err := payload.Read(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rejected %s: %v\n", path, err)
			continue
		}
		payloads = append(payloads, p)
	}

	accepted, admitErr := sess.Enqueue(payloads...)
	if admitErr != nil {
		fmt.Fprintln(os.Stderr, admitErr)
	}
	if len(accepted) == 0 {
		return fmt.Errorf("no files admitted")
	}

	runner := batch.New(newBackend(cfg))
	retryFailed, _ := cmd.Flags().GetBool("retry-failed")

	ctx := context.Background()
	summary, err := runner.Run(ctx, sess, false, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() && retryFailed {
		fmt.Fprintln(os.Stdout, "\nretrying failed files")
		if summary, err = runner.Run(ctx, sess, true, os.Stdout); err != nil {
			return err
		}
	}

	written, err := batch.WriteResults(sess, cfg.OutputDir)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Printf("wrote %s\n", path)
	}

	recordHistory(ctx, sess)

	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", summary.Failed)
	}
	return nil
}

// newBackend builds the Claude backend from resolved settings.
func newBackend(cfg types.ConversionConfig) *convert.ClaudeBackend {
	return &convert.ClaudeBackend{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		UserAgent: cfg.UserAgent,
		Client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// recordHistory appends terminal item outcomes to the history store when
// one is configured. History problems are warnings, never failures.
func recordHistory(ctx context.Context, sess *session.Session) {
	cfg := historyConfig()
	if cfg.StateDir == "" {
		return
	}

	store, err := history.NewStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
		return
	}
	defer store.Close()

	for _, item := range sess.Items() {
		rec, ok := history.FromItem(item, sess.Target())
		if !ok {
			continue
		}
		if err := store.Add(ctx, rec); err != nil {
			fmt.Fprintf(os.Stderr, "warning: history write failed: %v\n", err)
			return
		}
	}
}
