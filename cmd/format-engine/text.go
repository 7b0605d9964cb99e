// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/format-engine/internal/batch"
	"github.com/pdiddy/format-engine/internal/history"
	"github.com/pdiddy/format-engine/internal/session"
	"github.com/pdiddy/format-engine/pkg/types"
)

var textCmd = &cobra.Command{
	Use:   "text [content]",
	Short: "Convert a single piece of text through the Claude API",
	Long: `Text converts one piece of pasted text into the target format. The
content comes from the argument, or from stdin when no argument is given.
The result prints to stdout, or to --out with the target's file extension
when --out names a file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runText,
}

func init() {
	textCmd.Flags().String("to", "", "target format (json, xml, csv, markdown, html, latex, sql, yaml, word, text, mermaid)")
	textCmd.Flags().String("instructions", "", "additional instructions for the conversion")
	textCmd.Flags().String("out", "", "output file (default: stdout)")
	textCmd.Flags().String("model", "", "AI model identifier")

	rootCmd.AddCommand(textCmd)
}

func runText(cmd *cobra.Command, args []string) error {
	cfg := conversionConfig(cmd)
	if !cfg.Target.Valid() {
		return fmt.Errorf("unknown target format %q (run 'format-engine formats')", cfg.Target)
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("no API key: add .secrets/anthropic-api-key or set conversion.api_key")
	}

	var input string
	if len(args) == 1 {
		input = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		input = string(data)
	}

	sess := session.New(cfg.Target)
	sess.SetInstructions(cfg.Instructions)
	sess.SetInputText(input)

	runner := batch.New(newBackend(cfg))
	ctx := context.Background()
	if _, err := runner.Run(ctx, sess, false, os.Stderr); err != nil {
		return err
	}
	recordTextHistory(ctx, sess)

	if sess.TextStatus() == types.ItemFailed {
		return fmt.Errorf("conversion failed: %s", sess.TextFailure())
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		fmt.Print(sess.TextResult())
		if result := sess.TextResult(); result != "" && result[len(result)-1] != '\n' {
			fmt.Println()
		}
		return nil
	}

	if err := os.WriteFile(outPath, []byte(sess.TextResult()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	spec := cfg.Target.Export()
	fmt.Fprintf(os.Stderr, "wrote %s (%s)\n", outPath, spec.ContentType)
	return nil
}

// recordTextHistory appends the single-text outcome to the history store
// when one is configured. History problems are warnings, never failures.
func recordTextHistory(ctx context.Context, sess *session.Session) {
	cfg := historyConfig()
	if cfg.StateDir == "" {
		return
	}

	rec, ok := history.FromTextRun(sess.TextStatus(), sess.TextResult(), sess.TextFailure(), sess.Target())
	if !ok {
		return
	}

	store, err := history.NewStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.Add(ctx, rec); err != nil {
		fmt.Fprintf(os.Stderr, "warning: history write failed: %v\n", err)
	}
}
