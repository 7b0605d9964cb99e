// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/format-engine/internal/batch"
	"github.com/pdiddy/format-engine/internal/session"
	"github.com/pdiddy/format-engine/internal/watch"
	"github.com/pdiddy/format-engine/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and convert files dropped into it",
	Long: `Watch monitors a directory for new files. Each settled file is admitted
through the normal queue rules and converted to the target format; the
result lands in --out. Rejections and failures are logged and the
watcher keeps running. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("to", "", "target format (json, xml, csv, markdown, html, latex, sql, yaml, word, text, mermaid)")
	watchCmd.Flags().String("instructions", "", "additional instructions applied to every conversion")
	watchCmd.Flags().String("out", "", "output directory (default \"converted\")")
	watchCmd.Flags().String("model", "", "AI model identifier")
	watchCmd.Flags().Duration("debounce", 0, "quiet period before a dropped file is picked up (default 2s)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := conversionConfig(cmd)
	if !cfg.Target.Valid() {
		return fmt.Errorf("unknown target format %q (run 'format-engine formats')", cfg.Target)
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("no API key: add .secrets/anthropic-api-key or set conversion.api_key")
	}

	watchCfg := types.WatchConfig{Dir: args[0]}
	watchCfg.Debounce, _ = cmd.Flags().GetDuration("debounce")
	if watchCfg.Debounce <= 0 {
		watchCfg.Debounce = viper.GetDuration("watch.debounce")
	}

	sess := session.New(cfg.Target)
	sess.SetInstructions(cfg.Instructions)
	runner := batch.New(newBackend(cfg))

	w, err := watch.New(watchCfg, sess, runner, cfg.OutputDir, os.Stdout)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	fmt.Fprintf(os.Stdout, "\nreceived %v, stopping\n", sig)
	return nil
}
