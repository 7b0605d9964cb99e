// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/format-engine/pkg/types"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported target formats",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "%-10s  %-28s  %-5s  %s\n", "Target", "Name", "Ext", "Content-Type")
		for _, t := range types.AllTargets {
			spec := t.Export()
			fmt.Fprintf(os.Stdout, "%-10s  %-28s  %-5s  %s\n",
				t, t.PromptName(), spec.Extension, spec.ContentType)
		}
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
