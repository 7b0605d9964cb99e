// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/format-engine/internal/session"
	"github.com/pdiddy/format-engine/pkg/types"
)

// WriteResults materializes every succeeded item in the session to dir,
// using the target's export extension. Existing files are overwritten.
// Returns the written paths in queue order.
func WriteResults(s *session.Session, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	spec := s.Target().Export()
	var written []string

	for _, item := range s.Items() {
		if item.Status != types.ItemSucceeded {
			continue
		}
		out := filepath.Join(dir, outputName(item, spec.Extension))
		if err := os.WriteFile(out, []byte(item.Result), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", out, err)
		}
		written = append(written, out)
	}
	return written, nil
}

// outputName derives the output filename from the source name and the
// export extension, falling back to the item identity for unnamed
// payloads.
func outputName(item types.QueueItem, ext string) string {
	base := item.Payload.Name
	if base == "" {
		base = item.ID[:8]
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base + "." + ext
}
