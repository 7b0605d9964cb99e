// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"net/http"
	"strings"
)

// Classify maps an API failure onto the package's error taxonomy by
// pattern-matching the HTTP status and the raw message. The remote
// service does not guarantee these shapes, so classification is
// best-effort: anything unrecognized is returned with its message
// unchanged rather than suppressed (R4.3).
func Classify(statusCode int, msg string) error {
	lower := strings.ToLower(msg)

	switch {
	case statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden,
		strings.Contains(lower, "invalid x-api-key"),
		strings.Contains(lower, "authentication"):
		return fmt.Errorf("%w: %s", ErrAuth, msg)

	case statusCode == http.StatusRequestEntityTooLarge,
		strings.Contains(lower, "request too large"),
		strings.Contains(lower, "payload too large"),
		strings.Contains(lower, "exceeds the maximum"):
		return fmt.Errorf("%w: %s", ErrTransport, msg)

	case strings.Contains(lower, "unsupported media type"),
		strings.Contains(lower, "unsupported mime"),
		strings.Contains(lower, "media_type"):
		return fmt.Errorf("%w: %s", ErrUnsupportedType, msg)
	}

	if statusCode > 0 {
		return fmt.Errorf("Claude API returned %d: %s", statusCode, msg)
	}
	return fmt.Errorf("%s", msg)
}
