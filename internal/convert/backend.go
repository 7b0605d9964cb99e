// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert performs format conversion by delegating to a
// Generative AI backend. The backend is opaque to the rest of the
// system: content, target format, and instructions go in, converted
// text or an error comes out.
// Implements: prd001-conversion (R1-R4); docs/ARCHITECTURE § Conversion.
package convert

import (
	"context"
	"errors"

	"github.com/pdiddy/format-engine/internal/payload"
	"github.com/pdiddy/format-engine/pkg/types"
)

// Request carries one conversion to the backend: the source payload, the
// target format, and the optional run-wide instructions.
type Request struct {
	Payload      types.Payload
	Target       types.ConversionTarget
	Instructions string
}

// Backend abstracts the Generative AI API so tests can supply a mock.
// Convert blocks until the call settles; the core imposes no retry or
// timeout of its own (R4.1).
type Backend interface {
	Convert(ctx context.Context, req Request) (string, error)
}

// Failure taxonomy surfaced to queue items. Classification is best-effort
// enrichment of the raw backend error, not a contract the remote service
// guarantees; anything unrecognized passes through verbatim (R4.3).
var (
	// ErrPayloadTooLarge indicates the source exceeded the admission
	// ceiling. It aliases the payload package's sentinel so callers can
	// match admission-time rejections against this taxonomy.
	ErrPayloadTooLarge = payload.ErrTooLarge

	// ErrUnsupportedType indicates the source type is outside the allow-list.
	ErrUnsupportedType = errors.New("unsupported payload type")

	// ErrTransport indicates the transport layer rejected the request,
	// typically because the encoded body was oversized.
	ErrTransport = errors.New("request rejected by transport")

	// ErrAuth indicates an invalid or missing API credential.
	ErrAuth = errors.New("authentication failed")
)
