// Package render invokes the engine that composites the text watermark onto
// every frame of a video. The engine is pluggable; the pipeline only sees the
// Renderer interface.
package render

import (
	"context"

	"github.com/vidstamp/watermark-bot/internal/session"
)

// Renderer produces outputPath from inputPath with the watermark applied.
// It is an opaque, possibly slow, synchronous operation with no partial
// results: on error the output file must be considered garbage.
type Renderer interface {
	Render(ctx context.Context, inputPath, outputPath string, spec session.WatermarkSpec) error
}
