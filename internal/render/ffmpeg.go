package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vidstamp/watermark-bot/internal/session"
)

// Render constants, not user-configurable.
const (
	fontSize    = 50
	opacity     = "0.7"
	strokeWidth = 1
)

// anchors maps a position value to drawtext x/y expressions. Top and bottom
// center horizontally, left and right center vertically.
var anchors = map[string]struct{ x, y string }{
	"top":    {x: "(w-text_w)/2", y: "10"},
	"bottom": {x: "(w-text_w)/2", y: "h-text_h-10"},
	"left":   {x: "10", y: "(h-text_h)/2"},
	"right":  {x: "w-text_w-10", y: "(h-text_h)/2"},
	"center": {x: "(w-text_w)/2", y: "(h-text_h)/2"},
}

// FFmpeg renders watermarks by shelling out to an ffmpeg binary with a
// drawtext video filter.
type FFmpeg struct {
	bin string
}

var _ = Renderer(&FFmpeg{})

func NewFFmpeg(bin string) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}

	return &FFmpeg{bin: bin}
}

func (f *FFmpeg) Render(ctx context.Context, inputPath, outputPath string, spec session.WatermarkSpec) error {
	args := buildArgs(inputPath, outputPath, spec)

	cmd := exec.CommandContext(ctx, f.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w: %s", f.bin, err, lastLine(&stderr))
	}

	return nil
}

func buildArgs(inputPath, outputPath string, spec session.WatermarkSpec) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-vf", drawtext(spec),
		"-codec:v", "libx264",
		"-codec:a", "aac",
		"-preset", "ultrafast",
		outputPath,
	}
}

func drawtext(spec session.WatermarkSpec) string {
	anchor, ok := anchors[spec.Position]
	if !ok {
		anchor = anchors["center"]
	}

	parts := []string{
		fmt.Sprintf("text='%s'", escapeText(spec.Text)),
		fmt.Sprintf("font='%s'", spec.Font),
		fmt.Sprintf("fontsize=%d", fontSize),
		fmt.Sprintf("fontcolor=%s@%s", spec.Color, opacity),
		"bordercolor=black",
		fmt.Sprintf("borderw=%d", strokeWidth),
		fmt.Sprintf("x=%s", anchor.x),
		fmt.Sprintf("y=%s", anchor.y),
	}

	return "drawtext=" + strings.Join(parts, ":")
}

// escapeText escapes the drawtext metacharacters in the user-supplied text.
func escapeText(text string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)

	return r.Replace(text)
}

func lastLine(buf *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 {
		return ""
	}

	return lines[len(lines)-1]
}
