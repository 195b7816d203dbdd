package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vidstamp/watermark-bot/internal/progress"
)

func TestHumanSize(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		want string
	}{
		{name: "zero bytes", n: 0, want: "0.00 B"},
		{name: "bytes", n: 512, want: "512.00 B"},
		{name: "one and a half KB", n: 1536, want: "1.50 KB"},
		{name: "exactly one MB", n: 1024 * 1024, want: "1.00 MB"},
		{name: "three MB", n: 1024 * 1024 * 3, want: "3.00 MB"},
		{name: "two and a quarter GB", n: 1024 * 1024 * 1024 * 9 / 4, want: "2.25 GB"},
		{name: "does not subdivide past GB", n: 1024 * 1024 * 1024 * 2048, want: "2048.00 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, progress.HumanSize(tt.n))
		})
	}
}
