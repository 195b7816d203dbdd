package telegram

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	transferred int64
	total       int64
}

func TestCountingReader(t *testing.T) {
	t.Run("reports cumulative bytes", func(t *testing.T) {
		var samples []sample
		c := &countingReader{
			r:     strings.NewReader("0123456789"),
			total: 10,
			progress: func(transferred, total int64) {
				samples = append(samples, sample{transferred, total})
			},
		}

		buf := make([]byte, 4)
		n, err := c.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		n, err = c.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		require.Len(t, samples, 2)
		assert.Equal(t, sample{4, 10}, samples[0])
		assert.Equal(t, sample{8, 10}, samples[1])
	})

	t.Run("nil progress is fine", func(t *testing.T) {
		c := &countingReader{r: strings.NewReader("data"), total: 4}

		data, err := io.ReadAll(c)
		require.NoError(t, err)
		assert.Equal(t, "data", string(data))
	})
}

func TestCountingWriter(t *testing.T) {
	t.Run("reports cumulative bytes", func(t *testing.T) {
		var samples []sample
		var out bytes.Buffer
		c := &countingWriter{
			w:     &out,
			total: 8,
			progress: func(transferred, total int64) {
				samples = append(samples, sample{transferred, total})
			},
		}

		_, err := c.Write([]byte("abcd"))
		require.NoError(t, err)
		_, err = c.Write([]byte("efgh"))
		require.NoError(t, err)

		assert.Equal(t, "abcdefgh", out.String())
		require.Len(t, samples, 2)
		assert.Equal(t, sample{4, 8}, samples[0])
		assert.Equal(t, sample{8, 8}, samples[1])
	})

	t.Run("ReadFrom streams through the counter", func(t *testing.T) {
		var last sample
		var out bytes.Buffer
		c := &countingWriter{
			w:     &out,
			total: 10,
			progress: func(transferred, total int64) {
				last = sample{transferred, total}
			},
		}

		n, err := c.ReadFrom(strings.NewReader("0123456789"))
		require.NoError(t, err)
		assert.Equal(t, int64(10), n)
		assert.Equal(t, "0123456789", out.String())
		assert.Equal(t, sample{10, 10}, last)
	})
}
