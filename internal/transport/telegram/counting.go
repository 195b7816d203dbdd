package telegram

import (
	"io"

	"github.com/vidstamp/watermark-bot/internal/transport"
)

// countingReader reports upload progress as the transport consumes the file.
type countingReader struct {
	r        io.Reader
	read     int64
	total    int64
	progress transport.ProgressFunc
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.read += int64(n)
		if c.progress != nil {
			c.progress(c.read, c.total)
		}
	}

	return n, err
}

// countingWriter reports download progress as the body streams to disk.
type countingWriter struct {
	w        io.Writer
	written  int64
	total    int64
	progress transport.ProgressFunc
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if n > 0 {
		c.written += int64(n)
		if c.progress != nil {
			c.progress(c.written, c.total)
		}
	}

	return n, err
}

func (c *countingWriter) ReadFrom(r io.Reader) (int64, error) {
	return io.Copy(struct{ io.Writer }{c}, r)
}
