// Package compression wraps response bodies for transparent decompression.
package compression

import (
	"compress/gzip"
	"io"

	"github.com/klauspost/compress/zstd"
)

// AcceptedEncodings is what the request layer advertises.
const AcceptedEncodings = "zstd, gzip"

type zstdReadCloser struct {
	decoder *zstd.Decoder
	body    io.ReadCloser
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.decoder.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.decoder.Close()
	return z.body.Close()
}

type gzipReadCloser struct {
	reader *gzip.Reader
	body   io.ReadCloser
}

func (g *gzipReadCloser) Read(p []byte) (int, error) {
	return g.reader.Read(p)
}

func (g *gzipReadCloser) Close() error {
	err := g.reader.Close()
	if cerr := g.body.Close(); err == nil {
		err = cerr
	}
	return err
}

// WrapReader returns a ReadCloser that decodes body according to the
// Content-Encoding value. Unknown or empty encodings pass through untouched.
func WrapReader(encoding string, body io.ReadCloser) (io.ReadCloser, error) {
	switch encoding {
	case "zstd":
		decoder, err := zstd.NewReader(body)
		if err != nil {
			return nil, err
		}
		return &zstdReadCloser{decoder: decoder, body: body}, nil
	case "gzip":
		reader, err := gzip.NewReader(body)
		if err != nil {
			return nil, err
		}
		return &gzipReadCloser{reader: reader, body: body}, nil
	default:
		return body, nil
	}
}
