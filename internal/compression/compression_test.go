package compression

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestWrapReader(t *testing.T) {
	payload := []byte("the same bytes round-tripped")

	t.Run("Gzip", func(t *testing.T) {
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		w.Write(payload)
		w.Close()

		rc, err := WrapReader("gzip", io.NopCloser(&buf))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		defer rc.Close()

		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("Expected %q, got %q", payload, got)
		}
	})

	t.Run("Zstd", func(t *testing.T) {
		encoder, err := zstd.NewWriter(nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		compressed := encoder.EncodeAll(payload, nil)
		encoder.Close()

		rc, err := WrapReader("zstd", io.NopCloser(bytes.NewReader(compressed)))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		defer rc.Close()

		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("Expected %q, got %q", payload, got)
		}
	})

	t.Run("Unknown encoding passes through", func(t *testing.T) {
		rc, err := WrapReader("", io.NopCloser(bytes.NewReader(payload)))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		defer rc.Close()

		got, _ := io.ReadAll(rc)
		if !bytes.Equal(got, payload) {
			t.Errorf("Expected %q, got %q", payload, got)
		}
	})
}
