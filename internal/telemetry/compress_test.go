package telemetry

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"google.golang.org/grpc/encoding"
)

func TestZstdCompressorRegistered(t *testing.T) {
	if encoding.GetCompressor(CompressorName) == nil {
		t.Fatalf("expected %q compressor to be registered", CompressorName)
	}
}

func TestZstdRoundTrip(t *testing.T) {
	compressor := newZstdCompressor()
	payload := []byte(strings.Repeat("target_hit ", 64))

	//1.- Run twice so the second pass exercises pooled encoders and decoders.
	for pass := 0; pass < 2; pass++ {
		var buf bytes.Buffer
		writer, err := compressor.Compress(&buf)
		if err != nil {
			t.Fatalf("compress: %v", err)
		}
		if _, err := writer.Write(payload); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := writer.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if buf.Len() == 0 || buf.Len() >= len(payload) {
			t.Fatalf("expected compressed output smaller than input, got %d bytes", buf.Len())
		}

		reader, err := compressor.Decompress(&buf)
		if err != nil {
			t.Fatalf("decompress: %v", err)
		}
		decoded, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !bytes.Equal(decoded, payload) {
			t.Fatalf("round trip mismatch on pass %d", pass)
		}
	}
}
