package telemetry

import (
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/grpc/encoding"
)

// CompressorName is the grpc-encoding value clients request for zstd frames.
const CompressorName = "zstd"

func init() {
	encoding.RegisterCompressor(newZstdCompressor())
}

// zstdCompressor adapts klauspost zstd to the gRPC encoding.Compressor interface.
type zstdCompressor struct {
	encoders sync.Pool
	decoders sync.Pool
}

func newZstdCompressor() *zstdCompressor {
	return &zstdCompressor{}
}

// Name reports the identifier used for zstd encoded payloads.
func (c *zstdCompressor) Name() string { return CompressorName }

// Compress returns a writer that zstd-encodes into w until closed.
func (c *zstdCompressor) Compress(w io.Writer) (io.WriteCloser, error) {
	//1.- Reuse pooled encoders; Reset rebinds them to the new destination.
	if enc, ok := c.encoders.Get().(*zstd.Encoder); ok {
		enc.Reset(w)
		return &pooledEncoder{Encoder: enc, pool: &c.encoders}, nil
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return &pooledEncoder{Encoder: enc, pool: &c.encoders}, nil
}

// Decompress returns a reader yielding the decoded bytes of r.
func (c *zstdCompressor) Decompress(r io.Reader) (io.Reader, error) {
	if dec, ok := c.decoders.Get().(*zstd.Decoder); ok {
		if err := dec.Reset(r); err != nil {
			c.decoders.Put(dec)
			return nil, err
		}
		return &pooledDecoder{Decoder: dec, pool: &c.decoders}, nil
	}
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return &pooledDecoder{Decoder: dec, pool: &c.decoders}, nil
}

type pooledEncoder struct {
	*zstd.Encoder
	pool *sync.Pool
}

func (e *pooledEncoder) Close() error {
	err := e.Encoder.Close()
	e.pool.Put(e.Encoder)
	return err
}

type pooledDecoder struct {
	*zstd.Decoder
	pool *sync.Pool
	done bool
}

// Read returns the decoder to the pool once the frame is exhausted.
func (d *pooledDecoder) Read(p []byte) (int, error) {
	if d.done {
		return 0, io.EOF
	}
	n, err := d.Decoder.Read(p)
	if errors.Is(err, io.EOF) {
		d.done = true
		d.pool.Put(d.Decoder)
	}
	return n, err
}
