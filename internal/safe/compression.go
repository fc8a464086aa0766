// internal/safe/compression.go
package safe

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// compressionManager pools zstd encoders/decoders, mirroring the teacher's
// sync.Pool-based reuse so repeated blob writes during a single command
// (e.g. reconciling many files on switch) don't pay encoder setup cost per
// file.
type compressionManager struct {
	opts Compression

	encoders sync.Pool
	decoders sync.Pool
}

func newCompressionManager(opts Compression) (*compressionManager, error) {
	level := opts.Level
	if level == 0 {
		level = 2
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("creating test encoder: %w", err)
	}
	enc.Close()

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating test decoder: %w", err)
	}
	dec.Close()

	return &compressionManager{
		opts: opts,
		encoders: sync.Pool{
			New: func() interface{} {
				enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
				return enc
			},
		},
		decoders: sync.Pool{
			New: func() interface{} {
				dec, _ := zstd.NewReader(nil)
				return dec
			},
		},
	}, nil
}

func (cm *compressionManager) shouldCompress(size int) bool {
	if !cm.opts.Enabled {
		return false
	}
	minBytes := cm.opts.MinBytes
	if minBytes == 0 {
		minBytes = 1024
	}
	return size >= minBytes
}

// compress returns plain unchanged if it's below threshold or compression is
// disabled; otherwise it returns the zstd frame.
func (cm *compressionManager) compress(plain []byte) ([]byte, error) {
	if !cm.shouldCompress(len(plain)) {
		return plain, nil
	}

	enc := cm.encoders.Get().(*zstd.Encoder)
	defer cm.encoders.Put(enc)

	return enc.EncodeAll(plain, nil), nil
}

// decompress undoes compress. Content that doesn't start with the zstd magic
// header is assumed to have been stored uncompressed and is returned as-is.
func (cm *compressionManager) decompress(onDisk []byte) ([]byte, error) {
	if len(onDisk) < 4 || !bytes.Equal(onDisk[:4], zstdMagic) {
		return onDisk, nil
	}

	dec := cm.decoders.Get().(*zstd.Decoder)
	defer cm.decoders.Put(dec)

	return dec.DecodeAll(onDisk, nil)
}
