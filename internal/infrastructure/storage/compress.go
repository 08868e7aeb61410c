package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstd frame magic number, little endian 0xFD2FB528
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Compressed wraps a SlotStore and zstd-compresses slot payloads. Payloads
// without the zstd frame magic are returned as-is, so slots written before
// compression was enabled stay readable.
type Compressed struct {
	inner SlotStore
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewCompressed wraps inner
func NewCompressed(inner SlotStore) (*Compressed, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Compressed{inner: inner, enc: enc, dec: dec}, nil
}

// Get reads and decompresses a slot
func (c *Compressed) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(raw, zstdMagic) {
		return raw, nil
	}
	data, err := c.dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress slot %s: %w", key, err)
	}
	return data, nil
}

// Put compresses and writes a slot
func (c *Compressed) Put(ctx context.Context, key string, data []byte) error {
	return c.inner.Put(ctx, key, c.enc.EncodeAll(data, nil))
}

// Delete removes a slot
func (c *Compressed) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

// Close releases the codec and closes the wrapped store
func (c *Compressed) Close() error {
	c.dec.Close()
	if err := c.enc.Close(); err != nil {
		c.inner.Close()
		return err
	}
	return c.inner.Close()
}
