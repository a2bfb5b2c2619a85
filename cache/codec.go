package cache

import (
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// compressionSavings is the minimum fraction a compressed form must shave
// off the original before it is kept: at least 20% smaller.
const compressionSavings = 0.20

// codec owns the byte-serialization boundary of the cache. Values are
// serialized with msgpack on write and decoded into fresh values on read;
// large serialized forms are additionally zstd-compressed when that pays
// for itself.
type codec struct {
	enabled   bool
	threshold int
	enc       *zstd.Encoder
	dec       *zstd.Decoder
}

func newCodec(enabled bool, threshold int) (*codec, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &codec{
		enabled:   enabled,
		threshold: threshold,
		enc:       enc,
		dec:       dec,
	}, nil
}

// pack conditionally compresses a serialized value. It returns the bytes to
// store and whether they are compressed. Small inputs and inputs that do not
// compress well are returned unchanged.
func (c *codec) pack(raw []byte) ([]byte, bool) {
	if !c.enabled || len(raw) < c.threshold {
		return raw, false
	}

	compressed := c.enc.EncodeAll(raw, make([]byte, 0, len(raw)))
	if float64(len(compressed)) > float64(len(raw))*(1-compressionSavings) {
		// Not worth it; store the original.
		return raw, false
	}
	return compressed, true
}

// unpack reverses pack, returning the serialized value bytes.
func (c *codec) unpack(data []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return data, nil
	}
	return c.dec.DecodeAll(data, nil)
}

func (c *codec) close() {
	c.enc.Close()
	c.dec.Close()
}

// encodeValue serializes a value for storage and returns its estimated
// serialized size, which is what memory accounting uses regardless of
// whether the stored form ends up compressed.
func encodeValue[V any](v V) ([]byte, int64, error) {
	raw, err := msgpack.Marshal(v)
	if err != nil {
		return nil, 0, err
	}
	return raw, int64(len(raw)), nil
}

// decodeValue deserializes stored bytes into a fresh value.
func decodeValue[V any](raw []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(raw, &v)
	return v, err
}
