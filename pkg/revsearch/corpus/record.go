package corpus

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// RecordExt is the naming convention for fingerprint records. Compressed
// records append a codec suffix, e.g. "track.bin.zst".
const RecordExt = ".bin"

// Compression names accepted by CompressRecord.
const (
	CompressionNone = ""
	CompressionZstd = "zstd"
	CompressionLZ4  = "lz4"
	CompressionXZ   = "xz"
)

type recordCodec struct {
	suffix     string
	decompress func([]byte) ([]byte, error)
	compress   func([]byte) ([]byte, error)
}

var recordCodecs = map[string]recordCodec{
	CompressionNone: {suffix: RecordExt, decompress: identity, compress: identity},
	CompressionZstd: {suffix: RecordExt + ".zst", decompress: unzstd, compress: zstdRecord},
	CompressionLZ4:  {suffix: RecordExt + ".lz4", decompress: unlz4, compress: lz4Record},
	CompressionXZ:   {suffix: RecordExt + ".xz", decompress: unxz, compress: xzRecord},
}

// zstd decoders are safe for concurrent DecodeAll calls.
var zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))

// IsRecordName reports whether name follows the fingerprint record convention.
func IsRecordName(name string) bool {
	_, ok := codecFor(name)
	return ok
}

// RecordName appends the record extension for the given compression unless
// name already carries a recognised record suffix.
func RecordName(name, compression string) (string, error) {
	c, ok := recordCodecs[compression]
	if !ok {
		return "", fmt.Errorf("unknown record compression %q", compression)
	}
	if IsRecordName(name) {
		return name, nil
	}
	return name + c.suffix, nil
}

// CompressRecord encodes a raw fingerprint record for storage.
func CompressRecord(compression string, raw []byte) ([]byte, error) {
	c, ok := recordCodecs[compression]
	if !ok {
		return nil, fmt.Errorf("unknown record compression %q", compression)
	}
	return c.compress(raw)
}

// OpenRecord returns the raw fingerprint text of a stored record, undoing any
// compression implied by its name.
func OpenRecord(name string, data []byte) ([]byte, error) {
	c, ok := codecFor(name)
	if !ok {
		return nil, fmt.Errorf("%s is not a fingerprint record", name)
	}
	out, err := c.decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", name, err)
	}
	return out, nil
}

func codecFor(name string) (recordCodec, bool) {
	// Longest suffix first so ".bin.zst" is not taken for ".bin".
	var best recordCodec
	found := false
	for _, c := range recordCodecs {
		if strings.HasSuffix(name, c.suffix) && len(name) > len(c.suffix) && len(c.suffix) > len(best.suffix) {
			best, found = c, true
		}
	}
	return best, found
}

func identity(b []byte) ([]byte, error) { return b, nil }

func unzstd(b []byte) ([]byte, error) {
	return zstdDecoder.DecodeAll(b, nil)
}

func zstdRecord(b []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(b, nil), nil
}

func unlz4(b []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(b)))
}

func lz4Record(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unxz(b []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func xzRecord(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
