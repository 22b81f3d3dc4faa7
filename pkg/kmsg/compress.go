package kmsg

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// compressionCodec extracts the low two attribute bits (spec §4.2/§6).
func compressionCodec(attributes int8) int8 { return attributes & 0x3 }

const (
	codecNone int8 = 0
	codecGZIP int8 = 1
)

// gzipCompress compresses src, used when framing a Produce batch whose
// configured codec is GZIP (spec §4.2 Produce).
func gzipCompress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// gzipDecompress inflates a GZIP-compressed inner message set payload.
func gzipDecompress(src []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
