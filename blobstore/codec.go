package blobstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block codec used by CompressedStore.
type Compression uint8

const (
	// CompressionNone stores blocks as they are.
	CompressionNone Compression = 0
	// CompressionLZ4 is fast and suits data that is read often.
	CompressionLZ4 Compression = 1
	// CompressionZSTD trades speed for a better ratio.
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Stream layout:
//
//	[magic "fmz" | codec uint8] then blocks of
//	[uncompressed uint32 LE][compressed uint32 LE][payload]
//
// A compressed size of 0 marks a block stored raw.
var streamMagic = [3]byte{'f', 'm', 'z'}

const (
	streamHeaderSize = 4
	blockHeaderSize  = 8

	// DefaultBlockSize is the uncompressed size of one block.
	DefaultBlockSize = 256 << 10
)

var errCorrupt = errors.New("blobstore: corrupt compressed blob")

func compressBlock(data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}

	out := make([]byte, blockHeaderSize, blockHeaderSize+len(data))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))

	// Not worth it below a 10% saving.
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		return append(out, data...), nil
	}
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	return append(out, compressed...), nil
}

// decompressBlock decodes the block at the start of data and returns it
// together with the number of bytes consumed.
func decompressBlock(data []byte, c Compression) ([]byte, int, error) {
	if len(data) < blockHeaderSize {
		return nil, 0, errCorrupt
	}
	rawSize := int(binary.LittleEndian.Uint32(data[0:]))
	packed := int(binary.LittleEndian.Uint32(data[4:]))

	if packed == 0 {
		end := blockHeaderSize + rawSize
		if len(data) < end {
			return nil, 0, errCorrupt
		}
		return data[blockHeaderSize:end], end, nil
	}

	end := blockHeaderSize + packed
	if len(data) < end {
		return nil, 0, errCorrupt
	}
	payload := data[blockHeaderSize:end]
	result := make([]byte, rawSize)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(payload, result)
		if err != nil {
			return nil, 0, err
		}
		if n != rawSize {
			return nil, 0, errCorrupt
		}
	case CompressionZSTD:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(payload, result[:0])
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, 0, err
		}
		if len(decoded) != rawSize {
			return nil, 0, errCorrupt
		}
		result = decoded
	default:
		return nil, 0, fmt.Errorf("%w: packed block with codec %s", errCorrupt, c)
	}
	return result, end, nil
}

// blockWriter buffers writes and emits one compressed block per blockSize bytes.
type blockWriter struct {
	w         io.Writer
	codec     Compression
	blockSize int
	buf       *bytes.Buffer
	header    bool
	written   int64
}

func newBlockWriter(w io.Writer, c Compression, blockSize int) *blockWriter {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &blockWriter{
		w:         w,
		codec:     c,
		blockSize: blockSize,
		buf:       bytes.NewBuffer(make([]byte, 0, blockSize)),
	}
}

func (b *blockWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		space := b.blockSize - b.buf.Len()
		if space <= 0 {
			if err := b.flushBlock(); err != nil {
				return total, err
			}
			space = b.blockSize
		}

		n, _ := b.buf.Write(p[:min(len(p), space)])
		total += n
		p = p[n:]
	}
	return total, nil
}

func (b *blockWriter) writeHeader() error {
	if b.header {
		return nil
	}
	b.header = true
	hdr := [streamHeaderSize]byte{streamMagic[0], streamMagic[1], streamMagic[2], byte(b.codec)}
	n, err := b.w.Write(hdr[:])
	b.written += int64(n)
	return err
}

func (b *blockWriter) flushBlock() error {
	if err := b.writeHeader(); err != nil {
		return err
	}
	if b.buf.Len() == 0 {
		return nil
	}

	block, err := compressBlock(b.buf.Bytes(), b.codec)
	if err != nil {
		return err
	}
	n, err := b.w.Write(block)
	b.written += int64(n)
	if err != nil {
		return err
	}
	b.buf.Reset()
	return nil
}

// Flush writes the stream header and any buffered data.
func (b *blockWriter) Flush() error {
	return b.flushBlock()
}

// encode compresses data into a complete stream.
func encode(data []byte, c Compression, blockSize int) ([]byte, error) {
	var out bytes.Buffer
	w := newBlockWriter(&out, c, blockSize)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// decode expands a stream produced by encode or blockWriter.
func decode(data []byte) ([]byte, error) {
	if len(data) < streamHeaderSize || !bytes.Equal(data[:3], streamMagic[:]) {
		return nil, fmt.Errorf("%w: bad header", errCorrupt)
	}
	c := Compression(data[3])
	data = data[streamHeaderSize:]

	var out []byte
	for len(data) > 0 {
		block, n, err := decompressBlock(data, c)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		data = data[n:]
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}
