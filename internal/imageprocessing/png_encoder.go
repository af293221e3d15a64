package imageprocessing

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/klauspost/compress/zlib"

	"github.com/rmitchellscott/halftone/internal/pixbuf"
)

// EncodeBinaryPNG encodes a single-channel 0/255 buffer as a 1-bit
// grayscale PNG.
func EncodeBinaryPNG(m *pixbuf.Image) ([]byte, error) {
	if m.Channels() != 1 || !IsBinary(m) {
		return nil, fmt.Errorf("binary PNG needs a single-channel 0/255 image")
	}
	return EncodeGrayPNG(m, 1)
}

// EncodeGrayPNG encodes a single-channel buffer as a grayscale PNG (color
// type 0) packed at bitDepth bits per pixel. Values are scaled onto the
// 2^bitDepth available levels, so halftoned 0/255 output packs losslessly
// into a 1-bit image.
func EncodeGrayPNG(m *pixbuf.Image, bitDepth int) ([]byte, error) {
	if m.Channels() != 1 {
		return nil, fmt.Errorf("grayscale PNG needs a single-channel image, got %d channels", m.Channels())
	}
	if bitDepth != 1 && bitDepth != 2 && bitDepth != 4 && bitDepth != 8 {
		return nil, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}

	var buf bytes.Buffer

	// PNG signature
	buf.Write([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})

	writeChunk(&buf, "IHDR", func(data *bytes.Buffer) {
		binary.Write(data, binary.BigEndian, uint32(m.Width()))
		binary.Write(data, binary.BigEndian, uint32(m.Height()))
		data.WriteByte(uint8(bitDepth))
		data.WriteByte(0) // Color type: grayscale
		data.WriteByte(0) // Compression method
		data.WriteByte(0) // Filter method
		data.WriteByte(0) // Interlace method
	})

	compressed, err := zlibCompress(packGrayRows(m, bitDepth))
	if err != nil {
		return nil, fmt.Errorf("failed to compress image data: %w", err)
	}
	writeChunk(&buf, "IDAT", func(data *bytes.Buffer) {
		data.Write(compressed)
	})
	writeChunk(&buf, "IEND", func(*bytes.Buffer) {})

	return buf.Bytes(), nil
}

// packGrayRows packs each scanline MSB-first behind a filter byte of 0.
func packGrayRows(m *pixbuf.Image, bitDepth int) []byte {
	width, height := m.Width(), m.Height()
	levels := (1 << bitDepth) - 1
	pixelsPerByte := 8 / bitDepth
	bytesPerRow := (width + pixelsPerByte - 1) / pixelsPerByte

	data := make([]byte, height*(bytesPerRow+1))
	for y := 0; y < height; y++ {
		rowStart := y * (bytesPerRow + 1)
		for x := 0; x < width; x++ {
			level := (int(m.Get(y, x, 0))*levels + 127) / 255
			byteIndex := rowStart + 1 + x/pixelsPerByte
			bitOffset := (pixelsPerByte - 1 - x%pixelsPerByte) * bitDepth
			data[byteIndex] |= byte(level << bitOffset)
		}
	}
	return data
}

// writeChunk writes a PNG chunk with proper CRC
func writeChunk(buf *bytes.Buffer, chunkType string, dataWriter func(*bytes.Buffer)) {
	var chunkData bytes.Buffer
	dataWriter(&chunkData)
	data := chunkData.Bytes()

	binary.Write(buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(chunkType)
	buf.Write(data)

	crc := crc32.NewIEEE()
	crc.Write([]byte(chunkType))
	crc.Write(data)
	binary.Write(buf, binary.BigEndian, crc.Sum32())
}

func zlibCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zlib writer: %w", err)
	}
	return buf.Bytes(), nil
}
