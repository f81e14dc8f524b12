package localindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// vectorMagic identifies the vector file format.
var vectorMagic = [4]byte{'R', 'C', 'V', '1'}

// vectorEntry pairs one chunk ID with its embedding.
type vectorEntry struct {
	chunkID   string
	embedding []float32
}

// writeVectorFile writes all entries to path.
//
// Layout: magic, uint32 dimensions, uint32 count, then per entry a
// uint16 ID length, the ID bytes, and dimensions little-endian float32
// values.
func writeVectorFile(path string, dimensions int, entries []vectorEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating vector file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	if _, err := w.Write(vectorMagic[:]); err != nil {
		return fmt.Errorf("writing magic: %w", err)
	}

	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:], uint32(dimensions))
	binary.LittleEndian.PutUint32(header[4:], uint32(len(entries)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, entry := range entries {
		if len(entry.embedding) != dimensions {
			return fmt.Errorf("vector %s has %d dimensions, want %d", entry.chunkID, len(entry.embedding), dimensions)
		}

		idLen := make([]byte, 2)
		binary.LittleEndian.PutUint16(idLen, uint16(len(entry.chunkID)))
		if _, err := w.Write(idLen); err != nil {
			return fmt.Errorf("writing id length: %w", err)
		}
		if _, err := w.WriteString(entry.chunkID); err != nil {
			return fmt.Errorf("writing id: %w", err)
		}
		if _, err := w.Write(float32SliceToBytes(entry.embedding)); err != nil {
			return fmt.Errorf("writing vector: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing vector file: %w", err)
	}
	return f.Sync()
}

// readVectorFile reads the whole vector file into a chunk ID keyed map.
func readVectorFile(path string) (int, map[string][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return 0, nil, fmt.Errorf("reading magic: %w", err)
	}
	if magic != vectorMagic {
		return 0, nil, fmt.Errorf("unrecognised vector file format")
	}

	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, fmt.Errorf("reading header: %w", err)
	}
	dimensions := int(binary.LittleEndian.Uint32(header[0:]))
	count := int(binary.LittleEndian.Uint32(header[4:]))

	vectors := make(map[string][]float32, count)
	idLen := make([]byte, 2)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, idLen); err != nil {
			return 0, nil, fmt.Errorf("reading vector %d id length: %w", i, err)
		}

		id := make([]byte, binary.LittleEndian.Uint16(idLen))
		if _, err := io.ReadFull(r, id); err != nil {
			return 0, nil, fmt.Errorf("reading vector %d id: %w", i, err)
		}

		blob := make([]byte, dimensions*4)
		if _, err := io.ReadFull(r, blob); err != nil {
			return 0, nil, fmt.Errorf("reading vector %d data: %w", i, err)
		}

		vectors[string(id)] = bytesToFloat32Slice(blob)
	}

	return dimensions, vectors, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
