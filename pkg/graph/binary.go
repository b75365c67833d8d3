package graph

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"math"
	"os"
)

const (
	magicBytes = "RTFINDER"
	version    = uint32(1)
	maxNodes   = 10_000_000
	maxEdges   = 50_000_000
	maxKeyLen  = 256
)

// fileHeader is the binary header.
type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumEdges uint32
}

// binEdge is the fixed-size on-disk form of an Edge. The destination key is
// rebuilt with Key on load, exactly as the JSON loader does.
type binEdge struct {
	Lat    float64
	Lng    float64
	Weight float64
}

// WriteBinary serializes g to a binary snapshot at path.
// The file is written to a temp path and renamed into place.
func WriteBinary(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	bw := bufio.NewWriter(f)
	crcWriter := crc32Writer{w: bw, hash: crc32.NewIEEE()}
	w := &crcWriter

	hdr := fileHeader{
		Version:  version,
		NumNodes: uint32(g.NumNodes()),
		NumEdges: uint32(g.NumEdges()),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, key := range g.NodeKeys() {
		if len(key) > maxKeyLen {
			return fmt.Errorf("node key %q longer than %d bytes", key, maxKeyLen)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(key))); err != nil {
			return fmt.Errorf("write key length: %w", err)
		}
		if _, err := io.WriteString(w, key); err != nil {
			return fmt.Errorf("write key: %w", err)
		}

		edges := g.Neighbors(key)
		if err := binary.Write(w, binary.LittleEndian, uint32(len(edges))); err != nil {
			return fmt.Errorf("write edge count: %w", err)
		}
		if len(edges) == 0 {
			continue
		}
		recs := make([]binEdge, len(edges))
		for i, e := range edges {
			recs[i] = binEdge{Lat: e.End.Lat, Lng: e.End.Lng, Weight: e.Weight}
		}
		if err := binary.Write(w, binary.LittleEndian, recs); err != nil {
			return fmt.Errorf("write edges of %q: %w", key, err)
		}
	}

	// Write CRC32 trailer.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(bw, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// ReadBinary deserializes a graph snapshot written by WriteBinary.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	crcReader := crc32Reader{r: br, hash: crc32.NewIEEE()}
	r := &crcReader

	// Read and validate header.
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	b := NewBuilder()
	remaining := hdr.NumEdges
	keyBuf := make([]byte, maxKeyLen)

	for i := uint32(0); i < hdr.NumNodes; i++ {
		var keyLen uint32
		if err := binary.Read(r, binary.LittleEndian, &keyLen); err != nil {
			return nil, fmt.Errorf("read key length of node %d: %w", i, err)
		}
		if keyLen > maxKeyLen {
			return nil, fmt.Errorf("node %d: key length %d exceeds limit %d", i, keyLen, maxKeyLen)
		}
		if _, err := io.ReadFull(r, keyBuf[:keyLen]); err != nil {
			return nil, fmt.Errorf("read key of node %d: %w", i, err)
		}
		key := string(keyBuf[:keyLen])

		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("read edge count of %q: %w", key, err)
		}
		if n > remaining {
			return nil, fmt.Errorf("node %q: %d edges exceeds header total", key, n)
		}
		remaining -= n

		b.AddNode(key)
		if n == 0 {
			continue
		}
		recs := make([]binEdge, n)
		if err := binary.Read(r, binary.LittleEndian, recs); err != nil {
			return nil, fmt.Errorf("read edges of %q: %w", key, err)
		}
		for _, rec := range recs {
			if rec.Weight < 0 || math.IsNaN(rec.Weight) || math.IsInf(rec.Weight, 0) {
				return nil, fmt.Errorf("node %q: invalid weight %v", key, rec.Weight)
			}
			b.AddEdge(key, Coordinate{Lat: rec.Lat, Lng: rec.Lng}, rec.Weight)
		}
	}
	if remaining != 0 {
		return nil, fmt.Errorf("header declares %d more edges than stored", remaining)
	}

	// Read and validate CRC32.
	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(br, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	return b.Build(), nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash hash.Hash32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash hash.Hash32
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
