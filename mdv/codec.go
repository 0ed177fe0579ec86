// mdv/codec.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mdv

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Extension is the file extension used for stored volumes.
const Extension = ".mdv.msgpack.zst"

// Decode reads a volume from r and validates it. The format is a
// msgpack-encoded Volume, compressed with zstd.
func Decode(r io.Reader) (*Volume, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var v Volume
	if err := msgpack.NewDecoder(zr).Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode volume: %w", err)
	}

	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// Encode writes the volume to w in the format read by Decode.
func (v *Volume) Encode(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(v); err != nil {
		return fmt.Errorf("failed to encode volume: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}

	return nil
}

// StoreVolume encodes v and stores it at path in the given backend,
// returning the number of bytes written.
func StoreVolume(sb StorageBackend, path string, v *Volume) (int64, error) {
	var buf bytes.Buffer
	if err := v.Encode(&buf); err != nil {
		return 0, err
	}
	return sb.Store(path, &buf)
}
