// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Stream framing used by the tcp plugin:
//
//	[u32 BE frame length][u8 compression][u32 BE raw length][body]
//
// The frame length counts everything after itself (5 + len(body)).
// The raw length is the message size after decompression.

const (
	frameLengthSize = 4
	frameHeaderSize = 1 + 4
)

// appendFrame appends the frame carrying data to buffer.
func appendFrame(buffer []byte, data []byte, compression Compression, maxMessageBytes int) ([]byte, error) {
	if len(data) > maxMessageBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrMessageTooLarge, len(data), maxMessageBytes)
	}
	body, applied, err := compress(data, compression)
	if err != nil {
		return nil, err
	}
	buffer = binary.BigEndian.AppendUint32(buffer, uint32(frameHeaderSize+len(body)))
	buffer = append(buffer, byte(applied))
	buffer = binary.BigEndian.AppendUint32(buffer, uint32(len(data)))
	return append(buffer, body...), nil
}

// readFrame reads one frame from reader and returns the decompressed
// message. io.EOF is returned unchanged when the stream ends cleanly
// between frames.
func readFrame(reader io.Reader, maxMessageBytes int) ([]byte, error) {
	var lengthBytes [frameLengthSize]byte
	if _, err := io.ReadFull(reader, lengthBytes[:]); err != nil {
		return nil, err
	}
	frameLength := binary.BigEndian.Uint32(lengthBytes[:])
	if frameLength < frameHeaderSize {
		return nil, fmt.Errorf("frame length %d shorter than header", frameLength)
	}
	// A compressed body never needs more room than the raw message
	// plus the LZ4 worst-case expansion, which is far below 2x.
	if uint64(frameLength) > uint64(frameHeaderSize)+2*uint64(maxMessageBytes) {
		return nil, fmt.Errorf("%w: frame of %d bytes", ErrMessageTooLarge, frameLength)
	}

	frame := make([]byte, frameLength)
	if _, err := io.ReadFull(reader, frame); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	compression := Compression(frame[0])
	rawSize := binary.BigEndian.Uint32(frame[1:frameHeaderSize])
	if uint64(rawSize) > uint64(maxMessageBytes) {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrMessageTooLarge, rawSize, maxMessageBytes)
	}
	return decompress(frame[frameHeaderSize:], compression, int(rawSize))
}
