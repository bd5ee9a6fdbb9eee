// Package tabstate encodes tab state blobs into a small versioned binary envelope.
// Incognito payloads are sealed with a key that only lives in memory, so they can move
// between windows of one process but are unreadable after a restart.
package tabstate

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/bnema/tabsession/internal/domain/entity"
)

// Blob layout:
// Header:  [magic:4][version:1][flags:1][timestamp:8][payloadLen:4]
// Payload: plain bytes, or [nonce:24][sealed payload] when flagIncognito is set.
const (
	Magic      = 0x54414253 // "TABS"
	Version    = 1
	HeaderSize = 18

	flagIncognito = 1 << 0
)

var (
	// ErrBadMagic is returned for data that is not a tab state blob.
	ErrBadMagic = errors.New("not a tab state blob")
	// ErrUnsupportedVersion is returned for blobs written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported tab state version")
	// ErrTruncated is returned when the payload is shorter than the header says.
	ErrTruncated = errors.New("tab state blob truncated")
	// ErrSealed is returned when an incognito payload cannot be opened with this
	// process's key.
	ErrSealed = errors.New("incognito tab state cannot be opened")
)

// Codec implements port.BlobCodec.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec creates a codec sealing incognito payloads with key, which must be
// chacha20poly1305.KeySize bytes long.
func NewCodec(key []byte) (*Codec, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create incognito cipher: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// NewEphemeralCodec creates a codec with a random key that dies with the process.
func NewEphemeralCodec() (*Codec, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate incognito key: %w", err)
	}
	return NewCodec(key)
}

// Encode implements port.BlobCodec.
func (c *Codec) Encode(state *entity.TabState) ([]byte, error) {
	if state == nil {
		return nil, errors.New("encode tab state: nil state")
	}

	payload := state.Payload
	var flags byte
	if state.Incognito {
		flags |= flagIncognito
		payloadLen := c.aead.NonceSize() + len(payload) + c.aead.Overhead()
		header := writeHeader(flags, state.Timestamp, payloadLen)

		nonce := make([]byte, c.aead.NonceSize(), payloadLen)
		if _, err := rand.Read(nonce); err != nil {
			return nil, fmt.Errorf("generate nonce: %w", err)
		}
		sealed := c.aead.Seal(nonce, nonce, payload, header)
		return append(header, sealed...), nil
	}

	header := writeHeader(flags, state.Timestamp, len(payload))
	return append(header, payload...), nil
}

// Decode implements port.BlobCodec.
func (c *Codec) Decode(data []byte) (*entity.TabState, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("decode tab state (%d bytes): %w", len(data), ErrTruncated)
	}
	if binary.LittleEndian.Uint32(data[0:4]) != Magic {
		return nil, ErrBadMagic
	}
	if v := data[4]; v > Version {
		return nil, fmt.Errorf("decode tab state version %d: %w", v, ErrUnsupportedVersion)
	}

	flags := data[5]
	var timestamp time.Time
	if nanos := int64(binary.LittleEndian.Uint64(data[6:14])); nanos != 0 {
		timestamp = time.Unix(0, nanos)
	}
	payloadLen := int(binary.LittleEndian.Uint32(data[14:18]))
	if len(data)-HeaderSize < payloadLen {
		return nil, fmt.Errorf("decode tab state: want %d payload bytes, have %d: %w",
			payloadLen, len(data)-HeaderSize, ErrTruncated)
	}
	header := data[:HeaderSize]
	payload := data[HeaderSize : HeaderSize+payloadLen]

	state := &entity.TabState{
		Incognito: flags&flagIncognito != 0,
		Timestamp: timestamp,
	}
	if !state.Incognito {
		state.Payload = append([]byte(nil), payload...)
		return state, nil
	}

	ns := c.aead.NonceSize()
	if len(payload) < ns+c.aead.Overhead() {
		return nil, fmt.Errorf("decode incognito tab state: %w", ErrTruncated)
	}
	plain, err := c.aead.Open(nil, payload[:ns], payload[ns:], header)
	if err != nil {
		return nil, fmt.Errorf("decode incognito tab state: %w", ErrSealed)
	}
	state.Payload = plain
	return state, nil
}

func writeHeader(flags byte, ts time.Time, payloadLen int) []byte {
	header := make([]byte, HeaderSize, HeaderSize+payloadLen)
	binary.LittleEndian.PutUint32(header[0:4], Magic)
	header[4] = Version
	header[5] = flags
	if !ts.IsZero() {
		binary.LittleEndian.PutUint64(header[6:14], uint64(ts.UnixNano()))
	}
	binary.LittleEndian.PutUint32(header[14:18], uint32(payloadLen))
	return header
}
