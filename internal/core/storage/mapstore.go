package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

const envelopeVersion = 1

// envelope wraps an encoded MapData with its format and an xxhash64 checksum of the payload
type envelope struct {
	Version  int    `json:"version"`
	Format   string `json:"format"`
	Checksum string `json:"checksum"`
	Payload  string `json:"payload"`
}

// MapStore saves a single map document under a fixed key
type MapStore struct {
	backend Storage
	codec   Codec
	key     string
}

// NewMapStore binds a backend, a payload format and a key
func NewMapStore(backend Storage, format, key string) (*MapStore, error) {
	codec, err := CodecFor(format)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, ErrInvalidKey
	}
	return &MapStore{backend: backend, codec: codec, key: key}, nil
}

// Key returns the storage key
func (s *MapStore) Key() string {
	return s.key
}

// Save encodes and writes m
func (s *MapStore) Save(ctx context.Context, m MapData) error {
	payload, err := s.codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode map: %w", err)
	}
	doc, err := json.Marshal(envelope{
		Version:  envelopeVersion,
		Format:   s.codec.Name(),
		Checksum: checksum(payload),
		Payload:  string(payload),
	})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return s.backend.Write(ctx, s.key, doc)
}

// Load reads, verifies and decodes the saved map. It returns ErrNotFound when nothing is saved.
// The payload is decoded with the format recorded in the envelope, not the store's own.
func (s *MapStore) Load(ctx context.Context) (MapData, error) {
	doc, err := s.backend.Read(ctx, s.key)
	if err != nil {
		return MapData{}, err
	}
	var env envelope
	if err = json.Unmarshal(doc, &env); err != nil {
		return MapData{}, fmt.Errorf("%w: decode envelope: %w", ErrInvalidMap, err)
	}
	if env.Version != envelopeVersion {
		return MapData{}, fmt.Errorf("%w: envelope version %d", ErrUnsupportedFormat, env.Version)
	}
	if got := checksum([]byte(env.Payload)); got != env.Checksum {
		return MapData{}, fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, got, env.Checksum)
	}
	codec, err := CodecFor(env.Format)
	if err != nil {
		return MapData{}, err
	}

	var m MapData
	if err = codec.Unmarshal([]byte(env.Payload), &m); err != nil {
		return MapData{}, fmt.Errorf("%w: decode payload: %w", ErrInvalidMap, err)
	}
	if err = m.Validate(); err != nil {
		return MapData{}, err
	}
	return m, nil
}

// Exists reports whether a map is saved
func (s *MapStore) Exists(ctx context.Context) (bool, error) {
	return s.backend.Exists(ctx, s.key)
}

// Delete removes the saved map
func (s *MapStore) Delete(ctx context.Context) error {
	return s.backend.Delete(ctx, s.key)
}

func checksum(payload []byte) string {
	return strconv.FormatUint(xxhash.Sum64(payload), 16)
}
