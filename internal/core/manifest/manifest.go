// Package manifest is the schema service for the wire protocol: it maps
// typed payloads to tagged, checksummed byte envelopes and back. The
// core only relies on encode/decode round-tripping a payload's kind tag
// and fields exactly.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

var (
	ErrUnknownKind      = errors.New("unknown message kind")
	ErrChecksumMismatch = errors.New("payload checksum mismatch")
)

// MessageKind tags the payload variant carried by an envelope.
type MessageKind string

const (
	KindAuth      MessageKind = "auth"
	KindCommand   MessageKind = "command"
	KindUpdate    MessageKind = "update"
	KindHeartbeat MessageKind = "heartbeat"
)

// envelope is the outer wire frame. The checksum covers the raw payload
// bytes so a corrupted frame is rejected before unmarshaling.
type envelope struct {
	Kind     MessageKind     `json:"kind"`
	Checksum uint64          `json:"checksum"`
	Payload  json.RawMessage `json:"payload"`
}

// Manifest knows how to instantiate a payload value for every
// registered message kind.
type Manifest struct {
	kinds map[MessageKind]func() any
}

// Load builds the manifest with every kind this protocol speaks.
func Load() *Manifest {
	m := &Manifest{kinds: make(map[MessageKind]func() any)}
	m.register(KindAuth, func() any { return &AuthPayload{} })
	m.register(KindCommand, func() any { return &CommandPayload{} })
	m.register(KindUpdate, func() any { return &UpdateBatch{} })
	m.register(KindHeartbeat, func() any { return &HeartbeatPayload{} })
	return m
}

func (m *Manifest) register(kind MessageKind, factory func() any) {
	m.kinds[kind] = factory
}

// Encode wraps a payload value into a tagged, checksummed envelope.
func (m *Manifest) Encode(kind MessageKind, value any) ([]byte, error) {
	if _, ok := m.kinds[kind]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}

	return json.Marshal(envelope{
		Kind:     kind,
		Checksum: xxhash.Sum64(payload),
		Payload:  payload,
	})
}

// Decode unwraps an envelope, verifies its checksum, and unmarshals the
// payload into the value registered for its kind.
func (m *Manifest) Decode(data []byte) (MessageKind, any, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("failed to decode envelope: %w", err)
	}

	factory, ok := m.kinds[env.Kind]
	if !ok {
		return env.Kind, nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}

	if xxhash.Sum64(env.Payload) != env.Checksum {
		return env.Kind, nil, ErrChecksumMismatch
	}

	value := factory()
	if err := json.Unmarshal(env.Payload, value); err != nil {
		return env.Kind, nil, fmt.Errorf("failed to unmarshal %s payload: %w", env.Kind, err)
	}
	return env.Kind, value, nil
}
