// Package store is the persistence collaborator of the ledger: a flat
// key-value space addressed by "{namespace}:{user}" or
// "{namespace}:{user}:{entity}" keys.
package store

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("store: key not found")

type Store interface {
	// Get returns ErrNotFound when the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type Entry struct {
	Key   string
	Value []byte
}

// Batcher is implemented by backends that can write several keys
// atomically. All bundled backends implement it.
type Batcher interface {
	SetBatch(ctx context.Context, entries []Entry) error
}

// keyEscaper escapes the separator inside parts. Raw TON addresses
// ("0:abcd...") contain ':' and must not shift into the entity segment.
var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// Key joins namespace and parts with ':'. Parts are escaped, so distinct
// part lists never produce the same key.
func Key(namespace string, parts ...string) string {
	if len(parts) == 0 {
		return namespace
	}
	var b strings.Builder
	b.WriteString(namespace)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(keyEscaper.Replace(p))
	}
	return b.String()
}
