// Package ids generates the TypeID identifiers used for sessions, items and
// transcript messages. IDs look like "item_01h2xcejqtf2nbrexx3vqjhp41": the
// prefix names the entity and the suffix is a K-sortable UUIDv7.
package ids

import (
	"fmt"
	"strings"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in an ID.
type Prefix string

const (
	PrefixSession Prefix = "rcpt"
	PrefixItem    Prefix = "item"
	PrefixMessage Prefix = "msg"
)

// New generates an ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) string {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("ids: invalid prefix %q: %v", prefix, err))
	}
	return tid.String()
}

func NewSession() string { return New(PrefixSession) }
func NewItem() string    { return New(PrefixItem) }
func NewMessage() string { return New(PrefixMessage) }

// HasPrefix reports whether s parses as a TypeID with the expected prefix.
func HasPrefix(s string, expected Prefix) bool {
	if !strings.HasPrefix(s, string(expected)+"_") {
		return false
	}
	_, err := typeid.Parse(s)
	return err == nil
}
