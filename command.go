package icat

import (
	"bytes"
	"fmt"
)

// GrCommand is the control portion of a single graphics-protocol frame: an
// insertion-ordered set of single-character keys mapped to scalar values.
// A command is serialized once per frame and cleared afterwards; only the
// continuation flag survives across the frames of a chunked transfer.
type GrCommand struct {
	keys   []string
	values map[string]string
}

// NewGrCommand returns an empty command.
func NewGrCommand() *GrCommand {
	return &GrCommand{values: make(map[string]string)}
}

// Set stores a key/value pair, preserving first-insertion order. Values may
// be ints, single-character runes/bytes, or pre-encoded strings.
func (c *GrCommand) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]string)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	switch v := value.(type) {
	case string:
		c.values[key] = v
	case rune:
		c.values[key] = string(v)
	case byte:
		c.values[key] = string(v)
	case int:
		c.values[key] = fmt.Sprintf("%d", v)
	default:
		c.values[key] = fmt.Sprintf("%v", v)
	}
}

// Get returns the stored value for key, or "" if unset.
func (c *GrCommand) Get(key string) string {
	return c.values[key]
}

// Clear removes all keys so the command can carry the next frame's controls.
func (c *GrCommand) Clear() {
	c.keys = c.keys[:0]
	for k := range c.values {
		delete(c.values, k)
	}
}

// Len returns the number of keys currently set.
func (c *GrCommand) Len() int {
	return len(c.keys)
}

// Serialize produces one complete graphics frame:
//
//	ESC _ G <key>=<value>(,<key>=<value>)* [; <payload>] ESC \
//
// The payload separator is only emitted when a payload is present.
func (c *GrCommand) Serialize(payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x1b_G")
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(c.values[k])
	}
	if len(payload) > 0 {
		buf.WriteByte(';')
		buf.Write(payload)
	}
	buf.WriteString("\x1b\\")
	return buf.Bytes()
}
