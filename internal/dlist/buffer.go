package dlist

import "fmt"

// MaxValueSize bounds a single evaluated value at 64 KiB (spec §4.A/§4.D).
// Buffers beyond this size are truncated rather than rejected; callers must
// treat truncation as a soft error.
const MaxValueSize = 64 * 1024

// Buffer is a growable byte region modeled on the original's append/trim/
// freeze discipline. The zero value is ready to use.
type Buffer struct {
	data     []byte
	Truncated bool
}

// Len returns the number of bytes currently held.
func (b *Buffer) Len() int { return len(b.data) }

// Append appends p to the buffer, truncating at MaxValueSize.
func (b *Buffer) Append(p []byte) {
	if b.Truncated {
		return
	}
	room := MaxValueSize - len(b.data)
	if room <= 0 {
		b.Truncated = true
		return
	}
	if len(p) > room {
		p = p[:room]
		b.Truncated = true
	}
	b.data = append(b.data, p...)
}

// AppendString appends s to the buffer.
func (b *Buffer) AppendString(s string) { b.Append([]byte(s)) }

// Appendf appends a formatted string to the buffer.
func (b *Buffer) Appendf(format string, args ...any) {
	b.AppendString(fmt.Sprintf(format, args...))
}

// PushByte appends a single byte to the buffer.
func (b *Buffer) PushByte(c byte) { b.Append([]byte{c}) }

// TrimLast removes the final byte, if any.
func (b *Buffer) TrimLast() {
	if len(b.data) > 0 {
		b.data = b.data[:len(b.data)-1]
	}
}

// Bytes returns the buffer's current contents without detaching them.
func (b *Buffer) Bytes() []byte { return b.data }

// String returns the buffer's current contents as a string.
func (b *Buffer) String() string { return string(b.data) }

// Freeze detaches the buffer's contents as an owned string and resets the
// buffer to empty, ready for reuse.
func (b *Buffer) Freeze() string {
	s := string(b.data)
	b.data = nil
	b.Truncated = false
	return s
}

// Reset empties the buffer without returning its contents.
func (b *Buffer) Reset() {
	b.data = nil
	b.Truncated = false
}
