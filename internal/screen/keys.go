package screen

import (
	"errors"
	"io"

	"github.com/charmbracelet/x/ansi"
)

// Key is a dashboard command decoded from terminal input.
type Key int

const (
	KeyNone Key = iota
	KeyQuit
	KeyNext
	KeyPrev
	KeyRefresh
	KeyEscape
)

const (
	ctrlC = 0x03
	esc   = 0x1b

	// maxPending bounds an unterminated sequence carried between reads.
	maxPending = 256
)

// KeyDecoder turns raw terminal input into keys. A sequence split across
// reads is held until the rest arrives.
type KeyDecoder struct {
	parser  *ansi.Parser
	pending []byte
}

// NewKeyDecoder returns a decoder with no pending input.
func NewKeyDecoder() *KeyDecoder {
	return &KeyDecoder{parser: ansi.NewParser()}
}

// Feed decodes one read's worth of input. A read that ends in a bare ESC
// is the escape key; any other incomplete sequence waits for the next read.
func (d *KeyDecoder) Feed(b []byte) []Key {
	buf := append(d.pending, b...)
	d.pending = nil

	var keys []Key
	for len(buf) > 0 {
		seq, _, n, state := ansi.DecodeSequence(buf, ansi.NormalState, d.parser)
		if state != ansi.NormalState {
			if len(buf) == 1 && buf[0] == esc {
				keys = append(keys, KeyEscape)
			} else if len(buf) <= maxPending {
				d.pending = append([]byte(nil), buf...)
			}
			break
		}
		if n == 0 {
			break
		}
		if k := d.classify(seq); k != KeyNone {
			keys = append(keys, k)
		}
		buf = buf[n:]
	}
	return keys
}

func (d *KeyDecoder) classify(seq []byte) Key {
	switch {
	case len(seq) == 1 && seq[0] == esc:
		return KeyEscape
	case ansi.HasCsiPrefix(seq):
		if ansi.Cmd(d.parser.Command()).Final() == 'Z' {
			return KeyPrev
		}
		return KeyNone
	case len(seq) != 1:
		return KeyNone
	}
	switch seq[0] {
	case 'q', 'Q', ctrlC:
		return KeyQuit
	case '\t':
		return KeyNext
	case 'r', 'R':
		return KeyRefresh
	}
	return KeyNone
}

// ReadKeys decodes keys from r until it fails. io.EOF is not reported.
func ReadKeys(r io.Reader, fn func(Key)) error {
	dec := NewKeyDecoder()
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, k := range dec.Feed(buf[:n]) {
			fn(k)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// ParseKeys decodes a complete chunk of input with a fresh decoder.
// Unknown bytes and escape sequences are dropped.
func ParseKeys(b []byte) []Key {
	return NewKeyDecoder().Feed(b)
}
