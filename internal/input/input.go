// Package input turns terminal bytes into discrete key presses for the
// session loop.
//
// The Terminal source owns raw mode for the controlling terminal: no line
// buffering, no echo, every key press delivered the moment it happens.
// Escape sequences for arrow keys are decoded; unrecognized sequences are
// swallowed so they cannot leak as spurious label keys.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"
	"unicode/utf8"

	"golang.org/x/term"
)

// Kind classifies a decoded key press.
type Kind int

const (
	kindNone Kind = iota
	KindRune
	KindSpace
	KindBackspace
	KindTab
	KindEscape
	KindLeft
	KindRight
	KindUp
	KindDown
	KindCtrlC
)

// Key is one key press read from the operator.
type Key struct {
	Kind Kind
	Rune rune
}

func (k Key) String() string {
	switch k.Kind {
	case KindRune:
		return string(k.Rune)
	case KindSpace:
		return "space"
	case KindBackspace:
		return "backspace"
	case KindTab:
		return "tab"
	case KindEscape:
		return "esc"
	case KindLeft:
		return "left"
	case KindRight:
		return "right"
	case KindUp:
		return "up"
	case KindDown:
		return "down"
	case KindCtrlC:
		return "ctrl-c"
	default:
		return "unknown"
	}
}

// Source delivers key presses to the session loop.
type Source interface {
	// Keys returns the decoded key stream. The channel closes when the
	// underlying input ends.
	Keys() <-chan Key
	Close() error
}

// Terminal reads raw bytes from a controlling terminal and decodes them into
// Keys.
type Terminal struct {
	in        *os.File
	oldState  *term.State
	keys      chan Key
	done      chan struct{}
	closeOnce sync.Once
}

// NewTerminal switches in to raw mode and starts decoding key presses.
func NewTerminal(in *os.File) (*Terminal, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("input is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	t := &Terminal{
		in:       in,
		oldState: oldState,
		keys:     make(chan Key, 16),
		done:     make(chan struct{}),
	}
	go t.loop()
	return t, nil
}

// Keys returns the decoded key stream.
func (t *Terminal) Keys() <-chan Key {
	return t.keys
}

// Close restores the terminal state. A read currently blocked on the
// terminal ends with the process, not with Close.
func (t *Terminal) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		err = term.Restore(int(t.in.Fd()), t.oldState)
	})
	return err
}

func (t *Terminal) loop() {
	reader := bufio.NewReader(t.in)
	for {
		key, err := readKey(reader)
		if err != nil {
			close(t.keys)
			return
		}
		if key.Kind == kindNone {
			continue
		}
		select {
		case t.keys <- key:
		case <-t.done:
			return
		}
	}
}

func readKey(reader *bufio.Reader) (Key, error) {
	b, err := reader.ReadByte()
	if err != nil {
		return Key{}, err
	}
	switch b {
	case 0x03:
		return Key{Kind: KindCtrlC}, nil
	case ' ':
		return Key{Kind: KindSpace}, nil
	case 0x7f, 0x08:
		return Key{Kind: KindBackspace}, nil
	case '\t':
		return Key{Kind: KindTab}, nil
	case 0x1b:
		return readEscape(reader)
	}
	if b < 0x20 {
		// Control bytes without a binding, including enter.
		return Key{}, nil
	}
	if b < utf8.RuneSelf {
		return Key{Kind: KindRune, Rune: rune(b)}, nil
	}
	if err := reader.UnreadByte(); err != nil {
		return Key{}, err
	}
	r, _, err := reader.ReadRune()
	if err != nil {
		return Key{}, err
	}
	return Key{Kind: KindRune, Rune: r}, nil
}

// readEscape distinguishes a bare Esc press from an escape sequence. A
// sequence arrives in one burst, so an empty buffer right after the escape
// byte means the key itself.
func readEscape(reader *bufio.Reader) (Key, error) {
	if reader.Buffered() == 0 {
		return Key{Kind: KindEscape}, nil
	}
	next, err := reader.ReadByte()
	if err != nil {
		return Key{}, err
	}
	if next != '[' {
		// Alt-modified key, no binding.
		return Key{}, nil
	}
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return Key{}, err
		}
		// Parameter and intermediate bytes precede the final byte of a
		// CSI sequence.
		if b >= 0x40 && b <= 0x7e {
			switch b {
			case 'A':
				return Key{Kind: KindUp}, nil
			case 'B':
				return Key{Kind: KindDown}, nil
			case 'C':
				return Key{Kind: KindRight}, nil
			case 'D':
				return Key{Kind: KindLeft}, nil
			default:
				return Key{}, nil
			}
		}
	}
}
