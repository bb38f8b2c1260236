// Package iocontext carries the command's input and output streams in a
// context so commands can be driven from tests.
package iocontext

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
)

// IO holds the streams a command reads from and writes to.
type IO struct {
	Out    io.Writer // stdout
	ErrOut io.Writer // stderr
	In     io.Reader // stdin, used for "-" message sources
}

// DefaultIO returns the process streams.
func DefaultIO() *IO {
	return &IO{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
		In:     os.Stdin,
	}
}

// Buffered returns an IO reading from input and writing into the returned
// buffers.
func Buffered(input string) (*IO, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &IO{Out: out, ErrOut: errOut, In: strings.NewReader(input)}, out, errOut
}

type ioKey struct{}

// WithIO adds IO streams to a context.
func WithIO(ctx context.Context, streams *IO) context.Context {
	return context.WithValue(ctx, ioKey{}, streams)
}

// GetIO retrieves IO streams from ctx, defaulting to the process streams.
func GetIO(ctx context.Context) *IO {
	if streams, ok := ctx.Value(ioKey{}).(*IO); ok && streams != nil {
		return streams
	}
	return DefaultIO()
}
