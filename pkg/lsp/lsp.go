// Package lsp implements a language server for XS.
//
// The server keeps the text of open documents and checks them on every
// change, publishing parse, semantic and compilation errors as diagnostics.
// It also answers hover requests with the static type of the expression
// under the cursor, and completion requests with names ranked by fuzzy
// matching.
package lsp

import (
	"context"
	"io"

	"github.com/sourcegraph/jsonrpc2"

	"src.xs.sh/pkg/logutil"
	"src.xs.sh/pkg/parse"
)

var logger = logutil.GetLogger("[lsp] ")

// Serve runs the language server over the given streams, until the client
// disconnects or ctx is canceled. Documents are checked with the built-in
// grammar plus the given extensions.
func Serve(ctx context.Context, in io.ReadCloser, out io.WriteCloser, exts ...parse.Extension) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s := newServer(exts)
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(transport{in, out}, jsonrpc2.VSCodeObjectCodec{}),
		handler(s))
	select {
	case <-conn.DisconnectNotify():
	case <-ctx.Done():
		conn.Close()
	}
	logger.Println("connection closed")
	return nil
}

type transport struct {
	in  io.ReadCloser
	out io.WriteCloser
}

func (c transport) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c transport) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c transport) Close() error {
	if err := c.in.Close(); err != nil {
		c.out.Close()
		return err
	}
	return c.out.Close()
}
