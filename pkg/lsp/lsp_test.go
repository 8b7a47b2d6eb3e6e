package lsp

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uri = lsp.DocumentURI("file:///test.xs")

type client struct {
	t     *testing.T
	conn  *jsonrpc2.Conn
	diags chan lsp.PublishDiagnosticsParams
}

type pipes struct {
	*io.PipeReader
	*io.PipeWriter
}

func (p pipes) Close() error {
	p.PipeReader.Close()
	return p.PipeWriter.Close()
}

func setup(t *testing.T) *client {
	toServerR, toServerW := io.Pipe()
	toClientR, toClientW := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Serve(ctx, toServerR, toClientW)
		close(done)
	}()

	c := &client{t: t, diags: make(chan lsp.PublishDiagnosticsParams, 10)}
	c.conn = jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(pipes{toClientR, toServerW}, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
			if req.Method == "textDocument/publishDiagnostics" && req.Params != nil {
				var params lsp.PublishDiagnosticsParams
				if json.Unmarshal(*req.Params, &params) == nil {
					c.diags <- params
				}
			}
			return nil, nil
		}))
	t.Cleanup(func() {
		c.conn.Close()
		cancel()
		<-done
	})
	return c
}

func (c *client) call(method string, params, result any) {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(c.t, c.conn.Call(ctx, method, params, result))
}

func (c *client) open(text string) []lsp.Diagnostic {
	c.t.Helper()
	require.NoError(c.t, c.conn.Notify(context.Background(), "textDocument/didOpen",
		lsp.DidOpenTextDocumentParams{TextDocument: lsp.TextDocumentItem{URI: uri, Text: text}}))
	return c.nextDiags()
}

func (c *client) change(text string) []lsp.Diagnostic {
	c.t.Helper()
	require.NoError(c.t, c.conn.Notify(context.Background(), "textDocument/didChange",
		lsp.DidChangeTextDocumentParams{
			TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri}},
			ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: text}},
		}))
	return c.nextDiags()
}

func (c *client) nextDiags() []lsp.Diagnostic {
	c.t.Helper()
	select {
	case p := <-c.diags:
		assert.Equal(c.t, uri, p.URI)
		return p.Diagnostics
	case <-time.After(5 * time.Second):
		c.t.Fatal("timed out waiting for diagnostics")
		return nil
	}
}

func (c *client) complete(line, char int) []string {
	c.t.Helper()
	var items []lsp.CompletionItem
	c.call("textDocument/completion", lsp.CompletionParams{
		TextDocumentPositionParams: lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: uri},
			Position:     lsp.Position{Line: line, Character: char},
		},
	}, &items)
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	return labels
}

func TestInitialize(t *testing.T) {
	c := setup(t)
	var result lsp.InitializeResult
	c.call("initialize", lsp.InitializeParams{}, &result)
	assert.True(t, result.Capabilities.HoverProvider)
	require.NotNil(t, result.Capabilities.CompletionProvider)
	assert.Equal(t, []string{"."}, result.Capabilities.CompletionProvider.TriggerCharacters)
}

func TestUnknownMethod(t *testing.T) {
	c := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.conn.Call(ctx, "textDocument/definition", nil, nil)
	assert.Error(t, err)
}

var diagnosticTests = []struct {
	name    string
	text    string
	source  string
	message string
	start   lsp.Position
}{
	{"parse error", "var x = 1;\nx + ", "parse", "", lsp.Position{}},
	{"semantic error", "var x = 1;\ny", "semantic", "variable not found: y", lsp.Position{Line: 1, Character: 0}},
	{"compile error", "var s = \"a\";\nwhile (s) { }", "", "", lsp.Position{}},
}

func TestDiagnostics(t *testing.T) {
	for _, test := range diagnosticTests {
		t.Run(test.name, func(t *testing.T) {
			c := setup(t)
			diags := c.open(test.text)
			require.Len(t, diags, 1)
			d := diags[0]
			assert.Equal(t, lsp.Error, d.Severity)
			assert.NotEmpty(t, d.Message)
			if test.source != "" {
				assert.Equal(t, test.source, d.Source)
			}
			if test.start != (lsp.Position{}) {
				assert.Equal(t, test.start, d.Range.Start)
			}
			if test.message != "" {
				assert.Contains(t, d.Message, test.message)
			}
		})
	}
}

func TestDiagnostics_Cleared(t *testing.T) {
	c := setup(t)
	assert.Len(t, c.open("var x = ;"), 1)
	assert.Empty(t, c.change("var x = 1;"))
}

func TestHover(t *testing.T) {
	c := setup(t)
	require.Empty(t, c.open("var count = 41;\ncount + Math.Max(1, 2)"))

	hover := func(line, char int) string {
		var h lsp.Hover
		c.call("textDocument/hover", lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: uri},
			Position:     lsp.Position{Line: line, Character: char},
		}, &h)
		if len(h.Contents) == 0 {
			return ""
		}
		return h.Contents[0].Value
	}

	assert.Equal(t, "var count: int", hover(1, 2))
	assert.Contains(t, hover(1, 14), "Max(int, int): int")
	assert.Equal(t, "int", hover(0, 13))
}

func TestCompletion_Global(t *testing.T) {
	c := setup(t)
	require.Empty(t, c.open("var counter = 1;\ncounter"))
	// The edited document does not check; names come from the last version
	// that did.
	require.NotEmpty(t, c.change("var counter = 1;\ncou"))

	labels := c.complete(1, 3)
	assert.Contains(t, labels, "counter")
	assert.Contains(t, labels, "continue")
	assert.NotContains(t, labels, "Math")
}

func TestCompletion_Members(t *testing.T) {
	c := setup(t)
	require.Empty(t, c.open("var s = \"abc\";\ns"))
	c.change("var s = \"abc\";\ns.")
	assert.Equal(t, []string{"Length"}, c.complete(1, 2))

	c.change("var s = \"abc\";\nMath.Ma")
	labels := c.complete(1, 7)
	assert.Contains(t, labels, "Max")
	assert.NotContains(t, labels, "Length")
}

func TestPositionConversion(t *testing.T) {
	s := "ab\nc世\U0001f600d"
	for idx, pos := range map[int]lsp.Position{
		0:  {Line: 0, Character: 0},
		2:  {Line: 0, Character: 2},
		3:  {Line: 1, Character: 0},
		4:  {Line: 1, Character: 1},
		7:  {Line: 1, Character: 2},
		11: {Line: 1, Character: 4},
	} {
		assert.Equal(t, pos, lspPositionFromIdx(s, idx), "index %d", idx)
		assert.Equal(t, idx, lspPositionToIdx(s, pos), "position %v", pos)
	}
}
