package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/diag"
	"src.xs.sh/pkg/eval"
	"src.xs.sh/pkg/parse"
	"src.xs.sh/pkg/types"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// Result of checking a document.
type analysis struct {
	prog *ast.Program
	ev   *eval.Evaler
}

type document struct {
	content string
	// Analysis of content, or nil if it does not check.
	current *analysis
	// The last successful analysis, used for completion while the document
	// is being edited.
	lastGood *analysis
}

type server struct {
	exts []parse.Extension
	docs map[lsp.DocumentURI]*document
}

func newServer(exts []parse.Extension) *server {
	return &server{exts, make(map[lsp.DocumentURI]*document)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/hover":      s.hover,
		"textDocument/completion": s.completion,

		"shutdown": noop,
		// Required by the protocol.
		"initialized": noop,
		// Called by clients even when server doesn't advertise support:
		// https://microsoft.github.io/language-server-protocol/specification#workspace_didChangeWatchedFiles
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		if req.Method == "exit" {
			return nil, conn.Close()
		}
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider:      true,
			CompletionProvider: &lsp.CompletionOptions{TriggerCharacters: []string{"."}},
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.update(ctx, conn, params.TextDocument.URI, params.TextDocument.Text)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}
	// ContentChanges includes full text since the server is only advertised to
	// support that; see the initialize method.
	s.update(ctx, conn, params.TextDocument.URI, params.ContentChanges[0].Text)
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	delete(s.docs, params.TextDocument.URI)
	return nil, nil
}

// Checks the new content of a document and publishes its diagnostics.
func (s *server) update(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	doc, ok := s.docs[uri]
	if !ok {
		doc = &document{}
		s.docs[uri] = doc
	}
	doc.content = content
	a, err := s.check(uri, content)
	doc.current = a
	if a != nil {
		doc.lastGood = a
	}
	diags := diagnostics(content, err)
	go conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diags})
}

func (s *server) check(uri lsp.DocumentURI, content string) (*analysis, error) {
	// A fresh Evaler per check, so that #r directives of one version of the
	// document do not leak into the next.
	ev, err := eval.NewEvaler(nil, s.exts...)
	if err != nil {
		return nil, err
	}
	prog, err := ev.Check(parse.Source{Name: string(uri), Code: content, IsFile: true}, eval.EvalCfg{})
	if err != nil {
		logger.Printf("%s: %v", uri, err)
		return nil, err
	}
	return &analysis{prog, ev}, nil
}

func diagnostics(content string, err error) []lsp.Diagnostic {
	if err == nil {
		return []lsp.Diagnostic{}
	}
	var (
		parseErr    *parse.Error
		semanticErr *parse.SemanticError
		compileErr  *eval.CompilationError
	)
	d := lsp.Diagnostic{Severity: lsp.Error, Source: "xs", Message: err.Error()}
	switch {
	case errors.As(err, &parseErr):
		d.Range, d.Source, d.Message = lspRangeFromRange(content, parseErr), "parse", parseErr.Message
	case errors.As(err, &semanticErr):
		d.Range, d.Source, d.Message = lspRangeFromRange(content, semanticErr), "semantic", semanticErr.Message
	case errors.As(err, &compileErr):
		d.Range, d.Source, d.Message = lspRangeFromRange(content, compileErr), "compile", compileErr.Message
	}
	return []lsp.Diagnostic{d}
}

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	doc, ok := s.docs[params.TextDocument.URI]
	if !ok || doc.current == nil {
		return lsp.Hover{}, nil
	}
	idx := lspPositionToIdx(doc.content, params.Position)
	n := nodeAt(doc.current.prog.Body, idx)
	if n == nil {
		return lsp.Hover{}, nil
	}
	text := describe(n)
	if text == "" {
		return lsp.Hover{}, nil
	}
	r := lspRangeFromRange(doc.content, n)
	return lsp.Hover{
		Contents: []lsp.MarkedString{{Language: "xs", Value: text}},
		Range:    &r,
	}, nil
}

// Returns the innermost node whose source range contains idx.
func nodeAt(root ast.Node, idx int) ast.Node {
	var found ast.Node
	ast.Walk(root, func(n ast.Node) bool {
		sp := n.Pos()
		if sp.Length == 0 {
			// Synthesized nodes have no range, but their children may.
			return true
		}
		if idx < sp.Offset || idx >= sp.Offset+sp.Length {
			return false
		}
		found = n
		return true
	})
	return found
}

func describe(n ast.Node) string {
	switch n := n.(type) {
	case *ast.VarRef:
		return "var " + n.Var.Name + ": " + n.Var.Type.String()
	case *ast.Declare:
		return "var " + n.Var.Name + ": " + n.Var.Type.String()
	case *ast.Call:
		return signature(n.Owner, n.Method)
	case *ast.Member:
		return n.Owner.String() + "." + n.Member.Name + ": " + n.Member.Type.String()
	case *ast.Block, *ast.Directive, *ast.LabelStmt:
		return ""
	}
	if t := n.Type(); !t.IsVoid() {
		return t.String()
	}
	return ""
}

func signature(owner *types.Type, m *types.Method) string {
	var sb strings.Builder
	if m.Static {
		sb.WriteString("static ")
	}
	sb.WriteString(owner.String() + "." + m.Name + "(")
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if m.Variadic && i == len(m.Params)-1 {
			sb.WriteString("params ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString("): " + m.Ret.String())
	return sb.String()
}

type candidate struct {
	label  string
	kind   lsp.CompletionItemKind
	detail string
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	doc, ok := s.docs[params.TextDocument.URI]
	if !ok {
		return []lsp.CompletionItem{}, nil
	}
	a := doc.lastGood
	if a == nil {
		var err error
		if a, err = s.check(params.TextDocument.URI, ""); err != nil {
			return []lsp.CompletionItem{}, nil
		}
	}

	content := doc.content
	dot := lspPositionToIdx(content, params.Position)
	start := identStart(content, dot)
	prefix := content[start:dot]

	var candidates []candidate
	if start > 0 && content[start-1] == '.' {
		candidates = memberCandidates(a, content[:start-1])
	} else {
		candidates = globalCandidates(a)
	}

	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = c.label
	}
	ranks := fuzzy.RankFindFold(prefix, labels)
	sort.Stable(ranks)

	replace := lspRangeFromRange(content, diag.Ranging{From: start, To: dot})
	items := make([]lsp.CompletionItem, len(ranks))
	for i, rank := range ranks {
		c := candidates[rank.OriginalIndex]
		items[i] = lsp.CompletionItem{
			Label:    c.label,
			Kind:     c.kind,
			Detail:   c.detail,
			TextEdit: &lsp.TextEdit{Range: replace, NewText: c.label},
		}
	}
	return items, nil
}

// Returns the start of the identifier ending at dot.
func identStart(s string, dot int) int {
	start := dot
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		start -= size
	}
	return start
}

func globalCandidates(a *analysis) []candidate {
	var cs []candidate
	for _, kw := range a.ev.Grammar().Keywords() {
		cs = append(cs, candidate{kw, lsp.CIKKeyword, "keyword"})
	}
	for _, name := range a.ev.Host.TypeNames() {
		cs = append(cs, candidate{name, lsp.CIKClass, "type"})
	}
	seen := map[string]bool{}
	for _, v := range variables(a.prog) {
		if !seen[v.Name] && !strings.HasPrefix(v.Name, "$") {
			seen[v.Name] = true
			cs = append(cs, candidate{v.Name, lsp.CIKVariable, v.Type.String()})
		}
	}
	return cs
}

// Returns all variables declared in the program, in source order.
func variables(prog *ast.Program) []*ast.Variable {
	var vars []*ast.Variable
	ast.Walk(prog.Body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Block:
			vars = append(vars, n.Vars...)
		case *ast.Lambda:
			vars = append(vars, n.Params...)
		case *ast.Try:
			for _, c := range n.Catches {
				if c.Var != nil {
					vars = append(vars, c.Var)
				}
			}
		}
		return true
	})
	return vars
}

// Candidates after a dot. The receiver is the dotted name before it, which
// is either a variable, whose instance members are offered, or a type,
// whose static members are offered.
func memberCandidates(a *analysis, before string) []candidate {
	start := len(before)
	for start > 0 {
		s := identStart(before, start)
		if s == start {
			break
		}
		start = s
		if start == 0 || before[start-1] != '.' {
			break
		}
		start--
	}
	name := strings.TrimPrefix(before[start:], ".")
	if name == "" {
		return nil
	}
	if !strings.Contains(name, ".") {
		for _, v := range variables(a.prog) {
			if v.Name == name {
				return membersOf(v.Type, false)
			}
		}
	}
	if t, ok := a.ev.Host.ResolveType(name); ok {
		return membersOf(t, true)
	}
	return nil
}

func membersOf(t *types.Type, static bool) []candidate {
	var cs []candidate
	switch t.Kind {
	case types.StringKind, types.ArrayKind:
		if !static {
			cs = append(cs, candidate{"Length", lsp.CIKProperty, "int"})
		}
	case types.HostKind:
		for name, m := range t.Members {
			if m.Static == static {
				cs = append(cs, candidate{name, lsp.CIKProperty, m.Type.String()})
			}
		}
		for name, overloads := range t.Methods {
			for _, m := range overloads {
				if m.Static == static {
					cs = append(cs, candidate{name, lsp.CIKMethod, signature(t, m)})
					break
				}
			}
		}
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].label < cs[j].label })
	return cs
}

func lspRangeFromRange(s string, r diag.Ranger) lsp.Range {
	rg := r.Range()
	return lsp.Range{
		Start: lspPositionFromIdx(s, rg.From),
		End:   lspPositionFromIdx(s, rg.To),
	}
}

func lspPositionToIdx(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if lastCR {
				// Ignore \n if it's part of a \r\n sequence
			} else {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// Encoded in UTF-16 with one unit
			p.Character++
		default:
			// Encoded in UTF-16 with two units
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
