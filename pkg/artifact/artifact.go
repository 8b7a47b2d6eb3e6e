// Package artifact implements the binary format written by "xs compile" for
// programs the Go emitter cannot translate.
//
// A file starts with a 4-byte magic, followed by a CBOR envelope holding the
// canonically encoded payload and its BLAKE2b-256 digest. The payload keeps
// the source of the program together with what the compiler learned about
// it, so that "xs run-file" can run it after checking its integrity.
package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"src.xs.sh/pkg/ast"
)

// Magic is the prefix of every artifact file.
const Magic = "XSC\x01"

// Version of the payload format.
const Version = 1

// Maximum size of an envelope, to bound the memory used on corrupt input.
const maxSize = 16 << 20

var (
	// ErrBadMagic is returned when reading a file that is not an artifact.
	ErrBadMagic = errors.New("not an xs artifact")
	// ErrChecksum is returned when the payload does not match its digest.
	ErrChecksum = errors.New("artifact checksum mismatch")
)

// Artifact is the payload of an artifact file.
type Artifact struct {
	Version int `cbor:"1,keyasint"`
	// Name of the source the program was compiled from.
	Name string `cbor:"2,keyasint"`
	// Source code of the program.
	Source string `cbor:"3,keyasint"`
	// Arguments of the #r directives, in source order.
	References []string `cbor:"4,keyasint,omitempty"`
	// Names of the variables declared at the top level, sorted.
	Globals []string `cbor:"5,keyasint,omitempty"`
	// Number of nodes in the syntax tree.
	Nodes int `cbor:"6,keyasint"`
	// Compilation time, in Unix seconds.
	Compiled int64 `cbor:"7,keyasint"`
}

type envelope struct {
	Payload []byte `cbor:"1,keyasint"`
	Digest  []byte `cbor:"2,keyasint"`
}

// FromProgram builds the artifact of a parsed program.
func FromProgram(prog *ast.Program) *Artifact {
	a := &Artifact{Version: Version, Name: prog.Name, Source: prog.Source,
		Compiled: time.Now().Unix()}
	for _, v := range prog.Body.Vars {
		a.Globals = append(a.Globals, v.Name)
	}
	sort.Strings(a.Globals)
	ast.Walk(prog.Body, func(n ast.Node) bool {
		a.Nodes++
		if d, ok := n.(*ast.Directive); ok && d.Name == "r" {
			a.References = append(a.References, d.Arg)
		}
		return true
	})
	return a
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// Write writes the artifact to w and returns the digest of its payload.
func Write(w io.Writer, a *Artifact) ([32]byte, error) {
	payload, err := encMode.Marshal(a)
	if err != nil {
		return [32]byte{}, fmt.Errorf("encode payload: %w", err)
	}
	digest := blake2b.Sum256(payload)
	data, err := encMode.Marshal(envelope{payload, digest[:]})
	if err != nil {
		return [32]byte{}, fmt.Errorf("encode envelope: %w", err)
	}
	if _, err := io.WriteString(w, Magic); err != nil {
		return [32]byte{}, err
	}
	if _, err := w.Write(data); err != nil {
		return [32]byte{}, err
	}
	return digest, nil
}

// IsArtifact reports whether data starts with the artifact magic.
func IsArtifact(data []byte) bool {
	return bytes.HasPrefix(data, []byte(Magic))
}

// Read reads an artifact from r, verifying its digest.
func Read(r io.Reader) (*Artifact, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+int64(len(Magic))+1))
	if err != nil {
		return nil, err
	}
	if !IsArtifact(data) {
		return nil, ErrBadMagic
	}
	data = data[len(Magic):]
	if len(data) > maxSize {
		return nil, fmt.Errorf("artifact larger than %d bytes", maxSize)
	}
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	digest := blake2b.Sum256(env.Payload)
	if !bytes.Equal(digest[:], env.Digest) {
		return nil, ErrChecksum
	}
	var a Artifact
	if err := cbor.Unmarshal(env.Payload, &a); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if a.Version != Version {
		return nil, fmt.Errorf("unsupported artifact version %d", a.Version)
	}
	return &a, nil
}

// Digest returns the hex digest of the artifact, as shown by "xs compile".
func Digest(sum [32]byte) string {
	return fmt.Sprintf("blake2b:%x", sum)
}
