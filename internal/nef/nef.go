// Package nef builds the .nef container a deployment tool loads alongside
// the manifest: the compiled script plus enough metadata (compiler
// identity, source file name, a checksum) for a node to reject a
// corrupted or mismatched payload before ever executing it.
//
// Grounded on Neo N3's NEF3 container layout: a magic number, a
// fixed-width compiler field, a source reference, the raw script, and a
// trailing checksum derived from everything before it.
package nef

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/mod/semver"

	"neoc/internal/scripthash"
)

const (
	magic         = 0x3346454e // "NEF3" little-endian
	compilerField = 64         // fixed-width compiler identity field, NUL-padded
)

// CompilerID is this compiler's identity string embedded in every .nef
// file's Compiler field, truncated to compilerField bytes.
const CompilerID = "neoc-0.1.0"

// File is a fully-assembled .nef container ready for Serialise.
type File struct {
	Compiler string
	Source   string
	Script   []byte
}

// Build assembles a File from a compiled script and the source file name
// it came from. version is this compiler's semantic version; a malformed
// version (rejected by golang.org/x/mod/semver) falls back to the fixed
// CompilerID rather than failing the whole build.
func Build(script []byte, sourceName, version string) *File {
	compiler := CompilerID
	if semver.IsValid(version) {
		compiler = fmt.Sprintf("neoc-%s", semver.Canonical(version))
	}
	return &File{Compiler: compiler, Source: sourceName, Script: script}
}

// Serialise renders the container as bytes: magic, the NUL-padded compiler
// field, the source name, the script, and a trailing 4-byte checksum over
// everything before it (scripthash's double-SHA-256 checksum style, the
// same one Address uses for base58check).
func (f *File) Serialise() ([]byte, error) {
	if len(f.Compiler) > compilerField {
		return nil, fmt.Errorf("nef: compiler field %q exceeds %d bytes", f.Compiler, compilerField)
	}

	var buf bytes.Buffer
	var magicBytes [4]byte
	binary.LittleEndian.PutUint32(magicBytes[:], magic)
	buf.Write(magicBytes[:])

	compilerBytes := make([]byte, compilerField)
	copy(compilerBytes, f.Compiler)
	buf.Write(compilerBytes)

	writeVarString(&buf, f.Source)
	writeVarBytes(&buf, f.Script)

	first := sha256.Sum256(buf.Bytes())
	checksum := sha256.Sum256(first[:])
	buf.Write(checksum[:4])
	return buf.Bytes(), nil
}

// ScriptHash returns the Neo contract hash (RIPEMD160(SHA256(script))) this
// container's script would deploy under.
func (f *File) ScriptHash() [20]byte { return scripthash.ContractHash(f.Script) }

// Summary renders a one-line, human-scaled build summary for CLI logging:
// script size, compiler identity, and the deployed contract hash.
func (f *File) Summary() string {
	hash := f.ScriptHash()
	return fmt.Sprintf("%s script, compiler %s, hash 0x%x", humanize.Bytes(uint64(len(f.Script))), f.Compiler, hash)
}

func writeVarBytes(buf *bytes.Buffer, data []byte) {
	writeVarInt(buf, uint64(len(data)))
	buf.Write(data)
}

func writeVarString(buf *bytes.Buffer, s string) { writeVarBytes(buf, []byte(s)) }

// writeVarInt writes Neo's variable-length integer encoding: a 1-byte
// prefix selecting the width of the length that follows.
func writeVarInt(buf *bytes.Buffer, v uint64) {
	switch {
	case v < 0xfd:
		buf.WriteByte(byte(v))
	case v <= 0xffff:
		buf.WriteByte(0xfd)
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		buf.Write(b[:])
	case v <= 0xffffffff:
		buf.WriteByte(0xfe)
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		buf.Write(b[:])
	default:
		buf.WriteByte(0xff)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		buf.Write(b[:])
	}
}
