package nef

import (
	"bytes"
	"strings"
	"testing"

	"neoc/internal/scripthash"
)

func TestBuildFallsBackToPlainCompilerIDOnInvalidVersion(t *testing.T) {
	f := Build([]byte{0x01}, "main.py", "not-a-version")
	if f.Compiler != CompilerID {
		t.Fatalf("expected fallback to %q, got %q", CompilerID, f.Compiler)
	}
}

func TestBuildCanonicalisesValidVersion(t *testing.T) {
	f := Build([]byte{0x01}, "main.py", "v0.2.0")
	if !strings.Contains(f.Compiler, "0.2.0") {
		t.Fatalf("expected compiler field to embed the version, got %q", f.Compiler)
	}
}

func TestSerialiseIsDeterministic(t *testing.T) {
	f := Build([]byte{0x01, 0x02, 0x03}, "main.py", "v1.0.0")
	a, err := f.Serialise()
	if err != nil {
		t.Fatalf("serialise: %v", err)
	}
	b, err := f.Serialise()
	if err != nil {
		t.Fatalf("serialise: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("expected serialising the same container twice to be byte-identical")
	}
}

func TestSerialiseStartsWithMagic(t *testing.T) {
	f := Build([]byte{0x01}, "main.py", "v1.0.0")
	out, err := f.Serialise()
	if err != nil {
		t.Fatalf("serialise: %v", err)
	}
	if len(out) < 4 || out[0] != 0x4e || out[1] != 0x45 || out[2] != 0x46 || out[3] != 0x33 {
		t.Fatalf("expected NEF3 magic at the start, got % x", out[:4])
	}
}

func TestSerialiseRejectsOversizedCompilerField(t *testing.T) {
	f := &File{Compiler: strings.Repeat("x", compilerField+1), Source: "main.py", Script: []byte{0x01}}
	if _, err := f.Serialise(); err == nil {
		t.Fatal("expected an error for a compiler field wider than 64 bytes")
	}
}

func TestScriptHashMatchesScripthashContractHash(t *testing.T) {
	script := []byte("a script")
	f := Build(script, "main.py", "v1.0.0")
	if f.ScriptHash() != scripthash.ContractHash(script) {
		t.Fatal("ScriptHash should equal scripthash.ContractHash of the script")
	}
}

func TestSummaryMentionsCompilerAndHash(t *testing.T) {
	f := Build([]byte{0x01, 0x02}, "main.py", "v1.0.0")
	s := f.Summary()
	if !strings.Contains(s, f.Compiler) {
		t.Fatalf("expected summary %q to mention compiler %q", s, f.Compiler)
	}
}
