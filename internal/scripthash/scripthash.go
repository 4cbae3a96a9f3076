// Package scripthash computes the two hash-derived identifiers the Neo
// runtime needs from a compiled contract: a SYSCALL instruction's 4-byte
// interop method operand, and a deployed script's 20-byte contract hash.
//
// Grounded on the interop method names recorded in
// original_source/boa3/model/builtin/interop's syscall assignments (e.g.
// "System.Runtime.CheckWitness") and on the crypto/sha256-over-an-in-memory-
// buffer checksum style used elsewhere in this module, extended with
// golang.org/x/crypto/ripemd160 and github.com/mr-tron/base58 for the
// contract-hash and address-encoding half nothing else in the module covers.
package scripthash

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

// InteropMethodHash returns the 4-byte SYSCALL operand for an interop
// method's ASCII name: the first four bytes of its SHA-256 digest, the
// convention every Neo N3 interop service identifier is derived by.
func InteropMethodHash(name string) [4]byte {
	digest := sha256.Sum256([]byte(name))
	var out [4]byte
	copy(out[:], digest[:4])
	return out
}

// ContractHash returns a deployed script's 20-byte contract hash:
// RIPEMD-160(SHA-256(script)), matching how Ledger.to_script_hash and every
// Neo address are derived from a contract's verification script.
func ContractHash(script []byte) [20]byte {
	sha := sha256.Sum256(script)
	r := ripemd160.New()
	r.Write(sha[:])
	var out [20]byte
	copy(out[:], r.Sum(nil))
	return out
}

// Address base58check-encodes a contract hash with the given address
// version byte, producing the human-readable form a manifest's author
// field or a deployment tool's confirmation prompt displays.
func Address(hash [20]byte, version byte) string {
	payload := make([]byte, 0, 1+len(hash)+4)
	payload = append(payload, version)
	payload = append(payload, hash[:]...)
	checksum := doubleSHA256(payload)
	payload = append(payload, checksum[:4]...)
	return base58.Encode(payload)
}

func doubleSHA256(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}
