// Package manifest builds the NEP-compatible contract manifest: the ABI
// (method/event signatures with their script offsets), supported
// standards, permissions, trusts, and free-form extras a deployment tool
// attaches to a compiled script.
//
// Grounded on
// original_source/boa3/model/builtin/interop/contract/contractmanifest/contractmanifesttype.py,
// whose Variable set (name, groups, supported_standards, abi, permissions,
// trusts, extras) fixes this package's JSON field list.
package manifest

import (
	"encoding/json"

	"golang.org/x/exp/slices"

	"neoc/internal/codegen"
	"neoc/internal/symbols"
	"neoc/internal/types"
)

// Parameter is one method or event parameter's ABI-facing name and type.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Method is one @public method's ABI entry: its parameter/return types and
// the byte offset its compiled entry point landed at.
type Method struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
	ReturnType string      `json:"returntype"`
	Offset     int         `json:"offset"`
	Safe       bool        `json:"safe"`
}

// Event is one declared event's ABI entry.
type Event struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
}

// ABI is the method/event signature table a client uses to invoke the
// contract without reading its source.
type ABI struct {
	Methods []Method `json:"methods"`
	Events  []Event  `json:"events"`
}

// Permission is one entry of the manifest's permission table: which
// contracts/methods this contract is allowed to call.
type Permission struct {
	Contract string   `json:"contract"`
	Methods  []string `json:"methods"`
}

// Manifest is the full contract manifest document.
type Manifest struct {
	Name               string            `json:"name"`
	Groups             []string          `json:"groups"`
	SupportedStandards []string          `json:"supportedstandards"`
	ABI                ABI               `json:"abi"`
	Permissions        []Permission      `json:"permissions"`
	Trusts             []string          `json:"trusts"`
	Extra              map[string]string `json:"extra"`
}

// Options carries the metadata-function passthrough values a manifest
// needs beyond what the compiled methods themselves supply.
type Options struct {
	Name               string
	SupportedStandards []string
	Trusts             []string
	Extra              map[string]string
}

// Build assembles a Manifest from the module's compiled methods and
// declared events, sorting both by name so two compiles of identical
// source produce byte-identical JSON regardless of map iteration order.
func Build(methods []*codegen.CompiledMethod, events []*symbols.Event, opts Options) *Manifest {
	abiMethods := make([]Method, 0, len(methods))
	for _, m := range methods {
		if !m.Spec.IsPublic {
			continue
		}
		abiMethods = append(abiMethods, Method{
			Name:       m.Name,
			Parameters: toParameters(m.Spec.Params),
			ReturnType: abiTypeName(m.Spec.ReturnType),
			Offset:     m.Entry.Offset(),
			Safe:       false,
		})
	}
	slices.SortFunc(abiMethods, func(a, b Method) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})

	abiEvents := make([]Event, 0, len(events))
	for _, e := range events {
		abiEvents = append(abiEvents, Event{Name: e.ID, Parameters: toParameters(e.Params)})
	}
	slices.SortFunc(abiEvents, func(a, b Event) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})

	standards := append([]string(nil), opts.SupportedStandards...)
	slices.Sort(standards)

	return &Manifest{
		Name:               opts.Name,
		Groups:             []string{},
		SupportedStandards: standards,
		ABI:                ABI{Methods: abiMethods, Events: abiEvents},
		Permissions:        []Permission{{Contract: "*", Methods: []string{"*"}}},
		Trusts:             opts.Trusts,
		Extra:              opts.Extra,
	}
}

func toParameters(params []*symbols.Param) []Parameter {
	out := make([]Parameter, len(params))
	for i, p := range params {
		out[i] = Parameter{Name: p.ID, Type: abiTypeName(p.Type)}
	}
	return out
}

// abiTypeName renders a resolved type as the manifest's ABI type string
// (e.g. "Integer", "String", "Array", "Void"), matching the ABIKind values
// internal/types already assigns each type.
func abiTypeName(t *types.Type) string {
	if t == nil || t.IsNone() {
		return "Void"
	}
	return string(t.ABI())
}

// MarshalJSON renders the manifest as indented JSON, the form a deployment
// tool or block explorer expects a .manifest.json file to be in.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	type alias Manifest
	return json.MarshalIndent((*alias)(m), "", "  ")
}
