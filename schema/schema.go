/**
 * Copyright (c) 2018, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package schema is the typed description of vertex types, edges, properties and
// interface/subtype relationships a query is validated against, grounded on the teacher's own
// graphql.Schema/graphql.Object/graphql.Field trio (graphql/schema.go, graphql/object.go,
// graphql/field.go) but renamed to the vertex-and-edge shape spec.md §3 describes instead of
// GraphQL's object-and-field shape.
package schema

import (
	"fmt"
	"sort"

	"github.com/trustfall-go/trustfall"
)

// TypeRef describes the shape of a property or a parameter: its scalar kind, how many levels of
// List wrap it, and whether it may be null at the outermost level. This is the minimal type
// algebra §4.1's "type-argument agreement" rule needs: list/non-null stripping down to a
// comparison shape.
type TypeRef struct {
	ElementKind trustfall.Kind
	ListDepth   int
	Nullable    bool
}

// Scalar builds a nullable, non-list TypeRef of the given kind.
func Scalar(kind trustfall.Kind) TypeRef {
	return TypeRef{ElementKind: kind, Nullable: true}
}

// NonNullScalar builds a required, non-list TypeRef of the given kind.
func NonNullScalar(kind trustfall.Kind) TypeRef {
	return TypeRef{ElementKind: kind, Nullable: false}
}

// ListOf wraps t in one more level of List.
func ListOf(t TypeRef) TypeRef {
	t.ListDepth++
	return t
}

// IsNumeric reports whether t's element kind takes part in the numeric promotion table (§4.2).
func (t TypeRef) IsNumeric() bool {
	switch t.ElementKind {
	case trustfall.KindInt64, trustfall.KindUint64, trustfall.KindFloat64:
		return true
	}
	return false
}

func (t TypeRef) String() string {
	s := t.ElementKind.String()
	for i := 0; i < t.ListDepth; i++ {
		s = "[" + s + "]"
	}
	if !t.Nullable {
		s += "!"
	}
	return s
}

// PropertyDefinition describes a scalar or list-valued attribute of a vertex type.
type PropertyDefinition struct {
	Name string
	Type TypeRef
}

// EdgeDefinition describes a named, possibly parameterized traversal step out of a vertex type
// (or, for a root edge, out of the query itself).
type EdgeDefinition struct {
	Name       string
	TargetType string
	Parameters map[string]TypeRef

	// Recursable is true if `@recurse` may target this edge. A self-edge (TargetType equal to,
	// or a supertype of, the type that declares it) is what makes @recurse meaningful, but the
	// schema is the authority so an adapter can opt individual edges in or out.
	Recursable bool
}

// VertexType describes one named vertex type: its properties, its outgoing edges, and the
// interfaces (supertypes) it implements.
type VertexType struct {
	Name       string
	Implements []string
	Properties map[string]PropertyDefinition
	Edges      map[string]EdgeDefinition
}

// VertexTypeConfig is the builder input for a VertexType, analogous to the teacher's
// ObjectConfig.
type VertexTypeConfig struct {
	Name       string
	Implements []string
	Properties []PropertyDefinition
	Edges      []EdgeDefinition
}

// Config builds a Schema from its vertex types, interfaces and root edges, analogous to the
// teacher's SchemaConfig.
type Config struct {
	// VertexTypes are every vertex type the schema defines, including any interface that
	// declares its own properties and edges.
	VertexTypes []VertexTypeConfig

	// Interfaces names every interface type; its possible types are computed from the
	// Implements lists of VertexTypes.
	Interfaces []string

	// RootEdges are the entry points `resolve_starting_vertices` can be asked to resolve, such
	// as `Number(min: Int, max: Int): [Number]`.
	RootEdges []EdgeDefinition
}

// Schema is the compiled, immutable typed schema a query is validated and compiled against.
type Schema struct {
	vertexTypes  map[string]*VertexType
	interfaces   map[string]bool
	possibleOf   map[string][]string // interface name -> concrete type names implementing it
	rootEdges    map[string]EdgeDefinition
}

// New builds a Schema from a Config, validating that every edge's TargetType and every vertex's
// Implements list name a declared type.
func New(config Config) (*Schema, error) {
	s := &Schema{
		vertexTypes: make(map[string]*VertexType, len(config.VertexTypes)),
		interfaces:  make(map[string]bool, len(config.Interfaces)),
		possibleOf:  make(map[string][]string, len(config.Interfaces)),
		rootEdges:   make(map[string]EdgeDefinition, len(config.RootEdges)),
	}

	for _, name := range config.Interfaces {
		s.interfaces[name] = true
	}

	for _, vtc := range config.VertexTypes {
		if vtc.Name == "" {
			return nil, trustfall.NewError("vertex type must have a name", trustfall.ErrKindValidation)
		}
		if _, exists := s.vertexTypes[vtc.Name]; exists {
			return nil, trustfall.NewError(
				fmt.Sprintf("duplicate vertex type %q", vtc.Name), trustfall.ErrKindValidation)
		}

		vt := &VertexType{
			Name:       vtc.Name,
			Implements: append([]string(nil), vtc.Implements...),
			Properties: make(map[string]PropertyDefinition, len(vtc.Properties)),
			Edges:      make(map[string]EdgeDefinition, len(vtc.Edges)),
		}
		for _, p := range vtc.Properties {
			vt.Properties[p.Name] = p
		}
		for _, e := range vtc.Edges {
			vt.Edges[e.Name] = e
		}
		s.vertexTypes[vtc.Name] = vt
	}

	for _, vt := range s.vertexTypes {
		for _, iface := range vt.Implements {
			if !s.interfaces[iface] {
				return nil, trustfall.NewError(
					fmt.Sprintf("vertex type %q implements undeclared interface %q", vt.Name, iface),
					trustfall.ErrKindValidation)
			}
			s.possibleOf[iface] = append(s.possibleOf[iface], vt.Name)
		}
		for _, e := range vt.Edges {
			if _, ok := s.vertexTypes[e.TargetType]; !ok && !s.interfaces[e.TargetType] {
				return nil, trustfall.NewError(
					fmt.Sprintf("edge %q.%q targets undeclared type %q", vt.Name, e.Name, e.TargetType),
					trustfall.ErrKindValidation)
			}
		}
	}

	for name, list := range s.possibleOf {
		sort.Strings(list)
		s.possibleOf[name] = list
	}

	for _, e := range config.RootEdges {
		if _, ok := s.vertexTypes[e.TargetType]; !ok && !s.interfaces[e.TargetType] {
			return nil, trustfall.NewError(
				fmt.Sprintf("root edge %q targets undeclared type %q", e.Name, e.TargetType),
				trustfall.ErrKindValidation)
		}
		s.rootEdges[e.Name] = e
	}

	return s, nil
}

// VertexType looks up a declared vertex type (concrete or interface) by name.
func (s *Schema) VertexType(name string) (*VertexType, bool) {
	vt, ok := s.vertexTypes[name]
	return vt, ok
}

// IsInterface reports whether name was declared as an interface.
func (s *Schema) IsInterface(name string) bool {
	return s.interfaces[name]
}

// PossibleTypes returns the concrete vertex type names that implement the named interface, in
// sorted order. It returns nil if the interface is unknown or has no implementors.
func (s *Schema) PossibleTypes(interfaceName string) []string {
	return s.possibleOf[interfaceName]
}

// IsSubtypeOf reports whether sub is either equal to super, or a concrete type implementing the
// interface super. This backs `... on SubType` coercion validation (§4.1 step 1) and the
// adapter's resolve_coercion contract (§4.3).
func (s *Schema) IsSubtypeOf(sub, super string) bool {
	if sub == super {
		return true
	}
	for _, t := range s.possibleOf[super] {
		if t == sub {
			return true
		}
	}
	return false
}

// RootEdge looks up a query entry point by name.
func (s *Schema) RootEdge(name string) (EdgeDefinition, bool) {
	e, ok := s.rootEdges[name]
	return e, ok
}

// ResolveEdge looks up an edge declared on typeName, or (if typeName is a concrete type) one
// declared on an interface it implements.
func (s *Schema) ResolveEdge(typeName, edgeName string) (EdgeDefinition, bool) {
	if vt, ok := s.vertexTypes[typeName]; ok {
		if e, ok := vt.Edges[edgeName]; ok {
			return e, true
		}
		for _, iface := range vt.Implements {
			if e, ok := s.ResolveEdge(iface, edgeName); ok {
				return e, true
			}
		}
	}
	return EdgeDefinition{}, false
}

// ResolveProperty looks up a property declared on typeName, or inherited from an interface it
// implements.
func (s *Schema) ResolveProperty(typeName, propertyName string) (PropertyDefinition, bool) {
	if vt, ok := s.vertexTypes[typeName]; ok {
		if p, ok := vt.Properties[propertyName]; ok {
			return p, true
		}
		for _, iface := range vt.Implements {
			if p, ok := s.ResolveProperty(iface, propertyName); ok {
				return p, true
			}
		}
	}
	return PropertyDefinition{}, false
}
