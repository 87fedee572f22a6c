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

// Package frontend compiles a parsed query (package ast) against a Schema into an IRQuery,
// performing the type resolution, Vid/Eid assignment, directive lowering and tag-scope checks
// spec.md §4.1 describes. It plays the role the teacher's graphql/validator plays for a GraphQL
// document, except the rules it checks are trustfall's own (tag scope, fold boundaries, filter
// type agreement) rather than the GraphQL spec's.
package frontend

import (
	"fmt"
	"strings"

	"github.com/trustfall-go/trustfall"
	"github.com/trustfall-go/trustfall/ast"
	"github.com/trustfall-go/trustfall/ir"
	"github.com/trustfall-go/trustfall/schema"
)

// Op names used when building trustfall.Error values from this package.
const (
	opCompile = trustfall.Op("frontend.Compile")
)

// tagDef records where a `@tag` was defined, for the scope checks in §4.1 step 4.
type tagDef struct {
	field    ir.FieldReference
	foldPath []ir.Eid
}

// compiler carries the mutable state threaded through compilation: the monotonic Vid/Eid
// counters, the tag symbol table, and the accumulated errors (the frontend reports every
// violation it finds in one pass, not just the first, the way the teacher's validator does).
type compiler struct {
	schema *schema.Schema

	nextVid ir.Vid
	nextEid ir.Eid

	tags map[string]tagDef

	variableTypes map[string]schema.TypeRef

	errors []error
}

// Compile compiles a parsed query document against a schema into an IRQuery. It returns every
// FrontendError/ValidationError found, aggregated, rather than stopping at the first.
func Compile(sch *schema.Schema, doc *ast.Document) (*ir.IRQuery, error) {
	c := &compiler{
		schema:        sch,
		nextVid:       1,
		nextEid:       1,
		tags:          make(map[string]tagDef),
		variableTypes: make(map[string]schema.TypeRef),
	}

	if doc == nil || doc.Root == nil {
		return nil, trustfall.NewError("query has no root field", opCompile, trustfall.ErrKindValidation)
	}

	root := doc.Root
	rootEdge, ok := sch.RootEdge(root.Name)
	if !ok {
		c.fail(root.Pos(), trustfall.ErrKindValidation,
			fmt.Sprintf("unknown root edge %q", root.Name))
		return nil, c.result(nil)
	}

	rootParams, err := c.convertArguments(root.Arguments, rootEdge.Parameters)
	if err != nil {
		c.errors = append(c.errors, err)
	}

	rootVid := c.allocVid()
	component := &ir.IRQueryComponent{
		Root:     rootVid,
		Vertices: map[ir.Vid]*ir.IRVertex{},
		Edges:    map[ir.Eid]*ir.IREdge{},
		Folds:    map[ir.Eid]*ir.IRFold{},
		Outputs:  map[string]ir.FieldReference{},
	}
	component.Vertices[rootVid] = &ir.IRVertex{TypeName: rootEdge.TargetType}

	c.processVertex(rootVid, rootEdge.TargetType, root.SelectionSet, component, nil)

	query := &ir.IRQuery{
		RootEdgeName:   root.Name,
		RootParameters: rootParams,
		RootComponent:  component,
		VariableTypes:  c.variableTypes,
	}

	return query, c.result(query)
}

// result returns nil if no errors accumulated, otherwise a single error joining every
// accumulated error's message.
func (c *compiler) result(query *ir.IRQuery) error {
	if len(c.errors) == 0 {
		return nil
	}
	msgs := make([]string, len(c.errors))
	for i, e := range c.errors {
		msgs[i] = e.Error()
	}
	return trustfall.NewError(strings.Join(msgs, "; "), opCompile, trustfall.ErrKindValidation)
}

func (c *compiler) fail(pos ast.Position, kind trustfall.ErrKind, message string) {
	c.errors = append(c.errors, trustfall.NewError(
		fmt.Sprintf("%d:%d: %s", pos.Line, pos.Column, message), opCompile, kind))
}

func (c *compiler) allocVid() ir.Vid {
	v := c.nextVid
	c.nextVid++
	return v
}

func (c *compiler) allocEid() ir.Eid {
	e := c.nextEid
	c.nextEid++
	return e
}

// flattened is the result of flattening inline fragments out of a selection set: the (possibly
// narrowed) coercion target, the leaf property fields, and the edge fields, all in the relative
// order they appeared (after splicing fragment bodies in at their position).
type flattened struct {
	coerceTo string
	props    []*ast.Field
	edges    []*ast.Field
}

func (c *compiler) flatten(selections []ast.Selection) flattened {
	var out flattened
	for _, sel := range selections {
		switch node := sel.(type) {
		case *ast.Field:
			c.checkDirectives(node)
			if node.SelectionSet == nil {
				out.props = append(out.props, node)
			} else {
				out.edges = append(out.edges, node)
			}
		case *ast.InlineFragment:
			if out.coerceTo != "" && out.coerceTo != node.TypeCondition {
				c.fail(node.Pos(), trustfall.ErrKindValidation,
					fmt.Sprintf("conflicting type coercions %q and %q at the same vertex",
						out.coerceTo, node.TypeCondition))
			}
			out.coerceTo = node.TypeCondition
			inner := c.flatten(node.SelectionSet)
			out.props = append(out.props, inner.props...)
			out.edges = append(out.edges, inner.edges...)
		}
	}
	return out
}

// processVertex resolves a vertex's selection set: its properties (filters, tags, outputs) and
// its outgoing edges, assigning Vid/Eid in the order §4.1 step 2 requires (required edges, then
// optional edges, then folds).
func (c *compiler) processVertex(
	vid ir.Vid,
	typeName string,
	selections []ast.Selection,
	component *ir.IRQueryComponent,
	foldPath []ir.Eid,
) {
	flat := c.flatten(selections)

	vertex := component.Vertices[vid]
	if flat.coerceTo != "" {
		if !c.schema.IsSubtypeOf(flat.coerceTo, typeName) {
			c.fail(ast.Position{}, trustfall.ErrKindValidation,
				fmt.Sprintf("type %q is not a subtype of %q", flat.coerceTo, typeName))
		} else {
			vertex.CoerceTo = flat.coerceTo
			typeName = flat.coerceTo
		}
	}

	// Pass 1: register every @tag before resolving any @filter, so that two properties on the
	// same vertex may reference each other's tags regardless of textual order.
	for _, prop := range flat.props {
		if tagDir := prop.Directive("tag"); tagDir != nil {
			name := c.defineTag(tagDir, vid, prop, foldPath)
			if name != "" {
				if vertex.Tags == nil {
					vertex.Tags = map[string]string{}
				}
				vertex.Tags[prop.Name] = name
			}
		}
	}

	// Pass 2: @filter and @output.
	for _, prop := range flat.props {
		propDef, ok := c.schema.ResolveProperty(typeName, prop.Name)
		if !ok {
			c.fail(prop.Pos(), trustfall.ErrKindValidation,
				fmt.Sprintf("type %q has no property %q", typeName, prop.Name))
			continue
		}

		for _, dir := range prop.Directives {
			if dir.Name != "filter" {
				continue
			}
			filter, err := c.lowerFilter(&dir, ir.LocalField(vid, prop.Name), propDef.Type, foldPath)
			if err != nil {
				c.errors = append(c.errors, err)
				continue
			}
			vertex.Filters = append(vertex.Filters, filter)
		}

		if outDir := prop.Directive("output"); outDir != nil {
			name := prop.ResponseKey()
			if v, ok := outDir.Arg("name"); ok {
				if sv, ok := v.(ast.StringValue); ok && sv != "" {
					name = string(sv)
				}
			}
			if _, exists := component.Outputs[name]; exists {
				c.fail(outDir.Pos(), trustfall.ErrKindInvalidDirectiveArg,
					fmt.Sprintf("duplicate output name %q", name))
			}
			component.Outputs[name] = ir.LocalField(vid, prop.Name)
		}
	}

	// Bucket edges: required, then optional, then fold, preserving relative order within each
	// bucket. This is the DFS order §4.1 step 2 says is observable in traces.
	var required, optional, folds []*ast.Field
	for _, edge := range flat.edges {
		switch {
		case edge.Directive("fold") != nil:
			folds = append(folds, edge)
		case edge.Directive("optional") != nil:
			optional = append(optional, edge)
		default:
			required = append(required, edge)
		}
	}

	for _, edge := range required {
		c.processEdge(vid, typeName, edge, component, foldPath, false)
	}
	for _, edge := range optional {
		c.processEdge(vid, typeName, edge, component, foldPath, true)
	}
	for _, edge := range folds {
		c.processFold(vid, typeName, edge, component, foldPath)
	}
}

// checkDirectives rejects any directive name §6 doesn't recognize, and any recognized directive
// missing a required argument, against schema.StandardDirectives — the closed directive surface
// the language itself defines, rather than something a particular schema opts into.
func (c *compiler) checkDirectives(field *ast.Field) {
	for _, dir := range field.Directives {
		decl, ok := schema.StandardDirectives[dir.Name]
		if !ok {
			c.fail(dir.Pos(), trustfall.ErrKindInvalidDirectiveArg,
				fmt.Sprintf("unrecognized directive %q", dir.Name))
			continue
		}
		for _, argDecl := range decl.Args {
			if !argDecl.Required {
				continue
			}
			if _, ok := dir.Arg(argDecl.Name); !ok {
				c.fail(dir.Pos(), trustfall.ErrKindInvalidDirectiveArg,
					fmt.Sprintf("@%s requires argument %q", dir.Name, argDecl.Name))
			}
		}
	}
}

// defineTag registers a `@tag` directive in the compiler's symbol table and returns the tag's
// resolved name, or "" if it was rejected as a collision (the error has already been recorded).
func (c *compiler) defineTag(
	dir *ast.Directive,
	vid ir.Vid,
	prop *ast.Field,
	foldPath []ir.Eid,
) string {
	name := prop.ResponseKey()
	if v, ok := dir.Arg("name"); ok {
		if sv, ok := v.(ast.StringValue); ok && sv != "" {
			name = string(sv)
		}
	}

	if existing, exists := c.tags[name]; exists {
		if samePath(existing.foldPath, foldPath) || isPrefix(existing.foldPath, foldPath) || isPrefix(foldPath, existing.foldPath) {
			c.fail(dir.Pos(), trustfall.ErrKindTagNameCollision,
				fmt.Sprintf("tag %q is already defined in an overlapping scope", name))
			return ""
		}
	}

	c.tags[name] = tagDef{
		field:    ir.LocalField(vid, prop.Name),
		foldPath: append([]ir.Eid(nil), foldPath...),
	}
	return name
}

func samePath(a, b []ir.Eid) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isPrefix reports whether a is a prefix of b.
func isPrefix(a, b []ir.Eid) bool {
	if len(a) > len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (c *compiler) processEdge(
	fromVid ir.Vid,
	fromType string,
	field *ast.Field,
	component *ir.IRQueryComponent,
	foldPath []ir.Eid,
	optional bool,
) {
	edgeDef, ok := c.schema.ResolveEdge(fromType, field.Name)
	if !ok {
		c.fail(field.Pos(), trustfall.ErrKindValidation,
			fmt.Sprintf("type %q has no edge %q", fromType, field.Name))
		return
	}

	params, err := c.convertArguments(field.Arguments, edgeDef.Parameters)
	if err != nil {
		c.errors = append(c.errors, err)
	}

	var recursive *ir.RecurseInfo
	if recDir := field.Directive("recurse"); recDir != nil {
		if !edgeDef.Recursable {
			c.fail(recDir.Pos(), trustfall.ErrKindInvalidDirectiveArg,
				fmt.Sprintf("edge %q.%q cannot be @recurse'd", fromType, field.Name))
		}
		depth := 0
		if v, ok := recDir.Arg("depth"); ok {
			if iv, ok := v.(ast.IntValue); ok {
				depth = int(iv)
			}
		}
		if depth < 1 {
			c.fail(recDir.Pos(), trustfall.ErrKindInvalidDirectiveArg, "@recurse depth must be >= 1")
		}
		recursive = &ir.RecurseInfo{Depth: depth}
	}

	eid := c.allocEid()
	toVid := c.allocVid()

	component.Edges[eid] = &ir.IREdge{
		FromVid:    fromVid,
		ToVid:      toVid,
		Name:       field.Name,
		Parameters: params,
		Optional:   optional,
		Recursive:  recursive,
	}
	component.Vertices[toVid] = &ir.IRVertex{TypeName: edgeDef.TargetType}

	c.processVertex(toVid, edgeDef.TargetType, field.SelectionSet, component, foldPath)
}

func (c *compiler) processFold(
	fromVid ir.Vid,
	fromType string,
	field *ast.Field,
	parentComponent *ir.IRQueryComponent,
	foldPath []ir.Eid,
) {
	edgeDef, ok := c.schema.ResolveEdge(fromType, field.Name)
	if !ok {
		c.fail(field.Pos(), trustfall.ErrKindValidation,
			fmt.Sprintf("type %q has no edge %q", fromType, field.Name))
		return
	}

	params, err := c.convertArguments(field.Arguments, edgeDef.Parameters)
	if err != nil {
		c.errors = append(c.errors, err)
	}

	eid := c.allocEid()
	toVid := c.allocVid()
	innerFoldPath := append(append([]ir.Eid(nil), foldPath...), eid)

	inner := &ir.IRQueryComponent{
		Root:     toVid,
		Vertices: map[ir.Vid]*ir.IRVertex{},
		Edges:    map[ir.Eid]*ir.IREdge{},
		Folds:    map[ir.Eid]*ir.IRFold{},
		Outputs:  map[string]ir.FieldReference{},
	}
	inner.Vertices[toVid] = &ir.IRVertex{TypeName: edgeDef.TargetType}

	fold := &ir.IRFold{
		FromVid:    fromVid,
		ToVid:      toVid,
		Name:       field.Name,
		Parameters: params,
		Component:  inner,
	}

	isCount := field.Directive("transform") != nil
	if tDir := field.Directive("transform"); tDir != nil {
		op, _ := tDir.Arg("op")
		if sv, ok := op.(ast.StringValue); !ok || sv != "count" {
			c.fail(tDir.Pos(), trustfall.ErrKindInvalidDirectiveArg,
				`@transform only supports op: "count"`)
		}
	}

	for _, dir := range field.Directives {
		switch dir.Name {
		case "filter":
			if !isCount {
				c.fail(dir.Pos(), trustfall.ErrKindInvalidDirectiveArg,
					"@filter on a fold edge requires @transform(op: \"count\")")
				continue
			}
			filter, err := c.lowerFilter(&dir, ir.FoldCount(eid), schema.NonNullScalar(trustfall.KindUint64), foldPath)
			if err != nil {
				c.errors = append(c.errors, err)
				continue
			}
			fold.PostFilters = append(fold.PostFilters, filter)

		case "output":
			if !isCount {
				c.fail(dir.Pos(), trustfall.ErrKindInvalidDirectiveArg,
					"@output directly on a fold edge requires @transform(op: \"count\")")
				continue
			}
			name := field.ResponseKey()
			if v, ok := dir.Arg("name"); ok {
				if sv, ok := v.(ast.StringValue); ok && sv != "" {
					name = string(sv)
				}
			}
			if fold.FoldSpecificOutputs == nil {
				fold.FoldSpecificOutputs = map[string]ir.FoldSpecificKind{}
			}
			fold.FoldSpecificOutputs[name] = ir.FoldSpecificCount
			parentComponent.Outputs[name] = ir.FoldCount(eid)
		}
	}

	parentComponent.Folds[eid] = fold

	c.processVertex(toVid, edgeDef.TargetType, field.SelectionSet, inner, innerFoldPath)

	// Every `@output` taken inside the fold's selection set projects, at the enclosing
	// component, as a list of that property's value across every row the fold produced.
	for name := range inner.Outputs {
		if _, exists := parentComponent.Outputs[name]; exists {
			c.fail(field.Pos(), trustfall.ErrKindInvalidDirectiveArg,
				fmt.Sprintf("duplicate output name %q", name))
			continue
		}
		parentComponent.Outputs[name] = ir.FoldListField(eid, name)
	}
}
