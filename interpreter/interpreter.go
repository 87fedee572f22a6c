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

// Package interpreter drives a compiled ir.IRQuery against an adapter.Adapter, producing result
// rows. It plays the role the teacher's graphql/executor plays for a validated *ast.Document, but
// trades the teacher's field-by-field top-down tree recursion for trustfall's own flat,
// streaming-row execution model (§5): a query graph is walked once, threading a growing set of
// parallel "contexts" (one per live row-in-progress) through vertex resolution, filtering,
// traversal, optional branches and folds, until every surviving context is projected into an
// output row.
package interpreter

import (
	"fmt"
	"sort"

	"github.com/trustfall-go/trustfall"
	"github.com/trustfall-go/trustfall/adapter"
	"github.com/trustfall-go/trustfall/ir"
	"github.com/trustfall-go/trustfall/iterator"
	"github.com/trustfall-go/trustfall/schema"
	"github.com/trustfall-go/trustfall/trace"
)

const opExecute = trustfall.Op("interpreter.Execute")

// execution carries the state threaded through one query run: the adapter being driven, the
// compiled query, the resolved arguments, and (when tracing is requested) the trace being built.
type execution struct {
	ad     adapter.Adapter
	sch    *schema.Schema
	query  *ir.IRQuery
	args   map[string]trustfall.Value
	tracer *trace.Builder
}

// Options configures one Execute call.
type Options struct {
	// Trace, if non-nil, receives every TraceOp the run produces, for golden-trace comparison.
	Trace *trace.Builder
}

// Execute runs query against ad with the given arguments, returning a RowIterator over the
// result set. Execution begins eagerly (every row is computed before RowIterator.Next is called
// for the first time); this trades the fully lazy pull-through-the-whole-pipeline model §5
// describes for a simpler implementation, while preserving the pull-based RowIterator contract at
// the boundary callers actually observe. See DESIGN.md for the reasoning.
func Execute(ad adapter.Adapter, sch *schema.Schema, query *ir.IRQuery, args schema.QueryArgs, opts Options) (RowIterator, error) {
	resolvedArgs, err := schema.CoerceArguments(query.VariableTypes, args)
	if err != nil {
		return nil, trustfall.NewError("invalid query arguments", opExecute, err)
	}

	e := &execution{ad: ad, sch: sch, query: query, args: resolvedArgs, tracer: opts.Trace}

	rootParams := adapter.Parameters(query.RootParameters.Resolve(resolvedArgs))
	var startCall trace.Opid
	if e.tracer != nil {
		startCall = e.tracer.Call("resolve_starting_vertices", query.RootEdgeName)
	}
	startIter := ad.ResolveStartingVertices(query.RootEdgeName, rootParams)

	var contexts []*context
	for {
		v, err := startIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, trustfall.NewError("resolve_starting_vertices failed", opExecute, trustfall.ErrKindAdapter, err)
		}
		if e.tracer != nil {
			e.tracer.YieldFrom(startCall, vertexContent{v})
		}
		contexts = append(contexts, newContext(query.RootComponent.Root, v))
	}
	if e.tracer != nil {
		e.tracer.OutputIteratorExhausted(startCall)
	}

	contexts, err = e.processComponent(contexts, query.RootComponent)
	if err != nil {
		return nil, err
	}

	outputNames := make([]string, 0, len(query.RootComponent.Outputs))
	for name := range query.RootComponent.Outputs {
		outputNames = append(outputNames, name)
	}
	sort.Strings(outputNames)

	rows := make([]map[string]trustfall.Value, 0, len(contexts))
	for _, c := range contexts {
		rows = append(rows, e.projectRow(c, query.RootComponent, outputNames))
	}

	return &sliceRowIterator{rows: rows, tracer: e.tracer}, nil
}

// vertexContent renders an opaque adapter.Vertex for trace content, since adapter.Vertex is a
// bare interface{} and concrete vertex types (numbers.vertex among them) aren't required to
// implement fmt.Stringer themselves.
type vertexContent struct{ v adapter.Vertex }

func (vc vertexContent) String() string { return fmt.Sprintf("%v", vc.v) }

// projectRow reads every declared output off c into a result row, each through resolveField (a
// fold Count comes from foldCountKey, a fold list from foldedValues).
func (e *execution) projectRow(c *context, component *ir.IRQueryComponent, names []string) map[string]trustfall.Value {
	row := make(map[string]trustfall.Value, len(names))
	for _, name := range names {
		ref := component.Outputs[name]
		v, _ := e.resolveField(c, ref)
		row[name] = v
	}
	return row
}

// processComponent walks a query component depth-first from its root, resolving each vertex's
// properties/filters, then its required edges, then its optional edges, then its folds, in the
// order §4.1 step 2 assigns Vid/Eid so that trace output is deterministic.
func (e *execution) processComponent(contexts []*context, component *ir.IRQueryComponent) ([]*context, error) {
	return e.processVertex(contexts, component.Root, component)
}

func (e *execution) processVertex(contexts []*context, vid ir.Vid, component *ir.IRQueryComponent) ([]*context, error) {
	if len(contexts) == 0 {
		return contexts, nil
	}

	vertexIR := component.Vertices[vid]

	var err error
	if vertexIR.CoerceTo != "" {
		contexts, err = e.applyCoercion(contexts, vid, vertexIR)
		if err != nil {
			return nil, err
		}
		if len(contexts) == 0 {
			return contexts, nil
		}
	}

	neededProps := neededProperties(vid, vertexIR, component)
	for _, prop := range neededProps {
		contexts, err = e.resolveProperty(contexts, vid, vertexIR, prop)
		if err != nil {
			return nil, err
		}
	}

	for _, f := range vertexIR.Filters {
		contexts, err = e.applyFilter(contexts, f)
		if err != nil {
			return nil, err
		}
		if len(contexts) == 0 {
			return contexts, nil
		}
	}

	var required, optional []*ir.IREdge
	var requiredEids, optionalEids []ir.Eid
	for eid, edge := range component.Edges {
		if edge.FromVid != vid {
			continue
		}
		if edge.Optional {
			optional = append(optional, edge)
			optionalEids = append(optionalEids, eid)
		} else {
			required = append(required, edge)
			requiredEids = append(requiredEids, eid)
		}
	}
	sortEdgesByEid(required, requiredEids)
	sortEdgesByEid(optional, optionalEids)

	for _, edge := range required {
		contexts, err = e.traverseEdge(contexts, edge, component, false)
		if err != nil {
			return nil, err
		}
		if len(contexts) == 0 {
			return contexts, nil
		}
	}
	for _, edge := range optional {
		contexts, err = e.traverseEdge(contexts, edge, component, true)
		if err != nil {
			return nil, err
		}
	}

	var foldEids []ir.Eid
	for eid, fold := range component.Folds {
		if fold.FromVid != vid {
			continue
		}
		foldEids = append(foldEids, eid)
	}
	sort.Slice(foldEids, func(i, j int) bool { return foldEids[i] < foldEids[j] })
	for _, eid := range foldEids {
		contexts, err = e.runFold(contexts, eid, component.Folds[eid], component)
		if err != nil {
			return nil, err
		}
	}

	return contexts, nil
}

func sortEdgesByEid(edges []*ir.IREdge, eids []ir.Eid) {
	sort.Slice(edges, func(i, j int) bool { return eids[i] < eids[j] })
}

// neededProperties returns, in a stable order, every property of vid that some filter, tag or
// output actually references, so the interpreter never asks an adapter to resolve a property
// nobody uses.
func neededProperties(vid ir.Vid, vertexIR *ir.IRVertex, component *ir.IRQueryComponent) []string {
	seen := map[string]bool{}
	var props []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			props = append(props, name)
		}
	}

	for _, f := range vertexIR.Filters {
		if f.Left.Kind == ir.FieldReferenceLocal && f.Left.Vid == vid {
			add(f.Left.PropertyName)
		}
	}
	for _, ref := range component.Outputs {
		if (ref.Kind == ir.FieldReferenceLocal || ref.Kind == ir.FieldReferenceContext) && ref.Vid == vid {
			add(ref.PropertyName)
		}
	}
	for prop := range vertexIR.Tags {
		add(prop)
	}

	sort.Strings(props)
	return props
}

func (e *execution) applyCoercion(contexts []*context, vid ir.Vid, vertexIR *ir.IRVertex) ([]*context, error) {
	infos := make([]*adapter.ResolveInfo, len(contexts))
	for i, c := range contexts {
		infos[i] = &adapter.ResolveInfo{LocalVertex: c.vertices[vid], Vid: vid}
	}
	var call trace.Opid
	if e.tracer != nil {
		call = e.tracer.Call("resolve_coercion", vertexIR.TypeName, vertexIR.CoerceTo)
		for _, c := range contexts {
			e.tracer.YieldInto(call, vertexContent{c.vertices[vid]})
		}
		e.tracer.InputIteratorExhausted(call)
	}

	results := e.ad.ResolveCoercion(adapter.SliceContexts(infos), vertexIR.TypeName, vertexIR.CoerceTo)
	var survivors []*context
	for _, c := range contexts {
		_, ok, err := results.Next()
		if err != nil {
			return nil, trustfall.NewError("resolve_coercion failed", opExecute, trustfall.ErrKindAdapter, err)
		}
		if e.tracer != nil {
			e.tracer.YieldFrom(call, trustfall.BooleanValue(ok))
		}
		if ok {
			survivors = append(survivors, c)
		}
	}
	if e.tracer != nil {
		e.tracer.OutputIteratorExhausted(call)
	}
	return survivors, nil
}

func (e *execution) resolveProperty(contexts []*context, vid ir.Vid, vertexIR *ir.IRVertex, property string) ([]*context, error) {
	infos := make([]*adapter.ResolveInfo, len(contexts))
	for i, c := range contexts {
		infos[i] = &adapter.ResolveInfo{LocalVertex: c.vertices[vid], Vid: vid}
	}
	vertexType := vertexIR.TypeName
	if vertexIR.CoerceTo != "" {
		vertexType = vertexIR.CoerceTo
	}
	var call trace.Opid
	if e.tracer != nil {
		call = e.tracer.Call("resolve_property", vertexType, property)
		for _, c := range contexts {
			e.tracer.YieldInto(call, vertexContent{c.vertices[vid]})
		}
		e.tracer.InputIteratorExhausted(call)
	}

	results := e.ad.ResolveProperty(adapter.SliceContexts(infos), vertexType, property)
	for _, c := range contexts {
		_, v, err := results.Next()
		if err != nil {
			return nil, trustfall.NewError(
				fmt.Sprintf("resolve_property %q failed", property), opExecute, trustfall.ErrKindAdapter, err)
		}
		if e.tracer != nil {
			e.tracer.YieldFrom(call, v)
		}
		c.values[localKey(vid, property)] = v
		if tagName, tagged := vertexIR.Tags[property]; tagged {
			c.values[tagKey(tagName)] = v
		}
	}
	if e.tracer != nil {
		e.tracer.OutputIteratorExhausted(call)
	}
	return contexts, nil
}

func (e *execution) applyFilter(contexts []*context, f ir.FilterOperation) ([]*context, error) {
	var survivors []*context
	for _, c := range contexts {
		ok, err := e.evalFilter(c, f)
		if err != nil {
			return nil, trustfall.NewError("filter evaluation failed", opExecute, err)
		}
		if ok {
			survivors = append(survivors, c)
		}
	}
	return survivors, nil
}

// traverseEdge resolves edge for every context, branching each surviving context into one clone
// per neighbor vertex found (the cross-product row semantics §4.1 describes for `@output`ed
// edges), or passing the original context through unchanged (vertices map untouched, its
// properties projecting as Null) when an `@optional` edge finds nothing.
func (e *execution) traverseEdge(contexts []*context, edge *ir.IREdge, component *ir.IRQueryComponent, optional bool) ([]*context, error) {
	infos := make([]*adapter.ResolveInfo, len(contexts))
	for i, c := range contexts {
		infos[i] = &adapter.ResolveInfo{LocalVertex: c.vertices[edge.FromVid], Vid: edge.FromVid}
	}
	params := adapter.Parameters(edge.Parameters.Resolve(e.args))
	var call trace.Opid
	if e.tracer != nil {
		call = e.tracer.Call("resolve_neighbors", edge.Name)
		for _, c := range contexts {
			e.tracer.YieldInto(call, vertexContent{c.vertices[edge.FromVid]})
		}
		e.tracer.InputIteratorExhausted(call)
	}

	results := e.ad.ResolveNeighbors(adapter.SliceContexts(infos), component.Vertices[edge.FromVid].TypeName, edge.Name, params)

	// toProcess holds contexts that found at least one neighbor and must have edge.ToVid's
	// subtree (properties, filters, children) resolved on them. passthrough holds contexts
	// whose @optional edge found nothing: they continue completely untouched, so that
	// everything at or below edge.ToVid — including a fold nested arbitrarily deep inside —
	// reads back as Null rather than as a zero-neighbor fold/edge result (§4.1's
	// optional-absence rule; see §8 scenario c vs. d).
	var toProcess, passthrough []*context
	for _, c := range contexts {
		_, neighbors, err := results.Next()
		if err != nil {
			return nil, trustfall.NewError(
				fmt.Sprintf("resolve_neighbors %q failed", edge.Name), opExecute, trustfall.ErrKindAdapter, err)
		}

		depth := 1
		if edge.Recursive != nil {
			depth = edge.Recursive.Depth
		}
		branches, err := e.collectNeighbors(c, edge, neighbors, depth, component.Vertices[edge.FromVid].TypeName, call)
		if err != nil {
			return nil, err
		}

		if len(branches) == 0 {
			if optional {
				passthrough = append(passthrough, c)
			}
			// a missing required edge drops the context entirely.
			continue
		}
		toProcess = append(toProcess, branches...)
	}
	if e.tracer != nil {
		e.tracer.OutputIteratorExhausted(call)
	}

	processed, err := e.processVertex(toProcess, edge.ToVid, component)
	if err != nil {
		return nil, err
	}
	return append(processed, passthrough...), nil
}

// collectNeighbors pulls every vertex out of neighbors, binding one cloned context per neighbor
// at edge.ToVid. For a `@recurse(depth: N)` edge, it also includes the starting vertex itself
// (depth 0) and walks outward up to depth hops, re-querying ResolveNeighbors at each successive
// hop, matching §6's recurse semantics ("the tagged vertex and everything reachable within depth
// hops").
func (e *execution) collectNeighbors(c *context, edge *ir.IREdge, neighbors adapter.VertexIterator, depth int, vertexType string, call trace.Opid) ([]*context, error) {
	var out []*context
	bind := func(v adapter.Vertex) *context {
		nc := c.clone()
		nc.activeVid = edge.ToVid
		nc.vertices[edge.ToVid] = v
		return nc
	}

	if edge.Recursive != nil {
		out = append(out, bind(c.vertices[edge.FromVid]))
	}

	var hop1 []adapter.Vertex
	for {
		v, err := neighbors.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, trustfall.NewError("resolve_neighbors iteration failed", opExecute, trustfall.ErrKindAdapter, err)
		}
		if e.tracer != nil {
			e.tracer.YieldFrom(call, vertexContent{v})
		}
		out = append(out, bind(v))
		hop1 = append(hop1, v)
	}

	if edge.Recursive == nil || depth <= 1 {
		return out, nil
	}

	// frontier holds exactly the vertices reached at the previous hop, not every vertex seen so
	// far, so each successive hop expands outward from where the last one stopped instead of
	// re-walking the vertices depth 1 already covered.
	frontier := hop1
	for hop := 2; hop <= depth; hop++ {
		var nextFrontier []adapter.Vertex
		for _, v := range frontier {
			infos := []*adapter.ResolveInfo{{LocalVertex: v, Vid: edge.FromVid}}
			params := adapter.Parameters(edge.Parameters.Resolve(e.args))
			var hopCall trace.Opid
			if e.tracer != nil {
				hopCall = e.tracer.Call("resolve_neighbors", edge.Name, "recurse")
				e.tracer.YieldInto(hopCall, vertexContent{v})
				e.tracer.InputIteratorExhausted(hopCall)
			}
			results := e.ad.ResolveNeighbors(adapter.SliceContexts(infos), vertexType, edge.Name, params)
			_, it, err := results.Next()
			if err != nil {
				return nil, trustfall.NewError("resolve_neighbors (recurse) failed", opExecute, trustfall.ErrKindAdapter, err)
			}
			for {
				nv, err := it.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					return nil, trustfall.NewError("resolve_neighbors (recurse) iteration failed", opExecute, trustfall.ErrKindAdapter, err)
				}
				if e.tracer != nil {
					e.tracer.YieldFrom(hopCall, vertexContent{nv})
				}
				out = append(out, bind(nv))
				nextFrontier = append(nextFrontier, nv)
			}
			if e.tracer != nil {
				e.tracer.OutputIteratorExhausted(hopCall)
			}
		}
		frontier = nextFrontier
	}

	return out, nil
}
