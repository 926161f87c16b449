package graph

import "github.com/memgraph-go/memgraph/pkg/address"

// VertexList and EdgeList are the stable identities of vertices and
// edges: the entity-list half of the versioned-record pair. A
// VertexAddress or EdgeAddress names one of these, never the payload
// directly, so that a version swap never invalidates an address held
// elsewhere in the graph.
type VertexList = VList[VertexData]
type EdgeList = VList[EdgeData]

// VertexAddress and EdgeAddress are local-or-remote references to a
// vertex or edge's entity list.
type VertexAddress = address.Address[VertexList]
type EdgeAddress = address.Address[EdgeList]

// VertexData is the payload of one version of a vertex: its labels,
// properties, and adjacency lists. Labels are stored as a set; the
// adjacency lists hold the addresses of incident edges, not the edges
// themselves.
type VertexData struct {
	Labels     map[LabelID]struct{}
	Properties map[PropertyID]PropertyValue
	Out        []EdgeAddress
	In         []EdgeAddress
}

// cloneVertexData returns a shallow structural copy of d suitable for
// installing as a new version: the maps and slices are copied so that
// mutating the new version never mutates a version another
// transaction might still be reading.
func cloneVertexData(d VertexData) VertexData {
	out := VertexData{
		Labels:     make(map[LabelID]struct{}, len(d.Labels)),
		Properties: make(map[PropertyID]PropertyValue, len(d.Properties)),
		Out:        append([]EdgeAddress(nil), d.Out...),
		In:         append([]EdgeAddress(nil), d.In...),
	}
	for l := range d.Labels {
		out.Labels[l] = struct{}{}
	}
	for k, v := range d.Properties {
		out.Properties[k] = v
	}
	return out
}

// EdgeData is the payload of one version of an edge: its type,
// endpoints, and properties.
type EdgeData struct {
	Type       EdgeTypeID
	From       VertexAddress
	To         VertexAddress
	Properties map[PropertyID]PropertyValue
}

func cloneEdgeData(d EdgeData) EdgeData {
	out := EdgeData{
		Type:       d.Type,
		From:       d.From,
		To:         d.To,
		Properties: make(map[PropertyID]PropertyValue, len(d.Properties)),
	}
	for k, v := range d.Properties {
		out.Properties[k] = v
	}
	return out
}
