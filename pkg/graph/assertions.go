package graph

import "github.com/memgraph-go/memgraph/pkg/iter"

// Compile-time checks that the accessors satisfy the structural
// interfaces pkg/iter's graph adapters are written against.
var (
	_ iter.Fillable                                  = (*VertexAccessor)(nil)
	_ iter.Fillable                                  = (*EdgeAccessor)(nil)
	_ iter.Labeled[LabelID]                           = (*VertexAccessor)(nil)
	_ iter.Isolatable                                 = (*VertexAccessor)(nil)
	_ iter.HasOut[*EdgeAccessor]                      = (*VertexAccessor)(nil)
	_ iter.PropertyHolder[PropertyID, PropertyValue]  = (*VertexAccessor)(nil)
	_ iter.PropertyHolder[PropertyID, PropertyValue]  = (*EdgeAccessor)(nil)
	_ iter.Typed[EdgeTypeID]                          = (*EdgeAccessor)(nil)
	_ iter.EdgeEndpoints[*VertexAccessor]             = (*EdgeAccessor)(nil)
)
