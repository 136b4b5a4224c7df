package tangle

/*
Vertex is the cached pair (Message, Metadata) the tangle exclusively
owns. It has no invariants beyond field validity: the cache never
mutates the Message, and the metadata is replaced wholesale by
Tangle.UpdateMetadata rather than mutated through the Vertex directly,
so concurrent holders of a Vertex value never race on its fields.
*/
type Vertex[T any] struct {
	message  Message
	metadata T
}

// NewVertex builds a Vertex from a message and its metadata.
func NewVertex[T any](message Message, metadata T) Vertex[T] {
	return Vertex[T]{message: message, metadata: metadata}
}

// Message returns a shareable reference to the vertex's message.
func (v Vertex[T]) Message() MessageRef {
	return v.message
}

// Metadata returns a value-copy of the vertex's metadata.
func (v Vertex[T]) Metadata() T {
	return v.metadata
}

// withMetadata returns a copy of v with its metadata replaced. Vertex
// values are small and passed by value through the shard map, so
// "mutation" is always copy-then-reinsert.
func (v Vertex[T]) withMetadata(meta T) Vertex[T] {
	v.metadata = meta
	return v
}
