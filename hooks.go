package tangle

import "context"

/*
HookSet is the capability boundary to durable storage. The tangle
cache is the source of truth for liveness; persistence is best-effort
from the cache's point of view, so every HookSet call is wrapped by the
tangle with "log and swallow" error handling — a hook failure never
aborts the in-memory operation that provoked it.

Parameterized by T (the metadata type) rather than expressed as a
virtual interface over `any`, since the concrete hook set is always
known at construction time and monomorphization avoids a boxing
conversion on every call.
*/
type HookSet[T any] interface {
	// Get performs a durable fetch. found=false means "not known",
	// distinct from an error.
	Get(ctx context.Context, id MessageId) (msg Message, meta T, found bool, err error)

	// Insert performs a durable write-through; it may overwrite an
	// existing entry.
	Insert(ctx context.Context, id MessageId, msg Message, meta T) error

	// FetchApprovers performs a durable children lookup. found=false
	// means "unknown", distinct from an empty, known-complete list.
	FetchApprovers(ctx context.Context, id MessageId) (children []MessageId, found bool, err error)

	// InsertApprover performs a durable edge write. Idempotent.
	InsertApprover(ctx context.Context, parent, child MessageId) error
}

// NullHooks is a HookSet that does nothing and never errors, making
// the tangle usable in a purely in-memory mode.
type NullHooks[T any] struct{}

func (NullHooks[T]) Get(context.Context, MessageId) (Message, T, bool, error) {
	var zero T
	return nil, zero, false, nil
}

func (NullHooks[T]) Insert(context.Context, MessageId, Message, T) error {
	return nil
}

func (NullHooks[T]) FetchApprovers(context.Context, MessageId) ([]MessageId, bool, error) {
	return nil, false, nil
}

func (NullHooks[T]) InsertApprover(context.Context, MessageId, MessageId) error {
	return nil
}
