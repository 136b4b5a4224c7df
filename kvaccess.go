package tangle

import "context"

/*
KVStore is the generic key-value access contract the bootstrap worker
uses to persist solid entry points and fetch snapshot info: a
capability to insert (K, V) and fetch by key, instantiated once for
(SolidEntryPoint MessageId, MilestoneIndex) and once for
((), SnapshotInfo).

It's a single small interface rather than two separate per-operation
interfaces, since the two concerns (insert, fetch) are nearly always
needed together by a caller.
*/
type KVStore[K comparable, V any] interface {
	Insert(ctx context.Context, key K, value V) error
	Fetch(ctx context.Context, key K) (value V, found bool, err error)
}
