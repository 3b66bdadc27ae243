// Package store persists allocd entities in NATS JetStream key-value
// buckets.
//
// Resources, tasks, generated alternatives, user choices and the
// recommender model snapshot each live in their own bucket, keyed by
// decimal ID and stored as JSON. The store can talk to an external NATS
// deployment or to the in-process server in Embedded, which is the
// default for a standalone daemon and for tests.
//
// Alternatives are replaced wholesale on every generation run: clearing
// the previous set and writing the new one is an externally-coordinated,
// non-atomic sequence by design, since the planner itself carries no
// transactional requirement.
package store
