// Package session holds the single authoritative client session state.
//
// The Store is the sole source of truth consulted by the route guards.
// Every mutation replaces the whole state value, so observers always see
// atomic transitions, and the invariant IsAuthenticated == (User != nil)
// holds after every mutator. Successful authentication persists the
// (token, user) pair to the durable metadata store, sealed at rest;
// Reset clears it.
//
// The Store performs no network calls; the auth service drives it.
package session
