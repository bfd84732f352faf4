// Package pillar is a client-side state container for a column/post blog
// backend. A Store caches columns and posts by id, holds the current
// user and auth token, and synchronizes everything with the remote HTTP
// API through memoized fetch actions.
//
// The shape follows the classic state-container split: mutations are the
// synchronous, atomic state transitions; actions perform one network
// call and apply a mutation on success; getters derive read views from
// the caches on every call. UI layers observe the loading, error and
// user slots through the subscription hooks.
package pillar
