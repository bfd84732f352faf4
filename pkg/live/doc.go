// Package live subscribes to the backend's websocket update stream and
// evicts store cache entries the server reports as changed, so memoized
// fetches pick up fresh data on their next dispatch.
package live
