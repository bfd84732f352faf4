// Package tokenstore provides durable storage for the auth token: a
// SQLite-backed store for real use and an in-memory store for tests.
package tokenstore
