// Package api is the HTTP client for the blog backend. It owns the wire
// types (Column, Post, User, Image) and the uniform {code, msg, data}
// response envelope; only data is handed back to callers. Credentials are
// threaded per request through a TokenSource rather than mutated into a
// shared default header.
package api
