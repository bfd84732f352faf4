// Package apierr defines the structured error type returned by the blog
// API client, with a registry of known envelope codes and their recovery
// suggestions.
package apierr
