// Package signal provides a small thread-safe observable value container.
//
// A Signal wraps a single value of any type. Writers use Set or Update;
// readers use Get. Subscribers registered with Subscribe are called after
// each change that the signal's equality function considers a real change,
// which lets UI layers re-render only when state actually moved.
package signal
