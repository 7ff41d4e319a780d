// Package chat drives one chat request from user message to streamed reply.
//
// A request moves through these stages:
//
//	RECEIVED -> TRANSLATING_IN -> DISPATCHING -> STREAMING -> TRANSLATING_OUT -> COMPLETE
//
// with ERRORED reachable from every stage. An empty message is rejected
// before anything else happens; Chat returns a *ValidationError and no
// channel. Every other outcome is delivered as events on the returned
// channel: chunk events while the backend streams, at most one translation
// event, then exactly one terminal done or error event. The channel is
// closed after the terminal event, or early when the caller's context ends.
//
// The user and assistant turns are committed to the session together when
// the stream completes. A request that errors or is abandoned leaves the
// session history untouched. The session language is fixed by the first
// message and never changes afterwards.
package chat
