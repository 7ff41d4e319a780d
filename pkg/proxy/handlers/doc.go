// Package handlers provides the HTTP handlers of the chat relay API.
//
// # Endpoints
//
//   - GET|POST /api/chat: chat reply as Server-Sent Events
//   - GET /api/chat/ws: chat over a websocket, one JSON event per message
//   - GET /api/models: models offered by the current backend instance
//   - GET /api/status: fresh probe of every backend instance
//   - POST /api/reset: clear a session's history
//   - GET /api/theme, POST /api/theme/{name}: UI theme
//
// Handlers depend on small interfaces (ChatService, ModelLister,
// StatusReporter, ThemeStore) so they can be tested without backends.
//
// # Chat Stream
//
// A chat request yields zero or more {"chunk"} events with the English
// reply, an optional {"translation"} event with the whole reply in the
// session language, then exactly one terminal {"done": true} or {"error"}
// event. A blank message is rejected with 400 before any event is sent.
package handlers
