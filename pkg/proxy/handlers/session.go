package handlers

import (
	"net/http"

	"github.com/Wartem/llm-chat-lite/pkg/proxy"
)

// ResetHandler clears the history of the session named in the JSON body.
// The session keeps its language. A missing session id resets the default
// session.
func ResetHandler(svc ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req proxy.SessionRequest
		if err := proxy.DecodeJSON(r, &req); err != nil {
			_ = proxy.WriteJSONError(w, proxy.StatusCode(err), err.Error())
			return
		}

		svc.Reset(req.SessionID)
		_ = proxy.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "success"})
	}
}
