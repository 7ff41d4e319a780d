package handlers

import (
	"net/http"

	"github.com/Wartem/llm-chat-lite/pkg/failover"
	"github.com/Wartem/llm-chat-lite/pkg/proxy"
)

// ModelsResponse is the body of GET /api/models.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Instances []failover.InstanceStatus `json:"instances"`
}

// ModelsHandler returns the models of the current instance. An empty list
// means no instance is reachable or none has models.
func ModelsHandler(lister ModelLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		models := lister.AvailableModels(r.Context())
		if models == nil {
			models = []string{}
		}
		_ = proxy.WriteJSONResponse(w, http.StatusOK, ModelsResponse{Models: models})
	}
}

// StatusHandler probes every instance and reports the results in priority
// order.
func StatusHandler(reporter StatusReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses := reporter.Status(r.Context())
		if statuses == nil {
			statuses = []failover.InstanceStatus{}
		}
		_ = proxy.WriteJSONResponse(w, http.StatusOK, StatusResponse{Instances: statuses})
	}
}
