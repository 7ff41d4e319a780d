package backend

// Roles used in chat messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn sent to the backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// StreamChunk is one incremental piece of a streamed reply.
// A chunk with a non-nil Err is always the last one sent.
type StreamChunk struct {
	Content string
	Err     error
}

// ProbeResult is the outcome of a successful liveness probe.
type ProbeResult struct {
	// Models are the model names reported by the instance.
	Models []string

	// Listed is false when the response carried no "models" field.
	Listed bool
}

// tagsResponse is the body of GET /api/tags.
type tagsResponse struct {
	Models *[]struct {
		Name string `json:"name"`
	} `json:"models"`
}

// chatLine is one line of the /api/chat stream.
type chatLine struct {
	Message *struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error"`
}

// pullRequest is the body of POST /api/pull.
type pullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// pullStatus is one progress line of the /api/pull stream.
type pullStatus struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}
