package gateway

// Message is a single {role, content} turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a chat completion request sent to the Gateway.
type ChatRequest struct {
	// Model name. Falls back to the client's configured default when empty.
	Model string `json:"model"`

	// Conversation turns in order.
	Messages []Message `json:"messages"`

	// Whether to stream the response. Set by StreamChat and ChatCompletion;
	// callers don't need to touch it.
	Stream bool `json:"stream"`
}

// ChatResult is the assistant's reply from a non-streaming chat completion.
type ChatResult struct {
	Model      string `json:"model"`
	Content    string `json:"content"`
	StopReason string `json:"stop_reason,omitempty"`
}

// streamChunk is the wire shape of one streaming completion chunk.
// Only the field path the decoder reads is declared; everything else in the
// payload is ignored.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// chatCompletionResponse is the wire shape of a non-streaming completion.
type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// Session is one conversation session known to the Gateway.
type Session struct {
	Key     string `json:"key"`
	Label   string `json:"label,omitempty"`
	Updated string `json:"updated,omitempty"`
	Size    int    `json:"size,omitempty"`
}

// HistoryEntry is one message in a session's history.
type HistoryEntry struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Job is one scheduled job on the Gateway.
type Job struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Schedule   string `json:"schedule"`
	Enabled    bool   `json:"enabled"`
	LastRun    string `json:"last_run,omitempty"`
	LastStatus string `json:"last_status,omitempty"`
}

// MemoryFile describes one memory file on the Gateway.
type MemoryFile struct {
	Name     string `json:"name"`
	Size     int    `json:"size,omitempty"`
	Modified string `json:"modified,omitempty"`
}
