package models

// --- Request Structs ---

// SendMessageRequest defines the expected body for posting a user message.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// --- Response Structs ---

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessagesResponse wraps the conversation snapshot.
type MessagesResponse struct {
	Messages []Message `json:"messages"`
	IsTyping bool      `json:"is_typing"`
}
