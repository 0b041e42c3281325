package entity

import "net/http"

// Source tells where a chat exchange was typed.
type Source string

const (
	SourceText  Source = "TEXTE"
	SourceVoice Source = "VOCAL"
	SourceWeb   Source = "WEB"
)

type ChatMessage struct {
	ID             string `json:"id"`
	Source         Source `json:"source"`
	UserMessage    string `json:"userMessage"`
	JarvisResponse string `json:"jarvisResponse"`
	// Timestamp is in unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// Reply is an upstream answer relayed as-is to the caller.
type Reply struct {
	Status      int
	ContentType string
	Header      http.Header
	Body        []byte
}

// OK reports a 2xx status.
func (r *Reply) OK() bool {
	return r.Status >= 200 && r.Status <= 299
}
