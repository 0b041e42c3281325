package inbound

type TTSRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	ID       string `json:"id"`
	Response string `json:"response"`
}

type ChatMessage struct {
	ID             string `json:"id"`
	Source         string `json:"source"`
	UserMessage    string `json:"userMessage"`
	JarvisResponse string `json:"jarvisResponse"`
	Timestamp      int64  `json:"timestamp"`
}

type ChatHistoryResponse struct {
	Messages []ChatMessage `json:"messages"`
}
