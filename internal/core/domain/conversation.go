package domain

// Mode selects how the router answers a question. It is sticky across
// turns and only changed by the caller.
type Mode string

const (
	ModeChat          Mode = "chat"
	ModeDocumentQuery Mode = "document_query"
	// ModeAuto defers the chat/document decision to the question classifier.
	ModeAuto Mode = "auto"
)

// Topic is the per-question classification used when Mode is auto.
type Topic string

const (
	TopicGeneral  Topic = "general"
	TopicDocument Topic = "document"
)

type HistoryWindow string

const (
	HistoryWindowAll      HistoryWindow = "all"
	HistoryWindowLastOnly HistoryWindow = "last_only"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationState is owned by the caller and passed into every router
// call. The core never holds it between turns.
type ConversationState struct {
	Mode                Mode     `json:"mode"`
	SelectedDocumentIDs []string `json:"selected_document_ids"`

	Turns      []Message `json:"turns"`
	HistoryLog []string  `json:"history_log"`

	LastQuestion string `json:"last_question"`
	LastAnswer   string `json:"last_answer"`
	LastContext  string `json:"last_context"`
}

func NewConversationState() *ConversationState {
	return &ConversationState{Mode: ModeChat}
}

// AppendHistory records a question+context entry, keeping at most
// maxEntries of the tail.
func (s *ConversationState) AppendHistory(entry string, maxEntries int) {
	s.HistoryLog = append(s.HistoryLog, entry)
	if maxEntries > 0 && len(s.HistoryLog) > maxEntries {
		s.HistoryLog = s.HistoryLog[len(s.HistoryLog)-maxEntries:]
	}
}

// HistoryGlobal renders the rolling log for the prompt's history slot.
func (s *ConversationState) HistoryGlobal(window HistoryWindow) string {
	if len(s.HistoryLog) == 0 {
		return ""
	}
	if window == HistoryWindowLastOnly {
		return s.HistoryLog[len(s.HistoryLog)-1]
	}
	out := ""
	for i, entry := range s.HistoryLog {
		if i > 0 {
			out += "\n"
		}
		out += entry
	}
	return out
}

func (s *ConversationState) AppendTurn(role, content string) {
	s.Turns = append(s.Turns, Message{Role: role, Content: content})
}

// Remember stores the turn outcome needed for a later continuation call.
func (s *ConversationState) Remember(question, answer, context string) {
	s.LastQuestion = question
	s.LastAnswer = answer
	s.LastContext = context
}
