package protocol

import (
	"encoding/json"

	"github.com/vango-dev/shirtform/pkg/form"
)

// MessageType identifies a server message.
type MessageType string

const (
	MessageState     MessageType = "state"
	MessageSubmitted MessageType = "submitted"
	MessageError     MessageType = "error"
)

// ErrorCode classifies an error message.
type ErrorCode string

const (
	CodeInvalidEvent   ErrorCode = "invalid_event"
	CodeUnknownField   ErrorCode = "unknown_field"
	CodeUnknownAnimal  ErrorCode = "unknown_animal"
	CodeNotSubmittable ErrorCode = "not_submittable"
	CodeRateLimited    ErrorCode = "rate_limited"
	CodeServerError    ErrorCode = "server_error"
)

// Message is sent from the server to the client. Only the fields of its Type
// are set.
type Message struct {
	Type          MessageType  `json:"type"`
	Values        *form.Values `json:"values,omitempty"`
	Errors        form.Errors  `json:"errors,omitempty"`
	SubmitEnabled *bool        `json:"submitEnabled,omitempty"`
	Code          ErrorCode    `json:"code,omitempty"`
	Message       string       `json:"message,omitempty"`
}

// State builds a state message. Errors are always sent complete so the client
// can clear messages that went away.
func State(s form.State) Message {
	values := s.Values
	enabled := s.SubmitEnabled
	errs := form.NewErrors()
	for f, msg := range s.Errors {
		errs[f] = msg
	}
	if values.Animals == nil {
		values.Animals = []string{}
	}
	return Message{
		Type:          MessageState,
		Values:        &values,
		Errors:        errs,
		SubmitEnabled: &enabled,
	}
}

// Submitted builds the message sent after a successful submit.
func Submitted(v form.Values) Message {
	return Message{Type: MessageSubmitted, Values: &v}
}

// Error builds an error message.
func Error(code ErrorCode, msg string) Message {
	return Message{Type: MessageError, Code: code, Message: msg}
}

// Encode marshals the message.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeMessage parses a server message. Used by clients and tests.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}
