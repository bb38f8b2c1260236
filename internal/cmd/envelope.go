package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
)

// envelope is the header summary printed after a message upload.
type envelope struct {
	Subject   string `json:"subject,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	From      string `json:"from,omitempty"`
}

var errNotMessage = errors.New("not an RFC 5322 message: no header fields")

// inspectMessage parses the header of raw message content. Unknown charsets
// are tolerated since only header fields are read.
func inspectMessage(data []byte) (envelope, error) {
	entity, err := message.Read(bytes.NewReader(data))
	if err != nil && !message.IsUnknownCharset(err) {
		return envelope{}, fmt.Errorf("failed to parse message: %w", err)
	}
	if !entity.Header.Fields().Next() {
		return envelope{}, errNotMessage
	}

	h := mail.Header{Header: entity.Header}
	var env envelope
	env.Subject, _ = h.Subject()
	env.MessageID, _ = h.MessageID()
	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		env.From = from[0].String()
	}
	return env, nil
}
