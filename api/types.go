package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
)

// Response is the successful outcome of a call.
//
// Body holds the response bytes after any deflate decoding. Data is the body
// parsed as JSON, or the body as a string when it is not JSON, or nil when the
// body is empty.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Data       any
}

func newResponse(status int, header http.Header, body []byte) *Response {
	resp := &Response{
		StatusCode: status,
		Header:     header,
		Body:       body,
	}
	if len(body) == 0 {
		return resp
	}
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		resp.Data = string(body)
	} else {
		resp.Data = data
	}
	return resp
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 {
		return errors.New("empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Text returns the body as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// Location returns the Location header, set on 201 and 307 responses.
func (r *Response) Location() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Location")
}

// Address is a mail address as reported in message metadata.
type Address struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Address
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Address)
}

// MessagePart describes one MIME part of a stored message.
type MessagePart struct {
	MimeType    string `json:"mimeType,omitempty"`
	Size        int64  `json:"size,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	ContentID   string `json:"contentId,omitempty"`
	Disposition string `json:"disposition,omitempty"`
	Encoding    string `json:"encoding,omitempty"`
}

// Message is the metadata the server returns for a stored message.
type Message struct {
	ID        string                 `json:"id,omitempty"`
	Size      int64                  `json:"size,omitempty"`
	Date      string                 `json:"date,omitempty"`
	Received  string                 `json:"received,omitempty"`
	Subject   string                 `json:"subject,omitempty"`
	MessageID string                 `json:"messageId,omitempty"`
	InReplyTo string                 `json:"inReplyTo,omitempty"`
	From      []Address              `json:"from,omitempty"`
	To        []Address              `json:"to,omitempty"`
	Cc        []Address              `json:"cc,omitempty"`
	Bcc       []Address              `json:"bcc,omitempty"`
	ReplyTo   []Address              `json:"replyTo,omitempty"`
	Labels    []int                  `json:"labels,omitempty"`
	Markers   []string               `json:"markers,omitempty"`
	Parts     map[string]MessagePart `json:"parts,omitempty"`
	Text      string                 `json:"textBody,omitempty"`
	HTML      string                 `json:"htmlBody,omitempty"`
}

// LabelInfo is the per-label metadata returned by a metadata listing.
type LabelInfo struct {
	Name  string `json:"name"`
	Size  int64  `json:"size,omitempty"`
	Total int64  `json:"total,omitempty"`
	New   int64  `json:"new,omitempty"`
}

// Label is a label id paired with its metadata.
type Label struct {
	ID int `json:"id"`
	LabelInfo
}

// MessageRef identifies a message stored by Create or Update.
type MessageRef struct {
	ID string `json:"id"`
}

// ParseLabels decodes a label listing, with or without metadata, into labels
// sorted by id. The server returns {"id": "name"} for a plain listing and
// {"id": {"name": ..., "total": ...}} when metadata is requested.
func ParseLabels(resp *Response) ([]Label, error) {
	var raw map[string]json.RawMessage
	if err := resp.Decode(&raw); err != nil {
		return nil, err
	}

	labels := make([]Label, 0, len(raw))
	for key, value := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid label id %q: %w", key, err)
		}
		label := Label{ID: id}
		var name string
		if err := json.Unmarshal(value, &name); err == nil {
			label.Name = name
		} else if err := json.Unmarshal(value, &label.LabelInfo); err != nil {
			return nil, fmt.Errorf("invalid label %d: %w", id, err)
		}
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].ID < labels[j].ID })
	return labels, nil
}

// ParseMessages decodes a message listing with metadata into a map keyed by UUID.
func ParseMessages(resp *Response) (map[string]Message, error) {
	var out map[string]Message
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	for id, m := range out {
		if m.ID == "" {
			m.ID = id
			out[id] = m
		}
	}
	return out, nil
}

// ParseMessageIDs decodes a plain message listing into its UUIDs.
func ParseMessageIDs(resp *Response) ([]string, error) {
	var out []string
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Bool returns a pointer to v, for optional fields such as ListOptions.Reverse.
func Bool(v bool) *bool {
	return &v
}
