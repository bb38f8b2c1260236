package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/elasticinbox/elasticinbox-go/internal/validation"
)

// ListOptions controls a message listing. Zero values are not sent, so the
// server defaults apply.
type ListOptions struct {
	// Metadata returns message metadata keyed by UUID instead of bare UUIDs.
	Metadata bool
	// Count limits the number of messages returned.
	Count int
	// Start is the UUID of the message to start from. Requires Count.
	Start string
	// Reverse selects the listing order. Nil leaves the server default
	// (newest first).
	Reverse *bool
}

// GetOptions controls a message fetch.
type GetOptions struct {
	// Raw fetches the original EML instead of parsed metadata.
	Raw bool
	// Adjacent returns the neighbouring message UUIDs within Label.
	Adjacent bool
	Label    string
	// MarkSeen sets the seen marker as part of the fetch.
	MarkSeen bool
	// Deflate asks the server for a deflate-encoded body. The Response body is
	// inflated transparently.
	Deflate bool
}

// CreateOptions assigns labels and markers to a newly stored message.
type CreateOptions struct {
	Labels  []string
	Markers []string
}

// Modification lists label and marker changes applied to one or more messages.
type Modification struct {
	AddLabels     []string
	RemoveLabels  []string
	AddMarkers    []string
	RemoveMarkers []string
}

// IsEmpty reports whether m changes nothing.
func (m Modification) IsEmpty() bool {
	return len(m.AddLabels) == 0 && len(m.RemoveLabels) == 0 &&
		len(m.AddMarkers) == 0 && len(m.RemoveMarkers) == 0
}

func (m Modification) validate() error {
	if m.IsEmpty() {
		return ErrNoModifications
	}
	if err := validateLabelIDs(m.AddLabels); err != nil {
		return err
	}
	if err := validateLabelIDs(m.RemoveLabels); err != nil {
		return err
	}
	if err := validateMarkers(m.AddMarkers); err != nil {
		return err
	}
	return validateMarkers(m.RemoveMarkers)
}

// query encodes every value as its own entry, e.g. addlabel=1&addlabel=2.
func (m Modification) query() url.Values {
	query := url.Values{}
	for _, id := range m.AddLabels {
		query.Add("addlabel", id)
	}
	for _, id := range m.RemoveLabels {
		query.Add("removelabel", id)
	}
	for _, marker := range m.AddMarkers {
		query.Add("addmarker", marker)
	}
	for _, marker := range m.RemoveMarkers {
		query.Add("removemarker", marker)
	}
	return query
}

func validateLabelIDs(ids []string) error {
	for _, id := range ids {
		if err := validation.ValidateLabelID(id); err != nil {
			return err
		}
	}
	return nil
}

func validateMarkers(markers []string) error {
	for _, marker := range markers {
		if !validation.IsMarker(marker) {
			return validation.Invalid(ErrInvalidMarker, marker)
		}
	}
	return nil
}

func messagePath(r PathResolver, domain, user, id string, segments ...string) string {
	return r.accountPath(domain, user, append([]string{"mailbox", "message", id}, segments...)...)
}

// List returns the messages carrying label labelID.
func (s *MessagesService) List(ctx context.Context, domain, user, labelID string, opts *ListOptions) (*Response, error) {
	return listMessages(ctx, s.r, domain, user, labelID, opts)
}

func listMessages(ctx context.Context, r Requester, domain, user, labelID string, opts *ListOptions) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if err := validation.ValidateLabelID(labelID); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &ListOptions{}
	}

	query := url.Values{}
	if opts.Metadata {
		query.Set("metadata", "true")
	}
	if opts.Count < 0 {
		return nil, validation.Invalid(ErrInvalidCount, strconv.Itoa(opts.Count))
	}
	if opts.Count > 0 {
		query.Set("count", strconv.Itoa(opts.Count))
	}
	if opts.Start != "" {
		if opts.Count == 0 {
			return nil, ErrStartNeedsCount
		}
		if err := validation.ValidateUUID(opts.Start); err != nil {
			return nil, err
		}
		query.Set("start", opts.Start)
	}
	if opts.Reverse != nil {
		query.Set("reverse", strconv.FormatBool(*opts.Reverse))
	}

	path := withQuery(r.accountPath(domain, user, "mailbox", "label", labelID), query)
	return r.execute(ctx, r.newRequest(http.MethodGet, path), http.StatusOK)
}

// Get fetches message metadata, or the raw message when opts.Raw is set.
func (s *MessagesService) Get(ctx context.Context, domain, user, id string, opts *GetOptions) (*Response, error) {
	return getMessage(ctx, s.r, domain, user, id, opts)
}

func getMessage(ctx context.Context, r Requester, domain, user, id string, opts *GetOptions) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if err := validation.ValidateUUID(id); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &GetOptions{}
	}

	query := url.Values{}
	if opts.Adjacent {
		if opts.Label == "" {
			return nil, ErrAdjacentNeedsLabel
		}
		query.Set("adjacent", "true")
	}
	if opts.Label != "" {
		if err := validation.ValidateLabelID(opts.Label); err != nil {
			return nil, err
		}
		query.Set("label", opts.Label)
	}
	if opts.MarkSeen {
		query.Set("markseen", "true")
	}

	var segments []string
	if opts.Raw {
		segments = append(segments, "raw")
	}
	spec := r.newRequest(http.MethodGet, withQuery(messagePath(r, domain, user, id, segments...), query))
	if opts.Deflate {
		if spec.Header == nil {
			spec.Header = http.Header{}
		}
		spec.Header.Set("Accept-Encoding", "deflate")
	}
	return r.execute(ctx, spec, http.StatusOK)
}

// GetRawURI asks the server where the raw message is stored. The server
// answers 307; the target is available from Response.Location.
func (s *MessagesService) GetRawURI(ctx context.Context, domain, user, id string) (*Response, error) {
	return getRawURI(ctx, s.r, domain, user, id)
}

func getRawURI(ctx context.Context, r Requester, domain, user, id string) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if err := validation.ValidateUUID(id); err != nil {
		return nil, err
	}
	path := messagePath(r, domain, user, id, "url")
	return r.execute(ctx, r.newRequest(http.MethodGet, path), http.StatusTemporaryRedirect)
}

// GetPartByID fetches one MIME part by its dotted part id, e.g. "2" or "3.1".
func (s *MessagesService) GetPartByID(ctx context.Context, domain, user, id, partID string) (*Response, error) {
	return getPartByID(ctx, s.r, domain, user, id, partID)
}

func getPartByID(ctx context.Context, r Requester, domain, user, id, partID string) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if err := validation.ValidateUUID(id); err != nil {
		return nil, err
	}
	if !validation.IsPartID(partID) {
		return nil, validation.Invalid(ErrInvalidPartID, partID)
	}
	path := messagePath(r, domain, user, id, partID)
	return r.execute(ctx, r.newRequest(http.MethodGet, path), http.StatusOK)
}

// GetPartByContentID fetches one MIME part by its Content-ID. Surrounding
// angle brackets are optional.
func (s *MessagesService) GetPartByContentID(ctx context.Context, domain, user, id, contentID string) (*Response, error) {
	return getPartByContentID(ctx, s.r, domain, user, id, contentID)
}

func getPartByContentID(ctx context.Context, r Requester, domain, user, id, contentID string) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if err := validation.ValidateUUID(id); err != nil {
		return nil, err
	}
	cid := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(contentID), "<"), ">")
	if cid == "" {
		return nil, ErrInvalidContentID
	}
	path := messagePath(r, domain, user, id, url.PathEscape("<"+cid+">"))
	return r.execute(ctx, r.newRequest(http.MethodGet, path), http.StatusOK)
}

// Create stores a new message from raw EML content.
func (s *MessagesService) Create(ctx context.Context, domain, user string, content []byte, opts *CreateOptions) (*Response, error) {
	return createMessage(ctx, s.r, domain, user, content, opts)
}

func createMessage(ctx context.Context, r Requester, domain, user string, content []byte, opts *CreateOptions) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, ErrEmptyMessage
	}

	query := url.Values{}
	if opts != nil {
		if err := validateLabelIDs(opts.Labels); err != nil {
			return nil, err
		}
		if err := validateMarkers(opts.Markers); err != nil {
			return nil, err
		}
		for _, id := range opts.Labels {
			query.Add("label", id)
		}
		for _, marker := range opts.Markers {
			query.Add("marker", marker)
		}
	}

	spec := r.newRequest(http.MethodPost, withQuery(r.accountPath(domain, user, "mailbox", "message"), query))
	spec.Body = content
	return r.execute(ctx, spec, http.StatusCreated)
}

// Update replaces the content of message id, keeping its labels and markers.
func (s *MessagesService) Update(ctx context.Context, domain, user, id string, content []byte) (*Response, error) {
	return updateMessage(ctx, s.r, domain, user, id, content)
}

func updateMessage(ctx context.Context, r Requester, domain, user, id string, content []byte) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if err := validation.ValidateUUID(id); err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, ErrEmptyMessage
	}
	spec := r.newRequest(http.MethodPost, messagePath(r, domain, user, id))
	spec.Body = content
	return r.execute(ctx, spec, http.StatusCreated)
}

// Modify adds or removes labels and markers on message id.
func (s *MessagesService) Modify(ctx context.Context, domain, user, id string, mod Modification) (*Response, error) {
	return modifyMessage(ctx, s.r, domain, user, id, mod)
}

func modifyMessage(ctx context.Context, r Requester, domain, user, id string, mod Modification) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if err := validation.ValidateUUID(id); err != nil {
		return nil, err
	}
	if err := mod.validate(); err != nil {
		return nil, err
	}
	path := withQuery(messagePath(r, domain, user, id), mod.query())
	return r.execute(ctx, r.newRequest(http.MethodPut, path), http.StatusNoContent)
}

// Delete removes message id.
func (s *MessagesService) Delete(ctx context.Context, domain, user, id string) (*Response, error) {
	return deleteMessage(ctx, s.r, domain, user, id)
}

func deleteMessage(ctx context.Context, r Requester, domain, user, id string) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if err := validation.ValidateUUID(id); err != nil {
		return nil, err
	}
	return r.execute(ctx, r.newRequest(http.MethodDelete, messagePath(r, domain, user, id)), http.StatusNoContent)
}

// BatchModify applies mod to every message in ids. See BatchService.Modify.
func (s *MessagesService) BatchModify(ctx context.Context, domain, user string, ids []string, mod Modification) (*Response, error) {
	return s.batch.Modify(ctx, domain, user, ids, mod)
}

// BatchDelete removes every message in ids. See BatchService.Delete.
func (s *MessagesService) BatchDelete(ctx context.Context, domain, user string, ids []string) (*Response, error) {
	return s.batch.Delete(ctx, domain, user, ids)
}
