package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/elasticinbox/elasticinbox-go/internal/validation"
)

// List returns the account's labels. With metadata the server includes
// per-label counters; see ParseLabels.
func (s *LabelsService) List(ctx context.Context, domain, user string, metadata bool) (*Response, error) {
	return listLabels(ctx, s.r, domain, user, metadata)
}

func listLabels(ctx context.Context, r Requester, domain, user string, metadata bool) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	query := url.Values{}
	if metadata {
		query.Set("metadata", "true")
	}
	path := withQuery(r.accountPath(domain, user, "mailbox"), query)
	return r.execute(ctx, r.newRequest(http.MethodGet, path), http.StatusOK)
}

// Create adds a label. The name must be non-empty and must not contain "^".
func (s *LabelsService) Create(ctx context.Context, domain, user, name string) (*Response, error) {
	return createLabel(ctx, s.r, domain, user, name)
}

func createLabel(ctx context.Context, r Requester, domain, user, name string) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if err := validation.ValidateLabelName(name); err != nil {
		return nil, err
	}
	query := url.Values{"name": {name}}
	path := withQuery(r.accountPath(domain, user, "mailbox", "label"), query)
	return r.execute(ctx, r.newRequest(http.MethodPost, path), http.StatusCreated)
}

// Rename changes the name of label id.
func (s *LabelsService) Rename(ctx context.Context, domain, user, id, name string) (*Response, error) {
	return renameLabel(ctx, s.r, domain, user, id, name)
}

func renameLabel(ctx context.Context, r Requester, domain, user, id, name string) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if err := validation.ValidateLabelID(id); err != nil {
		return nil, err
	}
	if err := validation.ValidateLabelName(name); err != nil {
		return nil, err
	}
	query := url.Values{"name": {name}}
	path := withQuery(r.accountPath(domain, user, "mailbox", "label", id), query)
	return r.execute(ctx, r.newRequest(http.MethodPut, path), http.StatusNoContent)
}

// Delete removes label id. Messages keep their other labels.
func (s *LabelsService) Delete(ctx context.Context, domain, user, id string) (*Response, error) {
	return deleteLabel(ctx, s.r, domain, user, id)
}

func deleteLabel(ctx context.Context, r Requester, domain, user, id string) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if err := validation.ValidateLabelID(id); err != nil {
		return nil, err
	}
	path := r.accountPath(domain, user, "mailbox", "label", id)
	return r.execute(ctx, r.newRequest(http.MethodDelete, path), http.StatusNoContent)
}
