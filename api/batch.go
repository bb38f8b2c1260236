package api

import (
	"context"
	"net/http"

	"github.com/elasticinbox/elasticinbox-go/internal/validation"
)

// Modify applies mod to every message in ids in a single request.
// All ids are validated before anything is sent; one bad id fails the batch.
func (s *BatchService) Modify(ctx context.Context, domain, user string, ids []string, mod Modification) (*Response, error) {
	return batchModify(ctx, s.r, domain, user, ids, mod)
}

func batchModify(ctx context.Context, r Requester, domain, user string, ids []string, mod Modification) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if err := validation.ValidateUUIDs(ids); err != nil {
		return nil, err
	}
	if err := mod.validate(); err != nil {
		return nil, err
	}
	path := withQuery(r.accountPath(domain, user, "mailbox", "message"), mod.query())
	spec := r.newRequest(http.MethodPut, path)
	spec.Body = append([]string(nil), ids...)
	return r.execute(ctx, spec, http.StatusNoContent)
}

// Delete removes every message in ids in a single request.
func (s *BatchService) Delete(ctx context.Context, domain, user string, ids []string) (*Response, error) {
	return batchDelete(ctx, s.r, domain, user, ids)
}

func batchDelete(ctx context.Context, r Requester, domain, user string, ids []string) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	if err := validation.ValidateUUIDs(ids); err != nil {
		return nil, err
	}
	spec := r.newRequest(http.MethodDelete, r.accountPath(domain, user, "mailbox", "message"))
	spec.Body = append([]string(nil), ids...)
	return r.execute(ctx, spec, http.StatusNoContent)
}
