package api

import (
	"context"
	"net/http"

	"github.com/elasticinbox/elasticinbox-go/internal/validation"
)

// Create creates the account user@domain. The server answers 201.
func (s *AccountService) Create(ctx context.Context, domain, user string) (*Response, error) {
	return createAccount(ctx, s.r, domain, user)
}

func createAccount(ctx context.Context, r Requester, domain, user string) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	spec := r.newRequest(http.MethodPost, r.accountPath(domain, user))
	return r.execute(ctx, spec, http.StatusCreated)
}

// Delete removes the account user@domain and all of its mail.
func (s *AccountService) Delete(ctx context.Context, domain, user string) (*Response, error) {
	return deleteAccount(ctx, s.r, domain, user)
}

func deleteAccount(ctx context.Context, r Requester, domain, user string) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	spec := r.newRequest(http.MethodDelete, r.accountPath(domain, user))
	return r.execute(ctx, spec, http.StatusNoContent)
}
