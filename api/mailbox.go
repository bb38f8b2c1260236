package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/elasticinbox/elasticinbox-go/internal/validation"
)

// Purge permanently removes messages in the trash. When age is set only
// messages older than that date are purged.
func (s *MailboxService) Purge(ctx context.Context, domain, user, age string) (*Response, error) {
	return purgeMailbox(ctx, s.r, domain, user, age)
}

func purgeMailbox(ctx context.Context, r Requester, domain, user, age string) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	query := url.Values{}
	if age = strings.TrimSpace(age); age != "" {
		if !validation.IsDate(age) {
			return nil, validation.Invalid(ErrInvalidDate, age)
		}
		query.Set("age", age)
	}
	path := withQuery(r.accountPath(domain, user, "mailbox", "purge"), query)
	return r.execute(ctx, r.newRequest(http.MethodPut, path), http.StatusNoContent)
}

// Scrub asks the server to recalculate the mailbox counters.
func (s *MailboxService) Scrub(ctx context.Context, domain, user string) (*Response, error) {
	return scrubMailbox(ctx, s.r, domain, user)
}

func scrubMailbox(ctx context.Context, r Requester, domain, user string) (*Response, error) {
	if err := validation.ValidateAccount(domain, user); err != nil {
		return nil, err
	}
	path := r.accountPath(domain, user, "mailbox", "scrub", "counters")
	return r.execute(ctx, r.newRequest(http.MethodPost, path), http.StatusNoContent)
}

// Restore is not offered by the server. It always returns ErrNotImplemented
// without sending a request.
func (s *MailboxService) Restore(ctx context.Context, domain, user string) (*Response, error) {
	return nil, ErrNotImplemented
}
