package api

import "context"

// PathResolver builds REST paths. Domain and user are percent-encoded;
// segments are appended as given and must already be escaped.
type PathResolver interface {
	// accountPath("example.com", "bob", "mailbox") -> "/rest/v2/example.com/bob/mailbox"
	accountPath(domain, user string, segments ...string) string
}

// HTTPExecutor turns a request into a Response or an error.
//
// newRequest clones the shared connection options so the caller can set path,
// method, headers and body without affecting concurrent calls. execute sends
// it and classifies the status against expected.
type HTTPExecutor interface {
	newRequest(method, path string) requestSpec
	execute(ctx context.Context, spec requestSpec, expected int) (*Response, error)
}

// Requester combines PathResolver and HTTPExecutor. It is the interface the
// resource helpers depend on; tests can substitute a recording fake.
type Requester interface {
	PathResolver
	HTTPExecutor
}
