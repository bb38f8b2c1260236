package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"

	"github.com/elasticinbox/elasticinbox-go/internal/debug"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultScheme  = "http"
	DefaultMethod  = http.MethodGet
	DefaultPath    = "/"

	restRoot = "/rest/v2"
)

// Options holds the connection settings shared by every request a Client makes.
//
// Hostname takes precedence over Host when both are set. A Path other than "/"
// is treated as a mount prefix in front of /rest/v2 (for servers behind a
// reverse proxy). Header is sent with every request.
type Options struct {
	Host       string
	Hostname   string
	Port       int
	Scheme     string
	Method     string
	Path       string
	Header     http.Header
	Debug      bool
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// clone returns a copy of o whose header map is not shared with o.
func (o Options) clone() Options {
	out := o
	out.Header = o.Header.Clone()
	return out
}

func (o Options) address() string {
	host := o.Hostname
	if host == "" {
		host = o.Host
	}
	if o.Port > 0 {
		return net.JoinHostPort(host, strconv.Itoa(o.Port))
	}
	return host
}

// Client is the ElasticInbox API client. It owns one instance of every
// resource service; all of them share the same Options.
//
// A Client is safe for concurrent use: every call clones the shared options
// into its own requestSpec before setting path, method or body.
type Client struct {
	HTTP *http.Client

	opts   Options
	logger *slog.Logger

	account  *AccountService
	labels   *LabelsService
	mailbox  *MailboxService
	messages *MessagesService
	batch    *BatchService
}

// Compile-time interface implementation checks
var (
	_ Requester    = (*Client)(nil)
	_ PathResolver = (*Client)(nil)
	_ HTTPExecutor = (*Client)(nil)
)

// New merges opts over the defaults and creates a Client.
// It returns ErrNoHost when neither Host nor Hostname is set.
func New(opts Options) (*Client, error) {
	merged := opts.clone()
	if merged.Scheme == "" {
		merged.Scheme = DefaultScheme
	}
	if merged.Method == "" {
		merged.Method = DefaultMethod
	}
	if merged.Path == "" {
		merged.Path = DefaultPath
	}
	merged.Host = strings.TrimSpace(merged.Host)
	merged.Hostname = strings.TrimSpace(merged.Hostname)
	if merged.Host == "" && merged.Hostname == "" {
		return nil, ErrNoHost
	}
	if merged.Port < 0 || merged.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", merged.Port)
	}
	if merged.Port > 0 {
		host := merged.Hostname
		if host == "" {
			host = merged.Host
		}
		if _, _, err := net.SplitHostPort(host); err == nil {
			return nil, fmt.Errorf("host %q already includes a port; drop it or leave Port unset", host)
		}
	}

	logger := merged.Logger
	if logger == nil {
		logger = defaultLogger(merged.Debug)
	}

	c := &Client{
		HTTP:   newHTTPClient(merged.HTTPClient),
		opts:   merged,
		logger: logger,
	}
	c.account = &AccountService{r: c}
	c.labels = &LabelsService{r: c}
	c.mailbox = &MailboxService{r: c}
	c.batch = &BatchService{r: c}
	c.messages = &MessagesService{r: c, batch: c.batch}
	return c, nil
}

// MustNew is like New but panics on error. Intended for tests and examples.
func MustNew(opts Options) *Client {
	c, err := New(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Options returns a copy of the client's connection options.
func (c *Client) Options() Options {
	return c.opts.clone()
}

func defaultLogger(debugEnabled bool) *slog.Logger {
	if !debugEnabled {
		return slog.Default()
	}
	return debug.NewLogger(os.Stderr, true)
}

// newHTTPClient copies base (or builds a default client) and disables redirect
// following so that 307 responses reach the caller with their Location header.
func newHTTPClient(base *http.Client) *http.Client {
	var hc http.Client
	if base != nil {
		hc = *base
	} else {
		baseTransport, ok := http.DefaultTransport.(*http.Transport)
		if !ok {
			baseTransport = &http.Transport{}
		}
		transport := baseTransport.Clone()
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		} else {
			transport.TLSClientConfig = transport.TLSClientConfig.Clone()
		}
		transport.TLSClientConfig.MinVersion = tls.VersionTLS12
		hc.Transport = transport
		hc.Timeout = DefaultTimeout
	}
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &hc
}

// requestSpec is a single request derived from the shared Options.
type requestSpec struct {
	Scheme string
	Host   string
	Port   int
	Path   string
	Method string
	Header http.Header
	Body   any
}

func (s requestSpec) url() string {
	u := url.URL{Scheme: s.Scheme, Host: s.Host}
	return u.String() + s.Path
}

// accountPath returns the escaped REST path for an account, followed by the
// given segments. Segments are used verbatim and must already be escaped.
func (c *Client) accountPath(domain, user string, segments ...string) string {
	var b strings.Builder
	if prefix := strings.TrimRight(c.opts.Path, "/"); prefix != "" {
		if prefix[0] != '/' {
			b.WriteByte('/')
		}
		b.WriteString(prefix)
	}
	b.WriteString(restRoot)
	b.WriteByte('/')
	b.WriteString(url.PathEscape(domain))
	b.WriteByte('/')
	b.WriteString(url.PathEscape(user))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(seg)
	}
	return b.String()
}

// newRequest clones the shared options into a fresh requestSpec.
func (c *Client) newRequest(method, path string) requestSpec {
	opts := c.opts.clone()
	if method == "" {
		method = opts.Method
	}
	return requestSpec{
		Scheme: opts.Scheme,
		Host:   opts.address(),
		Port:   opts.Port,
		Path:   path,
		Method: method,
		Header: opts.Header,
	}
}

func (c *Client) debugEnabled(ctx context.Context) bool {
	return c.opts.Debug || debug.IsEnabled(ctx)
}

// execute performs the HTTP exchange for spec and classifies the outcome
// against the expected status code.
func (c *Client) execute(ctx context.Context, spec requestSpec, expected int) (*Response, error) {
	payload, contentType, err := encodeBody(spec.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, spec.url(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range spec.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	debugOn := c.debugEnabled(ctx)
	if debugOn {
		c.logger.Debug("request", "method", spec.Method, "host", spec.Host, "port", spec.Port, "path", spec.Path)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if debugOn {
			c.logger.Debug("request failed", "method", spec.Method, "path", spec.Path, "error", err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	body, err := decodeContent(resp.Header.Get("Content-Encoding"), raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	if debugOn {
		c.logger.Debug("request complete", "method", spec.Method, "path", spec.Path, "status", resp.StatusCode, "expected", expected, "duration", time.Since(start))
	}

	return parseResult(resp.StatusCode, expected, resp.Header, body)
}

// parseResult maps a status code to a Response or an error.
func parseResult(status, expected int, header http.Header, body []byte) (*Response, error) {
	if status != expected {
		switch status {
		case http.StatusInternalServerError:
			return nil, &ServerError{Body: string(body)}
		case http.StatusNotFound:
			return nil, ErrNotFound
		default:
			return nil, &APIError{
				StatusCode: status,
				Body:       string(body),
				RequestID:  requestIDFromHeader(header),
			}
		}
	}
	return newResponse(status, header, body), nil
}

// encodeBody returns the wire form of body. Byte slices, strings and readers
// are sent verbatim; anything else is encoded as JSON.
func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return b, "", nil
	case string:
		return []byte(b), "", nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, "", err
		}
		return data, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	}
}

// decodeContent inflates deflate-encoded bodies. HTTP "deflate" is meant to be
// zlib-wrapped but some servers send raw deflate, so both are accepted.
func decodeContent(encoding string, raw []byte) ([]byte, error) {
	if len(raw) == 0 || !strings.EqualFold(strings.TrimSpace(encoding), "deflate") {
		return raw, nil
	}
	if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
		defer func() { _ = zr.Close() }()
		return io.ReadAll(zr)
	}
	fr := flate.NewReader(bytes.NewReader(raw))
	defer func() { _ = fr.Close() }()
	return io.ReadAll(fr)
}

func requestIDFromHeader(header http.Header) string {
	if header == nil {
		return ""
	}
	return header.Get("X-Request-Id")
}

// withQuery appends the encoded query to path when q is not empty.
func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
