package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
)

const (
	testDomain = "test.com"
	testUser   = "test"
	testUUID   = "7a8e6d30-4dd7-11e2-8dd9-040ccee13a02"
)

// newTestClient returns a Client pointed at serverURL.
func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	port, _ := strconv.Atoi(u.Port())
	client, err := New(Options{Hostname: u.Hostname(), Port: port, Scheme: u.Scheme})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

// countingTransport records how many requests reached the network layer.
type countingTransport struct {
	calls atomic.Int32
}

func (t *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	t.calls.Add(1)
	return nil, fmt.Errorf("countingTransport: unexpected request")
}

// newCountingClient returns a Client whose transport fails and counts every request.
func newCountingClient(t *testing.T) (*Client, *countingTransport) {
	t.Helper()
	transport := &countingTransport{}
	client, err := New(Options{
		Host:       "localhost",
		Port:       8181,
		HTTPClient: &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, transport
}

// recordedRequest captures what a handler saw.
type recordedRequest struct {
	Method      string
	Path        string
	EscapedPath string
	Query       url.Values
	Header      http.Header
	Body        []byte
}

// newRecordingServer answers every request with status and body and records it.
func newRecordingServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			EscapedPath: r.URL.EscapedPath(),
			Query:       r.URL.Query(),
			Header:      r.Header.Clone(),
			Body:        data,
		})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

type fakeMessage struct {
	id      string
	seq     int
	content []byte
	labels  map[int]bool
	markers map[string]bool
}

type fakeAccount struct {
	labels    map[int]string
	nextLabel int
	messages  map[string]*fakeMessage
}

// fakeServer is an in-memory ElasticInbox REST server covering the routes
// the client uses. The listing order is newest first unless reverse=false.
type fakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*fakeAccount
	seq      int
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{accounts: map[string]*fakeAccount{}}
	fs.Server = httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(fs.Close)
	return fs
}

func newFakeAccount() *fakeAccount {
	return &fakeAccount{
		labels:    map[int]string{0: "all", 1: "inbox", 2: "drafts", 3: "sent", 4: "trash", 5: "spam"},
		nextLabel: 10,
		messages:  map[string]*fakeMessage{},
	}
}

func (fs *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/rest/v2/"), "/")
	if !strings.HasPrefix(r.URL.Path, "/rest/v2/") || len(parts) < 2 {
		http.NotFound(w, r)
		return
	}
	key := parts[1] + "@" + parts[0]
	rest := parts[2:]

	if len(rest) == 0 {
		switch r.Method {
		case http.MethodPost:
			if _, ok := fs.accounts[key]; ok {
				w.WriteHeader(http.StatusConflict)
				return
			}
			fs.accounts[key] = newFakeAccount()
			w.WriteHeader(http.StatusCreated)
		case http.MethodDelete:
			delete(fs.accounts, key)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	acct, ok := fs.accounts[key]
	if !ok || rest[0] != "mailbox" {
		http.NotFound(w, r)
		return
	}
	rest = rest[1:]
	query := r.URL.Query()

	switch {
	case len(rest) == 0 && r.Method == http.MethodGet:
		fs.listLabels(w, acct, query.Get("metadata") == "true")
	case len(rest) == 1 && rest[0] == "label" && r.Method == http.MethodPost:
		id := acct.nextLabel
		acct.nextLabel++
		acct.labels[id] = query.Get("name")
		writeJSON(w, http.StatusCreated, map[string]int{"id": id})
	case len(rest) == 2 && rest[0] == "label":
		fs.label(w, r, acct, rest[1])
	case len(rest) == 1 && rest[0] == "purge" && r.Method == http.MethodPut:
		w.WriteHeader(http.StatusNoContent)
	case len(rest) == 2 && rest[0] == "scrub" && r.Method == http.MethodPost:
		w.WriteHeader(http.StatusNoContent)
	case len(rest) == 1 && rest[0] == "message":
		fs.messages(w, r, acct)
	case len(rest) >= 2 && rest[0] == "message":
		fs.message(w, r, acct, rest[1], rest[2:])
	default:
		http.NotFound(w, r)
	}
}

func (fs *fakeServer) listLabels(w http.ResponseWriter, acct *fakeAccount, metadata bool) {
	out := map[string]any{}
	for id, name := range acct.labels {
		if !metadata {
			out[strconv.Itoa(id)] = name
			continue
		}
		total := 0
		for _, m := range acct.messages {
			if m.labels[id] {
				total++
			}
		}
		out[strconv.Itoa(id)] = LabelInfo{Name: name, Total: int64(total)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (fs *fakeServer) label(w http.ResponseWriter, r *http.Request, acct *fakeAccount, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if r.Method == http.MethodGet {
		fs.listMessages(w, r, acct, id)
		return
	}
	if _, ok := acct.labels[id]; !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		acct.labels[id] = r.URL.Query().Get("name")
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		delete(acct.labels, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (fs *fakeServer) listMessages(w http.ResponseWriter, r *http.Request, acct *fakeAccount, label int) {
	query := r.URL.Query()
	var msgs []*fakeMessage
	for _, m := range acct.messages {
		if m.labels[label] {
			msgs = append(msgs, m)
		}
	}
	reverse := query.Get("reverse") != "false"
	sort.Slice(msgs, func(i, j int) bool {
		if reverse {
			return msgs[i].seq > msgs[j].seq
		}
		return msgs[i].seq < msgs[j].seq
	})
	if start := query.Get("start"); start != "" {
		for i, m := range msgs {
			if m.id == start {
				msgs = msgs[i:]
				break
			}
		}
	}
	if count, err := strconv.Atoi(query.Get("count")); err == nil && count < len(msgs) {
		msgs = msgs[:count]
	}

	if query.Get("metadata") == "true" {
		out := map[string]Message{}
		for _, m := range msgs {
			out[m.id] = m.metadata()
		}
		writeJSON(w, http.StatusOK, out)
		return
	}
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.id)
	}
	writeJSON(w, http.StatusOK, ids)
}

func (fs *fakeServer) messages(w http.ResponseWriter, r *http.Request, acct *fakeAccount) {
	query := r.URL.Query()
	body, _ := io.ReadAll(r.Body)

	switch r.Method {
	case http.MethodPost:
		fs.seq++
		m := &fakeMessage{
			id:      uuid.NewString(),
			seq:     fs.seq,
			content: body,
			labels:  map[int]bool{0: true},
			markers: map[string]bool{},
		}
		for _, l := range query["label"] {
			id, _ := strconv.Atoi(l)
			m.labels[id] = true
		}
		for _, mk := range query["marker"] {
			m.markers[strings.ToUpper(mk)] = true
		}
		acct.messages[m.id] = m
		w.Header().Set("Location", r.URL.Path+"/"+m.id)
		writeJSON(w, http.StatusCreated, MessageRef{ID: m.id})
	case http.MethodPut, http.MethodDelete:
		var ids []string
		if r.Header.Get("Content-Type") != "application/json" || json.Unmarshal(body, &ids) != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for _, id := range ids {
			m, ok := acct.messages[id]
			if !ok {
				continue
			}
			if r.Method == http.MethodDelete {
				delete(acct.messages, id)
			} else {
				m.apply(query)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (fs *fakeServer) message(w http.ResponseWriter, r *http.Request, acct *fakeAccount, id string, sub []string) {
	m, ok := acct.messages[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	body, _ := io.ReadAll(r.Body)

	switch {
	case len(sub) == 0 && r.Method == http.MethodGet:
		if r.URL.Query().Get("markseen") == "true" {
			m.markers["SEEN"] = true
		}
		writeJSON(w, http.StatusOK, m.metadata())
	case len(sub) == 0 && r.Method == http.MethodPost:
		m.content = body
		writeJSON(w, http.StatusCreated, MessageRef{ID: m.id})
	case len(sub) == 0 && r.Method == http.MethodPut:
		m.apply(r.URL.Query())
		w.WriteHeader(http.StatusNoContent)
	case len(sub) == 0 && r.Method == http.MethodDelete:
		delete(acct.messages, id)
		w.WriteHeader(http.StatusNoContent)
	case len(sub) == 1 && sub[0] == "raw":
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(m.content)
	case len(sub) == 1 && sub[0] == "url":
		w.Header().Set("Location", "http://blobs.example.com/"+m.id+".eml")
		w.WriteHeader(http.StatusTemporaryRedirect)
	default:
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "part %s", sub[0])
	}
}

func (m *fakeMessage) apply(query url.Values) {
	for _, l := range query["addlabel"] {
		id, _ := strconv.Atoi(l)
		m.labels[id] = true
	}
	for _, l := range query["removelabel"] {
		id, _ := strconv.Atoi(l)
		delete(m.labels, id)
	}
	for _, mk := range query["addmarker"] {
		m.markers[strings.ToUpper(mk)] = true
	}
	for _, mk := range query["removemarker"] {
		delete(m.markers, strings.ToUpper(mk))
	}
}

func (m *fakeMessage) metadata() Message {
	out := Message{ID: m.id, Size: int64(len(m.content))}
	for id := range m.labels {
		out.Labels = append(out.Labels, id)
	}
	sort.Ints(out.Labels)
	for mk := range m.markers {
		out.Markers = append(out.Markers, mk)
	}
	sort.Strings(out.Markers)
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
