package scorer

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/gate"

	"go.uber.org/zap"
)

const samplePDF = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF"

func newRequest(t *testing.T, skills string) *gate.Request {
	t.Helper()

	req, err := gate.NewRequest(&analysis.File{
		Name:     `jane "cv".pdf`,
		MIMEType: gate.PDFMimeType,
		Data:     []byte(samplePDF),
	}, skills)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	return req
}

func TestSubmitSendsMultipartAndNormalizes(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
			return
		}

		file, header, err := r.FormFile(fileField)
		if err != nil {
			t.Errorf("reading file part: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != samplePDF {
			t.Errorf("unexpected file content: %q", data)
		}
		if header.Filename != `jane "cv".pdf` {
			t.Errorf("unexpected filename: %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != gate.PDFMimeType {
			t.Errorf("unexpected file content type: %q", ct)
		}

		var skills []string
		if err := json.Unmarshal([]byte(r.FormValue(skillsField)), &skills); err != nil {
			t.Errorf("decoding skills field: %v", err)
		}
		if !reflect.DeepEqual(skills, []string{"Python", "SQL"}) {
			t.Errorf("unexpected skills: %q", skills)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name": "Jane Doe", "resume_skills": ["Python"], "missing_skills": ["SQL"], "resume_score": 69.5}`))
	}))
	defer server.Close()

	client := New(zap.NewNop(), server.URL)
	result, err := client.Submit(context.Background(), newRequest(t, "Python, , SQL"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls.Load() != 1 {
		t.Fatalf("expected exactly one request, got %d", calls.Load())
	}
	if result.Name != "Jane Doe" || result.Score != 70 || result.Band != analysis.BandHigh {
		t.Fatalf("unexpected result: %+v", result)
	}
	if client.Busy() {
		t.Fatalf("client must not be busy after the submission finished")
	}
}

func TestSubmitJSONBlobEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
			return
		}

		part, header, err := r.FormFile(skillsField)
		if err != nil {
			t.Errorf("expected skills as a file part: %v", err)
			return
		}
		defer part.Close()

		if ct := header.Header.Get("Content-Type"); ct != acceptType {
			t.Errorf("unexpected skills content type: %q", ct)
		}
		data, _ := io.ReadAll(part)
		if string(data) != `["Go"]` {
			t.Errorf("unexpected skills payload: %s", data)
		}

		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(zap.NewNop(), server.URL)
	client.SkillsEncoding = EncodingJSONBlob

	if _, err := client.Submit(context.Background(), newRequest(t, "Go")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubmitGzipResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != contentEncoding {
			t.Errorf("unexpected Accept-Encoding: %q", r.Header.Get("Accept-Encoding"))
		}

		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, _ = gz.Write([]byte(`{"resume_score": 39.9}`))
		_ = gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	result, err := New(zap.NewNop(), server.URL).Submit(context.Background(), newRequest(t, "Go"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 40 || result.Band != analysis.BandMid {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSubmitFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   FailureKind
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"detail": "boom"}`, kind: ServiceFailure},
		{name: "client error", status: http.StatusUnprocessableEntity, body: `{}`, kind: ServiceFailure},
		{name: "malformed body", status: http.StatusOK, body: `<html>`, kind: ServiceFailure},
		{name: "empty body", status: http.StatusOK, body: ``, kind: ServiceFailure},
		{name: "null body", status: http.StatusOK, body: `null`, kind: ServiceFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := New(zap.NewNop(), server.URL).Submit(context.Background(), newRequest(t, "Go"))

			var subErr *SubmissionError
			if !errors.As(err, &subErr) {
				t.Fatalf("expected SubmissionError, got %v", err)
			}
			if subErr.Kind != tt.kind {
				t.Fatalf("expected %s failure, got %s", tt.kind, subErr.Kind)
			}
			if subErr.Message() == "" {
				t.Fatalf("expected a user facing message")
			}
		})
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(zap.NewNop(), url).Submit(context.Background(), newRequest(t, "Go"))

	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if subErr.Kind != TransportFailure {
		t.Fatalf("expected transport failure, got %s", subErr.Kind)
	}
}

func TestSubmitUnusableFormIsServiceFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(zap.NewNop(), server.URL)
	client.SkillsEncoding = "base64"

	_, err := client.Submit(context.Background(), newRequest(t, "Go"))

	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if subErr.Kind != ServiceFailure {
		t.Fatalf("expected service failure, got %s", subErr.Kind)
	}
	if calls.Load() != 0 {
		t.Fatalf("no request must be sent when the form cannot be built")
	}
	if client.Busy() {
		t.Fatalf("client must not stay busy after a failed submission")
	}
}

func TestClientEndpoint(t *testing.T) {
	if got := New(nil, "").Endpoint(); got != DefaultURL {
		t.Fatalf("expected default endpoint, got %s", got)
	}
	if got := New(nil, "http://10.0.0.5:8000/match-resume/").Endpoint(); got != "http://10.0.0.5:8000/match-resume/" {
		t.Fatalf("unexpected endpoint: %s", got)
	}
}

func TestSubmitAtMostOneInFlight(t *testing.T) {
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-release
		_, _ = w.Write([]byte(`{"resume_score": 10}`))
	}))
	defer server.Close()

	client := New(zap.NewNop(), server.URL)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = client.Submit(context.Background(), newRequest(t, "Go"))
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatalf("first submission never reached the server")
	}

	if !client.Busy() {
		t.Fatalf("expected client to be busy while a submission is outstanding")
	}

	if _, err := client.Submit(context.Background(), newRequest(t, "Go")); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(release)
	wg.Wait()

	if firstErr != nil {
		t.Fatalf("first submission failed: %v", firstErr)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one HTTP request, got %d", calls.Load())
	}

	// The slot is free again once the first call resolved.
	if _, err := client.Submit(context.Background(), newRequest(t, "Go")); err != nil {
		t.Fatalf("expected a new submission to be accepted, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected second HTTP request after release, got %d", calls.Load())
	}
}
