package scorer

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/spigell/resume-matcher/internal/gate"
	"github.com/spigell/resume-matcher/internal/utils"

	"go.uber.org/zap"
)

const (
	fileField       = "file"
	skillsField     = "job_skills"
	acceptType      = "application/json"
	contentEncoding = "gzip"
	// Browsers name Blob parts like this.
	blobFilename = "blob"
)

// SkillsEncoding selects how the skills array is put into the form.
type SkillsEncoding string

const (
	// EncodingString sends the JSON array as a plain form value.
	EncodingString SkillsEncoding = "string"
	// EncodingJSONBlob sends the JSON array as a file part typed application/json.
	EncodingJSONBlob SkillsEncoding = "json-blob"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// postMultipart sends the form and decodes the JSON answer into a generic value.
func (c *Client) postMultipart(ctx context.Context, r *gate.Request) (any, error) {
	body, contentType, err := c.buildForm(r)
	if err != nil {
		return nil, &SubmissionError{Kind: ServiceFailure, Cause: fmt.Errorf("building form: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, body)
	if err != nil {
		return nil, &SubmissionError{Kind: TransportFailure, Cause: err}
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.request(req)
	if err != nil {
		return nil, &SubmissionError{Kind: TransportFailure, Cause: err}
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, &SubmissionError{Kind: ServiceFailure, Status: resp.StatusCode, Cause: err}
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &SubmissionError{Kind: TransportFailure, Status: resp.StatusCode, Cause: err}
	}

	c.logger.Debug("got response from the scoring service",
		zap.Int("status", resp.StatusCode),
		zap.Int("response_length", len(data)),
		zap.String("response_preview", utils.TruncateForLog(string(data), c.PreviewLength)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &SubmissionError{
			Kind:   ServiceFailure,
			Status: resp.StatusCode,
			Cause:  fmt.Errorf("bad status: %s", resp.Status),
		}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &SubmissionError{Kind: ServiceFailure, Status: resp.StatusCode, Cause: errors.New("empty response body")}
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &SubmissionError{Kind: ServiceFailure, Status: resp.StatusCode, Cause: fmt.Errorf("malformed response body: %w", err)}
	}

	return raw, nil
}

func (c *Client) buildForm(r *gate.Request) (*bytes.Buffer, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	file := r.File()
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		fileField, quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", file.MIMEType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, bytes.NewReader(file.Data)); err != nil {
		return nil, "", err
	}

	encoded, err := json.Marshal(r.Skills())
	if err != nil {
		return nil, "", err
	}

	switch c.SkillsEncoding {
	case EncodingJSONBlob:
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, skillsField, blobFilename))
		h.Set("Content-Type", acceptType)

		field, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := field.Write(encoded); err != nil {
			return nil, "", err
		}
	case EncodingString, "":
		if err := w.WriteField(skillsField, string(encoded)); err != nil {
			return nil, "", err
		}
	default:
		return nil, "", fmt.Errorf("unknown skills encoding: %s", c.SkillsEncoding)
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &b, w.FormDataContentType(), nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", acceptType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}
