package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"nbreport/common"
)

var (
	// ErrMalformed is an input error: request could not be decoded.
	ErrMalformed = errors.New("malformed export request")
	// ErrUnknownFormat is an input error: requested artifact type is not supported.
	ErrUnknownFormat = errors.New("unsupported export format")
)

type wireRequest struct {
	Title        string    `json:"title"`
	Content      []Block   `json:"content"`
	Metadata     *Metadata `json:"metadata,omitempty"`
	TemplatePath string    `json:"templatePath,omitempty"`
	Format       string    `json:"format,omitempty"`
}

// Decode reads JSON export request. Errors are input errors and are expected
// to be reported to the caller before any job is created.
func Decode(r io.Reader) (*Request, error) {
	var w wireRequest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	req := &Request{
		Title:        w.Title,
		Content:      w.Content,
		Metadata:     w.Metadata,
		TemplatePath: w.TemplatePath,
		Format:       common.FormatPptx,
	}
	if f := strings.ToLower(strings.TrimSpace(w.Format)); len(f) > 0 {
		format, err := common.ParseFormat(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, w.Format)
		}
		req.Format = format
	}
	return req, nil
}

// Encode writes request in the same wire format Decode accepts.
func Encode(w io.Writer, req *Request) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(wireRequest{
		Title:        req.Title,
		Content:      req.Content,
		Metadata:     req.Metadata,
		TemplatePath: req.TemplatePath,
		Format:       req.Format.String(),
	})
}
