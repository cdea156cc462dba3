package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// Source produces a Table. ID must be stable so that it can key a cache.
type Source interface {
	ID() string
	Open(ctx context.Context) (*Table, error)
}

// FileSource reads a local CSV or XLSX file, chosen by extension.
type FileSource struct {
	Path string
}

// ID implements Source.
func (s FileSource) ID() string { return s.Path }

// Open implements Source.
func (s FileSource) Open(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: open %s", s.Path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".xlsx":
		return ReadXLSX(f)
	default:
		return ReadCSV(f)
	}
}

// HTTPSource downloads a CSV over HTTP(S).
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// DefaultHTTPTimeout bounds a download when HTTPSource.Client is nil.
const DefaultHTTPTimeout = 30 * time.Second

// ID implements Source.
func (s HTTPSource) ID() string { return s.URL }

// Open implements Source.
func (s HTTPSource) Open(ctx context.Context) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: build request for %s", s.URL)
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: fetch %s", s.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errors.Newf("dataset: fetch %s: unexpected status %s", s.URL, resp.Status)
	}
	return ReadCSV(resp.Body)
}

// SourceFor picks an HTTPSource for http(s) URLs and a FileSource otherwise.
func SourceFor(location string) (Source, error) {
	if location == "" {
		return nil, errors.NewValueError("dataset.SourceFor", "empty data source location")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return HTTPSource{URL: location}, nil
	}
	return FileSource{Path: location}, nil
}

// StaticSource serves a fixed table; useful for tests and precomputed data.
type StaticSource struct {
	Name  string
	Table *Table
}

// ID implements Source.
func (s StaticSource) ID() string { return s.Name }

// Open implements Source.
func (s StaticSource) Open(ctx context.Context) (*Table, error) {
	if s.Table == nil {
		return nil, errors.NewValueError("StaticSource.Open", fmt.Sprintf("source %q has no table", s.Name))
	}
	return s.Table, ctx.Err()
}
