package indeed

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip, deflate, br"
)

type itemResponse struct {
	Items   []any
	Found   int
	Pages   int
	Page    int
	PerPage int `json:"per_page"`
}

// getItems makes a GET request and follows pagination, returning the items
// from every page.
func (b *Board) getItems(ctx context.Context, endpoint string, q url.Values) ([]any, error) {
	var items []any

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	req = b.setHeaders(req)
	req.Header.Set("Content-Type", contentType)
	req.URL.RawQuery = q.Encode()

	resp, err := b.request(req)
	if err != nil {
		return nil, err
	}

	response, err := b.parseItemResponse(resp)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("got search response", zap.Int("pages", response.Pages), zap.Int("per_page", response.PerPage))

	items = append(items, response.Items...)

	for response.Page < (response.Pages - 1) {
		b.logger.Debug("fetching next result page",
			zap.Int("current", response.Page+1),
			zap.Int("total", response.Pages),
		)

		resp, err = b.request(addPage(req, response.Page+1))
		if err != nil {
			return nil, err
		}

		response, err = b.parseItemResponse(resp)
		if err != nil {
			return nil, err
		}

		items = append(items, response.Items...)
	}

	return items, nil
}

func (b *Board) parseItemResponse(resp *http.Response) (*itemResponse, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body io.ReadCloser
	var err error
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		body, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer body.Close()
	default:
		body = resp.Body
		defer body.Close()
	}

	var response *itemResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, err
	}

	return response, nil
}

func (b *Board) postFormData(ctx context.Context, endpoint string, data map[string]string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, val := range data {
		field, err := w.CreateFormField(key)
		if err != nil {
			return err
		}

		if _, err := io.Copy(field, strings.NewReader(val)); err != nil {
			return err
		}
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return err
	}

	req = b.setHeaders(req)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := b.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	return nil
}

func (b *Board) request(req *http.Request) (*http.Response, error) {
	b.logger.Debug("make request", zap.String("url", req.URL.String()))
	return b.HTTPClient.Do(req)
}

func (b *Board) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", b.token))
	req.Header.Set("User-Agent", b.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

// addPage sets the page parameter on the request URL.
func addPage(req *http.Request, page int) *http.Request {
	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = q.Encode()

	return req
}
