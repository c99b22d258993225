package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type RestyClient struct {
	client *resty.Client
}

func New(timeout time.Duration, userAgent string) HTTPClient {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "*/*").
		SetHeader("User-Agent", userAgent)

	return &RestyClient{client: client}
}

// GET request with optional query params
func (rc *RestyClient) Get(ctx context.Context, endpoint string, queryParams map[string]string, headers map[string]string) (*BaseResponse, error) {
	req := rc.client.R().SetContext(ctx)

	if queryParams != nil {
		req.SetQueryParams(queryParams)
	}

	if headers != nil {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(endpoint)
	if err != nil {
		return nil, err
	}

	return &BaseResponse{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Headers:    resp.Header(),
	}, nil
}

// GetText fetches a document and returns its body as a string.
func (rc *RestyClient) GetText(ctx context.Context, endpoint string) (string, error) {
	resp, err := rc.Get(ctx, endpoint, nil, nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	return string(resp.Body), nil
}
