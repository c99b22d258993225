package httpclient

import (
	"context"
	"net/http"
)

type BaseResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// HTTPClient fetches remote documents. Analysis inputs may be passed as URLs,
// the body is treated as a raw text blob.
type HTTPClient interface {
	Get(ctx context.Context, endpoint string, queryParams map[string]string, headers map[string]string) (*BaseResponse, error)
	GetText(ctx context.Context, endpoint string) (string, error)
}
