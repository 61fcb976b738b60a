package api

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/zfogg/wayfarer/cli/pkg/client"
)

// newRequest starts a request bound to ctx on the shared client
func newRequest(ctx context.Context) *resty.Request {
	return client.GetClient().R().SetContext(ctx)
}

// send executes the request through the client's limiter and breaker and
// converts non-2xx responses into *APIError.
func send(req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := client.Execute(req, method, path)
	if err := CheckResponse(resp, err); err != nil {
		return resp, err
	}
	return resp, nil
}

func pageParams(page, pageSize int) map[string]string {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return map[string]string{
		"page":      strconv.Itoa(page),
		"page_size": strconv.Itoa(pageSize),
	}
}
