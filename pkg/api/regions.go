package api

import (
	"context"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
)

// ListRegions retrieves every destination region
func ListRegions(ctx context.Context, search string) ([]Region, error) {
	logger.Debug("Listing regions", "search", search)

	var response RegionListResponse
	req := newRequest(ctx).SetResult(&response)
	if search != "" {
		req.SetQueryParam("q", search)
	}

	if _, err := send(req, resty.MethodGet, "/api/v1/regions"); err != nil {
		return nil, err
	}

	return response.Regions, nil
}

// GetRegion retrieves a region by id or slug
func GetRegion(ctx context.Context, idOrSlug string) (*Region, error) {
	logger.Debug("Getting region", "region", idOrSlug)

	var response struct {
		Region Region `json:"region"`
	}
	req := newRequest(ctx).SetResult(&response)

	if _, err := send(req, resty.MethodGet, "/api/v1/regions/"+url.PathEscape(idOrSlug)); err != nil {
		return nil, err
	}

	return &response.Region, nil
}
