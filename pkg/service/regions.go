package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/formatter"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
	"github.com/zfogg/wayfarer/cli/pkg/output"
)

// RegionService lists and shows forum regions
type RegionService struct{}

// NewRegionService creates a new region service
func NewRegionService() *RegionService {
	return &RegionService{}
}

// List shows regions, optionally filtered by search
func (rs *RegionService) List(ctx context.Context, search string) error {
	logger.Debug("Listing regions", "search", search)

	regions, err := api.ListRegions(ctx, search)
	if err != nil {
		return fmt.Errorf("failed to list regions: %w", err)
	}

	rows := make([][]string, 0, len(regions))
	for _, r := range regions {
		rows = append(rows, []string{r.Slug, r.Name, r.Country, strconv.Itoa(r.PostCount)})
	}
	return output.PrintList(fmt.Sprintf("Regions (%d)", len(regions)), regions,
		[]string{"SLUG", "NAME", "COUNTRY", "POSTS"}, rows)
}

// View shows one region and its newest posts
func (rs *RegionService) View(ctx context.Context, idOrSlug string) error {
	region, err := api.GetRegion(ctx, idOrSlug)
	if err != nil {
		return fmt.Errorf("failed to get region: %w", err)
	}
	if output.IsJSON() {
		return output.Print("", region)
	}

	formatter.Bold.Fprintf(output.Out, "%s, %s\n", region.Name, region.Country)
	if region.Description != "" {
		fmt.Fprintf(output.Out, "%s\n", region.Description)
	}
	fmt.Fprintf(output.Out, "%s\n\n", formatter.Plural(region.PostCount, "post"))

	posts, err := api.ListPosts(ctx, api.PostQuery{RegionID: region.ID, Sort: "newest", PageSize: 5})
	if err != nil {
		logger.Warn("Failed to load region posts", "region", region.Slug, "error", err)
		return nil
	}
	renderPostRows(posts.Posts)
	if len(posts.Posts) > 0 {
		formatter.Faint.Fprintf(output.Out, "\nMore: wayfarer-cli post list --region %s\n", region.Slug)
	}
	return nil
}
