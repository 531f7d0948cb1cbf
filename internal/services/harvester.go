package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// PageFunc converts one raw catalog record into a T. Returning an error skips
// no records; the harvester treats it as fatal for the page.
type PageFunc[T any] func(record json.RawMessage) (T, error)

// HarvestAll paginates a catalog resource to exhaustion and collects all
// records.
//
// Each round requests a full page with limit=all and the current offset; the
// offset advances by the reported results count and harvesting stops when a
// page comes back empty. An error on any page aborts the harvest: a partial
// listing must not masquerade as the complete catalog.
func HarvestAll[T any](ctx context.Context, c Catalog, resource string, params url.Values, transform PageFunc[T]) ([]T, error) {
	var collected []T
	offset := 0

	for {
		query := url.Values{}
		for key, values := range params {
			for _, value := range values {
				query.Add(key, value)
			}
		}
		query.Set("limit", "all")
		query.Set("offset", strconv.Itoa(offset))

		envelope, err := c.Call(ctx, resource, query)
		if err != nil {
			return nil, fmt.Errorf("harvest of %s aborted at offset %d: %w", resource, offset, err)
		}

		if envelope.Headers.ResultsCount == 0 || len(envelope.Results) == 0 {
			return collected, nil
		}

		for _, record := range envelope.Results {
			item, err := transform(record)
			if err != nil {
				return nil, fmt.Errorf("harvest of %s aborted at offset %d: %w", resource, offset, err)
			}
			collected = append(collected, item)
		}

		offset += envelope.Headers.ResultsCount
	}
}
