package platform

import (
	"context"
	"encoding/json"
	"fmt"
)

// listAllPages requests pages 1..pagesCount of a list method and concatenates the entities.
// buildRequest returns the request body for a 1-based page number.
func listAllPages[T any](ctx context.Context, s *Service, method string, buildRequest func(page int) any) ([]*T, error) {
	var all []*T

	for page := 1; ; page++ {
		var resp pagedResponse
		if err := s.post(ctx, method, buildRequest(page), &resp); err != nil {
			return nil, err
		}

		var entities []*T
		if len(resp.Entities) > 0 {
			if err := json.Unmarshal(resp.Entities, &entities); err != nil {
				return nil, fmt.Errorf("failed to decode %s entities: %w", method, err)
			}
		}
		all = append(all, entities...)

		// Stop on the last page, or on an empty page when the server omits pagesCount
		if page >= resp.PagesCount || len(entities) == 0 {
			break
		}
	}

	return all, nil
}
