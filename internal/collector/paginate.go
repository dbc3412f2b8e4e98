package collector

import "context"

// PageFunc fetches one page of a listing endpoint. It returns the
// page's items and whether the endpoint indicates a further page.
type PageFunc[T any] func(ctx context.Context, page int) ([]T, bool, error)

// CollectPages drives a page fetch function starting at page 1 until no
// further page is indicated, accumulating all pages in arrival order.
// Pages are requested strictly sequentially. Any page error aborts the
// accumulation and is returned with no partial result.
func CollectPages[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		items, hasMore, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if !hasMore {
			return all, nil
		}
	}
}
