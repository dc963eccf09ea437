package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

type ItemResponse struct {
	Items   []Item
	Found   int
	Pages   int
	Page    int
	PerPage int `json:"per_page"`
}

type Item interface{}

// GetItems makes GET requests to HeadHunter API and returns items from up to MaxPages pages.
func (c *Client) GetItems(ctx context.Context, url string, q url.Values) ([]Item, error) {
	var items []Item

	response, err := c.getPage(ctx, url, q, 0)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got response from HH.ru",
		zap.Int("found", response.Found),
		zap.Int("pages", response.Pages),
		zap.Int("max items per page", response.PerPage),
	)

	items = append(items, response.Items...)

	for response.Page < (response.Pages-1) && response.Page+1 < c.MaxPages {
		c.logger.Debug("additional request needed", zap.String("reason", fmt.Sprintf(
			"current page (%d) < all page count (%d)", response.Page+1, response.Pages),
		))

		response, err = c.getPage(ctx, url, q, response.Page+1)
		if err != nil {
			return nil, err
		}

		items = append(items, response.Items...)
	}

	return items, nil
}

func (c *Client) getPage(ctx context.Context, url string, q url.Values, page int) (*ItemResponse, error) {
	paged := withPage(q, page)

	var response ItemResponse
	if err := c.requester.GetJSON(ctx, url, paged, &response); err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}

	return &response, nil
}

// withPage returns a copy of q with the page parameter set.
func withPage(q url.Values, page int) url.Values {
	paged := make(url.Values, len(q)+1)
	for k, v := range q {
		paged[k] = v
	}
	if page > 0 {
		paged.Set("page", strconv.Itoa(page))
	}

	return paged
}
