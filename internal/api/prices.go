package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// GetDailyPrices fetches one page of daily prices for code, newest first.
// Pages start at 1. An empty slice means the history is exhausted.
func (c *Client) GetDailyPrices(ctx context.Context, code string, page int) ([]APIDailyPrice, error) {
	query := url.Values{}
	query.Set("pageSize", strconv.Itoa(c.pageSize))
	query.Set("page", strconv.Itoa(page))

	rawURL := strings.TrimRight(c.baseURL, "/") + "/" + url.PathEscape(code) + "/price"

	var rows []APIDailyPrice
	if err := c.getJSON(ctx, rawURL, query, &rows); err != nil {
		return nil, fmt.Errorf("get daily prices %s page %d: %w", code, page, err)
	}

	return rows, nil
}
