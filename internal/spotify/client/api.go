package client

import (
	"context"
	"fmt"
	"net/url"
)

// GetTrack returns catalog information for a track. market, when set, is an
// ISO 3166-1 country code that affects preview availability.
func (c *Client) GetTrack(ctx context.Context, id, market string) (*Track, error) {
	if id == "" {
		return nil, fmt.Errorf("track id cannot be empty")
	}

	params := map[string]string{}
	if market != "" {
		params["market"] = market
	}

	var track Track
	if err := c.Get(ctx, BuildURL("/tracks/"+url.PathEscape(id), params), &track); err != nil {
		return nil, err
	}
	return &track, nil
}
