// Package transit is the client for the upstream transit API.
// It decodes the route, checkpoint and times collections into domain types.
// Every failure, whether transport, HTTP status or JSON decoding, is wrapped
// in domain.ErrUpstreamUnavailable and no partial collection is ever returned.
package transit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkordes/transit-bot/internal/domain"
)

// DefaultBaseURL is the public API of the Tyumen transit operator.
const DefaultBaseURL = "https://api.tgt72.ru/api/v5/"

// Client fetches directories and arrival times from the transit API.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient constructs a Client for baseURL. A trailing slash is added when
// missing so relative resource paths resolve beneath it.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if baseURL[len(baseURL)-1] != '/' {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("transit.NewClient: parse base url: %w", err)
	}
	return &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
	}, nil
}

type routeObject struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CheckpointsIDs []int  `json:"checkpoints_ids"`
}

type checkpointObject struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	CodeNumber   string  `json:"code_number"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	ProjectedLat float64 `json:"projected_lat"`
	ProjectedLon float64 `json:"projected_lon"`
	Heading      float64 `json:"heading"`
	RoutesIDs    []int   `json:"routes_ids"`
}

type timesObject struct {
	Times []string `json:"times"`
}

// envelope is the {"objects": [...]} wrapper every collection arrives in.
type envelope[T any] struct {
	Objects []T `json:"objects"`
}

// Routes returns the full route directory.
func (c *Client) Routes(ctx context.Context) ([]domain.Route, error) {
	var body envelope[routeObject]
	if err := c.getJSON(ctx, "route/", nil, &body); err != nil {
		return nil, fmt.Errorf("transit.Client.Routes: %w", err)
	}

	routes := make([]domain.Route, 0, len(body.Objects))
	for _, o := range body.Objects {
		routes = append(routes, domain.Route{
			ID:          o.ID,
			Number:      o.Name,
			Description: o.Description,
			StopIDs:     o.CheckpointsIDs,
		})
	}
	return routes, nil
}

// Stops returns the full checkpoint directory.
func (c *Client) Stops(ctx context.Context) ([]domain.Stop, error) {
	var body envelope[checkpointObject]
	if err := c.getJSON(ctx, "checkpoint/", nil, &body); err != nil {
		return nil, fmt.Errorf("transit.Client.Stops: %w", err)
	}

	stops := make([]domain.Stop, 0, len(body.Objects))
	for _, o := range body.Objects {
		stops = append(stops, domain.Stop{
			ID:           o.ID,
			Name:         o.Name,
			Description:  o.Description,
			Code:         o.CodeNumber,
			Lat:          o.Lat,
			Lon:          o.Lon,
			ProjectedLat: o.ProjectedLat,
			ProjectedLon: o.ProjectedLon,
			Heading:      o.Heading,
			RouteIDs:     o.RoutesIDs,
		})
	}
	return stops, nil
}

// Times returns the raw "HH:MM" arrival list for a route at a stop.
// Only the first object of the response is authoritative; a response with no
// objects means there is no data and yields a nil slice.
func (c *Client) Times(ctx context.Context, routeID, stopID int) ([]string, error) {
	q := url.Values{}
	q.Set("route_id", strconv.Itoa(routeID))
	q.Set("checkpoint_id", strconv.Itoa(stopID))

	var body envelope[timesObject]
	if err := c.getJSON(ctx, "times/", q, &body); err != nil {
		return nil, fmt.Errorf("transit.Client.Times: %w", err)
	}
	if len(body.Objects) == 0 {
		return nil, nil
	}
	return body.Objects[0].Times, nil
}

// getJSON issues a GET for path relative to the base URL and decodes the
// response body into dst.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	u := c.base.ResolveReference(&url.URL{Path: path})
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET %s: status %d", domain.ErrUpstreamUnavailable, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s: %w", domain.ErrUpstreamUnavailable, path, err)
	}
	return nil
}
