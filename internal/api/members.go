package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultPageSize is the member list page size used when none is given
const DefaultPageSize = 20

func (p ListMembersParams) values() url.Values {
	q := url.Values{}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if p.Skip > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
	} else {
		q.Set("skip", "0")
	}
	q.Set("limit", strconv.Itoa(limit))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	return q
}

// ListMembers returns one page of members
func (c *Client) ListMembers(ctx context.Context, params ListMembersParams) (*ListResponse[Member], error) {
	req := request{
		method:        http.MethodGet,
		path:          "/members/",
		query:         params.values(),
		authenticated: true,
	}

	var page ListResponse[Member]
	if err := c.do(ctx, req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetMember returns a single member
func (c *Client) GetMember(ctx context.Context, id int) (*Member, error) {
	req := request{method: http.MethodGet, path: memberPath(id), authenticated: true}

	var member Member
	if err := c.do(ctx, req, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// CreateMember registers a new member
func (c *Client) CreateMember(ctx context.Context, in MemberCreate) (*Member, error) {
	req, err := jsonRequest(http.MethodPost, "/members/", in)
	if err != nil {
		return nil, err
	}

	var member Member
	if err := c.do(ctx, req, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateMember applies a partial update to a member
func (c *Client) UpdateMember(ctx context.Context, id int, in MemberUpdate) (*Member, error) {
	req, err := jsonRequest(http.MethodPut, memberPath(id), in)
	if err != nil {
		return nil, err
	}

	var member Member
	if err := c.do(ctx, req, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// DeleteMember removes a member
func (c *Client) DeleteMember(ctx context.Context, id int) error {
	req := request{method: http.MethodDelete, path: memberPath(id), authenticated: true}
	return c.do(ctx, req, nil)
}

// MemberStats returns member counters by status
func (c *Client) MemberStats(ctx context.Context) (*MemberStats, error) {
	req := request{method: http.MethodGet, path: "/members/stats", authenticated: true}

	var stats MemberStats
	if err := c.do(ctx, req, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func memberPath(id int) string {
	return fmt.Sprintf("/members/%d", id)
}
