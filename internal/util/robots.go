package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
)

// RobotsTTL is how long a parsed robots.txt is trusted before refetching.
const RobotsTTL = 24 * time.Hour

// RobotsChecker answers robots.txt questions for document URLs. Each host's
// file is fetched once per RobotsTTL, even when many workers ask at once.
type RobotsChecker struct {
	client    *http.Client
	userAgent string // sent on the robots.txt request
	token     string // matched against User-agent groups

	hosts    *gocache.Cache
	inflight singleflight.Group
}

// NewRobotsChecker fetches robots.txt with client, or a 10s client when nil.
func NewRobotsChecker(userAgent string, client *http.Client) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		client:    client,
		userAgent: userAgent,
		token:     NormalizeUserAgent(userAgent),
		hosts:     gocache.New(RobotsTTL, time.Hour),
	}
}

// CanFetch reports whether rawURL may be fetched and the crawl delay that
// applies. A robots.txt that cannot be retrieved or parsed allows the fetch.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}
	if u.Host == "" {
		return false, 0, fmt.Errorf("parse URL: missing host in %q", rawURL)
	}

	rules, err := r.rulesFor(ctx, u)
	if err != nil {
		return true, 0, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	var delay time.Duration
	if group := rules.FindGroup(r.token); group != nil {
		delay = group.CrawlDelay
	}
	return rules.TestAgent(path, r.token), delay, nil
}

// IsAllowed is CanFetch without the delay or error.
func (r *RobotsChecker) IsAllowed(ctx context.Context, rawURL string) bool {
	ok, _, _ := r.CanFetch(ctx, rawURL)
	return ok
}

// Clear forgets every cached robots.txt.
func (r *RobotsChecker) Clear() {
	r.hosts.Flush()
}

func (r *RobotsChecker) rulesFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	origin := u.Scheme + "://" + strings.ToLower(u.Host)
	if v, ok := r.hosts.Get(origin); ok {
		return v.(*robotstxt.RobotsData), nil
	}

	v, err, _ := r.inflight.Do(origin, func() (any, error) {
		rules, err := r.fetch(ctx, origin+"/robots.txt")
		if err != nil {
			return nil, err
		}
		r.hosts.SetDefault(origin, rules)
		return rules, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*robotstxt.RobotsData), nil
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// 4xx means allow-all and 5xx disallow-all.
	rules, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return rules, nil
}

// NormalizeUserAgent returns the product token used for robots.txt matching:
// "LawLens/0.1 (+https://...)" becomes "LawLens".
func NormalizeUserAgent(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return ua
	}
	token, _, _ := strings.Cut(fields[0], "/")
	return token
}
