// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// defaultDenyDomains rejects candidate URLs outright: blogs, social media,
// video, Q&A sites, and academic aggregators that serve pages without DOIs.
var defaultDenyDomains = []string{
	"medium.com", "substack.com", "wordpress.com", "blogspot.com",
	"tumblr.com", "facebook.com", "twitter.com", "x.com", "instagram.com",
	"tiktok.com", "pinterest.com", "linkedin.com", "reddit.com",
	"youtube.com", "vimeo.com", "quora.com", "stackexchange.com",
	"stackoverflow.com", "answers.com", "scribd.com", "slideshare.net",
	"academia.edu", "researchgate.net", "coursehero.com",
}

// defaultAllowDomains short-circuit acceptance: governments, NGOs, major
// consultancies, and top-tier press.
var defaultAllowDomains = []string{
	"europa.eu", "un.org", "oecd.org", "worldbank.org", "imf.org",
	"who.int", "wto.org", "weforum.org", "brookings.edu", "rand.org",
	"mckinsey.com", "bcg.com", "bain.com", "deloitte.com", "pwc.com",
	"kpmg.com", "ey.com", "accenture.com", "gartner.com", "forrester.com",
	"statista.com", "pewresearch.org",
	"nytimes.com", "wsj.com", "ft.com", "economist.com", "reuters.com",
	"bloomberg.com", "apnews.com", "bbc.com", "bbc.co.uk",
	"nature.com", "science.org", "hbr.org",
}

// academicSubstrings mark a host as an academic publisher or repository;
// unrecognized domains matching one are accepted without a DOI.
var academicSubstrings = []string{
	"arxiv.org", "doi.org", "springer", "sciencedirect", "wiley",
	"ieee.org", "acm.org", "jstor.org", "nih.gov", "pubmed",
	"oup.com", "cambridge.org", "tandfonline", "sagepub",
	"plos.org", "mdpi.com", "frontiersin.org", "ssrn.com", "nber.org",
	".edu", ".ac.",
}

// DomainFilter decides whether web-search candidates are acceptable citation
// sources. A deny-list rejects outright; an allow-list (and government
// domains) short-circuits acceptance; unrecognized domains need a DOI, an
// academic-domain substring, or (when enabled) a live reachability check.
type DomainFilter struct {
	allow  []string
	deny   []string
	verify bool
	client *http.Client
}

// NewDomainFilter builds a filter from config. Empty allow/deny lists fall
// back to the shipped defaults; client is only used for reachability probes.
func NewDomainFilter(cfg types.DomainConfig, client *http.Client) *DomainFilter {
	f := &DomainFilter{
		allow:  cfg.Allow,
		deny:   cfg.Deny,
		verify: cfg.VerifyReachability,
		client: client,
	}
	if len(f.allow) == 0 {
		f.allow = defaultAllowDomains
	}
	if len(f.deny) == 0 {
		f.deny = defaultDenyDomains
	}
	return f
}

// Admit reports whether a candidate URL is an acceptable source, with a
// short reason for logging. doi is the candidate's DOI when already known;
// a non-empty DOI rescues an unrecognized domain.
func (f *DomainFilter) Admit(ctx context.Context, rawURL, doi string) (bool, string) {
	host := hostOf(rawURL)
	if host == "" {
		return false, "unparseable URL"
	}

	if matchDomain(host, f.deny) {
		return false, "deny-listed domain"
	}
	if matchDomain(host, f.allow) || isGovernment(host) {
		return true, "allow-listed domain"
	}
	if doi != "" {
		return true, "carries DOI"
	}
	for _, s := range academicSubstrings {
		if strings.Contains(host, s) {
			return true, "academic domain"
		}
	}
	if f.verify && f.reachable(ctx, rawURL) {
		return true, "reachable"
	}
	return false, "unrecognized domain without DOI"
}

// reachable probes the URL with HEAD, falling back to a streamed GET when
// the server rejects HEAD with 405. The GET body is closed unread.
func (f *DomainFilter) reachable(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode == http.StatusMethodNotAllowed {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return false
		}
		resp, err = f.client.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
	}
	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// matchDomain reports whether host equals or is a subdomain of any entry.
func matchDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func isGovernment(host string) bool {
	return strings.HasSuffix(host, ".gov") || strings.Contains(host, ".gov.") ||
		strings.HasSuffix(host, ".mil")
}
