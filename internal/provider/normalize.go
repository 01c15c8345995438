// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// doiPattern extracts a DOI from free text. Query strings and fragments are
// excluded so DOIs embedded in URLs come out clean.
var doiPattern = regexp.MustCompile(`10\.\d{4,}/[^\s&?#]+`)

// ExtractDOI returns the first DOI found in s, stripped of any resolver
// prefix and trailing punctuation, or "" when none is present.
func ExtractDOI(s string) string {
	m := doiPattern.FindString(s)
	if m == "" {
		return ""
	}
	return strings.TrimRight(m, ".,;)")
}

// bareDomainTLDs are suffixes that mark an "author" string as a bare domain
// name rather than a person. Provider-extracted data sometimes puts the
// publishing site in the author list; academic source types reject those.
var bareDomainTLDs = []string{
	".com", ".org", ".net", ".edu", ".gov", ".io", ".co", ".ai",
	".uk", ".de", ".fr", ".eu", ".int", ".info", ".biz",
}

// IsBareDomain reports whether an author string is a bare domain name
// (no spaces, ends in a known TLD).
func IsBareDomain(author string) bool {
	a := strings.ToLower(strings.TrimSpace(author))
	if a == "" || strings.ContainsAny(a, " \t") {
		return false
	}
	a = strings.TrimPrefix(a, "www.")
	for _, tld := range bareDomainTLDs {
		if strings.HasSuffix(a, tld) && len(a) > len(tld) {
			return true
		}
	}
	return false
}

// CleanAuthors drops empty entries, and for non-website source types drops
// bare-domain authors as well.
func CleanAuthors(authors []string, sourceType types.SourceType) []string {
	var out []string
	for _, a := range authors {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if sourceType != types.SourceWebsite && IsBareDomain(a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// DomainAuthor derives a website author from a URL host ("www.oecd.org" →
// "oecd.org"). Returns "" for unparseable URLs.
func DomainAuthor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// ReconstructAbstract converts an inverted word-position index back to plain
// text. Some bibliographic APIs store abstracts this way: each word maps to
// the list of positions where it appears.
func ReconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// yearPattern matches a plausible publication year in free text.
var yearPattern = regexp.MustCompile(`\b(19[5-9]\d|20\d{2})\b`)

// ExtractYear returns the first plausible publication year found in s, or 0.
// Years beyond next year are rejected.
func ExtractYear(s string) int {
	for _, m := range yearPattern.FindAllString(s, -1) {
		y := 0
		for _, r := range m {
			y = y*10 + int(r-'0')
		}
		if y <= time.Now().Year()+1 {
			return y
		}
	}
	return 0
}

// placeholderTitles are titles that mark a record as unusable.
var placeholderTitles = map[string]bool{
	"": true, "untitled": true, "unknown": true, "n/a": true, "none": true,
}

// IsPlaceholderTitle reports whether a title is empty or a known placeholder.
func IsPlaceholderTitle(title string) bool {
	return placeholderTitles[strings.ToLower(strings.TrimSpace(title))]
}

// NormalizeSourceType maps free-form provider work types onto the closed
// SourceType set. Unrecognized values default to article.
func NormalizeSourceType(raw string) types.SourceType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "journal", "journal-article", "journalarticle", "article":
		return types.SourceJournal
	case "conference", "proceedings-article", "conference-paper", "conference_paper":
		return types.SourceConference
	case "book", "book-chapter", "monograph", "edited-book":
		return types.SourceBook
	case "report", "whitepaper", "white-paper", "working-paper":
		return types.SourceReport
	case "website", "webpage", "web":
		return types.SourceWebsite
	default:
		return types.SourceArticle
	}
}
