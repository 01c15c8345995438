// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Publisher      string    `yaml:"publisher,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// cslTypes maps citation source types onto CSL item types.
var cslTypes = map[types.SourceType]string{
	types.SourceJournal:    "article-journal",
	types.SourceConference: "paper-conference",
	types.SourceBook:       "book",
	types.SourceReport:     "report",
	types.SourceArticle:    "article",
	types.SourceWebsite:    "webpage",
}

// WriteCSL writes citations as a CSL-YAML list to w.
func WriteCSL(citations []types.Citation, w io.Writer) error {
	items := make([]CSLItem, len(citations))
	for i, c := range citations {
		items[i] = toCSLItem(c)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a Citation to a CSLItem.
func toCSLItem(c types.Citation) CSLItem {
	id := c.ID
	if id == "" {
		id = c.CiteKey()
	}

	item := CSLItem{
		ID:             id,
		Type:           cslTypes[c.SourceType],
		Title:          c.Title,
		ContainerTitle: c.Venue,
		Publisher:      c.Publisher,
		Volume:         c.Volume,
		Issue:          c.Issue,
		Page:           c.Pages,
		Abstract:       c.Abstract,
		DOI:            c.DOI,
		URL:            c.URL,
	}
	if item.Type == "" {
		item.Type = "article"
	}

	// Website authors are domain names; use the literal field for those.
	for _, a := range c.Authors {
		if c.SourceType == types.SourceWebsite {
			item.Author = append(item.Author, CSLName{Literal: a})
			continue
		}
		item.Author = append(item.Author, parseAuthorName(a))
	}

	if c.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{c.Year}}}
	}

	return item
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)

	// "Family, Given" form.
	if idx := strings.Index(name, ","); idx >= 0 {
		return CSLName{
			Family: strings.TrimSpace(name[:idx]),
			Given:  strings.TrimSpace(name[idx+1:]),
		}
	}

	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  strings.TrimSpace(name[:idx]),
		Family: strings.TrimSpace(name[idx+1:]),
	}
}
