// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "testing"

func TestCiteKey(t *testing.T) {
	tests := []struct {
		name string
		c    Citation
		want string
	}{
		{
			"author year title",
			Citation{Title: "Climate Policy Effectiveness", Authors: []string{"Jane Smith"}, Year: 2023},
			"smith2023climate",
		},
		{
			"stop words skipped",
			Citation{Title: "The Effects of Carbon Taxes", Authors: []string{"Bob Lee"}, Year: 2021},
			"lee2021effects",
		},
		{
			"multi-part family name uses last token",
			Citation{Title: "Deep Learning", Authors: []string{"Jane van Dijk"}, Year: 2020},
			"dijk2020deep",
		},
		{
			"punctuation stripped",
			Citation{Title: "AI: A Modern Approach?", Authors: []string{"S. O'Brien"}, Year: 2019},
			"obrien2019ai",
		},
		{
			"no authors",
			Citation{Title: "Untitled Memo Findings", Year: 2022},
			"anon2022untitled",
		},
		{
			"no year",
			Citation{Title: "Timeless Results", Authors: []string{"Jane Smith"}},
			"smithtimeless",
		},
		{
			"no title",
			Citation{Authors: []string{"Jane Smith"}, Year: 2023},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.CiteKey(); got != tt.want {
				t.Errorf("CiteKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasIdentifier(t *testing.T) {
	if (Citation{}).HasIdentifier() {
		t.Error("empty citation reports an identifier")
	}
	if !(Citation{DOI: "10.1/x"}).HasIdentifier() {
		t.Error("DOI not recognized as identifier")
	}
	if !(Citation{URL: "https://example.org"}).HasIdentifier() {
		t.Error("URL not recognized as identifier")
	}
}
