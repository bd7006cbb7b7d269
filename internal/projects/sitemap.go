package projects

import (
	"context"
	"encoding/xml"
	"time"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap renders the site root, the list page and every published project.
func (s *Service) Sitemap(ctx context.Context, now time.Time) ([]byte, error) {
	published, err := s.Repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	today := now.UTC().Format("2006-01-02")
	set := urlSet{
		Xmlns: sitemapNamespace,
		URLs: []sitemapURL{
			{Loc: s.SiteURL, LastMod: today, ChangeFreq: "daily", Priority: "1.0"},
			{Loc: s.SiteURL + "/my-list", LastMod: today, ChangeFreq: "weekly", Priority: "0.5"},
		},
	}
	for _, p := range published {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.SiteURL + "/projects/" + p.Slug,
			LastMod:    p.UpdatedAt.UTC().Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
