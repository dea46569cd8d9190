// Package bookio reads and writes browser bookmark files in the Netscape
// bookmark format (nested <DL>/<DT>/<H3>/<A> markup).
package bookio

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
)

var ErrMalformedDocument = errors.New("bookio: malformed bookmark file")

// SystemFolders are browser-generated containers that never become user
// folders. Matching is exact and case-sensitive.
var SystemFolders = map[string]struct{}{
	"Bookmarks bar":    {},
	"Other bookmarks":  {},
	"Mobile bookmarks": {},
	"Bookmarks":        {},
}

// IsSystemFolder reports whether name is one of SystemFolders
func IsSystemFolder(name string) bool {
	_, ok := SystemFolders[name]
	return ok
}

// ImportFile parses the text of a bookmark file. It never fails: input the
// parser cannot handle yields an empty result.
func ImportFile(text string) *domain.ImportResult {
	res, err := ParseNetscape(strings.NewReader(text))
	if err != nil {
		return emptyResult()
	}
	return res
}

// ParseNetscape parses a bookmark file into flat records plus the folder
// drafts they reference, both in document order.
func ParseNetscape(r io.Reader) (*domain.ImportResult, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	doc := goquery.NewDocumentFromNode(root)

	res := emptyResult()
	drafts := make(map[string]int) // name -> index in res.Folders

	linkContainers(doc).Each(func(_ int, dt *goquery.Selection) {
		a := dt.Find("a").First()
		rec := domain.ImportRecord{
			URL:   strings.TrimSpace(a.AttrOr("href", "")),
			Title: strings.TrimSpace(a.Text()),
		}

		name, color, ok := enclosingFolder(dt)
		if ok && name != "" && !IsSystemFolder(name) {
			if _, seen := drafts[name]; !seen {
				drafts[name] = len(res.Folders)
				res.Folders = append(res.Folders, domain.FolderDraft{
					Name:        name,
					Color:       color,
					ImportOrder: len(res.Folders),
				})
			}
			folder := name
			rec.FolderName = &folder
		}

		res.Records = append(res.Records, rec)
	})

	return res, nil
}

// linkContainers selects <dt> entries holding a link but no folder heading
func linkContainers(doc *goquery.Document) *goquery.Selection {
	return doc.Find("dt").FilterFunction(func(_ int, dt *goquery.Selection) bool {
		return dt.Find("a").Length() > 0 && dt.Find("h3").Length() == 0
	})
}

// enclosingFolder walks up from a link container to the nearest <dl> whose
// previous element sibling is, or contains, an <h3>.
func enclosingFolder(dt *goquery.Selection) (name, color string, ok bool) {
	for p := dt.Parent(); p.Length() > 0 && !p.Is("html"); p = p.Parent() {
		if !p.Is("dl") {
			continue
		}
		prev := p.Prev()
		if prev.Length() == 0 {
			continue
		}
		h3 := prev.Find("h3").First()
		if h3.Length() == 0 && prev.Is("h3") {
			h3 = prev
		}
		if h3.Length() == 0 {
			continue
		}
		// raw heading text; system folders match it exactly
		return h3.Text(), h3.AttrOr("color", ""), true
	}
	return "", "", false
}

func emptyResult() *domain.ImportResult {
	return &domain.ImportResult{
		Records: []domain.ImportRecord{},
		Folders: []domain.FolderDraft{},
	}
}
