package bookio

import (
	"bufio"
	"fmt"
	"html"
	"io"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
)

const netscapeHeader = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!-- This is an automatically generated file.
     It will be read and overwritten.
     DO NOT EDIT! -->
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
`

// WriteNetscape writes folders (each with its bookmarks) followed by the
// unfiled bookmarks. Bookmarks pointing at a folder not in folders are
// written as unfiled.
func WriteNetscape(w io.Writer, folders []domain.Folder, bookmarks []domain.Bookmark) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(netscapeHeader); err != nil {
		return err
	}

	byFolder := make(map[int64][]domain.Bookmark, len(folders))
	known := make(map[int64]struct{}, len(folders))
	for _, f := range folders {
		known[f.ID] = struct{}{}
	}

	var unfiled []domain.Bookmark
	for _, b := range bookmarks {
		if b.FolderID != nil {
			if _, ok := known[*b.FolderID]; ok {
				byFolder[*b.FolderID] = append(byFolder[*b.FolderID], b)
				continue
			}
		}
		unfiled = append(unfiled, b)
	}

	for _, f := range folders {
		if err := writeFolder(bw, f, byFolder[f.ID]); err != nil {
			return err
		}
	}
	for _, b := range unfiled {
		if err := writeEntry(bw, "    ", b); err != nil {
			return err
		}
	}

	if _, err := bw.WriteString("</DL><p>\n"); err != nil {
		return err
	}
	return bw.Flush()
}

func writeFolder(w *bufio.Writer, f domain.Folder, bookmarks []domain.Bookmark) error {
	color := ""
	if f.Color != "" {
		color = fmt.Sprintf(` COLOR="%s"`, html.EscapeString(f.Color))
	}
	if _, err := fmt.Fprintf(w, "    <DT><H3 ADD_DATE=\"%d\" LAST_MODIFIED=\"%d\"%s>%s</H3>\n    <DL><p>\n",
		f.CreatedAt.Unix(), f.UpdatedAt.Unix(), color, html.EscapeString(f.Name)); err != nil {
		return err
	}

	for _, b := range bookmarks {
		if err := writeEntry(w, "        ", b); err != nil {
			return err
		}
	}

	_, err := w.WriteString("    </DL><p>\n")
	return err
}

func writeEntry(w *bufio.Writer, indent string, b domain.Bookmark) error {
	if _, err := fmt.Fprintf(w, "%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
		indent, html.EscapeString(b.URL), b.CreatedAt.Unix(), html.EscapeString(b.Title)); err != nil {
		return err
	}
	if b.Description == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s<DD>%s\n", indent, html.EscapeString(b.Description))
	return err
}
