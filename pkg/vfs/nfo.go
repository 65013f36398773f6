package vfs

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/debridav/debridav/pkg/identifier"
)

// nfo.go generates the movie.nfo/tvshow.nfo descriptor blobs (§4.F step 4,
// §6 NFO content format): UTF-8 XML with every interpolated value
// escaped by encoding/xml, lockdata forced true, and a tmdb uniqueid when
// one was resolved.

type nfoDoc struct {
	XMLName       xml.Name  `xml:""`
	Title         string    `xml:"title"`
	OriginalTitle string    `xml:"originaltitle"`
	Year          string    `xml:"year,omitempty"`
	Premiered     string    `xml:"premiered,omitempty"`
	Plot          string    `xml:"plot"`
	UniqueID      *uniqueID `xml:"uniqueid,omitempty"`
	LockData      bool      `xml:"lockdata"`
}

type uniqueID struct {
	Type    string `xml:"type,attr"`
	Default string `xml:"default,attr"`
	Value   string `xml:",chardata"`
}

func nfoContent(id identifier.Identification, isShow bool) []byte {
	root := "movie"
	if isShow {
		root = "tvshow"
	}

	doc := nfoDoc{
		XMLName:       xml.Name{Local: root},
		Title:         id.Title,
		OriginalTitle: id.Title,
		Year:          id.Year,
		LockData:      true,
	}
	if id.Year != "" {
		doc.Premiered = fmt.Sprintf("%s-01-01", id.Year)
	}
	if id.ExternalID != nil {
		doc.UniqueID = &uniqueID{Type: id.ExternalID.Source, Default: "true", Value: id.ExternalID.ID}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	_ = enc.Encode(doc)
	buf.WriteByte('\n')
	return buf.Bytes()
}
