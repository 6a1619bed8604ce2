/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package xmltv renders channel schedules as an XMLTV guide.
package xmltv

import (
	"bytes"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/friendsincode/slotguide/internal/scheduling"
)

// GeneratorName is written to the generator-info-name attribute.
const GeneratorName = "slotguide"

// TimeLayout is the XMLTV timestamp layout; all times are written in UTC.
const TimeLayout = "20060102150405 -0700"

// Document is the <tv> root element.
type Document struct {
	XMLName           xml.Name    `xml:"tv"`
	GeneratorInfoName string      `xml:"generator-info-name,attr,omitempty"`
	Channels          []Channel   `xml:"channel,omitempty"`
	Programmes        []Programme `xml:"programme,omitempty"`
}

type Channel struct {
	ID          string `xml:"id,attr"`
	DisplayName Text   `xml:"display-name"`
	Category    *Text  `xml:"category,omitempty"`
	Icon        *Icon  `xml:"icon,omitempty"`
}

type Icon struct {
	Src string `xml:"src,attr"`
}

type Programme struct {
	Start   string `xml:"start,attr"`
	Stop    string `xml:"stop,attr"`
	Channel string `xml:"channel,attr"`
	Title   Text   `xml:"title"`
	Desc    *Text  `xml:"desc,omitempty"`
}

// Text is an element with a lang attribute.
type Text struct {
	Lang  string `xml:"lang,attr"`
	Value string `xml:",chardata"`
}

// ChannelInfo describes a guide channel.
type ChannelInfo struct {
	ID          string
	DisplayName string
	Category    string
	Icon        string
}

// Build assembles a guide. Channels keep their input order, repeated ids are
// written once, and each channel's programmes are sorted by start.
func Build(channels []ChannelInfo, schedules map[string][]scheduling.Block) *Document {
	doc := &Document{GeneratorInfoName: GeneratorName}
	seen := make(map[string]struct{}, len(channels))

	for _, ch := range channels {
		if _, dup := seen[ch.ID]; dup {
			continue
		}
		seen[ch.ID] = struct{}{}

		c := Channel{ID: ch.ID, DisplayName: en(ch.DisplayName)}
		if ch.Category != "" {
			cat := en(ch.Category)
			c.Category = &cat
		}
		if ch.Icon != "" {
			c.Icon = &Icon{Src: ch.Icon}
		}
		doc.Channels = append(doc.Channels, c)
	}

	for _, c := range doc.Channels {
		blocks := append([]scheduling.Block(nil), schedules[c.ID]...)
		sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Start.Before(blocks[j].Start) })
		for _, b := range blocks {
			p := Programme{
				Start:   FormatTime(b.Start),
				Stop:    FormatTime(b.End),
				Channel: c.ID,
				Title:   en(b.Title),
			}
			if b.Description != "" {
				desc := en(b.Description)
				p.Desc = &desc
			}
			doc.Programmes = append(doc.Programmes, p)
		}
	}
	return doc
}

// FormatTime renders t in UTC as an XMLTV timestamp.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses an XMLTV timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// Encode writes the XML declaration and an indented document.
func Encode(w io.Writer, doc *Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode xmltv: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// EncodeGzip writes the gzip-compressed document.
func EncodeGzip(w io.Writer, doc *Document) error {
	zw := gzip.NewWriter(w)
	if err := Encode(zw, doc); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// Render returns both the plain and gzip encodings.
func Render(doc *Document) (plain, gz []byte, err error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, nil, err
	}
	plain = buf.Bytes()

	var zbuf bytes.Buffer
	zw := gzip.NewWriter(&zbuf)
	if _, err := zw.Write(plain); err != nil {
		return nil, nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, nil, err
	}
	return plain, zbuf.Bytes(), nil
}

// Decode parses a guide, e.g. one served back from cache.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode xmltv: %w", err)
	}
	return &doc, nil
}

func en(s string) Text {
	return Text{Lang: "en", Value: s}
}
