package deeds

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Metadata is the structured deed record embedded at the head of a post's
// content inside an HTML comment marker. It is parsed on read and never
// stored as a separate row.
type Metadata struct {
	DeedType        Type   `json:"deedType"`
	PrimaryOption   string `json:"primaryOption,omitempty"`
	SecondaryOption string `json:"secondaryOption,omitempty"`
	AdditionalNotes string `json:"additionalNotes,omitempty"`
}

// markerPattern matches the embedded metadata marker. The capture is
// non-greedy and does not cross lines, so only the first marker on the first
// structural line is picked up.
var markerPattern = regexp.MustCompile(`<!-- DEED_METADATA:(.*?) -->`)

// Encode prefixes displayText with the metadata marker.
func Encode(m Metadata, displayText string) string {
	b, _ := json.Marshal(m)
	return fmt.Sprintf("<!-- DEED_METADATA:%s -->\n%s", b, displayText)
}

// Decode extracts the metadata record from content. It returns nil when no
// marker is present or the embedded JSON does not parse; a malformed marker
// is treated the same as no deed info and never surfaces as an error.
func Decode(content string) *Metadata {
	if content == "" {
		return nil
	}
	match := markerPattern.FindStringSubmatch(content)
	if match == nil || match[1] == "" {
		return nil
	}
	var m Metadata
	if err := json.Unmarshal([]byte(match[1]), &m); err != nil {
		return nil
	}
	return &m
}

// CleanContent strips the first metadata marker occurrence, if any, and
// trims surrounding whitespace. An unparseable marker is still stripped.
func CleanContent(content string) string {
	if content == "" {
		return ""
	}
	if loc := markerPattern.FindStringIndex(content); loc != nil {
		content = content[:loc[0]] + content[loc[1]:]
	}
	return strings.TrimSpace(content)
}
