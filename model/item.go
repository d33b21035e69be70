package model

import (
	"regexp"
	"strings"
	"time"
)

// Item is one tracked record materialised from a stage directory.
type Item struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	Stage    Stage     `json:"stage"`
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Body     string    `json:"body"`
	ModTime  time.Time `json:"modTime"`

	// Exactly one variant is set for known kinds.
	Email    *EmailDraft      `json:"email,omitempty"`
	Social   *SocialPost      `json:"social,omitempty"`
	WhatsApp *WhatsAppMessage `json:"whatsapp,omitempty"`
}

// Base returns the file name without the record extension.
func (i *Item) Base() string {
	return BaseName(i.Name)
}

// Created returns the creation date written by the producer, if any.
func (i *Item) Created() string {
	switch {
	case i.Email != nil:
		return i.Email.Created
	case i.Social != nil:
		return i.Social.Created
	case i.WhatsApp != nil:
		return i.WhatsApp.Received
	}
	return i.Metadata.Lookup("date", "created")
}

// EmailDraft is an outgoing email awaiting approval.
type EmailDraft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	From    string `json:"from,omitempty"`
	Created string `json:"created,omitempty"`
}

// SocialPost is a post awaiting approval for one or more platforms.
type SocialPost struct {
	Platforms []string `json:"platforms"`
	ImageURL  string   `json:"imageUrl,omitempty"`
	Created   string   `json:"created,omitempty"`
}

// WhatsAppMessage is an inbound message needing a reply.
type WhatsAppMessage struct {
	From     string `json:"from"`
	Keywords string `json:"keywords,omitempty"`
	Received string `json:"received,omitempty"`
}

// DefaultPlatforms is used when a social draft names no platform.
var DefaultPlatforms = []string{"facebook", "instagram"}

var platformSeparator = regexp.MustCompile(`\s*(?:,|\+|&|\band\b)\s*`)

// ParsePlatforms splits a "platform" header such as "Facebook + Instagram".
func ParsePlatforms(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return append([]string(nil), DefaultPlatforms...)
	}
	var result []string
	seen := map[string]bool{}
	for _, part := range platformSeparator.Split(strings.ToLower(value), -1) {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		result = append(result, part)
	}
	return result
}

// Decorate populates the typed variant from metadata. Unknown kinds keep only
// generic fields.
func (i *Item) Decorate() {
	meta := i.Metadata
	switch i.Kind {
	case KindEmail:
		subject := meta.Lookup("subject")
		if subject == "" {
			subject = i.Base()
		}
		i.Email = &EmailDraft{
			To:      meta.Lookup("to", "recipient"),
			Subject: subject,
			From:    meta.Lookup("from"),
			Created: meta.Lookup("date", "created"),
		}
	case KindSocial:
		i.Social = &SocialPost{
			Platforms: ParsePlatforms(meta.Get("platform")),
			ImageURL:  meta.Lookup("image", "imageUrl", "image_url"),
			Created:   meta.Lookup("date", "created"),
		}
	case KindWhatsApp:
		i.WhatsApp = &WhatsAppMessage{
			From:     meta.Lookup("from"),
			Keywords: meta.Lookup("keywords"),
			Received: meta.Lookup("date", "received", "created"),
		}
	}
}
