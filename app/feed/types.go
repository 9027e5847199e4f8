package feed

import (
	"bytes"
	"encoding/json"
	"time"
)

// RawItem is one entry of the proxy's JSON payload. Every field is untrusted.
type RawItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	PubDate     string    `json:"pubDate,omitempty"`
	Author      string    `json:"author,omitempty"`
	Category    string    `json:"category,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	Content     string    `json:"content,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Enclosure   Enclosure `json:"enclosure"`
}

type Enclosure struct {
	Link      string `json:"link,omitempty"`
	Type      string `json:"type,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// UnmarshalJSON accepts the empty array the proxy emits for items without an enclosure.
func (e *Enclosure) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*e = Enclosure{}
		return nil
	}

	type plain Enclosure
	var decoded plain
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return err
	}
	*e = Enclosure(decoded)
	return nil
}

// Article is the canonical, sanitized representation of a feed item.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"publishedAt"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Category    string    `json:"category"`
	ReadTime    int       `json:"readTime"`
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Category string         `yaml:"category"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled bool `yaml:"enabled"`
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
