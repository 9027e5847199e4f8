package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name  string
		title string
		link  string
	}{
		{name: "plain", title: "Test Article", link: "https://example.com/test"},
		{name: "empty", title: "", link: ""},
		{name: "unicode", title: "Ünïcödé 日本語 ニュース", link: "https://example.com/ユニコード"},
		{name: "emoji", title: "Launch 🚀🔥", link: "https://example.com/🚀"},
		{name: "long", title: string(make([]byte, 4096)), link: "https://example.com/long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := GenerateID(tt.title, tt.link)
			assert.Regexp(t, `^[a-z0-9]{8,16}$`, id)
			assert.Equal(t, id, GenerateID(tt.title, tt.link))
		})
	}
}

func TestGenerateIDStableValues(t *testing.T) {
	tests := []struct {
		title string
		link  string
		want  string
	}{
		{title: "Test Article", link: "https://example.com/test", want: "00iyuxk5"},
		{title: "Ünïcödé 日本語 ニュース", link: "https://example.com/ユニコード", want: "00yqroa9"},
		{title: "Launch 🚀🔥", link: "https://example.com/🚀", want: "005s9yfw"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateID(tt.title, tt.link))
		})
	}
}

func TestGenerateIDDistinguishesInputs(t *testing.T) {
	a := GenerateID("Test Article", "https://example.com/a")
	b := GenerateID("Test Article", "https://example.com/b")
	c := GenerateID("Other Article", "https://example.com/a")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerateIDPadsShortHashes(t *testing.T) {
	// "a" hashes to 97, which is "2p" in base 36.
	assert.Equal(t, "0000002p", GenerateID("a", ""))
}
