package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUpstreamBaseURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare domain", "https://psychonautwiki.org", "https://psychonautwiki.org/w/api.php"},
		{"bare domain with trailing slash", "https://psychonautwiki.org/", "https://psychonautwiki.org/w/api.php"},
		{"already the full endpoint", "https://psychonautwiki.org/w/api.php", "https://psychonautwiki.org/w/api.php"},
		{"fake upstream for tests", "http://127.0.0.1:9999", "http://127.0.0.1:9999/w/api.php"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, normalizeUpstreamBaseURL(c.in))
		})
	}
}

func TestNormalizeCDNURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "https://spoon-public.storage.googleapis.com", "https://spoon-public.storage.googleapis.com/"},
		{"already has trailing slash", "https://spoon-public.storage.googleapis.com/", "https://spoon-public.storage.googleapis.com/"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, normalizeCDNURL(c.in))
		})
	}
}
