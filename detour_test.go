package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetourBaseURL(t *testing.T) {
	assert.Equal(t, defaultDetourBase, detourBaseURL(""))
	assert.Equal(t, defaultDetourBase, detourBaseURL("   "))
	assert.Equal(t, defaultDetourBase, detourBaseURL("https://classic-car-iq.godetour.link"))
	assert.Equal(t, defaultDetourBase, detourBaseURL("https://classic-car-iq.godetour.link/"))
	assert.Equal(t, defaultDetourBase, detourBaseURL(defaultDetourBase))
	assert.Equal(t,
		"https://example.test/3q71unrtJq",
		detourBaseURL("https://example.test///"))
}

func TestDeepLinkTarget(t *testing.T) {
	base := defaultDetourBase

	tests := []struct {
		path string
		want string
	}{
		{"/c/ABC123", base + "/challenges/ABC123"},
		{"/r/ABC123", base + "/challenges/ABC123"},
		{"/p/player-42", base + "/player/player-42"},
		{"/daily-iq", base + "/daily-iq"},
		{"/c/", ""},
		{"/p", ""},
		{"/healthz", ""},
		{"/", ""},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, deepLinkTarget(base, test.path), "path %s", test.path)
	}
}

func TestDeepLinkTargetEscapesParams(t *testing.T) {
	target := deepLinkTarget(defaultDetourBase, "/c/A B%C")
	assert.Equal(t, defaultDetourBase+"/challenges/A%20B%25C", target)
}
