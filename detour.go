// Deep-link ("detour") target derivation for human visitors.

package main

import (
	"net/url"
	"strings"
)

const (
	defaultDetourBase    = "https://classic-car-iq.godetour.link/3q71unrtJq"
	detourCampaignSuffix = "/3q71unrtJq"
)

// detourBaseURL normalizes the configured deep-link base: trailing slashes
// are trimmed and the campaign suffix is appended when missing. An empty
// configuration falls back to the fixed default landing base.
func detourBaseURL(configured string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(configured), "/")
	if trimmed == "" {
		return defaultDetourBase
	}
	if strings.HasSuffix(trimmed, detourCampaignSuffix) {
		return trimmed
	}
	return trimmed + detourCampaignSuffix
}

// deepLinkTarget maps a share path onto its in-app destination. Returns ""
// for paths outside the shareable prefixes.
func deepLinkTarget(base, path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)

	first := parts[0]
	second := ""
	if len(parts) > 1 {
		second = parts[1]
	}

	switch {
	case first == "daily-iq":
		return base + "/daily-iq"
	case (first == "c" || first == "r") && second != "":
		return base + "/challenges/" + url.PathEscape(second)
	case first == "p" && second != "":
		return base + "/player/" + url.PathEscape(second)
	}

	return ""
}
