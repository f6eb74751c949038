package main

import "strings"

// crawlerSignatures is the allow-list of known link-preview crawlers,
// matched case-insensitively as substrings of the User-Agent. Anything not
// matching is treated as a human and redirected into the app.
var crawlerSignatures = []string{
	"applebot",
	"bingbot",
	"bitlybot",
	"discordbot",
	"duckduckbot",
	"embedly",
	"facebookcatalog",
	"facebookexternalhit",
	"flipboard",
	"google-structured-data",
	"googlebot",
	"ia_archiver",
	"linkedinbot",
	"nuzzel",
	"outbrain",
	"pinterest",
	"quora link preview",
	"redditbot",
	"rogerbot",
	"skypeuripreview",
	"slackbot",
	"snap url preview",
	"telegrambot",
	"tumblr",
	"twitterbot",
	"vkshare",
	"w3c_validator",
	"whatsapp",
	"yahoo link preview",
	"yandexbot",
}

// isPreviewCrawler classifies a declared client identity. Cheap and
// side-effect-free; this runs on every request to a share path.
func isPreviewCrawler(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, sig := range crawlerSignatures {
		if strings.Contains(ua, sig) {
			return true
		}
	}
	return false
}
