// Share page shells.
//
// Each shareable path serves one of two responses: preview crawlers get a
// 200 HTML page carrying Open Graph and Twitter card metadata pointing at
// the composed preview image, while humans are redirected straight into the
// app deep link. HEAD requests redirect unconditionally. The served page
// still carries a meta refresh so a misclassified human bounces anyway.

package main

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

type shareMeta struct {
	title       string
	description string
	ogType      string
	path        string
	imagePath   string
}

func sharePage(cfg *Config, meta shareMeta, target string) string {
	pageURL := cfg.siteURL + meta.path
	imageURL := cfg.siteURL + meta.imagePath + "?v=" + cfg.cacheVersion()

	title := html.EscapeString(meta.title)
	description := html.EscapeString(meta.description)

	var b strings.Builder

	b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	fmt.Fprintf(&b, `<title>%s</title>`, title)
	fmt.Fprintf(&b, `<meta name="description" content="%s">`, description)
	fmt.Fprintf(&b, `<meta property="og:title" content="%s">`, title)
	fmt.Fprintf(&b, `<meta property="og:description" content="%s">`, description)
	fmt.Fprintf(&b, `<meta property="og:url" content="%s">`, html.EscapeString(pageURL))
	fmt.Fprintf(&b, `<meta property="og:type" content="%s">`, meta.ogType)
	fmt.Fprintf(&b, `<meta property="og:image" content="%s">`, html.EscapeString(imageURL))
	b.WriteString(`<meta property="og:image:width" content="1200">`)
	b.WriteString(`<meta property="og:image:height" content="630">`)
	fmt.Fprintf(&b, `<meta property="og:image:alt" content="%s">`, title)
	b.WriteString(`<meta name="twitter:card" content="summary_large_image">`)
	fmt.Fprintf(&b, `<meta name="twitter:title" content="%s">`, title)
	fmt.Fprintf(&b, `<meta name="twitter:description" content="%s">`, description)
	fmt.Fprintf(&b, `<meta name="twitter:image" content="%s">`, html.EscapeString(imageURL))
	if target != "" {
		fmt.Fprintf(&b, `<meta http-equiv="refresh" content="0;url=%s">`, html.EscapeString(target))
	}
	b.WriteString(`</head><body style="font-family:system-ui;padding:24px">`)
	fmt.Fprintf(&b, `<h1>Classic Car IQ</h1><p>%s</p>`, description)
	b.WriteString(`<p>If you aren’t redirected automatically, open the Classic Car IQ app.</p>`)
	b.WriteString(`</body></html>`)

	return b.String()
}

// serveSharePage is the bot/human split for one share path. Classification
// is pure string matching; no lookups happen here.
func serveSharePage(cfg *Config, errs chan<- error, build func(p httprouter.Params) shareMeta) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		meta := build(p)
		target := deepLinkTarget(detourBaseURL(cfg.detourBase), meta.path)

		if r.Method == http.MethodHead || !isPreviewCrawler(r.Header.Get("User-Agent")) {
			logf(cfg, "SHARE: Redirecting %s to app for %s", meta.path, realIP(r))
			http.Redirect(w, r, target, http.StatusFound)

			return
		}

		page := sharePage(cfg, meta, target)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(page)))
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		written, err := w.Write([]byte(page))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SHARE: Preview page %s (%s) to %s in %s",
			meta.path,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func inviteMeta(p httprouter.Params) shareMeta {
	code := p.ByName("inviteCode")
	return shareMeta{
		title:       "Classic Car IQ — Challenge Invite",
		description: "Tap to open this Classic Car IQ challenge in the app.",
		ogType:      "website",
		path:        "/c/" + code,
		imagePath:   "/api/og/c/" + code,
	}
}

func resultMeta(p httprouter.Params) shareMeta {
	code := p.ByName("inviteCode")
	return shareMeta{
		title:       "Classic Car IQ — Challenge Result",
		description: "See how this Classic Car IQ challenge turned out.",
		ogType:      "website",
		path:        "/r/" + code,
		imagePath:   "/api/og/r/" + code,
	}
}

func profileMeta(p httprouter.Params) shareMeta {
	id := p.ByName("profileId")
	return shareMeta{
		title:       "Classic Car IQ — Player Profile",
		description: "View this Classic Car IQ player profile.",
		ogType:      "profile",
		path:        "/p/" + id,
		imagePath:   "/api/og/p/" + id,
	}
}

func dailyMeta(httprouter.Params) shareMeta {
	return shareMeta{
		title:       "Classic Car IQ — Daily IQ",
		description: "Take today’s Classic Car IQ Daily IQ challenge.",
		ogType:      "website",
		path:        "/daily-iq",
		imagePath:   "/api/og/daily-iq",
	}
}

// registerSharePages wires the four shareable path families. HEAD is
// registered explicitly so crawler HEAD probes redirect immediately.
func registerSharePages(cfg *Config, mux *httprouter.Router, errs chan<- error) {
	pages := []struct {
		path  string
		build func(p httprouter.Params) shareMeta
	}{
		{"/c/:inviteCode", inviteMeta},
		{"/r/:inviteCode", resultMeta},
		{"/p/:profileId", profileMeta},
		{"/daily-iq", dailyMeta},
	}

	for _, page := range pages {
		handle := serveSharePage(cfg, errs, page.build)
		mux.GET(cfg.prefix+page.path, handle)
		mux.HEAD(cfg.prefix+page.path, handle)
	}
}

// serveDebug reports the computed configuration. This is the one route
// allowed to answer with something other than a page or an image.
func serveDebug(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		storeState := "configured"
		if cfg.storeURL == "" || cfg.storeKey == "" {
			storeState = "not configured (universal fallback mode)"
		}

		body := fmt.Sprintf("sharelinks v%s\nsite url: %s\ndetour base: %s\nstore: %s\ncache version: %s\n",
			releaseVersion,
			cfg.siteURL,
			detourBaseURL(cfg.detourBase),
			storeState,
			cfg.cacheVersion(),
		)

		_, err := w.Write([]byte(body))
		if err != nil {
			errs <- err

			return
		}
	}
}
