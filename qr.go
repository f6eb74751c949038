// QR codes for share links, so a preview card on a big screen can be
// scanned straight into the app.

package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320 // mobile-friendly size

func serveShareQR(cfg *Config, errs chan<- error, sharePath func(p httprouter.Params) string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		url := cfg.siteURL + sharePath(p)

		data, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(cfg, w)

		written, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "QR: Code for %s (%s) to %s in %s",
			url,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func registerQRRoutes(cfg *Config, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+"/qr/c/:inviteCode", serveShareQR(cfg, errs, func(p httprouter.Params) string {
		return "/c/" + p.ByName("inviteCode")
	}))

	mux.GET(cfg.prefix+"/qr/r/:inviteCode", serveShareQR(cfg, errs, func(p httprouter.Params) string {
		return "/r/" + p.ByName("inviteCode")
	}))

	mux.GET(cfg.prefix+"/qr/p/:profileId", serveShareQR(cfg, errs, func(p httprouter.Params) string {
		return "/p/" + p.ByName("profileId")
	}))

	mux.GET(cfg.prefix+"/qr/daily-iq", serveShareQR(cfg, errs, func(httprouter.Params) string {
		return "/daily-iq"
	}))
}
