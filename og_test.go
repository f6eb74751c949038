package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	googlebotUA = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	iphoneUA    = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)

func testConfig() *Config {
	return &Config{
		bind:           "127.0.0.1",
		port:           8080,
		siteURL:        "https://links.classiccariq.com",
		avatarMaxBytes: 1 << 20,
		avatarTimeout:  300 * time.Millisecond,
		storeTimeout:   time.Second,
	}
}

func testServer(t *testing.T, cfg *Config) *httptest.Server {
	t.Helper()

	errs := make(chan error, 64)
	srv := httptest.NewServer(newMux(cfg, errs))
	t.Cleanup(srv.Close)

	return srv
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, client *http.Client, url, userAgent string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func TestSharePageForCrawler(t *testing.T) {
	srv := testServer(t, testConfig())

	resp, body := get(t, noRedirectClient(), srv.URL+"/c/ABC123", googlebotUA)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	page := string(body)
	assert.Contains(t, page, `property="og:image"`)
	assert.Contains(t, page, "/api/og/c/ABC123")
	assert.Contains(t, page, `property="og:title"`)
	assert.Contains(t, page, "Challenge Invite")
	assert.Contains(t, page, `name="twitter:card" content="summary_large_image"`)
	// deploy-scoped cache busting on the image URL
	assert.Contains(t, page, "/api/og/c/ABC123?v=")
}

func TestSharePageRedirectsHumans(t *testing.T) {
	srv := testServer(t, testConfig())

	resp, _ := get(t, noRedirectClient(), srv.URL+"/c/ABC123", iphoneUA)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, defaultDetourBase+"/challenges/ABC123", resp.Header.Get("Location"))
}

func TestSharePageRedirectTargets(t *testing.T) {
	srv := testServer(t, testConfig())
	client := noRedirectClient()

	tests := []struct {
		path string
		want string
	}{
		{"/r/XYZ789", defaultDetourBase + "/challenges/XYZ789"},
		{"/p/player-42", defaultDetourBase + "/player/player-42"},
		{"/daily-iq", defaultDetourBase + "/daily-iq"},
	}

	for _, test := range tests {
		resp, _ := get(t, client, srv.URL+test.path, iphoneUA)
		assert.Equal(t, http.StatusFound, resp.StatusCode, test.path)
		assert.Equal(t, test.want, resp.Header.Get("Location"), test.path)
	}
}

func TestSharePageHeadAlwaysRedirects(t *testing.T) {
	srv := testServer(t, testConfig())

	req, err := http.NewRequest(http.MethodHead, srv.URL+"/c/ABC123", nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", googlebotUA)

	resp, err := noRedirectClient().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, defaultDetourBase+"/challenges/ABC123", resp.Header.Get("Location"))
}

func TestSharePageHonorsConfiguredDetourBase(t *testing.T) {
	cfg := testConfig()
	cfg.detourBase = "https://example.test/"
	srv := testServer(t, cfg)

	resp, _ := get(t, noRedirectClient(), srv.URL+"/daily-iq", iphoneUA)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.test/3q71unrtJq/daily-iq", resp.Header.Get("Location"))
}

func assertPNGResponse(t *testing.T, resp *http.Response, body []byte) {
	t.Helper()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, ogCacheControl, resp.Header.Get("Cache-Control"))
	require.True(t, hasPNGSignature(body))

	cfg, err := png.DecodeConfig(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, canvasWidth, cfg.Width)
	assert.Equal(t, canvasHeight, cfg.Height)
}

func TestOgImageWithoutStoreServesFallback(t *testing.T) {
	srv := testServer(t, testConfig())

	for _, path := range []string{
		"/api/og/c/ABC123",
		"/api/og/r/UNKNOWN_CODE",
		"/api/og/p/nobody",
		"/api/og/daily-iq",
	} {
		resp, body := get(t, srv.Client(), srv.URL+path, googlebotUA)
		assertPNGResponse(t, resp, body)
	}
}

// storeStub serves the PostgREST dialect the store client speaks.
func storeStub(t *testing.T, challenge *Challenge, profiles []StoreProfile) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasPrefix(r.URL.Path, "/rest/v1/challenges"):
			rows := []Challenge{}
			if challenge != nil && r.URL.Query().Get("invite_code") == "eq."+challenge.InviteCode {
				rows = append(rows, *challenge)
			}
			json.NewEncoder(w).Encode(rows)
		case strings.HasPrefix(r.URL.Path, "/rest/v1/profiles"):
			json.NewEncoder(w).Encode(profiles)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 0x7f
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestOgImageWithStoreData(t *testing.T) {
	avatarSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes(t))
	}))
	t.Cleanup(avatarSrv.Close)

	challenge := &Challenge{
		InviteCode:       "ABC123",
		ChallengerID:     "u1",
		OpponentID:       "u2",
		WinnerID:         "u1",
		QuestionCount:    10,
		ChallengerScore:  9,
		OpponentScore:    7,
		ChallengerTimeMs: 26000,
		OpponentTimeMs:   64000,
	}
	profiles := []StoreProfile{
		{ID: "u1", Username: "mike", DisplayName: "Mike Jones", AvatarURL: avatarSrv.URL + "/a.png"},
		{ID: "u2", Username: "evan", AvatarURL: avatarSrv.URL + "/b.png"},
	}

	store := storeStub(t, challenge, profiles)

	cfg := testConfig()
	cfg.storeURL = store.URL
	cfg.storeKey = "test-key"
	srv := testServer(t, cfg)

	resp, body := get(t, srv.Client(), srv.URL+"/api/og/r/ABC123", googlebotUA)
	assertPNGResponse(t, resp, body)

	resp, body = get(t, srv.Client(), srv.URL+"/api/og/c/ABC123", googlebotUA)
	assertPNGResponse(t, resp, body)
}

func TestOgImageDegradesOnSlowAvatar(t *testing.T) {
	slowAvatar := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes(t))
	}))
	t.Cleanup(slowAvatar.Close)

	challenge := &Challenge{
		InviteCode:   "SLOW01",
		ChallengerID: "u1",
		OpponentID:   "u2",
	}
	profiles := []StoreProfile{
		{ID: "u1", DisplayName: "Mike Jones", AvatarURL: slowAvatar.URL + "/a.png"},
		{ID: "u2", DisplayName: "Evan"},
	}

	store := storeStub(t, challenge, profiles)

	cfg := testConfig()
	cfg.storeURL = store.URL
	cfg.storeKey = "test-key"
	cfg.avatarTimeout = 100 * time.Millisecond
	srv := testServer(t, cfg)

	start := time.Now()
	resp, body := get(t, srv.Client(), srv.URL+"/api/og/c/SLOW01", googlebotUA)
	elapsed := time.Since(start)

	assertPNGResponse(t, resp, body)
	assert.Less(t, elapsed, 1500*time.Millisecond,
		"slow avatar must degrade to a monogram, not stall the response")
}

func TestOgImageUnknownRecordServesFallback(t *testing.T) {
	store := storeStub(t, nil, nil)

	cfg := testConfig()
	cfg.storeURL = store.URL
	cfg.storeKey = "test-key"
	srv := testServer(t, cfg)

	resp, body := get(t, srv.Client(), srv.URL+"/api/og/r/UNKNOWN_CODE", googlebotUA)
	assertPNGResponse(t, resp, body)
}

func TestWithFallbackRecoversPanics(t *testing.T) {
	fallback := func() Scene { return render(VariantGeneric, OgInput{}) }

	scene := withFallback(context.Background(), nil,
		func(context.Context, httprouter.Params) (Scene, error) {
			panic("boom")
		}, fallback)

	assert.Equal(t, fallback(), scene)
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "9/10", formatScore(9, 10))
	assert.Equal(t, "0/10", formatScore(0, 10))
	assert.Equal(t, "", formatScore(9, 0))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "", formatDuration(0))
	assert.Equal(t, "", formatDuration(-5))
	assert.Equal(t, "1s", formatDuration(400))
	assert.Equal(t, "26s", formatDuration(26000))
	assert.Equal(t, "1m 4s", formatDuration(64000))
	assert.Equal(t, "2m 0s", formatDuration(120000))
}

func TestWinnerTag(t *testing.T) {
	c := &Challenge{ChallengerID: "u1", OpponentID: "u2"}
	assert.Equal(t, "", winnerTag(c))

	c.WinnerID = "u1"
	assert.Equal(t, "challenger", winnerTag(c))

	c.WinnerID = "u2"
	assert.Equal(t, "opponent", winnerTag(c))

	c.WinnerID = "u3"
	assert.Equal(t, "", winnerTag(c))
}

func TestHealthAndVersionEndpoints(t *testing.T) {
	srv := testServer(t, testConfig())

	resp, body := get(t, srv.Client(), srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ok\n", string(body))

	resp, body = get(t, srv.Client(), srv.URL+"/version", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), releaseVersion)
}

func TestQRCodeEndpoint(t *testing.T) {
	srv := testServer(t, testConfig())

	resp, body := get(t, srv.Client(), srv.URL+"/qr/c/ABC123", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, hasPNGSignature(body))
}
