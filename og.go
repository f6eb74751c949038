// Preview image route handlers.
//
// Every handler follows the same shape: bounded data lookups feed the
// renderer, the rasterizer produces PNG bytes, and the whole pipeline is
// wrapped in withFallback so that no failure anywhere (missing config,
// missing record, timeout, malformed output, panic) ever produces a
// non-200, non-image response. Preview crawlers cache failures hard, so
// the image path must never surface one.

package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
)

const ogCacheControl = "public, max-age=0, s-maxage=86400, stale-while-revalidate=604800"

var errStoreUnconfigured = fmt.Errorf("backing store not configured")

type sceneBuilder func(ctx context.Context, p httprouter.Params) (Scene, error)

// withFallback runs the primary builder and converts any error or panic
// into the fallback scene. This is the single place the never-fail policy
// lives; every image route goes through it.
func withFallback(ctx context.Context, p httprouter.Params, primary sceneBuilder, fallback func() Scene) (scene Scene) {
	defer func() {
		if recover() != nil {
			scene = fallback()
		}
	}()

	scene, err := primary(ctx, p)
	if err != nil {
		return fallback()
	}

	return scene
}

// serveOgImage renders, rasterizes, signature-checks, and serves one
// preview image with edge-cache-friendly headers.
func serveOgImage(cfg *Config, errs chan<- error, primary sceneBuilder, fallback func() Scene) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		scene := withFallback(r.Context(), p, primary, fallback)

		data, err := rasterize(scene)
		if err != nil || !hasPNGSignature(data) {
			if err != nil {
				logf(cfg, "OG: Degrading %s: %v", r.URL.Path, err)
			}
			data, err = rasterize(fallback())
			if err != nil {
				// Nothing left to degrade to; log and serve what we have.
				errs <- err
			}
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("Content-Disposition", `inline; filename="og.png"`)
		w.Header().Set("Cache-Control", ogCacheControl)
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		written, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "OG: Image %s (%s) to %s in %s",
			r.URL.Path,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// ---- Presentation formatting (one-way, raw values never reach scenes) ----

func formatScore(score, total int) string {
	if total < 1 {
		return ""
	}
	return fmt.Sprintf("%d/%d", score, total)
}

func formatDuration(ms int) string {
	if ms <= 0 {
		return ""
	}
	secs := (ms + 500) / 1000
	if secs < 1 {
		secs = 1
	}
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

func winnerTag(c *Challenge) string {
	switch {
	case c.WinnerID == "":
		return ""
	case c.WinnerID == c.ChallengerID:
		return "challenger"
	case c.WinnerID == c.OpponentID:
		return "opponent"
	default:
		return ""
	}
}

// challengeInput performs the shared challenge lookup pipeline: primary
// record, batched profiles, then concurrent avatar inlining.
func challengeInput(ctx context.Context, cfg *Config, store *Store, code string) (OgInput, *Challenge, error) {
	if store == nil {
		return OgInput{}, nil, errStoreUnconfigured
	}

	// Both lookups share one combined budget; avatar fetches below keep
	// their own independent timeouts.
	lookupCtx, cancel := context.WithTimeout(ctx, cfg.storeTimeout)
	defer cancel()

	challenge, err := store.challengeByInviteCode(lookupCtx, code)
	if err != nil {
		return OgInput{}, nil, err
	}

	var in OgInput

	profiles, err := store.profilesByIDs(lookupCtx, []string{challenge.ChallengerID, challenge.OpponentID})
	if err != nil {
		// Profile lookup failures degrade the names, not the response.
		logf(cfg, "OG: Degrading profiles for %s: %v", code, err)
		profiles = nil
	}

	challenger := profiles[challenge.ChallengerID]
	opponent := profiles[challenge.OpponentID]

	in.ChallengerName = challenger.Name()
	in.OpponentName = opponent.Name()
	in.ChallengerAvatarURL = challenger.AvatarURL
	in.OpponentAvatarURL = opponent.AvatarURL

	avatars := fetchAvatars(ctx, cfg, challenger.AvatarURL, opponent.AvatarURL)
	in.ChallengerAvatar = avatars[0]
	in.OpponentAvatar = avatars[1]

	return in, challenge, nil
}

func inviteScene(cfg *Config, store *Store) sceneBuilder {
	return func(ctx context.Context, p httprouter.Params) (Scene, error) {
		in, _, err := challengeInput(ctx, cfg, store, p.ByName("inviteCode"))
		if err != nil {
			return Scene{}, err
		}
		return render(VariantInvite, in), nil
	}
}

func resultScene(cfg *Config, store *Store) sceneBuilder {
	return func(ctx context.Context, p httprouter.Params) (Scene, error) {
		in, challenge, err := challengeInput(ctx, cfg, store, p.ByName("inviteCode"))
		if err != nil {
			return Scene{}, err
		}

		in.ChallengerScore = formatScore(challenge.ChallengerScore, challenge.QuestionCount)
		in.OpponentScore = formatScore(challenge.OpponentScore, challenge.QuestionCount)
		in.ChallengerTime = formatDuration(challenge.ChallengerTimeMs)
		in.OpponentTime = formatDuration(challenge.OpponentTimeMs)
		in.Winner = winnerTag(challenge)

		return render(VariantResult, in), nil
	}
}

func profileScene(cfg *Config, store *Store) sceneBuilder {
	return func(ctx context.Context, p httprouter.Params) (Scene, error) {
		if store == nil {
			return Scene{}, errStoreUnconfigured
		}

		profile, err := store.profileByID(ctx, p.ByName("profileId"))
		if err != nil {
			return Scene{}, err
		}

		in := OgInput{
			Headline:  profile.Name(),
			Username:  profile.Name(),
			AvatarURL: profile.AvatarURL,
		}
		if profile.DailyStreak > 0 {
			in.StatPrimaryLabel = "Daily Streak"
			in.StatPrimaryValue = strconv.Itoa(profile.DailyStreak)
		}
		if profile.BestIQ > 0 {
			in.StatSecondaryLabel = "Best IQ"
			in.StatSecondaryValue = strconv.Itoa(profile.BestIQ)
		}

		avatars := fetchAvatars(ctx, cfg, profile.AvatarURL)
		in.Avatar = avatars[0]

		return render(VariantProfile, in), nil
	}
}

// dailyScene needs no lookups; the daily card is pure copy.
func dailyScene() sceneBuilder {
	return func(context.Context, httprouter.Params) (Scene, error) {
		return render(VariantDaily, OgInput{
			Question: "Today’s Daily IQ is ready",
			CTA:      "One shot, every day. Choose wisely.",
		}), nil
	}
}

func fallbackScene(variant Variant) func() Scene {
	return func() Scene {
		return render(variant, OgInput{})
	}
}

func registerOgRoutes(cfg *Config, mux *httprouter.Router, errs chan<- error) {
	store := newStore(cfg)

	mux.GET(cfg.prefix+"/api/og/c/:inviteCode",
		serveOgImage(cfg, errs, inviteScene(cfg, store), fallbackScene(VariantInvite)))

	mux.GET(cfg.prefix+"/api/og/r/:inviteCode",
		serveOgImage(cfg, errs, resultScene(cfg, store), fallbackScene(VariantResult)))

	mux.GET(cfg.prefix+"/api/og/p/:profileId",
		serveOgImage(cfg, errs, profileScene(cfg, store), fallbackScene(VariantProfile)))

	mux.GET(cfg.prefix+"/api/og/daily-iq",
		serveOgImage(cfg, errs, dailyScene(), fallbackScene(VariantDaily)))
}
