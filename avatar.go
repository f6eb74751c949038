// Remote avatar fetching.
//
// Each fetch runs under its own short timeout and byte cap, and a failed or
// oversized or non-image response simply omits that avatar so the preview
// degrades to a monogram. Fetches for the two sides of a challenge run
// concurrently; neither blocks the other. Nothing here is ever retried.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"sync"

	"github.com/h2non/filetype"
)

var errAvatarTooLarge = errors.New("avatar exceeds byte cap")

var avatarClient = &http.Client{}

// fetchAvatar downloads and decodes one avatar image. The caller's context
// carries no deadline; the per-fetch timeout comes from the config.
func fetchAvatar(ctx context.Context, cfg *Config, rawURL string) (image.Image, error) {
	if rawURL == "" {
		return nil, errors.New("no avatar url")
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.avatarTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := avatarClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("avatar fetch returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, cfg.avatarMaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > cfg.avatarMaxBytes {
		return nil, errAvatarTooLarge
	}
	if !filetype.IsImage(body) {
		return nil, fmt.Errorf("avatar is not an image")
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	return img, nil
}

// fetchAvatars resolves any number of avatar URLs concurrently under
// independent timeouts. The result slice is positional; a nil entry means
// that avatar was omitted.
func fetchAvatars(ctx context.Context, cfg *Config, urls ...string) []image.Image {
	images := make([]image.Image, len(urls))

	var wg sync.WaitGroup
	for i, rawURL := range urls {
		if rawURL == "" {
			continue
		}
		wg.Add(1)
		go func(i int, rawURL string) {
			defer wg.Done()
			img, err := fetchAvatar(ctx, cfg, rawURL)
			if err != nil {
				logf(cfg, "AVATAR: Omitting %s: %v", rawURL, err)
				return
			}
			images[i] = img
		}(i, rawURL)
	}
	wg.Wait()

	return images
}
