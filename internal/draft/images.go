// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package draft

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.geekbrox.name/autoblog/internal/api/tmdb"
	"go.geekbrox.name/autoblog/internal/atomicio"
	"go.geekbrox.name/autoblog/internal/logger"
	"go.geekbrox.name/autoblog/internal/request"
)

// ImageRef is the prefix of image paths in posts, relative to the posts
// directory.
const ImageRef = "../images/"

var imageClient = &http.Client{Timeout: 30 * time.Second}

// Images downloads post images into Dir.
type Images struct {
	Dir        string
	HTTPClient *http.Client
	// BaseURL is prepended to TMDB image paths. Defaults to tmdb.ImageBase.
	BaseURL string
	Logf    logger.Logf
}

// ImageSet holds the image references of a post, in the order they appear.
// Empty fields mean there is no image for that slot.
type ImageSet struct {
	Cover  string
	Poster string
	Still1 string
	Still2 string
	Still3 string
}

// Count returns the number of distinct non-empty references.
func (s ImageSet) Count() int {
	seen := make(map[string]bool)
	for _, ref := range []string{s.Cover, s.Poster, s.Still1, s.Still2, s.Still3} {
		if ref != "" {
			seen[ref] = true
		}
	}
	return len(seen)
}

// Download fetches up to five images for a post: the AniList cover, a TMDB
// poster and three stills. Slots without a source reuse another image.
func (im *Images) Download(ctx context.Context, slug, coverURL string, show *tmdb.Show) ImageSet {
	var (
		set       ImageSet
		posters   []string
		backdrops []string
	)
	if show != nil {
		posters, backdrops = show.PosterPaths, show.BackdropPaths
	}
	base := im.BaseURL
	if base == "" {
		base = tmdb.ImageBase
	}

	if coverURL != "" {
		set.Cover = im.fetch(ctx, coverURL, slug+"_cover"+imageExt(coverURL))
	}

	switch {
	case len(posters) > 0:
		set.Poster = im.fetch(ctx, base+posters[0], slug+"_poster.jpg")
	case coverURL != "":
		set.Poster = set.Cover
	}

	if len(backdrops) >= 1 {
		set.Still1 = im.fetch(ctx, base+backdrops[0], slug+"_still1.jpg")
	}

	switch {
	case len(backdrops) >= 2:
		set.Still2 = im.fetch(ctx, base+backdrops[1], slug+"_still2.jpg")
	case len(backdrops) == 1:
		set.Still2 = set.Still1
	}

	switch {
	case len(backdrops) >= 3:
		set.Still3 = im.fetch(ctx, base+backdrops[2], slug+"_still3.jpg")
	case len(posters) >= 2:
		set.Still3 = im.fetch(ctx, base+posters[1], slug+"_poster2.jpg")
	case set.Poster != "":
		set.Still3 = set.Poster
	default:
		set.Still3 = set.Cover
	}

	return set
}

// fetch downloads u into the image directory and returns its reference, or
// an empty string if the download failed.
func (im *Images) fetch(ctx context.Context, u, name string) string {
	httpc := im.HTTPClient
	if httpc == nil {
		httpc = imageClient
	}
	b, err := request.Bytes(ctx, request.Params{URL: u, HTTPClient: httpc})
	if err == nil {
		if err = os.MkdirAll(im.Dir, 0o755); err == nil {
			err = atomicio.WriteFile(filepath.Join(im.Dir, name), b, 0o644)
		}
	}
	if err != nil {
		if im.Logf != nil {
			im.Logf("⚠️  이미지 다운로드 실패 (%s): %v", u, err)
		}
		return ""
	}
	return ImageRef + name
}

func imageExt(u string) string {
	p := u
	if parsed, err := url.Parse(u); err == nil {
		p = parsed.Path
	}
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return ext
	}
	return ".jpg"
}
