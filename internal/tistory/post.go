// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package tistory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.geekbrox.name/autoblog/internal/textutil"
)

// Post is a draft ready to be published.
type Post struct {
	Title string
	Body  string
	// Path is the Markdown file the post was read from.
	Path string
	// Image is the image to upload, or empty.
	Image string
}

// ErrNoDrafts is returned by ReadFirstPost when there is nothing to publish.
var ErrNoDrafts = errors.New("no drafts")

var (
	imageRef  = regexp.MustCompile(`!\[[^\]]*\]\(\.\./images/([^)]+)\)`)
	imageLine = regexp.MustCompile(`(?m)^!\[[^\]]*\]\(\.\./images/[^)]+\)\s*\n?`)
)

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// ReadFirstPost reads the first Markdown file in dir by name.
//
// The title comes from a leading "# " line, or the file name. The image to
// upload is the first ../images/ reference that exists in imagesDir, or an
// image named after the file. Image lines are removed from the body since the
// image is uploaded separately.
func ReadFirstPost(dir, imagesDir string) (*Post, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("posts 폴더 없음: %s: %w", dir, ErrNoDrafts)
		}
		return nil, fmt.Errorf("posts 폴더에 .md 없음: %s: %w", dir, ErrNoDrafts)
	}
	slices.Sort(matches)
	path := matches[0]

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := string(b)
	stem := strings.TrimSuffix(filepath.Base(path), ".md")

	p := &Post{Title: stem, Path: path}
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if strings.HasPrefix(lines[0], "# ") {
		p.Title = strings.TrimSpace(lines[0][2:])
		p.Body = strings.TrimLeftFunc(strings.Join(lines[1:], "\n"), unicode.IsSpace)
	} else {
		p.Body = strings.Join(lines, "\n")
	}

	if m := imageRef.FindStringSubmatch(raw); m != nil {
		if candidate := filepath.Join(imagesDir, m[1]); exists(candidate) {
			p.Image = candidate
		}
	}
	if p.Image == "" {
		for _, ext := range imageExts {
			if candidate := filepath.Join(imagesDir, stem+ext); exists(candidate) {
				p.Image = candidate
				break
			}
		}
	}

	p.Body = strings.TrimLeftFunc(imageLine.ReplaceAllString(p.Body, ""), unicode.IsSpace)
	return p, nil
}

// Preview returns the first 100 characters of the body on one line.
func (p *Post) Preview() string {
	return strings.ReplaceAll(textutil.Truncate(p.Body, 100), "\n", " ")
}

// MoveTo moves the post file into dir and updates p.Path.
func (p *Post) MoveTo(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dest := filepath.Join(dir, filepath.Base(p.Path))
	if err := os.Rename(p.Path, dest); err != nil {
		return err
	}
	p.Path = dest
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

const maxHashtags = 10

var commonTags = []string{"애니메이션", "애니추천", "일본애니", "2025애니", "애니리뷰"}

var genreTags = []struct{ keyword, tag string }{
	{"액션", "액션애니"},
	{"판타지", "판타지애니"},
	{"로맨스", "로맨스애니"},
	{"개그", "개그애니"},
	{"코미디", "개그애니"},
	{"호러", "호러애니"},
	{"공포", "호러애니"},
	{"미스터리", "미스터리애니"},
	{"스포츠", "스포츠애니"},
	{"isekai", "이세계애니"},
	{"이세계", "이세계애니"},
	{"마법", "마법소녀"},
	{"학원", "학원물"},
	{"음악", "음악애니"},
}

var fallbackTags = []string{"애니감상", "오타쿠", "신작애니", "애니정보", "만화"}

var (
	bracketed = regexp.MustCompile(`\[.*?\]|\(.*?\)|【.*?】|「.*?」`)
	subtitle  = regexp.MustCompile(`\s*[-:：|]\s*.*$`)
)

// Hashtags returns ten hashtags for a post, like "#애니메이션 #애니추천 ...".
// They are picked by keywords found in the title and body.
func Hashtags(title, body string) string {
	combined := strings.ToLower(title + " " + body)

	tags := slices.Clone(commonTags)
	for _, g := range genreTags {
		if strings.Contains(combined, g.keyword) && !slices.Contains(tags, g.tag) {
			tags = append(tags, g.tag)
			if len(tags) >= 9 {
				break
			}
		}
	}

	work := strings.TrimSpace(bracketed.ReplaceAllString(title, ""))
	work = strings.TrimSpace(subtitle.ReplaceAllString(work, ""))
	if work != "" && utf8.RuneCountInString(work) <= 30 {
		clean := strings.NewReplacer(" ", "", "/", "").Replace(work)
		if clean != "" && !slices.Contains(tags, clean) {
			tags = append(tags, clean)
		}
	}

	switch {
	case strings.Contains(combined, "2026"):
		tags = append(tags, "2026년애니")
	case strings.Contains(combined, "2025"):
		tags = append(tags, "2025년애니")
	}

	switch {
	case strings.Contains(combined, "겨울") || strings.Contains(combined, "winter"):
		tags = append(tags, "겨울애니")
	case strings.Contains(combined, "봄") || strings.Contains(combined, "spring"):
		tags = append(tags, "봄애니")
	case strings.Contains(combined, "여름") || strings.Contains(combined, "summer"):
		tags = append(tags, "여름애니")
	case strings.Contains(combined, "가을") || strings.Contains(combined, "autumn") || strings.Contains(combined, "fall"):
		tags = append(tags, "가을애니")
	}

	final := make([]string, 0, maxHashtags)
	for _, t := range tags {
		if len(final) >= maxHashtags {
			break
		}
		if !slices.Contains(final, t) {
			final = append(final, t)
		}
	}
	for _, t := range fallbackTags {
		if len(final) >= maxHashtags {
			break
		}
		if !slices.Contains(final, t) {
			final = append(final, t)
		}
	}

	for i, t := range final {
		final[i] = "#" + t
	}
	return strings.Join(final, " ")
}
