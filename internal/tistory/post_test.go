// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package tistory

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.geekbrox.name/autoblog/internal/testutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadFirstPost(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	posts, images := filepath.Join(dir, "posts"), filepath.Join(dir, "images")
	writeFile(t, filepath.Join(posts, "b.md"), "# 두 번째\n\n본문")
	writeFile(t, filepath.Join(posts, "a.md"), "# [2026 겨울 애니] 장송의 프리렌 - 정보 & 리뷰\n\n![cover](../images/a_cover.jpg)\n\n본문입니다.\n")
	writeFile(t, filepath.Join(images, "a_cover.jpg"), "jpeg")

	got, err := ReadFirstPost(posts, images)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, &Post{
		Title: "[2026 겨울 애니] 장송의 프리렌 - 정보 & 리뷰",
		Body:  "본문입니다.\n",
		Path:  filepath.Join(posts, "a.md"),
		Image: filepath.Join(images, "a_cover.jpg"),
	})
}

func TestReadFirstPostFallbacks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	posts, images := filepath.Join(dir, "posts"), filepath.Join(dir, "images")
	writeFile(t, filepath.Join(posts, "frieren.md"), "제목 없는 글\n![x](../images/gone.jpg)\n끝")
	writeFile(t, filepath.Join(images, "frieren.png"), "png")

	got, err := ReadFirstPost(posts, images)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got.Title, "frieren")
	testutil.AssertEqual(t, got.Body, "제목 없는 글\n끝")
	testutil.AssertEqual(t, got.Image, filepath.Join(images, "frieren.png"))
}

func TestReadFirstPostNoDrafts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, d := range []string{dir, filepath.Join(dir, "missing")} {
		if _, err := ReadFirstPost(d, dir); !errors.Is(err, ErrNoDrafts) {
			t.Errorf("ReadFirstPost(%q): want ErrNoDrafts, got %v", d, err)
		}
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	p := &Post{Body: "첫 줄\n" + strings.Repeat("가", 200)}
	got := p.Preview()
	testutil.AssertEqual(t, len([]rune(got)), 100)
	testutil.AssertEqual(t, strings.HasPrefix(got, "첫 줄 가"), true)

	testutil.AssertEqual(t, (&Post{Body: "짧은\n글"}).Preview(), "짧은 글")
}

func TestMoveTo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "posts", "a.md")
	writeFile(t, path, "# a")

	p := &Post{Path: path}
	dest := filepath.Join(dir, "published")
	if err := p.MoveTo(dest); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, p.Path, filepath.Join(dest, "a.md"))
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("source still exists: %v", err)
	}
	if _, err := os.Stat(p.Path); err != nil {
		t.Fatal(err)
	}
}

func TestHashtags(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		title, body string
		want        string
	}{
		"genres, work and season": {
			title: "[2026 겨울 애니] 장송의 프리렌 - 정보 & 리뷰",
			body:  "판타지 모험 액션",
			want:  "#애니메이션 #애니추천 #일본애니 #2025애니 #애니리뷰 #액션애니 #판타지애니 #장송의프리렌 #2026년애니 #겨울애니",
		},
		"padded": {
			title: "테스트",
			want:  "#애니메이션 #애니추천 #일본애니 #2025애니 #애니리뷰 #테스트 #애니감상 #오타쿠 #신작애니 #애니정보",
		},
		"synonyms map to one tag": {
			title: "[애니] " + strings.Repeat("긴제목", 11),
			body:  "개그 코미디 호러 공포",
			want:  "#애니메이션 #애니추천 #일본애니 #2025애니 #애니리뷰 #개그애니 #호러애니 #애니감상 #오타쿠 #신작애니",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := Hashtags(tc.title, tc.body)
			testutil.AssertEqual(t, got, tc.want)
			testutil.AssertEqual(t, len(strings.Fields(got)), maxHashtags)
		})
	}
}
