package matching

import "testing"

func TestMatcher_Default(t *testing.T) {
	m := New()
	if m.IsExcluded("/data/docs/report.pdf", 1024) {
		t.Fatal("default matcher must admit everything")
	}
}

func TestMatcher_Exclusions(t *testing.T) {
	m := New(WithExclusions(".git", "*.tmp", "secrets.txt"))

	testCases := []struct {
		path     string
		excluded bool
	}{
		{"/repo/.git/config", true},
		{"/repo/scratch.tmp", true},
		{"/repo/a/b/c/deep.tmp", true},
		{"/repo/sub/secrets.txt", true},
		{"/repo/docs/manual.pdf", false},
	}
	for _, tc := range testCases {
		if got := m.IsExcluded(tc.path, 100); got != tc.excluded {
			t.Errorf("IsExcluded(%q): expected %v, got %v", tc.path, tc.excluded, got)
		}
	}
}

func TestMatcher_Inclusions(t *testing.T) {
	m := New(WithInclusions(".pdf", ".docx"))

	if m.IsExcluded("/docs/handbook.pdf", 100) {
		t.Error("included extension was excluded")
	}
	if !m.IsExcluded("/docs/photo.png", 100) {
		t.Error("non-included extension was admitted")
	}
}

func TestMatcher_MaxFileSize(t *testing.T) {
	m := New(WithMaxFileSize(1024))
	if !m.IsExcluded("/docs/huge.pdf", 2048) {
		t.Error("oversize file was admitted")
	}
	if m.IsExcluded("/docs/small.pdf", 512) {
		t.Error("small file was excluded")
	}
}

func TestMatcher_CommentAndBlankPatternsIgnored(t *testing.T) {
	m := New(WithExclusions("", "  ", "# a comment"))
	if m.IsExcluded("/docs/anything.txt", 100) {
		t.Error("blank and comment patterns must be inert")
	}
}
