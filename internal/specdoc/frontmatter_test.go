package specdoc

import "testing"

func TestSplitFrontmatter_RoundTrip(t *testing.T) {
	doc := "---\ndomain: auth\ntitle: Auth\n---\n\n# Auth Specification\n\n## Requirements\n"

	front, body := SplitFrontmatter(doc)
	if front != "domain: auth\ntitle: Auth\n" {
		t.Errorf("front = %q", front)
	}
	if body != "\n# Auth Specification\n\n## Requirements\n" {
		t.Errorf("body = %q", body)
	}

	if got := RenderDocument(front, body); got != doc {
		t.Errorf("round trip changed the document:\ngot  %q\nwant %q", got, doc)
	}
}

func TestSplitFrontmatter_NoFrontmatter(t *testing.T) {
	doc := "# Just a document\n\nNo metadata here.\n"
	front, body := SplitFrontmatter(doc)
	if front != "" {
		t.Errorf("front = %q, want empty", front)
	}
	if body != doc {
		t.Errorf("body = %q, want the full document", body)
	}
}

func TestSplitFrontmatter_UnterminatedFence(t *testing.T) {
	doc := "---\ndomain: auth\nno closing fence\n"
	front, body := SplitFrontmatter(doc)
	if front != "" || body != doc {
		t.Errorf("unterminated fence should yield the full text as body, got front=%q body=%q", front, body)
	}
}

func TestSplitFrontmatter_FenceAtEOF(t *testing.T) {
	doc := "---\ndomain: auth\n---"
	front, body := SplitFrontmatter(doc)
	if front != "domain: auth\n" {
		t.Errorf("front = %q", front)
	}
	if body != "" {
		t.Errorf("body = %q, want empty", body)
	}
}

func TestRenderDocument_EmptyFront(t *testing.T) {
	if got := RenderDocument("", "body only"); got != "body only" {
		t.Errorf("RenderDocument with empty front = %q", got)
	}
}

func TestRenderDocument_AddsMissingNewline(t *testing.T) {
	got := RenderDocument("domain: auth", "body")
	want := "---\ndomain: auth\n---\nbody"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
