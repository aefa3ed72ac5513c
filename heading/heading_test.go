package heading

import (
	"testing"

	"nbreport/report"
)

func TestFirst(t *testing.T) {
	tests := []struct {
		name  string
		block report.Block
		want  Heading
		found bool
	}{
		{"markdown h1", report.Block{Kind: report.KindMarkdown, Source: "# Title"}, Heading{"Title", 1}, true},
		{"markdown indented h3", report.Block{Kind: report.KindMarkdown, Source: "intro\n   ### Deep  \nmore"}, Heading{"Deep", 3}, true},
		{"markdown too indented", report.Block{Kind: report.KindMarkdown, Source: "    # code"}, Heading{}, false},
		{"markdown no space", report.Block{Kind: report.KindMarkdown, Source: "#hashtag"}, Heading{}, false},
		{"markdown seven hashes", report.Block{Kind: report.KindMarkdown, Source: "####### x"}, Heading{}, false},
		{"markdown first wins", report.Block{Kind: report.KindMarkdown, Source: "## A\n# B"}, Heading{"A", 2}, true},
		{"markdown none", report.Block{Kind: report.KindMarkdown, Source: "plain text"}, Heading{}, false},
		{"html h1", report.Block{Kind: report.KindText, Content: "<p>x</p><H1 class='t'>Big <b>News</b></H1>"}, Heading{"Big News", 1}, true},
		{"html h2", report.Block{Kind: report.KindText, Content: "<h2>Section &amp; more</h2>"}, Heading{"Section & more", 2}, true},
		{"html first of h1 h2", report.Block{Kind: report.KindText, Content: "<h2>Second</h2><h1>First</h1>"}, Heading{"Second", 2}, true},
		{"html h3 ignored falls back", report.Block{Kind: report.KindText, Content: "<h3>Minor</h3>\nrest"}, Heading{"Minor", 2}, true},
		{"html empty h1 skipped", report.Block{Kind: report.KindText, Content: "<h1> </h1><h2>Real</h2>"}, Heading{"Real", 2}, true},
		{"html fallback first line", report.Block{Kind: report.KindText, Content: "\n  <p>Hello</p>\n<p>World</p>"}, Heading{"Hello", 2}, true},
		{"html empty", report.Block{Kind: report.KindText, Content: "<div></div>"}, Heading{}, false},
		{"code never", report.Block{Kind: report.KindCode, Source: "# comment"}, Heading{}, false},
		{"generic never", report.Block{Kind: report.KindGeneric, Raw: []byte(`{"type":"x","content":"# y"}`)}, Heading{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := First(tt.block)
			if ok != tt.found || got != tt.want {
				t.Errorf("First() = %+v, %v, want %+v, %v", got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestFirst_Idempotent(t *testing.T) {
	blocks := []report.Block{
		{Kind: report.KindMarkdown, Source: "text\n## Again"},
		{Kind: report.KindText, Content: "<h1>Once</h1>"},
		{Kind: report.KindText, Content: "no tags here"},
	}
	for _, b := range blocks {
		h1, ok1 := First(b)
		h2, ok2 := First(b)
		if h1 != h2 || ok1 != ok2 {
			t.Errorf("First() not idempotent for %q: %+v/%v then %+v/%v", b.Text(), h1, ok1, h2, ok2)
		}
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>a &lt; b</p>", "a < b"},
		{"  <b>bold</b> text  ", "bold text"},
		{"<script>alert(1)</script>safe", "safe"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := StripTags(tt.in); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRemoveMarkdownHeading(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"# Title\nbody", "body"},
		{"intro\n## A\n## B", "intro\n## B"},
		{"no heading", "no heading"},
	}
	for _, tt := range tests {
		if got := RemoveMarkdownHeading(tt.in); got != tt.want {
			t.Errorf("RemoveMarkdownHeading(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripTags_Blocks(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>one</p><p>two</p>", "one\ntwo"},
		{"line<br>next", "line\nnext"},
		{"<ul><li>a</li><li>b</li></ul>", "a\nb"},
		{"<style>p { color: red }</style><div>  spaced\n\n  out </div>", "spaced\nout"},
	}
	for _, tt := range tests {
		if got := StripTags(tt.in); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHTMLBody(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"heading removed", "<h1>Intro</h1><p>Body text</p>", "Body text"},
		{"only first heading removed", "<h2>A</h2><p>x</p><h2>B</h2>", "x\nB"},
		{"empty heading kept out", "<h1></h1><h2>Real</h2><p>y</p>", "y"},
		{"fallback drops first line", "<p>Title</p><p>rest</p>", "rest"},
		{"fallback single line", "just one", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTMLBody(tt.in); got != tt.want {
				t.Errorf("HTMLBody(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
