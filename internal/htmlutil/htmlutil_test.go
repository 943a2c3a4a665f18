package htmlutil

import (
	"reflect"
	"testing"
)

const testHTML = `
<html>
<head><title>Alps</title><style>p { color: red }</style></head>
<body>
<h1>Climbing   the
  Alps</h1>
<p>The <b>Matterhorn</b> rises above Zermatt.</p>
<script>var peak = "Everest";</script>
<div hidden>Secret summit</div>
<ul><li>Mont Blanc</li><li>Eiger</li></ul>
<!-- K2 -->
</body></html>
`

func TestTextBlocks(t *testing.T) {
	doc, err := LoadHTMLString(testHTML)
	if err != nil {
		t.Fatal(err)
	}
	got := TextBlocks(doc.Selection)
	want := []string{
		"Climbing the Alps",
		"The Matterhorn rises above Zermatt.",
		"Mont Blanc",
		"Eiger",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TextBlocks = %q, want %q", got, want)
	}
}

func TestVisibleText(t *testing.T) {
	got, err := VisibleText(`<p>Denali</p><p>Aconcagua <i>and</i> Elbrus</p>`)
	if err != nil {
		t.Fatal(err)
	}
	want := "Denali\nAconcagua and Elbrus"
	if got != want {
		t.Errorf("VisibleText = %q, want %q", got, want)
	}
}

func TestVisibleTextEmpty(t *testing.T) {
	got, err := VisibleText("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("VisibleText(\"\") = %q, want empty", got)
	}
}

func TestVisibleTextInlineMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`<p>K<sub>2</sub> is steep</p>`, "K2 is steep"},
		{`<p><span>Mont</span> <span>Blanc</span></p>`, "Mont Blanc"},
		{`<p>Piz <a href="#">Bernina</a>, Switzerland</p>`, "Piz Bernina, Switzerland"},
	}
	for _, tt := range tests {
		got, err := VisibleText(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("VisibleText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
