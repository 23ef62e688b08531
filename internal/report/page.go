package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"provtrack/internal/artifact"
	"provtrack/internal/provenance"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

var panelTitles = map[artifact.Kind]string{
	artifact.PreGraph:  "Pre Grad Graph",
	artifact.PostGraph: "Post Grad Graph",
}

var codeTitles = map[artifact.Variant]string{
	artifact.LanguageA: "Generated Kernels",
	artifact.LanguageB: "Generated Wrapper",
}

// FileName is the page name written for a compile directory.
func FileName(name string) string {
	return "provenance_tracking_" + name + ".html"
}

// Page builds the report document for c.
func Page(c *provenance.Context) (Node, error) {
	mappings, err := LineMappingsJSON(c.Tables())
	if err != nil {
		return nil, fmt.Errorf("failed to encode line mappings: %w", err)
	}
	highlights, err := HighlightIndexJSON(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode highlight index: %w", err)
	}

	panels := make([]Node, 0, len(artifact.Kinds))
	for _, kind := range artifact.Kinds {
		if kind == artifact.GeneratedCode && c.Variant() == artifact.VariantNone {
			continue
		}
		panels = append(panels, panel(kind, panelTitle(kind, c.Variant()), c.Text(kind)))
	}

	return Doctype(HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			Meta(Name("provtrack-fingerprint"), Content(strconv.FormatUint(c.Fingerprint(), 16))),
			Meta(Name("provtrack-variant"), Content(string(c.Variant()))),
			TitleEl(Text("Provenance Tracking | "+c.Name())),
			StyleEl(Raw(pageCSS)),
		),
		Body(
			H1(Text("Provenance Tracking: "+c.Name())),
			Div(Class("panels"), Group(panels)),
			Script(Type("application/json"), ID("line-mappings"), Raw(string(mappings))),
			Script(Type("application/json"), ID("highlight-index"), Raw(string(highlights))),
			Script(Raw(pageJS)),
		),
	)), nil
}

// Render writes the page for c to w.
func Render(w io.Writer, c *provenance.Context) error {
	page, err := Page(c)
	if err != nil {
		return err
	}
	return page.Render(w)
}

// Write renders c into dir and returns the written path.
func Write(dir string, c *provenance.Context) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(dir, FileName(c.Name()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Render(f, c); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func panelTitle(kind artifact.Kind, v artifact.Variant) string {
	if kind == artifact.GeneratedCode {
		return codeTitles[v]
	}
	return panelTitles[kind]
}

func panel(kind artifact.Kind, title string, text artifact.Text) Node {
	lines := make([]Node, 0, 2*text.Len())
	text.Each(func(n int, line string) {
		lines = append(lines,
			Span(Class("line"), Attr("data-line", strconv.Itoa(n)), Text(line)),
			Text("\n"),
		)
	})
	return Section(
		Class("panel"),
		Attr("data-kind", string(kind)),
		H2(Text(title)),
		Pre(Group(lines)),
	)
}

const pageCSS = `
body { font-family: sans-serif; margin: 1rem; }
.panels { display: flex; gap: 1rem; }
.panel { flex: 1; min-width: 0; }
.panel pre { height: 80vh; overflow: auto; border: 1px solid #ccc; margin: 0; }
.line { display: block; cursor: pointer; white-space: pre; }
.line.hl { background: #fff3a0; }
`

// The page JS is a lookup into the embedded highlight index.
const pageJS = `
(function () {
  var index = JSON.parse(document.getElementById("highlight-index").textContent);
  var order = ["pre_graph", "post_graph", "generated_code"];
  function lineEl(kind, n) {
    return document.querySelector('.panel[data-kind="' + kind + '"] .line[data-line="' + n + '"]');
  }
  function mark(kind, lines) {
    lines.forEach(function (n) { var el = lineEl(kind, n); if (el) { el.classList.add("hl"); } });
  }
  document.querySelectorAll(".panel").forEach(function (panel) {
    var kind = panel.getAttribute("data-kind");
    panel.addEventListener("click", function (e) {
      var el = e.target.closest(".line");
      if (!el) { return; }
      var n = parseInt(el.getAttribute("data-line"), 10);
      document.querySelectorAll(".line.hl").forEach(function (h) { h.classList.remove("hl"); });
      el.classList.add("hl");
      var res = (index[kind] || {})[n] || {};
      var best = null;
      order.forEach(function (k) {
        var lines = res[k] || [];
        mark(k, lines);
        if (lines.length > 0 && (best === null || lines.length > res[best].length)) { best = k; }
      });
      if (best !== null) {
        var lines = res[best];
        var target = lineEl(best, lines[Math.floor(lines.length / 2)]);
        if (target) { target.scrollIntoView({block: "center"}); }
      }
    });
  });
})();
`
