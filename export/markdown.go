package export

import (
	"bytes"

	"github.com/beevik/etree"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// notesRenderer turns course notes into XHTML. Raw HTML in the notes is
// escaped since WithUnsafe is not set.
var notesRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
		goldmarkHTML.WithXHTML(),
	),
)

// notesElement renders markdown into a div of class course-notes. Notes
// that do not come out as well-formed XML are kept as a plain paragraph.
func notesElement(markdown string) *etree.Element {
	var buf bytes.Buffer
	buf.WriteString(`<div class="course-notes">`)
	if err := notesRenderer.Convert([]byte(markdown), &buf); err == nil {
		buf.WriteString(`</div>`)
		frag := etree.NewDocument()
		if err := frag.ReadFromBytes(buf.Bytes()); err == nil && frag.Root() != nil {
			return frag.Root()
		}
	}

	div := etree.NewElement("div")
	div.CreateAttr("class", "course-notes")
	div.CreateElement("p").SetText(markdown)
	return div
}
