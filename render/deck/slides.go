package deck

import (
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"nbreport/render"
	"nbreport/textflow"
	"nbreport/visual"
)

// Geometry in EMU.
const (
	emuPerInch = 914400

	bodyX  = 1 * emuPerInch
	bodyY  = 1 * emuPerInch
	bodyCX = 8 * emuPerInch
	bodyCY = 5 * emuPerInch

	pictureX  = 1 * emuPerInch
	pictureY  = 1 * emuPerInch
	pictureCX = 8 * emuPerInch

	// body text size in hundredths of a point
	bodySize = 1800
)

// Layout types looked up in template.
const (
	layoutTitle     = "title"
	layoutTitleOnly = "titleOnly"
	layoutBlank     = "blank"
)

type slide struct {
	layout   string
	first    bool
	title    string
	subtitle string
	bodies   []string
	pictures []*visual.Asset
	notes    string
}

// builder collects slides in order they are presented.
type builder struct {
	t      *template
	slides []*slide
}

var _ render.Deck = (*builder)(nil)

func (b *builder) TitleSlide(title, subtitle string) {
	b.slides = append(b.slides, &slide{
		layout:   b.t.layout(layoutTitle),
		first:    true,
		title:    title,
		subtitle: subtitle,
	})
}

func (b *builder) Slide(title string) {
	b.slides = append(b.slides, &slide{
		layout: b.t.layout(layoutTitleOnly, layoutBlank),
		title:  title,
	})
}

func (b *builder) current() *slide {
	if len(b.slides) == 0 {
		b.Slide("")
	}
	return b.slides[len(b.slides)-1]
}

func (b *builder) Body(text string) {
	s := b.current()
	s.bodies = append(s.bodies, text)
}

func (b *builder) Picture(asset *visual.Asset) {
	if asset == nil {
		return
	}
	s := b.current()
	s.pictures = append(s.pictures, asset)
}

func (b *builder) Notes(text string) {
	b.current().notes = text
}

// notesCount is number of slides with notes.
func (b *builder) notesCount() int {
	n := 0
	for _, s := range b.slides {
		if len(s.notes) > 0 {
			n++
		}
	}
	return n
}

// xmlText drops characters which cannot appear in XML 1.0 documents.
func xmlText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20, r == 0xFFFE, r == 0xFFFF:
			return -1
		}
		return r
	}, s)
}

func newPresentationDoc(root string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	el := doc.CreateElement(root)
	el.CreateAttr("xmlns:a", nsA)
	el.CreateAttr("xmlns:r", nsR)
	el.CreateAttr("xmlns:p", nsP)
	return doc, el
}

// shapeTree creates spTree with mandatory group properties.
func shapeTree(parent *etree.Element) *etree.Element {
	tree := parent.CreateElement("p:cSld").CreateElement("p:spTree")

	nv := tree.CreateElement("p:nvGrpSpPr")
	pr := nv.CreateElement("p:cNvPr")
	pr.CreateAttr("id", "1")
	pr.CreateAttr("name", "")
	nv.CreateElement("p:cNvGrpSpPr")
	nv.CreateElement("p:nvPr")

	xfrm := tree.CreateElement("p:grpSpPr").CreateElement("a:xfrm")
	for _, child := range []struct{ tag, x, y string }{
		{"a:off", "x", "y"}, {"a:ext", "cx", "cy"}, {"a:chOff", "x", "y"}, {"a:chExt", "cx", "cy"},
	} {
		el := xfrm.CreateElement(child.tag)
		el.CreateAttr(child.x, "0")
		el.CreateAttr(child.y, "0")
	}
	return tree
}

func nonVisual(parent *etree.Element, tag string, id int, name string) *etree.Element {
	nv := parent.CreateElement(tag)
	pr := nv.CreateElement("p:cNvPr")
	pr.CreateAttr("id", strconv.Itoa(id))
	pr.CreateAttr("name", name)
	return nv
}

// placeholder adds shape inheriting position from layout placeholder.
func placeholder(tree *etree.Element, id int, name, kind, idx string, text string, size int) {
	sp := tree.CreateElement("p:sp")
	nv := nonVisual(sp, "p:nvSpPr", id, name)
	nv.CreateElement("p:cNvSpPr").CreateElement("a:spLocks").CreateAttr("noGrp", "1")
	ph := nv.CreateElement("p:nvPr").CreateElement("p:ph")
	ph.CreateAttr("type", kind)
	if len(idx) > 0 {
		ph.CreateAttr("idx", idx)
	}
	sp.CreateElement("p:spPr")
	paragraphs(sp.CreateElement("p:txBody"), text, size)
}

// paragraphs adds one paragraph per line, size 0 inherits from layout.
func paragraphs(body *etree.Element, text string, size int) {
	if body.SelectElement("bodyPr") == nil {
		body.CreateElement("a:bodyPr")
	}
	body.CreateElement("a:lstStyle")
	for _, line := range strings.Split(xmlText(text), "\n") {
		p := body.CreateElement("a:p")
		line = strings.TrimRight(line, "\r")
		if len(line) == 0 {
			runProps(p.CreateElement("a:endParaRPr"), size)
			continue
		}
		r := p.CreateElement("a:r")
		runProps(r.CreateElement("a:rPr"), size)
		r.CreateElement("a:t").SetText(line)
	}
}

func runProps(el *etree.Element, size int) {
	el.CreateAttr("lang", "en-US")
	if size > 0 {
		el.CreateAttr("sz", strconv.Itoa(size))
	}
	el.CreateAttr("dirty", "0")
}

func transform(spPr *etree.Element, x, y, cx, cy int) {
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", strconv.Itoa(x))
	off.CreateAttr("y", strconv.Itoa(y))
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", strconv.Itoa(cx))
	ext.CreateAttr("cy", strconv.Itoa(cy))
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
}

func textBox(tree *etree.Element, id int, text string) {
	sp := tree.CreateElement("p:sp")
	nv := nonVisual(sp, "p:nvSpPr", id, "TextBox "+strconv.Itoa(id-1))
	nv.CreateElement("p:cNvSpPr").CreateAttr("txBox", "1")
	nv.CreateElement("p:nvPr")

	spPr := sp.CreateElement("p:spPr")
	transform(spPr, bodyX, bodyY, bodyCX, bodyCY)
	spPr.CreateElement("a:noFill")

	body := sp.CreateElement("p:txBody")
	bodyPr := body.CreateElement("a:bodyPr")
	bodyPr.CreateAttr("wrap", "square")
	bodyPr.CreateAttr("rtlCol", "0")
	bodyPr.CreateElement("a:normAutofit")
	paragraphs(body, text, bodySize)
}

// picturePlacement fits asset into picture area keeping its aspect ratio.
// Assets of unknown size are measured from image header.
func picturePlacement(a *visual.Asset) (x, y, cx, cy int) {
	box := textflow.Box{X: pictureX, Y: pictureY, W: pictureCX, H: bodyCY}
	pl, ok := visual.Fit(a.Width, a.Height, box)
	if !ok {
		var err error
		if pl, err = visual.FitBytes(a.Data, box); err != nil {
			return pictureX, pictureY, pictureCX, bodyCY
		}
	}
	return emu(pl.X), emu(pl.Y), emu(pl.W), emu(pl.H)
}

func emu(v float64) int {
	return int(math.Round(v))
}

func picture(tree *etree.Element, id int, rel string, a *visual.Asset) {
	pic := tree.CreateElement("p:pic")
	nv := nonVisual(pic, "p:nvPicPr", id, "Picture "+strconv.Itoa(id-1))
	nv.CreateElement("p:cNvPicPr").CreateElement("a:picLocks").CreateAttr("noChangeAspect", "1")
	nv.CreateElement("p:nvPr")

	fill := pic.CreateElement("p:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", rel)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	x, y, cx, cy := picturePlacement(a)
	transform(pic.CreateElement("p:spPr"), x, y, cx, cy)
}

// slideXML produces slide part. media holds relationship ids of slide
// pictures in order.
func slideXML(s *slide, media []string) *etree.Document {
	doc, root := newPresentationDoc("p:sld")
	tree := shapeTree(root)

	id := 2
	if s.first {
		placeholder(tree, id, "Title 1", "ctrTitle", "", s.title, 0)
		id++
		placeholder(tree, id, "Subtitle 2", "subTitle", "1", s.subtitle, 0)
		id++
	} else {
		placeholder(tree, id, "Title 1", "title", "", s.title, 0)
		id++
	}
	for i, a := range s.pictures {
		picture(tree, id, media[i], a)
		id++
	}
	for _, text := range s.bodies {
		textBox(tree, id, text)
		id++
	}

	root.CreateElement("p:clrMapOvr").CreateElement("a:masterClrMapping")
	return doc
}

func notesXML(text string) *etree.Document {
	doc, root := newPresentationDoc("p:notes")
	tree := shapeTree(root)

	sp := tree.CreateElement("p:sp")
	nv := nonVisual(sp, "p:nvSpPr", 2, "Slide Image Placeholder 1")
	locks := nv.CreateElement("p:cNvSpPr").CreateElement("a:spLocks")
	locks.CreateAttr("noGrp", "1")
	locks.CreateAttr("noRot", "1")
	locks.CreateAttr("noChangeAspect", "1")
	nv.CreateElement("p:nvPr").CreateElement("p:ph").CreateAttr("type", "sldImg")
	sp.CreateElement("p:spPr")

	placeholder(tree, 3, "Notes Placeholder 2", "body", "1", text, 0)

	root.CreateElement("p:clrMapOvr").CreateElement("a:masterClrMapping")
	return doc
}

func relationships() (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsRels)
	return doc, rels
}

func addRel(rels *etree.Element, id int, kind, target string) string {
	rid := "rId" + strconv.Itoa(id)
	rel := rels.CreateElement("Relationship")
	rel.CreateAttr("Id", rid)
	rel.CreateAttr("Type", kind)
	rel.CreateAttr("Target", target)
	return rid
}
