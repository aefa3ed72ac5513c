package deck

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"
	"github.com/maruel/natural"

	"nbreport/visual"
)

const (
	nsA    = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP    = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsRels = "http://schemas.openxmlformats.org/package/2006/relationships"

	relSlide          = nsR + "/slide"
	relSlideLayout    = nsR + "/slideLayout"
	relImage          = nsR + "/image"
	relNotesSlide     = nsR + "/notesSlide"
	relNotesMaster    = nsR + "/notesMaster"
	relOfficeDocument = nsR + "/officeDocument"
	relExtendedProps  = nsR + "/extended-properties"
	relCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"

	ctSlide      = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctNotesSlide = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ctCoreProps  = "application/vnd.openxmlformats-package.core-properties+xml"
	ctAppProps   = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ctRels       = "application/vnd.openxmlformats-package.relationships+xml"
	ctXML        = "application/xml"

	// first id PowerPoint assigns to slides
	firstSlideID = 256
)

// properties end up in docProps.
type properties struct {
	title       string
	author      string
	subject     string
	application string
	created     time.Time
}

// packer writes complete package. It accumulates relationships and content
// types while parts are written.
type packer struct {
	zw    *zip.Writer
	t     *template
	types *etree.Element
	// extensions with Default content type
	defaults map[string]bool
	media    int
}

func (t *template) write(w io.Writer, slides []*slide, props properties) error {
	zw := zip.NewWriter(w)
	p := &packer{zw: zw, t: t, types: t.types.Root(), defaults: make(map[string]bool)}
	for _, d := range p.types.SelectElements("Default") {
		p.defaults[d.SelectAttrValue("Extension", "")] = true
	}
	p.ensureDefault("rels", ctRels)
	p.ensureDefault("xml", ctXML)

	names := make([]string, 0, len(t.parts))
	for name := range t.parts {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	for _, name := range names {
		if err := writeDataToZip(zw, name, t.parts[name]); err != nil {
			return fmt.Errorf("unable to copy template part %s: %w", name, err)
		}
	}

	presRels := t.presRels.Root()
	nextRel := nextRelID(presRels)
	lst := etree.NewElement("p:sldIdLst")
	notes := 0
	for i, s := range slides {
		num := i + 1
		if err := p.slide(num, s); err != nil {
			return err
		}
		if len(s.notes) > 0 && len(t.notesMaster) > 0 {
			notes++
			if err := p.notes(num, s.notes); err != nil {
				return err
			}
		}
		rid := addRel(presRels, nextRel+i, relSlide, "slides/slide"+strconv.Itoa(num)+".xml")
		id := lst.CreateElement("p:sldId")
		id.CreateAttr("id", strconv.Itoa(firstSlideID+i))
		id.CreateAttr("r:id", rid)
	}
	if len(slides) > 0 {
		insertSlideList(t.pres.Root(), lst)
	}

	if err := writeXMLToZip(zw, partPresentation, t.pres); err != nil {
		return err
	}
	if err := writeXMLToZip(zw, partPresRels, t.presRels); err != nil {
		return err
	}
	if err := p.docProps(props, len(slides), notes); err != nil {
		return err
	}
	if err := writeXMLToZip(zw, partContentTypes, t.types); err != nil {
		return err
	}
	return zw.Close()
}

// insertSlideList puts slide list right after master lists as schema
// requires.
func insertSlideList(pres, lst *etree.Element) {
	at := 0
	for _, el := range pres.ChildElements() {
		switch el.Tag {
		case "sldMasterIdLst", "notesMasterIdLst", "handoutMasterIdLst":
			at = el.Index() + 1
		}
	}
	pres.InsertChildAt(at, lst)
}

func (p *packer) ensureDefault(ext, contentType string) {
	if p.defaults[ext] {
		return
	}
	p.defaults[ext] = true
	d := etree.NewElement("Default")
	d.CreateAttr("Extension", ext)
	d.CreateAttr("ContentType", contentType)
	// Defaults go before Overrides
	p.types.InsertChildAt(0, d)
}

func (p *packer) override(part, contentType string) {
	o := p.types.CreateElement("Override")
	o.CreateAttr("PartName", "/"+part)
	o.CreateAttr("ContentType", contentType)
}

// addMedia stores picture under new name and returns part name.
func (p *packer) addMedia(a *visual.Asset) (string, error) {
	ext, mime := "png", "image/png"
	if kind, err := filetype.Match(a.Data); err == nil && kind != filetype.Unknown {
		ext, mime = kind.Extension, kind.MIME.Value
	}
	p.media++
	name := fmt.Sprintf("ppt/media/report-image%d.%s", p.media, ext)
	p.ensureDefault(ext, mime)
	if err := writeDataToZip(p.zw, name, a.Data); err != nil {
		return "", fmt.Errorf("unable to write %s: %w", name, err)
	}
	return name, nil
}

func (p *packer) slide(num int, s *slide) error {
	name := "ppt/slides/slide" + strconv.Itoa(num) + ".xml"

	relsDoc, rels := relationships()
	addRel(rels, 1, relSlideLayout, relTarget(s.layout))
	next := 2
	media := make([]string, 0, len(s.pictures))
	for _, a := range s.pictures {
		part, err := p.addMedia(a)
		if err != nil {
			return err
		}
		media = append(media, addRel(rels, next, relImage, relTarget(part)))
		next++
	}
	if len(s.notes) > 0 && len(p.t.notesMaster) > 0 {
		addRel(rels, next, relNotesSlide, "../notesSlides/notesSlide"+strconv.Itoa(num)+".xml")
	}

	if err := writeXMLToZip(p.zw, name, slideXML(s, media)); err != nil {
		return fmt.Errorf("unable to write %s: %w", name, err)
	}
	if err := writeXMLToZip(p.zw, relsName(name), relsDoc); err != nil {
		return fmt.Errorf("unable to write %s: %w", relsName(name), err)
	}
	p.override(name, ctSlide)
	return nil
}

func (p *packer) notes(num int, text string) error {
	name := "ppt/notesSlides/notesSlide" + strconv.Itoa(num) + ".xml"

	relsDoc, rels := relationships()
	addRel(rels, 1, relNotesMaster, relTarget(p.t.notesMaster))
	addRel(rels, 2, relSlide, "../slides/slide"+strconv.Itoa(num)+".xml")

	if err := writeXMLToZip(p.zw, name, notesXML(text)); err != nil {
		return fmt.Errorf("unable to write %s: %w", name, err)
	}
	if err := writeXMLToZip(p.zw, relsName(name), relsDoc); err != nil {
		return fmt.Errorf("unable to write %s: %w", relsName(name), err)
	}
	p.override(name, ctNotesSlide)
	return nil
}

func (p *packer) docProps(props properties, slides, notes int) error {
	relsDoc, rels := relationships()
	addRel(rels, 1, relOfficeDocument, partPresentation)
	addRel(rels, 2, relCoreProps, "docProps/core.xml")
	addRel(rels, 3, relExtendedProps, "docProps/app.xml")
	if err := writeXMLToZip(p.zw, "_rels/.rels", relsDoc); err != nil {
		return err
	}

	core := etree.NewDocument()
	core.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	cp := core.CreateElement("cp:coreProperties")
	cp.CreateAttr("xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties")
	cp.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	cp.CreateAttr("xmlns:dcterms", "http://purl.org/dc/terms/")
	cp.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
	cp.CreateElement("dc:title").SetText(xmlText(props.title))
	if len(props.subject) > 0 {
		cp.CreateElement("dc:subject").SetText(xmlText(props.subject))
	}
	cp.CreateElement("dc:creator").SetText(xmlText(props.author))
	cp.CreateElement("cp:lastModifiedBy").SetText(xmlText(props.author))
	stamp := props.created.UTC().Format(time.RFC3339)
	for _, tag := range []string{"dcterms:created", "dcterms:modified"} {
		el := cp.CreateElement(tag)
		el.CreateAttr("xsi:type", "dcterms:W3CDTF")
		el.SetText(stamp)
	}
	if err := writeXMLToZip(p.zw, "docProps/core.xml", core); err != nil {
		return err
	}
	p.override("docProps/core.xml", ctCoreProps)

	app := etree.NewDocument()
	app.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	pr := app.CreateElement("Properties")
	pr.CreateAttr("xmlns", "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties")
	pr.CreateElement("Application").SetText(props.application)
	pr.CreateElement("Slides").SetText(strconv.Itoa(slides))
	pr.CreateElement("Notes").SetText(strconv.Itoa(notes))
	if err := writeXMLToZip(p.zw, "docProps/app.xml", app); err != nil {
		return err
	}
	p.override("docProps/app.xml", ctAppProps)
	return nil
}

// relsName returns relationships part name of the part.
func relsName(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes())
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
