package deck

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/maruel/natural"

	"nbreport/archive"
	"nbreport/render"
)

//go:embed all:base
var baseFS embed.FS

const baseRoot = "base"

const (
	partContentTypes = "[Content_Types].xml"
	partPresentation = "ppt/presentation.xml"
	partPresRels     = "ppt/_rels/presentation.xml.rels"
	layoutsDir       = "ppt/slideLayouts"
)

var errNotPresentation = errors.New("not a presentation package")

// template is presentation package slides are added to: masters, layouts,
// themes and whatever else template carries are copied verbatim, parts
// listing slides are parsed and amended.
type template struct {
	parts    map[string][]byte
	types    *etree.Document
	pres     *etree.Document
	presRels *etree.Document

	// layout part names by layout type, and all layouts in natural order
	layouts     map[string]string
	layoutOrder []string
	// notes master part name, empty when package has none
	notesMaster string
}

// skipTemplatePart drops parts which are always produced anew.
func skipTemplatePart(name string) bool {
	switch {
	case name == "_rels/.rels":
		return true
	case strings.HasPrefix(name, "docProps/"):
		return true
	case strings.HasPrefix(name, "ppt/slides/"):
		return true
	case strings.HasPrefix(name, "ppt/notesSlides/"):
		return true
	}
	return false
}

// loadBase returns built-in 4:3 template.
func loadBase() (*template, error) {
	t := &template{parts: make(map[string][]byte)}
	err := fs.WalkDir(baseFS, baseRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := baseFS.ReadFile(p)
		if err != nil {
			return err
		}
		return t.add(strings.TrimPrefix(p, baseRoot+"/"), data)
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read built-in template: %w", err)
	}
	if err := t.index(); err != nil {
		return nil, fmt.Errorf("built-in template: %w", err)
	}
	return t, nil
}

// loadTemplate reads user supplied pptx. Any problem with it is reported as
// missing template.
func loadTemplate(file string) (*template, error) {
	t := &template{parts: make(map[string][]byte)}
	if err := archive.Walk(file, skipTemplatePart, t.add); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", render.ErrTemplateMissing, file, err)
	}
	if err := t.index(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", render.ErrTemplateMissing, file, err)
	}
	return t, nil
}

func (t *template) add(name string, data []byte) error {
	var target **etree.Document
	switch name {
	case partContentTypes:
		target = &t.types
	case partPresentation:
		target = &t.pres
	case partPresRels:
		target = &t.presRels
	default:
		if skipTemplatePart(name) {
			return nil
		}
		t.parts[name] = data
		return nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return fmt.Errorf("unable to parse %s: %w", name, err)
	}
	*target = doc
	return nil
}

// index strips template slides from parsed parts and locates layouts and
// notes master.
func (t *template) index() error {
	if t.types == nil || t.pres == nil || t.presRels == nil ||
		t.types.Root() == nil || t.pres.Root() == nil || t.presRels.Root() == nil {
		return errNotPresentation
	}

	rels := t.presRels.Root()
	for _, rel := range rels.SelectElements("Relationship") {
		switch rel.SelectAttrValue("Type", "") {
		case relSlide:
			rels.RemoveChild(rel)
		case relNotesMaster:
			target := rel.SelectAttrValue("Target", "")
			if strings.HasPrefix(target, "/") {
				t.notesMaster = strings.TrimPrefix(target, "/")
			} else {
				t.notesMaster = path.Join("ppt", target)
			}
		}
	}
	if len(t.notesMaster) > 0 {
		if _, ok := t.parts[t.notesMaster]; !ok {
			t.notesMaster = ""
		}
	}

	if lst := t.pres.Root().SelectElement("sldIdLst"); lst != nil {
		t.pres.Root().RemoveChild(lst)
	}

	types := t.types.Root()
	for _, o := range types.SelectElements("Override") {
		name := o.SelectAttrValue("PartName", "")
		if skipTemplatePart(strings.TrimPrefix(name, "/")) {
			types.RemoveChild(o)
		}
	}

	t.layouts = make(map[string]string)
	for name, data := range t.parts {
		if path.Dir(name) != layoutsDir || path.Ext(name) != ".xml" {
			continue
		}
		t.layoutOrder = append(t.layoutOrder, name)
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(data); err != nil {
			return fmt.Errorf("unable to parse %s: %w", name, err)
		}
		if root := doc.Root(); root != nil {
			if kind := root.SelectAttrValue("type", ""); len(kind) > 0 {
				if prev, ok := t.layouts[kind]; !ok || natural.Less(name, prev) {
					t.layouts[kind] = name
				}
			}
		}
	}
	if len(t.layoutOrder) == 0 {
		return fmt.Errorf("%w: no slide layouts", errNotPresentation)
	}
	sort.Sort(natural.StringSlice(t.layoutOrder))
	return nil
}

// layout returns part name of the first layout of requested types present in
// template, or the first layout when none is.
func (t *template) layout(kinds ...string) string {
	for _, k := range kinds {
		if name, ok := t.layouts[k]; ok {
			return name
		}
	}
	return t.layoutOrder[0]
}

// nextRelID returns relationship id number above any used in rels.
func nextRelID(rels *etree.Element) int {
	next := 1
	for _, rel := range rels.SelectElements("Relationship") {
		id := strings.TrimPrefix(rel.SelectAttrValue("Id", ""), "rId")
		if n, err := strconv.Atoi(id); err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

// relTarget makes target of relationship from part in ppt/<dir>/ to another
// part of the package.
func relTarget(part string) string {
	return "../" + strings.TrimPrefix(part, "ppt/")
}
