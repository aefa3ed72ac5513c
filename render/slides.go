package render

import "strings"

// Present renders document as slide deck: title slide, one slide per block
// (code blocks with picture and source get two) and references slide.
// Provenance goes into notes of the first slide of a block.
func Present(doc *Document, d Deck) []string {
	d.TitleSlide(doc.Title, strings.Join(doc.TitleLines(), " | "))

	var refs References
	for i, b := range doc.Blocks {
		c := Dispatch(b, doc.Assets[i])

		title := ""
		if c.HasHeading {
			title = c.Heading.Text
		}
		d.Slide(title)
		if len(c.Reference) > 0 {
			d.Notes("Origin: " + c.Reference)
		}
		if c.Asset != nil {
			d.Picture(c.Asset)
			if len(c.Source) > 0 {
				d.Slide("")
				d.Body(c.Source)
			}
		} else {
			d.Body(c.Body)
		}
		refs.Add(c.Reference)
	}

	d.Slide("")
	d.Body(refs.Text())
	return refs.Sorted()
}
