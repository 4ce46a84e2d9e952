package page

import (
	"html/template"
	"slices"
	"strings"

	"github.com/kdex-tech/kdex-splitscreen/internal/markup"
)

// Body wraps the block markup in the content region.
func (p Page) Body() template.HTML {
	var b strings.Builder
	b.WriteString(`<div class="` + markup.ContentClass + `">`)
	for _, block := range p.Blocks {
		b.WriteString(block.Markup)
	}
	b.WriteString(`</div>`)
	// block markup is produced by the serializer, never by visitors
	return template.HTML(b.String())
}

func (p Page) Block(id string) (Block, bool) {
	i := slices.IndexFunc(p.Blocks, func(b Block) bool { return b.ID == id })
	if i < 0 {
		return Block{}, false
	}
	return p.Blocks[i], true
}

// WithBlock returns a copy of p with block replaced in place, or appended when new, and
// the revision bumped.
func (p Page) WithBlock(block Block) Page {
	blocks := slices.Clone(p.Blocks)
	i := slices.IndexFunc(blocks, func(b Block) bool { return b.ID == block.ID })
	if i < 0 {
		blocks = append(blocks, block)
	} else {
		blocks[i] = block
	}
	p.Blocks = blocks
	p.Revision++
	return p
}

// WithoutBlock returns a copy of p without the block, revision bumped when it existed.
func (p Page) WithoutBlock(id string) Page {
	blocks := slices.DeleteFunc(slices.Clone(p.Blocks), func(b Block) bool { return b.ID == id })
	if len(blocks) != len(p.Blocks) {
		p.Revision++
	}
	p.Blocks = blocks
	return p
}
