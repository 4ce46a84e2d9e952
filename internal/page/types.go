package page

// Page is one public page. Its body is the serialized blocks in order.
type Page struct {
	BasePath string  `yaml:"basePath" json:"basePath"`
	Blocks   []Block `yaml:"blocks,omitempty" json:"blocks,omitempty"`
	Label    string  `yaml:"label" json:"label"`
	Lang     string  `yaml:"lang,omitempty" json:"lang,omitempty"`
	Name     string  `yaml:"name" json:"name"`
	Revision int64   `yaml:"revision" json:"revision"`
	Template string  `yaml:"template,omitempty" json:"template,omitempty"`
}

// Block is one persisted block instance. Markup is whatever the block serialized to.
type Block struct {
	ID     string `yaml:"id" json:"id"`
	Markup string `yaml:"markup" json:"markup"`
}
