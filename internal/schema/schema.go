// SPDX-License-Identifier: MIT

// Package schema defines the HCL structure of factory definition files.
// The top level is decoded with gohcl; block bodies are parsed against the
// explicit body schemas below so an unrecognized attribute or block is a
// definition error with a source range, not something silently ignored.
package schema

import "github.com/hashicorp/hcl/v2"

// File represents the top-level structure of one factory definition file.
type File struct {
	Sequences []*SequenceBlock `hcl:"sequence,block"`
	Traits    []*TraitBlock    `hcl:"trait,block"`
	Factories []*FactoryBlock  `hcl:"factory,block"`
}

// SequenceBlock declares a named monotonic counter.
type SequenceBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// TraitBlock declares a reusable attribute bundle. At the file top level it
// registers globally; inside a factory block it is local to that factory.
type TraitBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// FactoryBlock declares one factory. The body carries the construction
// options plus nested attribute and trait blocks.
type FactoryBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// FactoryBody is the schema for the body of a 'factory' block. Everything
// recognized is listed here; anything else fails the load.
var FactoryBody = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "class"},
		{Name: "parent"},
		{Name: "aliases"},
		{Name: "traits"},
		{Name: "default_strategy"},
		{Name: "allow_overrides"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "attribute", LabelNames: []string{"name"}},
		{Type: "trait", LabelNames: []string{"name"}},
	},
}

// TraitBody is the schema for the body of a 'trait' block.
var TraitBody = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "attribute", LabelNames: []string{"name"}},
	},
}

// AttributeBody is the schema for the body of an 'attribute' block. Exactly
// one of value, expr or association gives the attribute its source; a block
// with none of them declares an implicit association of the same name.
var AttributeBody = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "value"},
		{Name: "expr"},
		{Name: "association"},
		{Name: "ignored"},
	},
}

// SequenceBody is the schema for the body of a 'sequence' block.
var SequenceBody = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "format"},
		{Name: "start"},
	},
}
