// SPDX-License-Identifier: MIT

// Package loader is the declarative front-end: it parses .hcl factory
// definition files and populates a registry with the factories, traits and
// sequences they declare. The loader is definition-phase machinery only;
// once it returns, the caller finishes the registry and seals everything.
package loader

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/fabrikgo/internal/attr"
	"github.com/vk/fabrikgo/internal/ctxlog"
	"github.com/vk/fabrikgo/internal/factory"
	"github.com/vk/fabrikgo/internal/fsutil"
	"github.com/vk/fabrikgo/internal/registry"
	"github.com/vk/fabrikgo/internal/schema"
	"github.com/vk/fabrikgo/internal/trait"
)

// Extension is the file suffix the loader recognizes.
const Extension = ".hcl"

// Loader parses factory definition files into a registry.
type Loader struct {
	reg *registry.Registry
}

// New creates a loader bound to the registry it populates.
func New(reg *registry.Registry) *Loader {
	return &Loader{reg: reg}
}

// LoadPath parses every definition file under path (a directory or a single
// file) in filename order and registers everything it finds.
func (l *Loader) LoadPath(ctx context.Context, path string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loader scanning for factory definitions...", "path", path)

	filePaths, err := fsutil.FindFactoryFiles(path, Extension)
	if err != nil {
		return fmt.Errorf("failed to walk definitions path %q: %w", path, err)
	}
	if len(filePaths) == 0 {
		logger.Warn("No factory definition files found in path.", "path", path)
		return nil
	}

	parser := hclparse.NewParser()
	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return fmt.Errorf("failed to parse %s: %w", filePath, diags)
		}
		if err := l.loadFile(ctx, hclFile, filePath); err != nil {
			return fmt.Errorf("failed to load definitions from %s: %w", filePath, err)
		}
		logger.Debug("Loaded definitions from file.", "file", filePath)
	}

	logger.Info("Loader finished.", "files_loaded", len(filePaths))
	return nil
}

func (l *Loader) loadFile(ctx context.Context, hclFile *hcl.File, filePath string) error {
	var file schema.File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return diags
	}

	// Sequences first: factory attribute expressions may reference them
	// at load time through the eval functions.
	for _, block := range file.Sequences {
		seq, err := l.parseSequence(block)
		if err != nil {
			return err
		}
		if err := l.reg.RegisterSequence(seq); err != nil {
			return err
		}
	}

	for _, block := range file.Traits {
		t, err := l.parseTrait(block.Name, block.Body)
		if err != nil {
			return err
		}
		if err := l.reg.RegisterTrait(t); err != nil {
			return err
		}
	}

	for _, block := range file.Factories {
		f, err := l.parseFactory(ctx, block)
		if err != nil {
			return err
		}
		if err := l.reg.RegisterFactory(f); err != nil {
			return err
		}
	}

	return nil
}

// parseFactory decodes one 'factory' block into an unsealed factory.
func (l *Loader) parseFactory(ctx context.Context, block *schema.FactoryBlock) (*factory.Factory, error) {
	logger := ctxlog.FromContext(ctx)

	content, diags := block.Body.Content(schema.FactoryBody)
	if diags.HasErrors() {
		return nil, fmt.Errorf("factory %q: %w", block.Name, diags)
	}

	opts := factory.Options{}
	for _, key := range []string{"class", "parent", "default_strategy"} {
		if a, exists := content.Attributes[key]; exists {
			var s string
			if diags := gohcl.DecodeExpression(a.Expr, nil, &s); diags.HasErrors() {
				return nil, fmt.Errorf("factory %q: %w", block.Name, diags)
			}
			opts[key] = s
		}
	}
	for _, key := range []string{"aliases", "traits"} {
		if a, exists := content.Attributes[key]; exists {
			var names []string
			if diags := gohcl.DecodeExpression(a.Expr, nil, &names); diags.HasErrors() {
				return nil, fmt.Errorf("factory %q: %w", block.Name, diags)
			}
			opts[key] = names
		}
	}

	f, err := factory.New(l.reg, block.Name, opts)
	if err != nil {
		return nil, err
	}

	if a, exists := content.Attributes["allow_overrides"]; exists {
		var allow bool
		if diags := gohcl.DecodeExpression(a.Expr, nil, &allow); diags.HasErrors() {
			return nil, fmt.Errorf("factory %q: %w", block.Name, diags)
		}
		if allow {
			if err := f.AllowOverrides(); err != nil {
				return nil, err
			}
		}
	}

	// content.Blocks preserves source order, which is the declaration
	// order the resolved attribute list must keep.
	for _, inner := range content.Blocks {
		switch inner.Type {
		case "attribute":
			d, err := l.parseAttribute(inner)
			if err != nil {
				return nil, fmt.Errorf("factory %q: %w", block.Name, err)
			}
			if err := f.DeclareAttribute(d); err != nil {
				return nil, err
			}
		case "trait":
			t, err := l.parseTrait(inner.Labels[0], inner.Body)
			if err != nil {
				return nil, fmt.Errorf("factory %q: %w", block.Name, err)
			}
			if err := f.DefineTrait(t); err != nil {
				return nil, err
			}
		}
	}

	logger.Debug("Parsed factory definition.", "factory", f.Name())
	return f, nil
}

// parseTrait decodes a trait body into an immutable trait.
func (l *Loader) parseTrait(name string, body hcl.Body) (*trait.Trait, error) {
	content, diags := body.Content(schema.TraitBody)
	if diags.HasErrors() {
		return nil, fmt.Errorf("trait %q: %w", name, diags)
	}

	var decls []attr.Declaration
	for _, inner := range content.Blocks.OfType("attribute") {
		d, err := l.parseAttribute(inner)
		if err != nil {
			return nil, fmt.Errorf("trait %q: %w", name, err)
		}
		decls = append(decls, d)
	}

	return trait.New(name, decls, nil)
}

// parseAttribute decodes one 'attribute' block into a declaration. A block
// may carry at most one value source; a block with none declares an
// implicit association named after itself.
func (l *Loader) parseAttribute(block *hcl.Block) (attr.Declaration, error) {
	name := block.Labels[0]
	d := attr.Declaration{Name: name}

	content, diags := block.Body.Content(schema.AttributeBody)
	if diags.HasErrors() {
		return d, fmt.Errorf("attribute %q: %w", name, diags)
	}

	sources := 0
	if a, exists := content.Attributes["value"]; exists {
		sources++
		val, valDiags := a.Expr.Value(l.evalContext())
		if valDiags.HasErrors() {
			return d, fmt.Errorf("attribute %q: %w", name, valDiags)
		}
		goVal, err := ctyToGo(val)
		if err != nil {
			return d, fmt.Errorf("attribute %q: %w", name, err)
		}
		d.HasValue = true
		d.Value = goVal
	}
	if a, exists := content.Attributes["expr"]; exists {
		sources++
		d.Generator = l.generator(name, a.Expr)
	}
	if a, exists := content.Attributes["association"]; exists {
		sources++
		var target string
		if diags := gohcl.DecodeExpression(a.Expr, nil, &target); diags.HasErrors() {
			return d, fmt.Errorf("attribute %q: %w", name, diags)
		}
		d.AssociationTarget = target
	}
	if sources > 1 {
		return d, fmt.Errorf("attribute %q: value, expr and association are mutually exclusive", name)
	}

	if a, exists := content.Attributes["ignored"]; exists {
		if diags := gohcl.DecodeExpression(a.Expr, nil, &d.Ignored); diags.HasErrors() {
			return d, fmt.Errorf("attribute %q: %w", name, diags)
		}
	}

	return d, nil
}

// generator defers an attribute expression: it is re-evaluated on every
// build, so sequence() and uuid() calls produce fresh values per object.
func (l *Loader) generator(name string, expr hcl.Expression) attr.Generator {
	return func() (any, error) {
		val, diags := expr.Value(l.evalContext())
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating expression for %q: %w", name, diags)
		}
		return ctyToGo(val)
	}
}

// parseSequence decodes one 'sequence' block.
func (l *Loader) parseSequence(block *schema.SequenceBlock) (*attr.Sequence, error) {
	content, diags := block.Body.Content(schema.SequenceBody)
	if diags.HasErrors() {
		return nil, fmt.Errorf("sequence %q: %w", block.Name, diags)
	}

	format := ""
	if a, exists := content.Attributes["format"]; exists {
		if diags := gohcl.DecodeExpression(a.Expr, nil, &format); diags.HasErrors() {
			return nil, fmt.Errorf("sequence %q: %w", block.Name, diags)
		}
	}

	start := int64(1)
	if a, exists := content.Attributes["start"]; exists {
		if diags := gohcl.DecodeExpression(a.Expr, nil, &start); diags.HasErrors() {
			return nil, fmt.Errorf("sequence %q: %w", block.Name, diags)
		}
	}

	return attr.NewSequence(block.Name, format, start), nil
}
