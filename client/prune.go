package client

import (
	"context"
	"sort"
	"strings"

	"github.com/beevik/etree"

	domerrors "github.com/4and4/milo-server/internal/domain/errors"
)

// Dynamic block definitions follow the "<dataset>_get" naming convention.
const dynamicSuffix = "_get"

// PruneResult reports what pruning did to a document.
type PruneResult struct {
	// XML is the repaired document, with unresolvable references removed.
	XML string
	// Imported lists datasets that were imported to satisfy references.
	Imported []string
	// Stripped lists block types removed because no source could satisfy
	// them.
	Stripped []string
}

// Prune repairs a restored document before it may touch the workspace.
// References to dynamic definitions that are neither currently defined
// nor importable are stripped; importable ones are imported, and Prune
// returns only after every queued import has completed, so the caller
// never applies a document with dangling references.
func Prune(ctx context.Context, xmlText string, reg Registry, imp Importer) (*PruneResult, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlText); err != nil {
		return nil, domerrors.ErrMalformedContent
	}

	toImport := make(map[string]bool)
	var toRemove []*etree.Element
	removedTypes := make(map[string]bool)
	for _, el := range doc.FindElements("//block") {
		blockType := el.SelectAttrValue("type", "")
		if !strings.HasSuffix(blockType, dynamicSuffix) {
			continue
		}
		if reg != nil && reg.Defined(blockType) {
			continue
		}
		dataset := strings.TrimSuffix(blockType, dynamicSuffix)
		if imp != nil && imp.Available(dataset) {
			toImport[dataset] = true
			continue
		}
		toRemove = append(toRemove, el)
		removedTypes[blockType] = true
	}

	for _, el := range toRemove {
		// Nested matches may already be detached with their ancestor;
		// RemoveChild is a no-op then.
		if parent := el.Parent(); parent != nil {
			parent.RemoveChild(el)
		}
	}

	imported := sortedKeys(toImport)
	for _, dataset := range imported {
		if err := imp.Import(ctx, dataset); err != nil {
			return nil, err
		}
	}

	out, err := doc.WriteToString()
	if err != nil {
		return nil, domerrors.ErrMalformedContent
	}
	return &PruneResult{
		XML:      out,
		Imported: imported,
		Stripped: sortedKeys(removedTypes),
	}, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
