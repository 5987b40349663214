// Package yamlstyle detects and re-applies the block-sequence indentation
// style of a YAML document. gopkg.in/yaml.v3 always emits block sequences
// flush with their parent mapping key (zero offset); this package records
// how far the original document actually offset its sequence items, and
// reproduces that offset on dump so a migration script's output survives a
// read-dump round trip without drifting from the file's original style.
package yamlstyle

import "gopkg.in/yaml.v3"

// BlockSequenceIndentation records, for every distinct offset seen, how
// many times a block sequence in the document used that offset (the
// column of its first item minus the column of its parent key). Levels
// preserves first-seen order, matching the document's walk order.
type BlockSequenceIndentation struct {
	Indentations map[int]int
	Levels       []int
	IsConsistent bool
}

func newIndentation() *BlockSequenceIndentation {
	return &BlockSequenceIndentation{Indentations: make(map[int]int)}
}

func (bs *BlockSequenceIndentation) record(offset int) {
	if _, seen := bs.Indentations[offset]; !seen {
		bs.Levels = append(bs.Levels, offset)
	}
	bs.Indentations[offset]++
}

// dominant is the offset that occurred most often, used to pick a single
// indentation style to apply on Dump. Ties are broken by first-seen order.
func (bs *BlockSequenceIndentation) dominant() int {
	best, bestCount := 0, -1
	for _, offset := range bs.Levels {
		if count := bs.Indentations[offset]; count > bestCount {
			best, bestCount = offset, count
		}
	}
	return best
}

// Style is the formatting metadata detected from a YAML document, carried
// through a migration batch so the final dump matches the original style.
type Style struct {
	Indentation BlockSequenceIndentation
}

// Detect walks a parsed document node and records its block-sequence
// indentation style. Pass the DocumentNode returned by yaml.Unmarshal, or
// the root mapping node directly.
func Detect(root *yaml.Node) Style {
	bs := newIndentation()

	node := root
	if node != nil && node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node != nil && node.Kind == yaml.MappingNode {
		walkMapping(node, bs)
	}

	bs.IsConsistent = len(bs.Indentations) <= 1
	return Style{Indentation: *bs}
}

func walkMapping(m *yaml.Node, bs *BlockSequenceIndentation) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := m.Content[i]
		val := m.Content[i+1]
		walkValue(key, val, bs)
	}
}

func walkValue(key, val *yaml.Node, bs *BlockSequenceIndentation) {
	switch val.Kind {
	case yaml.MappingNode:
		walkMapping(val, bs)
	case yaml.SequenceNode:
		if len(val.Content) > 0 {
			bs.record(val.Content[0].Column - key.Column)
		}
		for _, item := range val.Content {
			if item.Kind == yaml.MappingNode {
				walkMapping(item, bs)
			}
		}
	}
}
