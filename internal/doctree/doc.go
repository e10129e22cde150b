// Package doctree implements the tree-structured rich-text document model
// that comment anchors attach to. It provides token-stream position
// addressing, mark handling, mutation commands with position remapping,
// and JSON serialization for the whole tree.
//
// Positions are offsets into the document's flattened token stream: a text
// leaf contributes one token per rune, a void leaf contributes one token,
// and every other node contributes an opening and a closing boundary token
// around its content. The document's position space is [0, ContentSize()].
package doctree
