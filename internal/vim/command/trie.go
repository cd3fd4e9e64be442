package command

import "fmt"

// MatchStatus is the outcome of looking up a key sequence.
type MatchStatus int

const (
	NoMatch MatchStatus = iota
	Partial
	Complete
)

func (s MatchStatus) String() string {
	switch s {
	case Partial:
		return "partial"
	case Complete:
		return "complete"
	default:
		return "none"
	}
}

type trieNode struct {
	children map[Token]*trieNode
	id       ID
	terminal bool
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[Token]*trieNode)}
}

// Trie maps key sequences to commands. A sequence is either a complete
// command, a strict prefix of one or more commands, or nothing; a node is
// never both terminal and a prefix, so the first complete match is final.
type Trie struct {
	root *trieNode
	size int
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{root: newTrieNode()}
}

// Insert binds keys to id. Binding a sequence that is a prefix of, or
// extends, an existing binding is an error.
func (t *Trie) Insert(keys []Token, id ID) error {
	if len(keys) == 0 {
		return fmt.Errorf("empty key sequence for %s", id)
	}
	node := t.root
	for i, k := range keys {
		if node.terminal {
			return fmt.Errorf("%s: prefix %q already bound to %s", id, Join(keys[:i]), node.id)
		}
		child, ok := node.children[k]
		if !ok {
			child = newTrieNode()
			node.children[k] = child
		}
		node = child
	}
	if node.terminal {
		return fmt.Errorf("%s: %q already bound to %s", id, Join(keys), node.id)
	}
	if len(node.children) > 0 {
		return fmt.Errorf("%s: %q is a prefix of another binding", id, Join(keys))
	}
	node.terminal = true
	node.id = id
	t.size++
	return nil
}

// Lookup classifies keys.
func (t *Trie) Lookup(keys []Token) (ID, MatchStatus) {
	node := t.root
	for _, k := range keys {
		child, ok := node.children[k]
		if !ok {
			return 0, NoMatch
		}
		node = child
	}
	if node.terminal {
		return node.id, Complete
	}
	if node == t.root {
		return 0, NoMatch
	}
	return 0, Partial
}

// Len returns the number of bound sequences.
func (t *Trie) Len() int { return t.size }

// Walk visits every binding in no particular order.
func (t *Trie) Walk(fn func(keys []Token, id ID)) {
	var visit func(n *trieNode, prefix []Token)
	visit = func(n *trieNode, prefix []Token) {
		if n.terminal {
			fn(append([]Token(nil), prefix...), n.id)
		}
		for k, child := range n.children {
			visit(child, append(prefix, k))
		}
	}
	visit(t.root, nil)
}
