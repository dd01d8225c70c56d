package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/nihei9/gply/driver/token"
)

type NodeType int

const (
	NodeTypeTerminal    = 1
	NodeTypeNonTerminal = 2
)

// Node is a node of a concrete syntax tree. Row and Col are 1-based.
type Node struct {
	Type     NodeType
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node
}

func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.Type {
	case NodeTypeTerminal:
		return json.Marshal(struct {
			Type     NodeType `json:"type"`
			KindName string   `json:"kind_name"`
			Text     string   `json:"text"`
			Row      int      `json:"row"`
			Col      int      `json:"col"`
		}{
			Type:     n.Type,
			KindName: n.KindName,
			Text:     n.Text,
			Row:      n.Row,
			Col:      n.Col,
		})
	case NodeTypeNonTerminal:
		return json.Marshal(struct {
			Type     NodeType `json:"type"`
			KindName string   `json:"kind_name"`
			Children []*Node  `json:"children"`
		}{
			Type:     n.Type,
			KindName: n.KindName,
			Children: n.Children,
		})
	default:
		return nil, fmt.Errorf("invalid node type: %v", n.Type)
	}
}

// TreeActions returns actions that make a parser build a concrete syntax tree. The value Parse returns is
// the root *Node.
func TreeActions(gram Grammar) []Action {
	actions := make([]Action, gram.ProductionCount())
	for prod := range actions {
		if prod == gram.StartProduction() {
			continue
		}
		actions[prod] = NodeAction(gram.NonTerminal(gram.LHS(prod)))
	}
	return actions
}

// NodeAction returns an action making a non-terminal node named `kindName`. Its children are the values
// of the RHS; a token becomes a terminal node.
func NodeAction(kindName string) Action {
	return func(_ interface{}, values []interface{}) (interface{}, error) {
		children := make([]*Node, len(values))
		for i, v := range values {
			switch c := v.(type) {
			case *token.Token:
				children[i] = &Node{
					Type:     NodeTypeTerminal,
					KindName: c.Type,
					Text:     c.Value,
					Row:      c.Pos.Line,
					Col:      c.Pos.Col,
				}
			case *Node:
				children[i] = c
			default:
				return nil, fmt.Errorf("unexpected value in a syntax tree: %T", v)
			}
		}
		return &Node{
			Type:     NodeTypeNonTerminal,
			KindName: kindName,
			Children: children,
		}, nil
	}
}

// PrintTree prints a syntax tree whose root is `node`.
func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	switch node.Type {
	case NodeTypeTerminal:
		fmt.Fprintf(w, "%v%v %v\n", ruledLine, node.KindName, strconv.Quote(node.Text))
	case NodeTypeNonTerminal:
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)

		num := len(node.Children)
		for i, child := range node.Children {
			var line string
			if num > 1 && i < num-1 {
				line = "├─ "
			} else {
				line = "└─ "
			}

			var prefix string
			if i >= num-1 {
				prefix = "   "
			} else {
				prefix = "│  "
			}

			printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
		}
	}
}
