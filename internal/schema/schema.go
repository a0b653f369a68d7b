// Package schema is a purpose-built structural validator for the four model
// output shapes the pipeline governs. It is deliberately not a general JSON
// Schema engine: a closed set of node kinds interpreted by one recursive
// walk keeps it small and fully testable.
package schema

type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
)

// Node is one tagged variant in a schema tree. Only the fields relevant to
// its Kind are set.
type Node struct {
	Kind Kind

	// object
	Required   []string
	Properties map[string]*Node

	// array
	Items    *Node
	MinItems *int
	MaxItems *int

	// string
	Enum   []string
	MinLen *int
	MaxLen *int

	// number / integer (inclusive bounds)
	Minimum *float64
	Maximum *float64
}

// Constructors keep schema definitions declarative.

func Object(properties map[string]*Node, required ...string) *Node {
	return &Node{Kind: KindObject, Properties: properties, Required: required}
}

func Array(items *Node) *Node {
	return &Node{Kind: KindArray, Items: items}
}

func ArrayBounded(items *Node, minItems, maxItems int) *Node {
	return &Node{Kind: KindArray, Items: items, MinItems: &minItems, MaxItems: &maxItems}
}

func String() *Node {
	return &Node{Kind: KindString}
}

func StringBounded(minLen, maxLen int) *Node {
	return &Node{Kind: KindString, MinLen: &minLen, MaxLen: &maxLen}
}

func NonEmptyString() *Node {
	one := 1
	return &Node{Kind: KindString, MinLen: &one}
}

func Enum(values ...string) *Node {
	return &Node{Kind: KindString, Enum: values}
}

func Number(min, max float64) *Node {
	return &Node{Kind: KindNumber, Minimum: &min, Maximum: &max}
}

func AnyNumber() *Node {
	return &Node{Kind: KindNumber}
}

func Integer(min float64) *Node {
	return &Node{Kind: KindInteger, Minimum: &min}
}

func Boolean() *Node {
	return &Node{Kind: KindBoolean}
}
