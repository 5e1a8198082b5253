// Package template models the parsed template documents every artifact
// is derived from, and performs placeholder substitution over them.
//
// The three target formats (perspective descriptor, macro plist, action
// manifests) are all nested key-value structures with ordered sequences
// and mixed scalar types. They share one representation here: a tagged
// variant Node tree. The substitution engine walks that tree, so one
// engine services all three serializers.
package template

import (
	"sort"
	"time"
)

// Kind tags the variant held by a Node
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInteger
	KindReal
	KindData
	KindDate
	KindArray
	KindDict
	// Value types the pipeline does not interpret; carried through unchanged
	KindOpaque
)

// Member is one ordered key-value entry of a dict node
type Member struct {
	Key   string
	Value *Node
}

// Node is one value in a template document tree
type Node struct {
	Kind   Kind
	Str    string
	Flag   bool
	Int    int64
	Real   float64
	Data   []byte
	Date   time.Time
	Array  []*Node
	Dict   []Member
	Opaque interface{}
}

// Constructors for the scalar kinds the serializers assemble directly

func String(s string) *Node   { return &Node{Kind: KindString, Str: s} }
func Real(f float64) *Node    { return &Node{Kind: KindReal, Real: f} }
func DataNode(b []byte) *Node { return &Node{Kind: KindData, Data: b} }

// FromValue converts a decoded document value (what the plist and JSON
// codecs hand back for interface{} targets) into a Node tree. Dict keys
// are ordered lexically so repeated runs serialize identically.
func FromValue(v interface{}) *Node {
	switch val := v.(type) {
	case string:
		return String(val)
	case bool:
		return &Node{Kind: KindBool, Flag: val}
	case int:
		return &Node{Kind: KindInteger, Int: int64(val)}
	case int64:
		return &Node{Kind: KindInteger, Int: val}
	case uint64:
		return &Node{Kind: KindInteger, Int: int64(val)}
	case float32:
		return Real(float64(val))
	case float64:
		return Real(val)
	case []byte:
		return DataNode(append([]byte(nil), val...))
	case time.Time:
		return &Node{Kind: KindDate, Date: val}
	case []interface{}:
		arr := make([]*Node, len(val))
		for i, item := range val {
			arr[i] = FromValue(item)
		}
		return &Node{Kind: KindArray, Array: arr}
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dict := make([]Member, 0, len(val))
		for _, k := range keys {
			dict = append(dict, Member{Key: k, Value: FromValue(val[k])})
		}
		return &Node{Kind: KindDict, Dict: dict}
	default:
		return &Node{Kind: KindOpaque, Opaque: v}
	}
}

// ToValue converts a Node tree back into the plain values the plist and
// JSON codecs serialize.
func (n *Node) ToValue() interface{} {
	switch n.Kind {
	case KindString:
		return n.Str
	case KindBool:
		return n.Flag
	case KindInteger:
		return n.Int
	case KindReal:
		return n.Real
	case KindData:
		return n.Data
	case KindDate:
		return n.Date
	case KindArray:
		arr := make([]interface{}, len(n.Array))
		for i, item := range n.Array {
			arr[i] = item.ToValue()
		}
		return arr
	case KindDict:
		dict := make(map[string]interface{}, len(n.Dict))
		for _, m := range n.Dict {
			dict[m.Key] = m.Value.ToValue()
		}
		return dict
	default:
		return n.Opaque
	}
}

// Get returns the value for key in a dict node, or nil
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != KindDict {
		return nil
	}
	for _, m := range n.Dict {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// Set replaces the value for key in a dict node, appending when absent
func (n *Node) Set(key string, value *Node) {
	for i, m := range n.Dict {
		if m.Key == key {
			n.Dict[i].Value = value
			return
		}
	}
	n.Dict = append(n.Dict, Member{Key: key, Value: value})
}

// StringAt returns the string value for key in a dict node, or ""
func (n *Node) StringAt(key string) string {
	if v := n.Get(key); v != nil && v.Kind == KindString {
		return v.Str
	}
	return ""
}

// Clone returns a deep copy of the tree
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.Data != nil {
		out.Data = append([]byte(nil), n.Data...)
	}
	if n.Array != nil {
		out.Array = make([]*Node, len(n.Array))
		for i, item := range n.Array {
			out.Array[i] = item.Clone()
		}
	}
	if n.Dict != nil {
		out.Dict = make([]Member, len(n.Dict))
		for i, m := range n.Dict {
			out.Dict[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
	}
	return &out
}
