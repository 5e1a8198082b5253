package template

import (
	"encoding/json"
	"fmt"

	"howett.net/plist"
)

// DecodePlist parses a property-list document (XML or binary) into a
// Node tree. Each call parses fresh; documents are never cached or
// shared between runs.
func DecodePlist(data []byte) (*Node, error) {
	var v interface{}
	if _, err := plist.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse plist: %w", err)
	}
	return FromValue(v), nil
}

// EncodePlistXML serializes a Node tree as an XML property list
func EncodePlistXML(n *Node) ([]byte, error) {
	data, err := plist.MarshalIndent(n.ToValue(), plist.XMLFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("failed to encode plist: %w", err)
	}
	return data, nil
}

// EncodePlistBinary serializes a Node tree as a binary property list
func EncodePlistBinary(n *Node) ([]byte, error) {
	data, err := plist.Marshal(n.ToValue(), plist.BinaryFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plist: %w", err)
	}
	return data, nil
}

// DecodeJSON parses a JSON manifest into a Node tree
func DecodeJSON(data []byte) (*Node, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return FromValue(v), nil
}

// EncodeJSON serializes a Node tree as compact JSON, matching the
// manifest form the consuming application writes itself
func EncodeJSON(n *Node) ([]byte, error) {
	data, err := json.Marshal(n.ToValue())
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return data, nil
}
