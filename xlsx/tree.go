// Package xlsx is an in-memory document model for OOXML workbook packages.
// It supports loading a .xlsx archive, reading and writing individual cell
// values by address, and re-serializing the package with every entry it does
// not manage passed through untouched.
package xlsx

import (
	"github.com/clbanning/mxj/v2"
)

// xmlHeader is prepended to every serialized entry; the generic codec emits
// bare elements only.
const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

func init() {
	// Cell text may contain &, < and > and must survive re-serialization.
	mxj.XMLEscapeChars(true)
}

// parseTree decodes XML text into a generic nested map. Attributes carry a
// "-" key prefix, element text lives under "#text", and a repeated child
// collapses to a slice while a single occurrence stays a bare value.
func parseTree(data []byte) (mxj.Map, error) {
	return mxj.NewMapXml(data)
}

// serializeTree encodes a tree back to XML text with a declaration header.
func serializeTree(m mxj.Map) ([]byte, error) {
	out, err := m.Xml()
	if err != nil {
		return nil, err
	}
	return append([]byte(xmlHeader), out...), nil
}

// asSlice normalizes the codec's singular-vs-sequence ambiguity: a missing
// child yields nil, a single child is wrapped, a sequence passes through.
func asSlice(v interface{}) []interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return x
	default:
		return []interface{}{x}
	}
}

// asMap returns v as an element map, or nil when v is absent or scalar
// (the codec decodes an empty element as its text content, not a map).
func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// textOf extracts the text content of a decoded element: either a bare
// string, or the "#text" entry when the element also carries attributes.
func textOf(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case map[string]interface{}:
		s, _ := x["#text"].(string)
		return s
	}
	return ""
}
