// Package query implements the DNS question-section entry: a query name
// and query type. The query class is always the Internet class on the
// wire; it is not a field of Query.
package query

import (
	"fmt"

	"github.com/tkowalski/recdns/internal/buffer"
	"github.com/tkowalski/recdns/internal/querytype"
)

// classIN is the Internet query class, the only one this resolver sends or
// expects; RFC 1035 §3.2.4 reserves the others for protocol families that
// never saw production use.
const classIN uint16 = 1

// Query is one entry of a DNS message's question section.
type Query struct {
	Name string
	Type querytype.Type
}

// New builds a Query.
func New(name string, qtype querytype.Type) Query {
	return Query{Name: name, Type: qtype}
}

// Encode writes the query to buf at the current cursor. QCLASS is always
// written as classIN, regardless of what a decoded request carried.
func (q Query) Encode(buf *buffer.Buffer) error {
	if err := buf.WriteName(q.Name); err != nil {
		return fmt.Errorf("query: encode name: %w", err)
	}
	if err := buf.WriteU16(q.Type.ToNum()); err != nil {
		return fmt.Errorf("query: encode type: %w", err)
	}
	if err := buf.WriteU16(classIN); err != nil {
		return fmt.Errorf("query: encode class: %w", err)
	}
	return nil
}

// Decode reads a query from buf at the current cursor. QCLASS is read and
// discarded: nothing downstream branches on it, and Encode always emits
// classIN regardless of what was decoded.
func Decode(buf *buffer.Buffer) (Query, error) {
	name, err := buf.ReadName()
	if err != nil {
		return Query{}, fmt.Errorf("query: decode name: %w", err)
	}
	typeNum, err := buf.ReadU16()
	if err != nil {
		return Query{}, fmt.Errorf("query: decode type: %w", err)
	}
	if _, err := buf.ReadU16(); err != nil { // class, discarded
		return Query{}, fmt.Errorf("query: decode class: %w", err)
	}
	return Query{Name: name, Type: querytype.FromNum(typeNum)}, nil
}
