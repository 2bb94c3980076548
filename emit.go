package edn

import (
	"fmt"
	"math"
	"sort"

	"github.com/cirru/cirru-edn-go/cirru"
)

// Format renders a value back to source text. The layout is canonical:
// set members are fully sorted, and map and record entries print
// literal-valued pairs first, then in key order, so equal values always
// produce identical text. useInline lets flat pairs share the head line
// even after another group; either way the text reparses to an equal
// value. AnyRef values have no textual form and return an error.
func Format(v *Value, useInline bool) (string, error) {
	node, err := assemble(v)
	if err != nil {
		return "", err
	}
	if node.IsLeaf() {
		// a bare literal is not a valid top-level expression; wrap it
		node = cirru.NewList(cirru.NewLeaf("do"), node)
	}
	return cirru.Format([]*cirru.Node{node}, cirru.WriterOptions{UseInline: useInline})
}

func assemble(v *Value) (*cirru.Node, error) {
	switch v.kind {
	case KindNil:
		return cirru.NewLeaf("nil"), nil
	case KindBool:
		if v.boolVal {
			return cirru.NewLeaf("true"), nil
		}
		return cirru.NewLeaf("false"), nil
	case KindNumber:
		if math.IsNaN(v.numVal) || math.IsInf(v.numVal, 0) {
			return nil, fmt.Errorf("edn: non-finite number cannot be written as code: %s", v)
		}
		return cirru.NewLeaf(formatNumber(v.numVal)), nil
	case KindSymbol:
		return cirru.NewLeaf("'" + v.strVal), nil
	case KindTag:
		return cirru.NewLeaf(":" + v.strVal), nil
	case KindStr:
		return cirru.NewLeaf("|" + v.strVal), nil
	case KindQuote:
		return cirru.NewList(cirru.NewLeaf("quote"), v.quoteVal), nil
	case KindTuple:
		return assembleTuple(v.tupleVal)
	case KindList:
		return assembleSeq("[]", v.listVal)
	case KindBuffer:
		children := make([]*cirru.Node, 0, len(v.bufVal)+1)
		children = append(children, cirru.NewLeaf("buf"))
		for _, b := range v.bufVal {
			children = append(children, cirru.NewLeaf(fmt.Sprintf("%02x", b)))
		}
		return cirru.NewList(children...), nil
	case KindSet:
		items := v.setVal.Items()
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Compare(items[j]) < 0
		})
		return assembleSeq("#{}", items)
	case KindMap:
		return assembleMap(v.mapVal)
	case KindRecord:
		return assembleRecord(v.recVal)
	case KindAtom:
		inner, err := assemble(v.atomVal)
		if err != nil {
			return nil, err
		}
		return cirru.NewList(cirru.NewLeaf("atom"), inner), nil
	case KindAnyRef:
		return nil, fmt.Errorf("edn: any-ref cannot be written as code: %s", v)
	default:
		return nil, fmt.Errorf("edn: cannot write %s value as code", v.kind)
	}
}

func assembleTuple(t *TupleView) (*cirru.Node, error) {
	children := make([]*cirru.Node, 0, len(t.Extra)+3)
	if t.EnumTag != nil {
		children = append(children, cirru.NewLeaf("%::"))
		enumNode, err := assemble(t.EnumTag)
		if err != nil {
			return nil, err
		}
		children = append(children, enumNode)
	} else {
		children = append(children, cirru.NewLeaf("::"))
	}
	tagNode, err := assemble(t.Tag)
	if err != nil {
		return nil, err
	}
	children = append(children, tagNode)
	for _, item := range t.Extra {
		node, err := assemble(item)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}
	return cirru.NewList(children...), nil
}

func assembleSeq(head string, items []*Value) (*cirru.Node, error) {
	children := make([]*cirru.Node, 0, len(items)+1)
	children = append(children, cirru.NewLeaf(head))
	for _, item := range items {
		node, err := assemble(item)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}
	return cirru.NewList(children...), nil
}

func assembleMap(m *MapView) (*cirru.Node, error) {
	entries := m.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Value.IsLiteral() != b.Value.IsLiteral() {
			return a.Value.IsLiteral()
		}
		return a.Key.Compare(b.Key) < 0
	})
	children := make([]*cirru.Node, 0, len(entries)+1)
	children = append(children, cirru.NewLeaf("{}"))
	for _, e := range entries {
		keyNode, err := assemble(e.Key)
		if err != nil {
			return nil, err
		}
		valueNode, err := assemble(e.Value)
		if err != nil {
			return nil, err
		}
		children = append(children, cirru.NewList(keyNode, valueNode))
	}
	return cirru.NewList(children...), nil
}

func assembleRecord(r *RecordView) (*cirru.Node, error) {
	pairs := make([]RecordPair, len(r.Pairs))
	copy(pairs, r.Pairs)
	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.Value.IsLiteral() != b.Value.IsLiteral() {
			return a.Value.IsLiteral()
		}
		return a.Key.Cmp(b.Key) < 0
	})
	children := make([]*cirru.Node, 0, len(pairs)+2)
	children = append(children, cirru.NewLeaf("%{}"), cirru.NewLeaf(":"+r.Tag.Name()))
	for _, pair := range pairs {
		valueNode, err := assemble(pair.Value)
		if err != nil {
			return nil, err
		}
		children = append(children, cirru.NewList(cirru.NewLeaf(":"+pair.Key.Name()), valueNode))
	}
	return cirru.NewList(children...), nil
}
