// Package flow builds the control-flow graph the semantic analyzer narrows
// identifier types against (§4.5): a small arena of tagged nodes connected
// by antecedent edges, with no back-edges (loops are walked without
// narrowing, so the graph stays a DAG and every query terminates without
// cycle detection).
package flow

// NodeKind tags a flow node's role.
type NodeKind int

const (
	KindStart NodeKind = iota
	KindBranchLabel
	KindTrueCondition
	KindFalseCondition
	KindReturn
	KindUnreachable
	KindJoin
)

// Narrower is satisfied by both Binder (the live, still-growing graph a
// walk queries mid-pass) and Tree (the finished snapshot a post-hoc editor
// service queries), so a narrowing helper can work against either.
type Narrower interface {
	IsNarrowedTruthy(flowID int, conditionKey string) bool
	IsNarrowedFalsy(flowID int, conditionKey string) bool
}

// Node is one point in the flow graph. ConditionKey is populated only for
// TrueCondition/FalseCondition nodes: a caller-supplied canonical name for
// the narrowed value (typically a symbol ID), since this package has no
// notion of the AST or symbol table and narrowing is matched by identity,
// not by re-walking an expression tree.
type Node struct {
	ID           int
	Kind         NodeKind
	ConditionKey string
	Antecedents  []int
}

// Binder constructs a flow graph incrementally while the semantic analyzer
// walks the AST. Binder is mutable; Finish takes an immutable snapshot.
type Binder struct {
	nodes       []*Node
	start       int
	unreachable int
	offsetBind  map[int]int
}

// NewBinder creates a Binder seeded with its distinguished Start and
// Unreachable nodes.
func NewBinder() *Binder {
	b := &Binder{offsetBind: make(map[int]int)}
	b.start = b.newNode(KindStart, "")
	b.unreachable = b.newNode(KindUnreachable, "")
	return b
}

func (b *Binder) newNode(kind NodeKind, key string) int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, &Node{ID: id, Kind: kind, ConditionKey: key})
	return id
}

func (b *Binder) Start() int       { return b.start }
func (b *Binder) Unreachable() int { return b.unreachable }

func (b *Binder) CreateBranchLabel() int               { return b.newNode(KindBranchLabel, "") }
func (b *Binder) CreateTrueCondition(key string) int   { return b.newNode(KindTrueCondition, key) }
func (b *Binder) CreateFalseCondition(key string) int  { return b.newNode(KindFalseCondition, key) }
func (b *Binder) CreateReturn() int                    { return b.newNode(KindReturn, "") }
func (b *Binder) CreateJoin() int                      { return b.newNode(KindJoin, "") }

// AddAntecedent records that control can reach `to` from `from`.
func (b *Binder) AddAntecedent(to, from int) {
	b.nodes[to].Antecedents = append(b.nodes[to].Antecedents, from)
}

// BindOffset pins the byte offset of an identifier reference to the flow
// node reached just before its evaluation, per §3's Flow node data model.
func (b *Binder) BindOffset(offset, flowID int) {
	b.offsetBind[offset] = flowID
}

// IsUnreachable reports whether flowID is the distinguished Unreachable
// node (current flow becomes this after `return` or `error(...)`).
func (b *Binder) IsUnreachable(flowID int) bool { return flowID == b.unreachable }

// FlowAt returns the flow node bound to offset by BindOffset, if any. Pass
// two binds an expression's offset to its flow node before inferring its
// type, so a type-inference step running mid-walk can already query
// narrowing through the Binder, without waiting for Finish.
func (b *Binder) FlowAt(offset int) (int, bool) {
	id, ok := b.offsetBind[offset]
	return id, ok
}

// IsNarrowedTruthy is the Binder-side counterpart of Tree.IsNarrowedTruthy,
// usable while the graph is still being built during pass two.
func (b *Binder) IsNarrowedTruthy(flowID int, conditionKey string) bool {
	return narrowed(b.nodes, flowID, conditionKey, KindTrueCondition, map[int]bool{})
}

// IsNarrowedFalsy is the Binder-side counterpart of Tree.IsNarrowedFalsy.
func (b *Binder) IsNarrowedFalsy(flowID int, conditionKey string) bool {
	return narrowed(b.nodes, flowID, conditionKey, KindFalseCondition, map[int]bool{})
}

// Tree is an immutable snapshot of a finished flow graph.
type Tree struct {
	nodes       []*Node
	start       int
	unreachable int
	offsetBind  map[int]int
}

// Finish freezes the Binder's current state into a Tree. The Binder must
// not be mutated further after this call (the analyzer calls it once, at
// the end of the second pass).
func (b *Binder) Finish() *Tree {
	return &Tree{nodes: b.nodes, start: b.start, unreachable: b.unreachable, offsetBind: b.offsetBind}
}

func (t *Tree) Start() int       { return t.start }
func (t *Tree) Unreachable() int { return t.unreachable }

// FlowAt returns the flow node bound to offset by BindOffset, if any.
func (t *Tree) FlowAt(offset int) (int, bool) {
	id, ok := t.offsetBind[offset]
	return id, ok
}

// IsNarrowedTruthy reports whether every path reaching flowID has passed
// through a TrueCondition carrying conditionKey — i.e. whether the value
// identified by conditionKey is provably truthy at this point in the
// program. An Unreachable node satisfies any narrowing vacuously (dead
// code proves everything). A node with no antecedents (only Start) proves
// nothing.
func (t *Tree) IsNarrowedTruthy(flowID int, conditionKey string) bool {
	return narrowed(t.nodes, flowID, conditionKey, KindTrueCondition, map[int]bool{})
}

// IsNarrowedFalsy is the FalseCondition counterpart, used for `if not x`
// and `x == nil` style narrowing.
func (t *Tree) IsNarrowedFalsy(flowID int, conditionKey string) bool {
	return narrowed(t.nodes, flowID, conditionKey, KindFalseCondition, map[int]bool{})
}

// narrowed walks antecedents from flowID looking for a path where every
// branch has passed through a `want`-kind node carrying conditionKey. It is
// shared between Tree and Binder since a Binder's nodes only ever grow
// during pass two and are never mutated in place, so the same walk is safe
// against the live, in-progress graph.
func narrowed(nodes []*Node, flowID int, conditionKey string, want NodeKind, memo map[int]bool) bool {
	if v, ok := memo[flowID]; ok {
		return v
	}
	memo[flowID] = false // no back-edges are ever created, so this only guards re-visits via Join fan-in
	node := nodes[flowID]

	var result bool
	switch {
	case node.Kind == KindUnreachable:
		result = true
	case node.Kind == want && node.ConditionKey == conditionKey:
		result = true
	case len(node.Antecedents) > 0:
		result = true
		for _, a := range node.Antecedents {
			if !narrowed(nodes, a, conditionKey, want, memo) {
				result = false
				break
			}
		}
	default:
		result = false
	}
	memo[flowID] = result
	return result
}
