package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIfNarrowsTruthyOnThenBranch(t *testing.T) {
	b := NewBinder()
	trueCond := b.CreateTrueCondition("u")
	b.AddAntecedent(trueCond, b.Start())

	tree := b.Finish()
	assert.True(t, tree.IsNarrowedTruthy(trueCond, "u"))
	assert.False(t, tree.IsNarrowedTruthy(trueCond, "other"))
}

func TestJoinAfterIfElseDoesNotNarrow(t *testing.T) {
	b := NewBinder()
	trueCond := b.CreateTrueCondition("u")
	falseCond := b.CreateFalseCondition("u")
	b.AddAntecedent(trueCond, b.Start())
	b.AddAntecedent(falseCond, b.Start())

	join := b.CreateBranchLabel()
	b.AddAntecedent(join, trueCond)
	b.AddAntecedent(join, falseCond)

	tree := b.Finish()
	assert.False(t, tree.IsNarrowedTruthy(join, "u"), "the false branch does not prove u truthy, so the join can't either")
}

func TestReturnInElseMakesJoinInheritOnlyTrueBranch(t *testing.T) {
	b := NewBinder()
	trueCond := b.CreateTrueCondition("u")
	falseCond := b.CreateFalseCondition("u")
	b.AddAntecedent(trueCond, b.Start())
	b.AddAntecedent(falseCond, b.Start())

	// else branch returns: its tail becomes Unreachable.
	unreachableTail := b.Unreachable()
	b.AddAntecedent(unreachableTail, falseCond)

	join := b.CreateBranchLabel()
	b.AddAntecedent(join, trueCond)
	// the unreachable else-tail is not wired into the join: it never reaches it.

	tree := b.Finish()
	assert.True(t, tree.IsNarrowedTruthy(join, "u"), "only the truthy branch reaches the join after the falsy branch returned")
}

func TestAssertNarrowsSubsequentFlow(t *testing.T) {
	b := NewBinder()
	assertCond := b.CreateTrueCondition("u")
	b.AddAntecedent(assertCond, b.Start())

	after := b.CreateBranchLabel()
	b.AddAntecedent(after, assertCond)

	tree := b.Finish()
	assert.True(t, tree.IsNarrowedTruthy(after, "u"))
}

func TestBindOffsetAndFlowAt(t *testing.T) {
	b := NewBinder()
	b.BindOffset(42, b.Start())
	tree := b.Finish()

	id, ok := tree.FlowAt(42)
	assert.True(t, ok)
	assert.Equal(t, tree.Start(), id)

	_, ok = tree.FlowAt(999)
	assert.False(t, ok)
}

func TestIsUnreachableAfterReturn(t *testing.T) {
	b := NewBinder()
	assert.True(t, b.IsUnreachable(b.Unreachable()))
	assert.False(t, b.IsUnreachable(b.Start()))
}
