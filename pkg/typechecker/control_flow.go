package typechecker

import (
	"startyping/checker-go/pkg/ast"
)

type loopFrame struct {
	breaks    []*Bindings
	continues []*Bindings
}

func (c *Checker) pushLoop() *loopFrame {
	frame := &loopFrame{}
	c.loops = append(c.loops, frame)
	return frame
}

func (c *Checker) popLoop() {
	c.loops = c.loops[:len(c.loops)-1]
}

// checkIf walks each branch against its own copy of env and merges the
// branches that fall through. It reports false when none does.
func (c *Checker) checkIf(env *Bindings, s *ast.IfStatement) bool {
	c.checkExpression(env, s.Condition)
	facts := c.narrowings(env, s.Condition)

	thenEnv := env.Clone()
	applyFacts(thenEnv, facts, true, false)
	elseEnv := env.Clone()
	applyFacts(elseEnv, facts, false, false)

	var live []*Bindings
	if c.checkBlock(thenEnv, s.Then) {
		live = append(live, thenEnv)
	}
	if c.checkBlock(elseEnv, s.Else) {
		live = append(live, elseEnv)
	}
	if len(live) == 0 {
		return false
	}
	env.MergeFrom(live...)
	return true
}

// checkForLoop walks the body once and merges the pre-loop scope, the
// scope at the end of the body and every scope captured at break/continue.
func (c *Checker) checkForLoop(env *Bindings, loop *ast.ForLoop) bool {
	iter := c.checkExpressionInfo(env, loop.Iterable)
	elem := c.ctx.Iter(iter.Type, loop.Iterable.Span())

	pre := env.Clone()
	body := env.Clone()
	c.bindTarget(body, loop.Target, elem, iter.Approximate)

	frame := c.pushLoop()
	bodyLive := c.checkBlock(body, loop.Body)
	c.popLoop()

	branches := []*Bindings{pre}
	if bodyLive {
		branches = append(branches, body)
	}
	branches = append(branches, frame.continues...)
	branches = append(branches, frame.breaks...)
	env.MergeFrom(branches...)
	return true
}

func (c *Checker) checkWhileLoop(env *Bindings, loop *ast.WhileLoop) bool {
	c.checkExpression(env, loop.Condition)
	facts := c.narrowings(env, loop.Condition)
	infinite := isTrueLiteral(loop.Condition)

	pre := env.Clone()
	body := env.Clone()
	applyFacts(body, facts, true, false)

	frame := c.pushLoop()
	bodyLive := c.checkBlock(body, loop.Body)
	c.popLoop()

	var branches []*Bindings
	if !infinite {
		branches = append(branches, pre)
		if bodyLive {
			branches = append(branches, body)
		}
		branches = append(branches, frame.continues...)
	}
	branches = append(branches, frame.breaks...)
	if len(branches) == 0 {
		return false
	}
	env.MergeFrom(branches...)
	return true
}

func isTrueLiteral(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.BooleanLiteral:
		return e.Value
	case *ast.Identifier:
		return e.Name == "True"
	}
	return false
}
