package trie

// VisitFn is the node-visitor shape for a single-Map DFS: returning true
// stops the traversal early.
type VisitFn func(node Node) bool

// LeafVisitFn receives only leaf items.
type LeafVisitFn func(item *Item) bool

// visitFrame is one level of an explicit-stack DFS: the inner node
// being visited and the next branch to examine. Recursion is avoided
// throughout this package because the tree can be 64 levels deep.
type visitFrame struct {
	node        *InnerNode
	nextBranch  int
}

// visitNodes performs a pre-order DFS from root, invoking fn on every
// node including the root itself. Leaves are visited without descent;
// inner nodes with no populated branches simply terminate that path.
// Returning true from fn stops the traversal.
func visitNodes(root Node, resolve func(hash Hash) Node, fn VisitFn) {
	if root == nil {
		return
	}
	if fn(root) {
		return
	}
	inner, ok := root.(*InnerNode)
	if !ok {
		return
	}

	stack := []*visitFrame{{node: inner, nextBranch: 0}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.nextBranch >= BranchFactor {
			stack = stack[:len(stack)-1]
			continue
		}
		branch := top.nextBranch
		top.nextBranch++
		if top.node.IsEmptyBranch(branch) {
			continue
		}
		child := top.node.GetChild(branch)
		if child == nil {
			child = resolve(top.node.GetChildHash(branch))
		}
		if child == nil {
			continue
		}
		if fn(child) {
			return
		}
		if childInner, ok := child.(*InnerNode); ok {
			stack = append(stack, &visitFrame{node: childInner, nextBranch: 0})
		}
	}
}

// visitLeaves is a thin wrapper over visitNodes forwarding only leaf items.
func visitLeaves(root Node, resolve func(hash Hash) Node, fn LeafVisitFn) {
	visitNodes(root, resolve, func(n Node) bool {
		leaf, ok := n.(*LeafNode)
		if !ok {
			return false
		}
		return fn(leaf.Item())
	})
}

// PairVisitFn is invoked during a simultaneous DFS of two Maps, used by
// deepCompare. a and b are the paired nodes at the same position; either
// may be nil if the position is absent in that Map.
type PairVisitFn func(a, b Node) bool

// pairFrame is one level of a simultaneous two-tree DFS.
type pairFrame struct {
	a, b       *InnerNode
	nextBranch int
}

// visitPair performs a synchronized pre-order DFS over two trees rooted
// at a and b, calling fn at every visited position, the roots included.
// Descent continues wherever at least one side is an inner node; fn
// observes nil for a side that has nothing at that position.
func visitPair(a, b Node, resolveA, resolveB func(hash Hash) Node, fn PairVisitFn) {
	if fn(a, b) {
		return
	}
	aInner, aOk := a.(*InnerNode)
	bInner, bOk := b.(*InnerNode)
	if !aOk && !bOk {
		return
	}
	stack := []*pairFrame{{a: aInner, b: bInner, nextBranch: 0}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.nextBranch >= BranchFactor {
			stack = stack[:len(stack)-1]
			continue
		}
		branch := top.nextBranch
		top.nextBranch++

		var childA, childB Node
		if top.a != nil && !top.a.IsEmptyBranch(branch) {
			childA = top.a.GetChild(branch)
			if childA == nil {
				childA = resolveA(top.a.GetChildHash(branch))
			}
		}
		if top.b != nil && !top.b.IsEmptyBranch(branch) {
			childB = top.b.GetChild(branch)
			if childB == nil {
				childB = resolveB(top.b.GetChildHash(branch))
			}
		}
		if childA == nil && childB == nil {
			continue
		}
		if fn(childA, childB) {
			return
		}
		nextA, _ := childA.(*InnerNode)
		nextB, _ := childB.(*InnerNode)
		if nextA != nil || nextB != nil {
			stack = append(stack, &pairFrame{a: nextA, b: nextB, nextBranch: 0})
		}
	}
}
