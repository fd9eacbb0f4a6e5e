package state

import (
	"fmt"
	"strconv"
)

// appendSegment is the JSON Patch token for "one past the end of a list".
const appendSegment = "-"

// lookup walks segs from node. A missing branch at any depth yields Absent.
func lookup(node Value, segs []string) Value {
	for _, seg := range segs {
		node = node.Child(seg)
		if node.IsAbsent() {
			return node
		}
	}
	return node
}

// listIndex parses seg as a 1-based position in a list of length n and
// returns the 0-based slice index. When allowEnd is set, position n+1 and "-"
// are accepted (append position).
func listIndex(seg string, n int, allowEnd bool) (int, error) {
	if seg == appendSegment {
		if allowEnd {
			return n, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrIndexOutOfRange, seg)
	}
	pos, err := strconv.Atoi(seg)
	if err != nil || pos < 1 {
		return 0, fmt.Errorf("%w: %q is not a list position", ErrIncompatibleNode, seg)
	}
	i := pos - 1
	if i > n || (i == n && !allowEnd) {
		return 0, fmt.Errorf("%w: position %d, length %d", ErrIndexOutOfRange, pos, n)
	}
	return i, nil
}

// assign sets the node at segs to v and returns the updated node.
// Missing intermediate branches are created as maps. Writing past a scalar
// fails with ErrIncompatibleNode.
func assign(node Value, segs []string, v Value) (Value, error) {
	if len(segs) == 0 {
		return v, nil
	}
	seg, rest := segs[0], segs[1:]

	switch node.kind {
	case KindAbsent:
		node = Map(nil)
		fallthrough
	case KindMap:
		child, err := assign(node.m[seg], rest, v)
		if err != nil {
			return node, err
		}
		node.m[seg] = child
		return node, nil
	case KindList:
		i, err := listIndex(seg, len(node.list), true)
		if err != nil {
			return node, err
		}
		if i == len(node.list) {
			child, err := assign(Absent(), rest, v)
			if err != nil {
				return node, err
			}
			node.list = append(node.list, child)
			return node, nil
		}
		child, err := assign(node.list[i], rest, v)
		if err != nil {
			return node, err
		}
		node.list[i] = child
		return node, nil
	default:
		return node, fmt.Errorf("%w: cannot descend into %s at %q", ErrIncompatibleNode, node.kind, seg)
	}
}

// replace implements JSON Patch "replace": every segment, including the
// last, must already exist. Nothing is created.
func replace(node Value, segs []string, v Value) (Value, error) {
	if len(segs) == 0 {
		return v, nil
	}
	seg, rest := segs[0], segs[1:]

	switch node.kind {
	case KindMap:
		child, ok := node.m[seg]
		if !ok {
			return node, fmt.Errorf("%w: %q", ErrPathNotFound, seg)
		}
		child, err := replace(child, rest, v)
		if err != nil {
			return node, err
		}
		node.m[seg] = child
		return node, nil
	case KindList:
		i, err := listIndex(seg, len(node.list), false)
		if err != nil {
			return node, err
		}
		child, err := replace(node.list[i], rest, v)
		if err != nil {
			return node, err
		}
		node.list[i] = child
		return node, nil
	case KindAbsent:
		return node, fmt.Errorf("%w: %q", ErrPathNotFound, seg)
	default:
		return node, fmt.Errorf("%w: cannot descend into %s at %q", ErrIncompatibleNode, node.kind, seg)
	}
}

// insert implements JSON Patch "add": on a list the value is inserted before
// the addressed index (or appended for "-"), shifting later items up; on a
// map it behaves like assign.
func insert(node Value, segs []string, v Value) (Value, error) {
	if len(segs) == 0 {
		return v, nil
	}
	if len(segs) > 1 {
		seg, rest := segs[0], segs[1:]
		switch node.kind {
		case KindAbsent:
			node = Map(nil)
			fallthrough
		case KindMap:
			child, err := insert(node.m[seg], rest, v)
			if err != nil {
				return node, err
			}
			node.m[seg] = child
			return node, nil
		case KindList:
			i, err := listIndex(seg, len(node.list), false)
			if err != nil {
				return node, err
			}
			child, err := insert(node.list[i], rest, v)
			if err != nil {
				return node, err
			}
			node.list[i] = child
			return node, nil
		default:
			return node, fmt.Errorf("%w: cannot descend into %s at %q", ErrIncompatibleNode, node.kind, seg)
		}
	}

	seg := segs[0]
	if node.kind != KindList {
		return assign(node, segs, v)
	}
	i, err := listIndex(seg, len(node.list), true)
	if err != nil {
		return node, err
	}
	items := make([]Value, 0, len(node.list)+1)
	items = append(items, node.list[:i]...)
	items = append(items, v)
	items = append(items, node.list[i:]...)
	node.list = items
	return node, nil
}

// remove deletes the node at segs. On a list exactly one element is removed
// and later elements shift down; on a map exactly that key is removed.
func remove(node Value, segs []string) (Value, error) {
	if len(segs) == 0 {
		return node, fmt.Errorf("%w: cannot remove the root", ErrIncompatibleNode)
	}
	seg, rest := segs[0], segs[1:]

	switch node.kind {
	case KindMap:
		child, ok := node.m[seg]
		if !ok {
			return node, fmt.Errorf("%w: %q", ErrPathNotFound, seg)
		}
		if len(rest) == 0 {
			delete(node.m, seg)
			return node, nil
		}
		child, err := remove(child, rest)
		if err != nil {
			return node, err
		}
		node.m[seg] = child
		return node, nil
	case KindList:
		i, err := listIndex(seg, len(node.list), false)
		if err != nil {
			return node, err
		}
		if len(rest) == 0 {
			items := make([]Value, 0, len(node.list)-1)
			items = append(items, node.list[:i]...)
			items = append(items, node.list[i+1:]...)
			node.list = items
			return node, nil
		}
		child, err := remove(node.list[i], rest)
		if err != nil {
			return node, err
		}
		node.list[i] = child
		return node, nil
	case KindAbsent:
		return node, fmt.Errorf("%w: %q", ErrPathNotFound, seg)
	default:
		return node, fmt.Errorf("%w: cannot descend into %s at %q", ErrIncompatibleNode, node.kind, seg)
	}
}
