package stage3d

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Thresholds past which debug mode warns about scene shape.
const (
	debugMaxTreeDepth  = 32
	debugMaxChildCount = 1000
)

// SetDebugMode enables post-commit validation of every snapshot and logs
// scene-shape warnings. Debug mode is meant for development: a snapshot that
// fails validation panics.
func (e *Editor) SetDebugMode(enabled bool) {
	e.debug = enabled
	if enabled {
		if l, ok := e.log.(*logrus.Logger); ok && l.GetLevel() < logrus.DebugLevel {
			l.SetLevel(logrus.DebugLevel)
		}
		e.debugCheckTree("debug")
	}
}

// DebugMode reports whether debug mode is enabled.
func (e *Editor) DebugMode() bool {
	return e.debug
}

// debugCheckTree validates the current snapshot after op and warns about
// deep or wide hierarchies.
func (e *Editor) debugCheckTree(op string) {
	if err := e.tree.Validate(); err != nil {
		panic(fmt.Sprintf("stage3d debug: %s produced an invalid scene: %v", op, err))
	}
	e.tree.Walk(func(n *Node, depth int) bool {
		debugCheckTreeDepth(e.log, n, depth+1)
		debugCheckChildCount(e.log, n)
		return true
	})
}

func debugCheckTreeDepth(log logrus.FieldLogger, n *Node, depth int) {
	if depth > debugMaxTreeDepth {
		log.WithFields(logrus.Fields{"node": n.Name, "depth": depth, "threshold": debugMaxTreeDepth}).
			Warn("tree depth exceeds threshold")
	}
}

func debugCheckChildCount(log logrus.FieldLogger, n *Node) {
	if len(n.Children) > debugMaxChildCount {
		log.WithFields(logrus.Fields{"node": n.Name, "children": len(n.Children), "threshold": debugMaxChildCount}).
			Warn("node child count exceeds threshold")
	}
}
