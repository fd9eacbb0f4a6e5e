package feedback

import (
	"github.com/nerrad567/gray-logic-switcher/internal/delta"
	"github.com/nerrad567/gray-logic-switcher/internal/session"
)

// journals records every change to each member in order.
type journals []session.Journal

func (js journals) RecordChange(c delta.Change) {
	for _, j := range js {
		j.RecordChange(c)
	}
}

// Journals combines journals into one. nil members are skipped; with no
// members left it returns nil.
func Journals(members ...session.Journal) session.Journal {
	var js journals
	for _, j := range members {
		if j != nil {
			js = append(js, j)
		}
	}
	switch len(js) {
	case 0:
		return nil
	case 1:
		return js[0]
	default:
		return js
	}
}
