package log

import (
	"fmt"
	"strings"
)

// TB is the subset of testing.TB used by the testing logger.
type TB interface {
	Errorf(string, ...interface{})
	Fatalf(string, ...interface{})
	Logf(string, ...interface{})
	Helper()
}

// Testing is a logger that forwards to a test context.
type Testing struct {
	TB
	Tags []interface{}
}

func (l *Testing) Debug(m string, tags ...interface{}) {
	l.Helper()
	l.Logf("DEB %s", tfmt(m, tags, l.Tags))
}

func (l *Testing) Error(m string, tags ...interface{}) {
	l.Helper()
	l.Errorf("ERR %s", tfmt(m, tags, l.Tags))
}

func (l *Testing) Crit(m string, tags ...interface{}) {
	l.Helper()
	l.Fatalf("CRI %s", tfmt(m, tags, l.Tags))
}

func (l *Testing) With(tags ...interface{}) Logger {
	t := make([]interface{}, 0, len(tags)+len(l.Tags))
	t = append(t, tags...)
	t = append(t, l.Tags...)
	return &Testing{l.TB, t}
}

func tfmt(msg string, all ...[]interface{}) string {
	var b strings.Builder
	b.WriteString(msg)
	for _, tags := range all {
		for i, v := range tags {
			if i%2 == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte('=')
			}
			b.WriteString(fmt.Sprint(v))
		}
	}
	return b.String()
}
