package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	escReset  = "\033[0m"
	escFaint  = "\033[2m"
	escBold   = "\033[1m"
	escRed    = "\033[31m"
	escGreen  = "\033[32m"
	escYellow = "\033[33m"
	escCyan   = "\033[36m"
)

// terminalHandler renders each record as a single coloured line for
// humans watching an ingest run:
//
//	15:04:05.000 INF ingest completed fetched=200
//
// Handlers derived through WithAttrs carry those attributes already
// rendered, so Handle only formats the record's own attrs.
type terminalHandler struct {
	out      io.Writer
	min      slog.Leveler
	rendered []byte   // attrs accumulated through WithAttrs
	scope    []string // open WithGroup names, applied as key prefixes
	mu       *sync.Mutex
}

func newTerminalHandler(w io.Writer, opts *slog.HandlerOptions) *terminalHandler {
	h := &terminalHandler{
		out: w,
		min: slog.LevelInfo,
		mu:  &sync.Mutex{},
	}
	if opts != nil && opts.Level != nil {
		h.min = opts.Level
	}
	return h
}

func (h *terminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min.Level()
}

func (h *terminalHandler) Handle(_ context.Context, r slog.Record) error {
	buf := bytes.NewBuffer(make([]byte, 0, 256))

	when := r.Time
	if when.IsZero() {
		when = time.Now()
	}
	buf.WriteString(escFaint + when.Format("15:04:05.000") + escReset + " ")
	buf.WriteString(levelTag(r.Level) + " ")
	buf.WriteString(escBold + r.Message + escReset)

	buf.Write(h.rendered)
	r.Attrs(func(a slog.Attr) bool {
		renderAttr(buf, h.scope, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := h.clone()
	buf := bytes.NewBuffer(next.rendered)
	for _, a := range attrs {
		renderAttr(buf, next.scope, a)
	}
	next.rendered = buf.Bytes()
	return next
}

func (h *terminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.scope = append(next.scope, name)
	return next
}

func (h *terminalHandler) clone() *terminalHandler {
	return &terminalHandler{
		out:      h.out,
		min:      h.min,
		rendered: append([]byte(nil), h.rendered...),
		scope:    append([]string(nil), h.scope...),
		mu:       h.mu,
	}
}

func levelTag(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return escCyan + "DBG" + escReset
	case level < slog.LevelWarn:
		return escGreen + "INF" + escReset
	case level < slog.LevelError:
		return escYellow + "WRN" + escReset
	default:
		return escRed + "ERR" + escReset
	}
}

// renderAttr appends " key=value" to buf. Group attrs flatten into
// dotted keys under their scope prefix.
func renderAttr(buf *bytes.Buffer, scope []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		inner := scope
		if a.Key != "" {
			inner = append(append([]string(nil), scope...), a.Key)
		}
		for _, ga := range a.Value.Group() {
			renderAttr(buf, inner, ga)
		}
		return
	}

	buf.WriteString(" " + escFaint)
	for _, g := range scope {
		buf.WriteString(g)
		buf.WriteByte('.')
	}
	buf.WriteString(a.Key + "=" + escReset)
	buf.WriteString(attrText(a.Value))
}

func attrText(v slog.Value) string {
	s := v.String()
	if v.Kind() == slog.KindString && strings.ContainsAny(s, " \t\n\"\\") {
		return strconv.Quote(s)
	}
	return s
}
