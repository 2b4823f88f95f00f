package router

import (
	"fmt"
	"strings"

	"github.com/ZakisM/general-notifier/internal/alert"
)

// replyChunkLimit keeps each rendered reply under the safe chat message
// size; longer tables are split into sequential messages.
const replyChunkLimit = 1900

// columnWidth caps the URL and matching-text columns; longer values wrap
// onto continuation rows.
const columnWidth = 100

// renderAlerts renders the user's alerts as a plain-text table with columns
// [#, URL, Matching Text]. Ordinals are what the user types into ~delete.
func renderAlerts(alerts []alert.Alert) string {
	var b strings.Builder
	b.WriteString("# | URL | Matching Text\n")
	for _, a := range alerts {
		urlSegs := wrapColumn(a.URL, columnWidth)
		textSegs := wrapColumn(a.MatchingText, columnWidth)

		rows := len(urlSegs)
		if len(textSegs) > rows {
			rows = len(textSegs)
		}
		for i := 0; i < rows; i++ {
			num := ""
			if i == 0 {
				num = fmt.Sprintf("%d.", a.Ordinal)
			}
			fmt.Fprintf(&b, "%s | %s | %s\n", num, seg(urlSegs, i), seg(textSegs, i))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func seg(segs []string, i int) string {
	if i < len(segs) {
		return segs[i]
	}
	return ""
}

// wrapColumn splits s into rune-safe segments of at most width runes.
func wrapColumn(s string, width int) []string {
	rs := []rune(s)
	if len(rs) <= width {
		return []string{s}
	}
	out := make([]string, 0, (len(rs)+width-1)/width)
	for start := 0; start < len(rs); start += width {
		end := start + width
		if end > len(rs) {
			end = len(rs)
		}
		out = append(out, string(rs[start:end]))
	}
	return out
}

// chunkText splits s into rune-safe chunks of at most limit runes, so each
// chunk fits a single chat message.
func chunkText(s string, limit int) []string {
	rs := []rune(s)
	if len(rs) <= limit {
		return []string{s}
	}
	out := make([]string, 0, (len(rs)+limit-1)/limit)
	for start := 0; start < len(rs); start += limit {
		end := start + limit
		if end > len(rs) {
			end = len(rs)
		}
		out = append(out, string(rs[start:end]))
	}
	return out
}
