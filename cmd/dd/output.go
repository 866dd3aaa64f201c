package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"dd-go/internal/model"

	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(false)
	t.SetBorder(false)
	t.SetHeaderLine(true)
	t.SetColumnSeparator(" ")
	t.SetCenterSeparator(" ")
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// deleteSummary is the one-line report of a delete, including what the
// server cascaded.
func deleteSummary(kind string, deletedID int64, resp *model.DeleteResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deleted %s %d", kind, deletedID)
	if resp == nil || resp.Impact == nil {
		return b.String()
	}
	imp := resp.Impact
	var parts []string
	if n := len(imp.AffectedDomains); n > 0 {
		parts = append(parts, plural(n, "domain")+" ("+strings.Join(imp.AffectedDomains, ", ")+")")
	}
	if n := len(imp.AffectedEntities); n > 0 {
		parts = append(parts, plural(n, "entity")+" ("+strings.Join(imp.AffectedEntities, ", ")+")")
	}
	if len(parts) > 0 {
		b.WriteString("; also removed ")
		b.WriteString(strings.Join(parts, ", "))
	}
	return b.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	if strings.HasSuffix(noun, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(noun, "y"))
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
