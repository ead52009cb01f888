package help

import (
	"fmt"
	"strings"
)

// FormatTerminal renders a subcommand's help text for terminal --help output.
func FormatTerminal(c Command) string {
	sections := []string{
		fmt.Sprintf("sw %s \u2014 %s", c.Name, c.Synopsis),
		"Usage: " + c.Usage,
	}

	args := make([]row, 0, len(c.Args))
	for _, a := range c.Args {
		args = append(args, row{a.Name, a.Desc})
	}
	flags := make([]row, 0, len(c.Flags))
	for _, f := range c.Flags {
		flags = append(flags, row{f.Name, f.Desc})
	}

	// Args and flags share one description column, at least 13 when both exist.
	col := 2 + max(widest(args), widest(flags)) + 3
	if len(args) > 0 && len(flags) > 0 && col < 13 {
		col = 13
	}
	if len(args) > 0 {
		sections = append(sections, "Arguments:\n"+columns(args, col-2))
	}
	if len(flags) > 0 {
		sections = append(sections, "Flags:\n"+columns(flags, col-2))
	}

	if c.Description != "" {
		sections = append(sections, c.Description)
	}
	if len(c.Examples) > 0 {
		sections = append(sections, "Examples:\n  "+strings.Join(c.Examples, "\n  "))
	}

	return strings.Join(sections, "\n\n") + "\n"
}

// FormatUsage renders the top-level usage text (for sw --help / sw help).
func FormatUsage(top Command, subs []Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "sw v%s \u2014 %s\n", Version, top.Synopsis)

	table := make([]row, 0, len(subs)+1)
	for _, s := range subs {
		table = append(table, row{s.tableUsage(), s.Brief})
	}
	table = append(table, row{"sw help", "Show this help"})
	fmt.Fprintf(&b, "\nUsage:\n%s\n", columns(table, widest(table)+3))

	global := make([]row, 0, len(GlobalFlags))
	for _, f := range GlobalFlags {
		global = append(global, row{f.Name, f.Desc})
	}
	fmt.Fprintf(&b, "\nGlobal flags:\n%s\n", columns(global, widest(global)+3))

	formats := make([]string, len(Formats))
	for i, f := range Formats {
		formats[i] = fmt.Sprintf("%s (%s)", f.Ext, f.Maker)
	}
	fmt.Fprintf(&b, "\nSupported formats: %s\n", strings.Join(formats, ", "))
	fmt.Fprintf(&b, "Configuration: %s\n", fileConfig.Path)
	return b.String()
}

// row is one name/description line of a help table.
type row struct {
	name string
	desc string
}

func widest(rows []row) int {
	w := 0
	for _, r := range rows {
		w = max(w, len(r.name))
	}
	return w
}

// columns indents each row by two spaces and pads names to width.
func columns(rows []row, width int) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = "  " + r.name + strings.Repeat(" ", width-len(r.name)) + r.desc
	}
	return strings.Join(lines, "\n")
}
