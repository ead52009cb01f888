package help

import (
	"fmt"
	"strings"
	"time"
)

const manualTitle = "Stitchwise Manual"

// roffItem is one .TP entry: a bold tag followed by its description.
type roffItem struct {
	tag  string
	desc string
}

// FormatRoff renders a subcommand as a roff-formatted man page (.1).
// If date is empty, today's date is used (pass a fixed date for reproducible builds).
func FormatRoff(c Command, date string) string {
	var b strings.Builder
	writeRoffHeader(&b, c.ManName(), date)

	fmt.Fprintf(&b, ".SH NAME\n%s \\- %s\n", c.ManName(), escapeRoff(c.Synopsis))
	b.WriteString(".SH SYNOPSIS\n.B " + escapeRoff(c.Usage) + "\n")

	if c.Description != "" {
		b.WriteString(".SH DESCRIPTION\n")
		writeRoffParagraphs(&b, c.Description)
	}

	var opts []roffItem
	for _, a := range c.Args {
		opts = append(opts, roffItem{a.Name, a.Desc})
	}
	for _, f := range c.Flags {
		opts = append(opts, roffItem{f.Name, f.Desc})
	}
	writeRoffList(&b, "OPTIONS", opts)

	if len(c.Examples) > 0 {
		b.WriteString(".SH EXAMPLES\n.nf\n")
		for _, e := range c.Examples {
			b.WriteString(escapeRoff(e) + "\n")
		}
		b.WriteString(".fi\n")
	}

	writeRoffList(&b, "FILES", fileItems(c.Files))
	fmt.Fprintf(&b, ".SH EXIT STATUS\n%s\n", escapeRoff(c.exitStatus()))
	writeSeeAlso(&b, c.SeeAlso)

	return b.String()
}

// FormatRoffTopLevel renders the top-level sw.1 man page with a COMMANDS section.
func FormatRoffTopLevel(top Command, subs []Command, date string) string {
	var b strings.Builder
	writeRoffHeader(&b, "sw", date)

	fmt.Fprintf(&b, ".SH NAME\nsw \\- %s\n", escapeRoff(top.Synopsis))
	b.WriteString(".SH SYNOPSIS\n.B sw\n.I command\n.RI [ options ]\n")

	b.WriteString(".SH DESCRIPTION\n")
	b.WriteString(".B sw\n")
	b.WriteString("(stitchwise) analyzes embroidery stitch files for size, thread length\n")
	b.WriteString("and complexity, estimates thread, bobbin and foam cost and machine\n")
	b.WriteString("runtime for a production run, and keeps a history of saved jobs.\n")

	cmds := make([]roffItem, 0, len(subs))
	for _, s := range subs {
		cmds = append(cmds, roffItem{s.tableUsage(), s.Brief})
	}
	writeRoffList(&b, "COMMANDS", cmds)

	var global []roffItem
	for _, f := range GlobalFlags {
		global = append(global, roffItem{f.Name, f.Desc})
	}
	writeRoffList(&b, "GLOBAL OPTIONS", global)

	var formats []roffItem
	for _, f := range Formats {
		formats = append(formats, roffItem{f.Ext, f.Maker + " stitch file"})
	}
	writeRoffList(&b, "FORMATS", formats)

	b.WriteString(".SH CONFIGURATION\n")
	b.WriteString("Machine heads, thread weight, prices, the preview palette and watch\n")
	b.WriteString("patterns are read from the configuration file written by\n.BR sw\\-init (1).\n")

	var env []roffItem
	for _, e := range Environment {
		env = append(env, roffItem{e.Name, e.Desc})
	}
	writeRoffList(&b, "ENVIRONMENT", env)
	writeRoffList(&b, "FILES", fileItems([]File{fileConfig, fileJobs, fileArchive, filePreviews}))
	fmt.Fprintf(&b, ".SH EXIT STATUS\n%s\n", escapeRoff(defaultExitStatus))

	refs := make([]string, len(subs))
	for i, s := range subs {
		refs[i] = s.ManName() + "(1)"
	}
	writeSeeAlso(&b, refs)

	return b.String()
}

func writeRoffHeader(b *strings.Builder, name, date string) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	fmt.Fprintf(b, ".TH %s 1 %q %q %q\n", strings.ToUpper(name), date, "sw "+Version, manualTitle)
}

// writeRoffList writes a titled .TP list; nothing when items is empty.
func writeRoffList(b *strings.Builder, title string, items []roffItem) {
	if len(items) == 0 {
		return
	}
	b.WriteString(".SH " + title + "\n")
	for _, it := range items {
		fmt.Fprintf(b, ".TP\n.B %s\n%s\n", escapeRoff(it.tag), escapeRoff(it.desc))
	}
}

func fileItems(files []File) []roffItem {
	items := make([]roffItem, 0, len(files))
	for _, f := range files {
		items = append(items, roffItem{f.Path, f.Desc})
	}
	return items
}

func writeSeeAlso(b *strings.Builder, refs []string) {
	if len(refs) == 0 {
		return
	}
	b.WriteString(".SH SEE ALSO\n")
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = formatManRef(ref)
	}
	b.WriteString(strings.Join(out, ",\n") + "\n")
}

// escapeRoff escapes characters that have special meaning in roff:
//   - backslashes → \\
//   - leading dots → \&.
//   - bare hyphens → \-  (for proper rendering of dashes)
func escapeRoff(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n.", "\n\\&.")
	if strings.HasPrefix(s, ".") {
		s = "\\&" + s
	}
	return strings.ReplaceAll(s, "-", "\\-")
}

// writeRoffParagraphs writes multi-line description text as roff paragraphs.
// Blank lines in the input become .PP paragraph breaks.
func writeRoffParagraphs(b *strings.Builder, text string) {
	prevBlank := false
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if !prevBlank {
				b.WriteString(".PP\n")
			}
			prevBlank = true
			continue
		}
		prevBlank = false
		b.WriteString(escapeRoff(line) + "\n")
	}
}

// formatManRef formats "sw-save(1)" as ".BR sw\-save (1)".
func formatManRef(ref string) string {
	if i := strings.Index(ref, "("); i >= 0 {
		return fmt.Sprintf(".BR %s %s", escapeRoff(ref[:i]), ref[i:])
	}
	return ".B " + escapeRoff(ref)
}
