package help

import (
	"fmt"
	"strings"
	"testing"
)

// expectedTerminal maps command name → exact expected terminal output.
var expectedTerminal = map[string]string{
	"history": "sw history \u2014 list recent saved jobs\n" +
		"\n" +
		"Usage: sw history [--limit <n>]\n" +
		"\n" +
		"Flags:\n" +
		"  --limit <n>   Jobs to show, newest first (default: 10, 0 for all)\n" +
		"\n" +
		"Lists saved jobs newest first with quantity, total cost and runtime,\n" +
		"followed by totals and the complexity band distribution.\n",

	"show": "sw show \u2014 show a saved job\n" +
		"\n" +
		"Usage: sw show <job-id>\n" +
		"\n" +
		"Arguments:\n" +
		"  job-id   Job ID or unique prefix from sw history\n" +
		"\n" +
		"Prints the saved job with its material usage and cost breakdown.\n" +
		"When the design was archived, it is decoded again and its metrics\n" +
		"are compared with the saved ones.\n",

	"version": "sw version \u2014 print version\n" +
		"\n" +
		"Usage: sw version\n",
}

func TestFormatTerminal(t *testing.T) {
	for _, cmd := range Subcommands {
		expected, ok := expectedTerminal[cmd.Name]
		if !ok {
			continue
		}
		t.Run(cmd.Name, func(t *testing.T) {
			got := FormatTerminal(cmd)
			if got != expected {
				t.Errorf("FormatTerminal(%q) mismatch.\n--- expected ---\n%s\n--- got ---\n%s\n--- diff ---\n%s",
					cmd.Name, quote(expected), quote(got), diff(expected, got))
			}
		})
	}
}

func TestFormatTerminalAlignsColumns(t *testing.T) {
	for _, cmd := range Subcommands {
		if len(cmd.Args)+len(cmd.Flags) < 2 {
			continue
		}
		t.Run(cmd.Name, func(t *testing.T) {
			out := FormatTerminal(cmd)
			col := -1
			entries := 0
			for _, line := range strings.Split(out, "\n") {
				for _, name := range entryNames(cmd) {
					if !strings.HasPrefix(line, "  "+name+" ") {
						continue
					}
					rest := line[2+len(name):]
					c := 2 + len(name) + len(rest) - len(strings.TrimLeft(rest, " "))
					if col == -1 {
						col = c
					} else if c != col {
						t.Errorf("%q: description at column %d, want %d", line, c, col)
					}
					entries++
					break
				}
			}
			if entries != len(cmd.Args)+len(cmd.Flags) {
				t.Errorf("found %d entry lines, want %d:\n%s", entries, len(cmd.Args)+len(cmd.Flags), out)
			}
		})
	}
}

func entryNames(c Command) []string {
	var names []string
	for _, a := range c.Args {
		names = append(names, a.Name)
	}
	for _, f := range c.Flags {
		names = append(names, f.Name)
	}
	return names
}

func TestFormatUsage(t *testing.T) {
	expected := fmt.Sprintf("sw v%s \u2014 embroidery design analysis and job costing\n", Version) +
		"\n" +
		"Usage:\n" +
		"  sw init                     Write default config\n" +
		"  sw analyze <file> [flags]   Analyze a design and estimate cost\n" +
		"  sw save <file> [flags]      Analyze and save a job\n" +
		"  sw history [--limit n]      List recent saved jobs\n" +
		"  sw show <job-id>            Show a saved job\n" +
		"  sw delete <job-id>          Delete a saved job\n" +
		"  sw preview <file> [flags]   Render design preview PNGs\n" +
		"  sw export [--out file]      Export saved jobs as CSV\n" +
		"  sw watch <dir> [--save]     Analyze designs dropped into a folder\n" +
		"  sw check                    Validate config, state, and job store\n" +
		"  sw version                  Print version\n" +
		"  sw help                     Show this help\n" +
		"\n" +
		"Global flags:\n" +
		"  --verbose   Log debug detail to stderr\n" +
		"\n" +
		"Supported formats: .dst (Tajima), .u01 (Barudan)\n" +
		"Configuration: ~/.config/stitchwise/config.toml\n"

	got := FormatUsage(TopLevel, Subcommands)
	if got != expected {
		t.Errorf("FormatUsage mismatch.\n--- expected ---\n%s\n--- got ---\n%s\n--- diff ---\n%s",
			quote(expected), quote(got), diff(expected, got))
	}
}

func TestRegistryCompleteness(t *testing.T) {
	expectedNames := []string{
		"init", "analyze", "save", "history", "show", "delete",
		"preview", "export", "watch", "check", "version",
	}
	if len(Subcommands) != len(expectedNames) {
		t.Fatalf("expected %d subcommands, got %d", len(expectedNames), len(Subcommands))
	}
	for i, name := range expectedNames {
		if Subcommands[i].Name != name {
			t.Errorf("Subcommands[%d].Name = %q, want %q", i, Subcommands[i].Name, name)
		}
		if Subcommands[i].Synopsis == "" {
			t.Errorf("Subcommands[%d] (%s) has empty Synopsis", i, name)
		}
		if Subcommands[i].Usage == "" {
			t.Errorf("Subcommands[%d] (%s) has empty Usage", i, name)
		}
		if Subcommands[i].Brief == "" {
			t.Errorf("Subcommands[%d] (%s) has empty Brief", i, name)
		}
	}
}

func TestSharedJobFlagsNotAliased(t *testing.T) {
	// Each command's flag slice must be its own copy.
	if &CmdAnalyze.Flags[0] == &CmdWatch.Flags[1] || &CmdSave.Flags[1] == &CmdWatch.Flags[1] {
		t.Fatal("job flags share backing storage")
	}
	if CmdAnalyze.Flags[len(CmdAnalyze.Flags)-1].Name != "--json" {
		t.Errorf("analyze last flag = %q", CmdAnalyze.Flags[len(CmdAnalyze.Flags)-1].Name)
	}
	if CmdSave.Flags[0].Name != "--name <label>" || CmdWatch.Flags[0].Name != "--save" {
		t.Errorf("leading flags = %q, %q", CmdSave.Flags[0].Name, CmdWatch.Flags[0].Name)
	}
	if len(jobFlags) != 5 {
		t.Errorf("jobFlags mutated: %d entries", len(jobFlags))
	}
}

func TestManName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "sw"},
		{"init", "sw-init"},
		{"analyze", "sw-analyze"},
		{"job show", "sw-job-show"},
	}
	for _, tt := range tests {
		c := Command{Name: tt.name}
		if got := c.ManName(); got != tt.want {
			t.Errorf("Command{Name: %q}.ManName() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestEscapeRoff(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`simple text`, `simple text`},
		{`back\slash`, `back\\slash`},
		{`.leading dot`, `\&.leading dot`},
		{"line1\n.line2", "line1\n\\&.line2"},
		{`--flag`, `\-\-flag`},
		{`a-b`, `a\-b`},
		{`.dst (Tajima)`, `\&.dst (Tajima)`},
	}
	for _, tt := range tests {
		got := escapeRoff(tt.input)
		if got != tt.want {
			t.Errorf("escapeRoff(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatRoffStructure(t *testing.T) {
	fixedDate := "2026-02-27"

	for _, cmd := range Subcommands {
		t.Run(cmd.Name, func(t *testing.T) {
			out := FormatRoff(cmd, fixedDate)

			required := []string{".TH", ".SH NAME", ".SH SYNOPSIS"}
			for _, section := range required {
				if !strings.Contains(out, section) {
					t.Errorf("FormatRoff(%q) missing required section %q", cmd.Name, section)
				}
			}

			expectedTH := strings.ToUpper(cmd.ManName())
			if !strings.Contains(out, ".TH "+expectedTH) {
				t.Errorf("FormatRoff(%q) .TH should contain %q", cmd.Name, expectedTH)
			}

			if cmd.Description != "" && !strings.Contains(out, ".SH DESCRIPTION") {
				t.Errorf("FormatRoff(%q) has Description but missing .SH DESCRIPTION", cmd.Name)
			}
			if (len(cmd.Args) > 0 || len(cmd.Flags) > 0) && !strings.Contains(out, ".SH OPTIONS") {
				t.Errorf("FormatRoff(%q) has Args/Flags but missing .SH OPTIONS", cmd.Name)
			}
			if len(cmd.Examples) > 0 && !strings.Contains(out, ".SH EXAMPLES") {
				t.Errorf("FormatRoff(%q) has Examples but missing .SH EXAMPLES", cmd.Name)
			}
			if len(cmd.SeeAlso) > 0 && !strings.Contains(out, ".SH SEE ALSO") {
				t.Errorf("FormatRoff(%q) has SeeAlso but missing .SH SEE ALSO", cmd.Name)
			}
		})
	}
}

func TestFormatRoffTopLevelStructure(t *testing.T) {
	fixedDate := "2026-02-27"
	out := FormatRoffTopLevel(TopLevel, Subcommands, fixedDate)

	required := []string{
		".TH SW 1",
		".SH NAME",
		".SH SYNOPSIS",
		".SH DESCRIPTION",
		".SH COMMANDS",
		".SH CONFIGURATION",
		".SH SEE ALSO",
	}
	for _, section := range required {
		if !strings.Contains(out, section) {
			t.Errorf("FormatRoffTopLevel missing section %q", section)
		}
	}

	for _, cmd := range Subcommands {
		escaped := escapeRoff(cmd.Brief)
		if !strings.Contains(out, escaped) {
			t.Errorf("FormatRoffTopLevel missing subcommand brief %q (escaped: %q)", cmd.Brief, escaped)
		}
	}
}

func TestFormatRoffEscapesFlags(t *testing.T) {
	out := FormatRoff(CmdHistory, "2026-02-27")
	if !strings.Contains(out, `.B \-\-limit <n>`) {
		t.Errorf("FormatRoff(history) flag not escaped:\n%s", out)
	}
}

func TestFormatRoffFilesAndExitStatus(t *testing.T) {
	out := FormatRoff(CmdCheck, "2026-02-27")
	for _, want := range []string{
		".SH FILES\n.TP\n.B ~/.config/stitchwise/config.toml\n",
		".SH EXIT STATUS\n0 when no check fails (warnings allowed), 1 otherwise.\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatRoff(check) missing %q:\n%s", want, out)
		}
	}

	out = FormatRoff(CmdVersion, "2026-02-27")
	if strings.Contains(out, ".SH FILES") {
		t.Error("FormatRoff(version) has FILES but version touches no files")
	}
	if !strings.Contains(out, ".SH EXIT STATUS\n"+defaultExitStatus+"\n") {
		t.Errorf("FormatRoff(version) missing default exit status:\n%s", out)
	}
}

func TestFormatRoffSectionOrder(t *testing.T) {
	out := FormatRoff(CmdSave, "2026-02-27")
	order := []string{".SH NAME", ".SH SYNOPSIS", ".SH DESCRIPTION", ".SH OPTIONS",
		".SH EXAMPLES", ".SH FILES", ".SH EXIT STATUS", ".SH SEE ALSO"}
	last := -1
	for _, sec := range order {
		i := strings.Index(out, sec)
		if i < 0 {
			t.Fatalf("FormatRoff(save) missing %s", sec)
		}
		if i < last {
			t.Errorf("%s out of order", sec)
		}
		last = i
	}
}

func TestFormatRoffTopLevelReferenceSections(t *testing.T) {
	out := FormatRoffTopLevel(TopLevel, Subcommands, "2026-02-27")
	for _, want := range []string{
		".SH GLOBAL OPTIONS\n.TP\n.B \\-\\-verbose\n",
		".SH FORMATS\n",
		".B \\&.dst\nTajima stitch file\n",
		".B \\&.u01\nBarudan stitch file\n",
		".SH ENVIRONMENT\n.TP\n.B XDG_CONFIG_HOME\n",
		".B <state_dir>/jobs.db\n",
		".SH EXIT STATUS\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatRoffTopLevel missing %q", want)
		}
	}
}

func TestFormatUsageListsEveryFormat(t *testing.T) {
	out := FormatUsage(TopLevel, Subcommands)
	for _, f := range Formats {
		if !strings.Contains(out, f.Ext+" ("+f.Maker+")") {
			t.Errorf("FormatUsage missing format %s", f.Ext)
		}
	}
}

// quote shows a string with escape sequences visible.
func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// diff shows a line-by-line comparison highlighting the first difference.
func diff(expected, got string) string {
	el := strings.Split(expected, "\n")
	gl := strings.Split(got, "\n")
	max := len(el)
	if len(gl) > max {
		max = len(gl)
	}
	var b strings.Builder
	for i := 0; i < max; i++ {
		var e, g string
		if i < len(el) {
			e = el[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if e != g {
			fmt.Fprintf(&b, "! line %d:\n  exp: %q\n  got: %q\n", i+1, e, g)
		}
	}
	return b.String()
}
