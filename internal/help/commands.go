package help

import "strings"

// Version is the sw release version, set at build time via -ldflags.
// Defaults to "dev" when built without version injection (e.g. `go run`).
var Version = "dev"

// Flag describes a command-line flag.
type Flag struct {
	Name string // e.g. "--foam" or "--quantity <n>"
	Desc string
}

// Arg describes a positional argument.
type Arg struct {
	Name     string // e.g. "file" or "job-id"
	Desc     string
	Optional bool
}

// File is a path sw reads or writes, shown in the FILES section of man pages.
type File struct {
	Path string
	Desc string
}

// Format is a stitch file format sw can decode.
type Format struct {
	Ext   string
	Maker string
}

// Formats lists the decodable formats, in the order help shows them.
var Formats = []Format{
	{Ext: ".dst", Maker: "Tajima"},
	{Ext: ".u01", Maker: "Barudan"},
}

// GlobalFlags are accepted by every command.
var GlobalFlags = []Flag{
	{Name: "--verbose", Desc: "Log debug detail to stderr"},
}

// Environment variables sw consults.
var Environment = []Arg{
	{Name: "XDG_CONFIG_HOME", Desc: "Directory holding stitchwise/config.toml (default: ~/.config)"},
	{Name: "HOME", Desc: "Expands a leading ~ in state_dir and the config path"},
}

var (
	fileConfig   = File{"~/.config/stitchwise/config.toml", "Configuration; see sw-init(1)"}
	fileJobs     = File{"<state_dir>/jobs.db", "Job history (SQLite)"}
	fileArchive  = File{"<state_dir>/archive/", "Archived design per saved job, zstd-compressed unless archive.compress is false"}
	filePreviews = File{"<state_dir>/previews/", "Default preview output"}
)

const defaultExitStatus = "0 on success, 1 on any error."

// Command describes an sw subcommand (or the top-level binary when Name is "").
type Command struct {
	Name        string   // "init", "analyze", etc; "" for top-level
	Synopsis    string   // one-line description (lowercase, for --help header)
	Brief       string   // short description for usage table (capitalized)
	Usage       string   // full usage line, e.g. "sw history [--limit <n>]"
	TableUsage  string   // shortened usage for the top-level table (if different from Usage)
	Args        []Arg
	Flags       []Flag
	Description string   // multi-line prose (stored verbatim)
	Examples    []string // one per line, without leading 2-space indent
	SeeAlso     []string // man page cross-refs, e.g. "sw(1)"
	Files       []File   // paths the command touches (man page only)
	ExitStatus  string   // man page EXIT STATUS; defaultExitStatus when empty
}

func (c Command) exitStatus() string {
	if c.ExitStatus != "" {
		return c.ExitStatus
	}
	return defaultExitStatus
}

// tableUsage returns TableUsage if set, otherwise Usage.
func (c Command) tableUsage() string {
	if c.TableUsage != "" {
		return c.TableUsage
	}
	return c.Usage
}

// ManName returns the man page name: "sw" for top-level, "sw-<name>" for subs.
// Spaces in Name are replaced with hyphens.
func (c Command) ManName() string {
	if c.Name == "" {
		return "sw"
	}
	return "sw-" + strings.ReplaceAll(c.Name, " ", "-")
}

// TopLevel is the top-level sw command (used by FormatUsage).
var TopLevel = Command{
	Name:     "",
	Synopsis: "embroidery design analysis and job costing",
}

// jobFlags are shared by every command that prices a run.
var jobFlags = []Flag{
	{Name: "--quantity <n>", Desc: "Pieces to produce (default: 1)"},
	{Name: "--weight <40|60>", Desc: "Thread weight (default: machine.thread_weight)"},
	{Name: "--coloreel", Desc: "Use the Coloreel head count"},
	{Name: "--foam", Desc: "Include 3D foam sheets"},
	{Name: "--colors <n>", Desc: "Colour segments for previews (default: analysis.num_colors)"},
}

var CmdInit = Command{
	Name:     "init",
	Synopsis: "write a default config file",
	Brief:    "Write default config",
	Usage:    "sw init",
	Description: `Writes ~/.config/stitchwise/config.toml (or under $XDG_CONFIG_HOME)
with machine, price, analysis, preview, archive and watch defaults,
and creates the state directory. An existing config is left alone.`,
	Files:   []File{fileConfig},
	SeeAlso: []string{"sw(1)", "sw-check(1)"},
}

var CmdAnalyze = Command{
	Name:       "analyze",
	Synopsis:   "analyze a design and estimate job cost",
	Brief:      "Analyze a design and estimate cost",
	Usage:      "sw analyze <file|dir> [--quantity <n>] [--weight <40|60>] [--coloreel] [--foam] [--json]",
	TableUsage: "sw analyze <file> [flags]",
	Args: []Arg{
		{Name: "file", Desc: "Stitch file (.dst, .u01), or a folder to analyze every design in it"},
	},
	Flags: append(append([]Flag{}, jobFlags...),
		Flag{Name: "--json", Desc: "Print metrics and estimate as JSON"},
	),
	Description: `Decodes the stitch file and reports its size, stitch count, thread
length and complexity score, then prices the run: thread spools,
bobbins, optional foam sheets, and machine runtime.

Complexity combines direction changes, stitch density and stitch
length variance into a 0-100 score:
  < 20  simple
  < 40  moderate
  < 60  complex
  < 80  very complex
  >= 80 extremely complex

Given a folder, every supported design below it is analyzed, oldest
first, and printed as one summary line each.`,
	Examples: []string{
		"sw analyze logo.dst                         Price a single piece",
		"sw analyze orders/ --quantity 24            Summarize a folder of designs",
		"sw analyze logo.dst --quantity 48 --foam    Price 48 pieces on foam",
		"sw analyze cap.u01 --coloreel --weight 60   Coloreel heads, 60wt thread",
	},
	Files:      []File{fileConfig},
	ExitStatus: "0 on success. Given a folder, 1 when any design in it failed.",
	SeeAlso:    []string{"sw(1)", "sw-save(1)", "sw-preview(1)"},
}

var CmdSave = Command{
	Name:       "save",
	Synopsis:   "analyze a design and save the job",
	Brief:      "Analyze and save a job",
	Usage:      "sw save <file|dir> [--name <label>] [--quantity <n>] [--weight <40|60>] [--coloreel] [--foam]",
	TableUsage: "sw save <file> [flags]",
	Args: []Arg{
		{Name: "file", Desc: "Stitch file (.dst, .u01), or a folder to save one job per design in it"},
	},
	Flags: append([]Flag{
		{Name: "--name <label>", Desc: "Design name (default: file name)"},
	}, jobFlags...),
	Description: `Runs the same analysis as sw analyze, then records the job with its
material usage and cost breakdown in the job history database. The
design file is copied into the archive (zstd-compressed unless
archive.compress is false) so sw show can re-analyze it later.

Given a folder, one job is saved per supported design below it, each
named after its file.`,
	Examples: []string{
		"sw save logo.dst --quantity 100   Save a 100-piece job",
		"sw save orders/ --quantity 24     Save a job per design in a folder",
	},
	Files:      []File{fileConfig, fileJobs, fileArchive},
	ExitStatus: "0 on success. Given a folder, 1 when any design in it failed.",
	SeeAlso:    []string{"sw(1)", "sw-history(1)", "sw-show(1)"},
}

var CmdHistory = Command{
	Name:       "history",
	Synopsis:   "list recent saved jobs",
	Brief:      "List recent saved jobs",
	Usage:      "sw history [--limit <n>]",
	TableUsage: "sw history [--limit n]",
	Flags: []Flag{
		{Name: "--limit <n>", Desc: "Jobs to show, newest first (default: 10, 0 for all)"},
	},
	Description: `Lists saved jobs newest first with quantity, total cost and runtime,
followed by totals and the complexity band distribution.`,
	Files:   []File{fileJobs},
	SeeAlso: []string{"sw(1)", "sw-save(1)", "sw-export(1)"},
}

var CmdShow = Command{
	Name:     "show",
	Synopsis: "show a saved job",
	Brief:    "Show a saved job",
	Usage:    "sw show <job-id>",
	Args: []Arg{
		{Name: "job-id", Desc: "Job ID or unique prefix from sw history"},
	},
	Description: `Prints the saved job with its material usage and cost breakdown.
When the design was archived, it is decoded again and its metrics
are compared with the saved ones.`,
	Files:   []File{fileJobs, fileArchive},
	SeeAlso: []string{"sw(1)", "sw-history(1)", "sw-delete(1)"},
}

var CmdDelete = Command{
	Name:     "delete",
	Synopsis: "delete a saved job",
	Brief:    "Delete a saved job",
	Usage:    "sw delete <job-id>",
	Args: []Arg{
		{Name: "job-id", Desc: "Job ID or unique prefix from sw history"},
	},
	Description: `Removes the job, its material usage and cost breakdown, and its
archived design file.`,
	Files:   []File{fileJobs, fileArchive},
	SeeAlso: []string{"sw(1)", "sw-history(1)"},
}

var CmdPreview = Command{
	Name:       "preview",
	Synopsis:   "render a design preview and density heat map",
	Brief:      "Render design preview PNGs",
	Usage:      "sw preview <file> [--out <png>] [--heatmap <png>] [--colors <n>] [--foam] [--foam-color <hex>]",
	TableUsage: "sw preview <file> [flags]",
	Args: []Arg{
		{Name: "file", Desc: "Stitch file (.dst, .u01)"},
	},
	Flags: []Flag{
		{Name: "--out <png>", Desc: "Preview path (default: <state_dir>/previews/<name>.png)"},
		{Name: "--heatmap <png>", Desc: "Also write a stitch density heat map"},
		{Name: "--colors <n>", Desc: "Colour segments (default: analysis.num_colors)"},
		{Name: "--foam", Desc: "Overlay the foam outline"},
		{Name: "--foam-color <hex>", Desc: "Foam overlay colour (default: preview.foam_color)"},
		{Name: "--size <px>", Desc: "Longest side in pixels (default: preview.size)"},
	},
	Description: `Draws the sewn stitch path, one palette colour per segment. Jumps and
trims are not drawn. With --foam, a translucent rectangle padded by
0.5 mm marks the foam cut-out.

Thread colours declared by the file are used when present; otherwise
the configured palette is cycled.`,
	Examples: []string{
		"sw preview logo.dst --out logo.png --colors 3",
		"sw preview logo.dst --foam --heatmap heat.png",
	},
	Files:   []File{fileConfig, filePreviews},
	SeeAlso: []string{"sw(1)", "sw-analyze(1)"},
}

var CmdExport = Command{
	Name:       "export",
	Synopsis:   "export saved jobs as CSV",
	Brief:      "Export saved jobs as CSV",
	Usage:      "sw export [--out <csv>] [--materials <csv>] [--costs <csv>]",
	TableUsage: "sw export [--out file]",
	Flags: []Flag{
		{Name: "--out <csv>", Desc: "Job rows (default: stdout)"},
		{Name: "--materials <csv>", Desc: "Also write material usage rows"},
		{Name: "--costs <csv>", Desc: "Also write cost breakdown rows"},
	},
	Description: `Writes one row per saved job with design metrics, run parameters,
runtime and costs spread into columns.`,
	Files:   []File{fileJobs},
	SeeAlso: []string{"sw(1)", "sw-history(1)"},
}

var CmdWatch = Command{
	Name:       "watch",
	Synopsis:   "analyze designs dropped into a folder",
	Brief:      "Analyze designs dropped into a folder",
	Usage:      "sw watch <dir> [--save] [--quantity <n>] [--weight <40|60>] [--coloreel] [--foam]",
	TableUsage: "sw watch <dir> [--save]",
	Args: []Arg{
		{Name: "dir", Desc: "Folder to watch"},
	},
	Flags: append([]Flag{
		{Name: "--save", Desc: "Save every analyzed design as a job"},
	}, jobFlags...),
	Description: `Watches dir for new or rewritten files matching watch.patterns. Once
a file has been quiet for watch.debounce_ms it is analyzed and priced
with the given job flags. Runs until interrupted.`,
	Files:   []File{fileConfig, fileJobs, fileArchive},
	SeeAlso: []string{"sw(1)", "sw-analyze(1)", "sw-save(1)"},
}

var CmdCheck = Command{
	Name:     "check",
	Synopsis: "validate config, state, and job store",
	Brief:    "Validate config, state, and job store",
	Usage:    "sw check",
	Description: `Runs diagnostic checks and prints a pass/warn/FAIL report:
  - Config file location and validity
  - State directory
  - Job store schema and job count
  - Archive directory
  - Supported stitch formats

Exit code 0 if all checks pass or warn, 1 if any check fails.`,
	Files:      []File{fileConfig, fileJobs, fileArchive},
	ExitStatus: "0 when no check fails (warnings allowed), 1 otherwise.",
	SeeAlso:    []string{"sw(1)", "sw-init(1)"},
}

var CmdVersion = Command{
	Name:     "version",
	Synopsis: "print version",
	Brief:    "Print version",
	Usage:    "sw version",
	SeeAlso:  []string{"sw(1)"},
}

// Subcommands is the ordered list of all subcommands.
var Subcommands = []Command{
	CmdInit,
	CmdAnalyze,
	CmdSave,
	CmdHistory,
	CmdShow,
	CmdDelete,
	CmdPreview,
	CmdExport,
	CmdWatch,
	CmdCheck,
	CmdVersion,
}
