package mode

// KeyHelp describes one key worth knowing in a mode.
type KeyHelp struct {
	Key         string
	Description string
}

var keyHelp = map[Mode][]KeyHelp{
	Normal: {
		{"i", "insert before cursor"},
		{"h/j/k/l", "move left/down/up/right"},
		{"w/b/e", "word motions"},
		{"0/^/$", "line start, first non-blank, line end"},
		{"gg/G", "first or last line"},
		{"x", "delete character"},
		{"dd", "delete line"},
		{"yy/p", "yank line, put"},
		{"u", "undo"},
		{"<C-r>", "redo"},
		{"a/A", "append after cursor or at line end"},
		{"o/O", "open line below or above"},
		{"v/V", "visual or visual line"},
		{":", "command line"},
		{"/", "search forward"},
	},
	Insert: {
		{"<Esc>", "return to normal mode"},
		{"<BS>", "delete previous character"},
		{"<Enter>", "split line"},
	},
	Visual: {
		{"<Esc>", "cancel selection"},
		{"d", "delete selection"},
		{"y", "yank selection"},
		{"c", "change selection"},
		{"o", "jump to other end"},
	},
	VisualLine: {
		{"<Esc>", "cancel selection"},
		{"j/k", "extend by lines"},
		{"d", "delete lines"},
		{"y", "yank lines"},
	},
	VisualBlock: {
		{"<Esc>", "cancel selection"},
		{"h/j/k/l", "resize block"},
		{"d", "delete block"},
	},
	Command: {
		{"<Enter>", "run command"},
		{"<Esc>", "cancel"},
		{"<BS>", "edit command"},
	},
	Replace: {
		{"<Esc>", "return to normal mode"},
		{"<BS>", "restore replaced character"},
	},
}

// AvailableCommands lists keys worth knowing in m, most important first.
func AvailableCommands(m Mode) []KeyHelp {
	return append([]KeyHelp(nil), keyHelp[m]...)
}

// HelpText is a one-line description of m for learners.
func HelpText(m Mode) string {
	switch m {
	case Normal:
		return "Navigate and run commands. Press i to insert, v to select, : for commands."
	case Insert:
		return "Type to insert text. Press <Esc> to return to Normal mode."
	case Visual:
		return "Select characters with motions, then d, y or c. <Esc> cancels."
	case VisualLine:
		return "Select whole lines with j and k, then d, y or c. <Esc> cancels."
	case VisualBlock:
		return "Select a rectangle with motions, then d, y or c. <Esc> cancels."
	case Command:
		return "Type a command and press <Enter>. <Esc> cancels."
	case Replace:
		return "Typed characters overwrite existing text. <Esc> returns to Normal mode."
	default:
		return ""
	}
}
