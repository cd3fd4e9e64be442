package command

// ID identifies a Normal-mode command. The set is closed; dispatch is a
// switch over ID in execute.
type ID int

const (
	MoveLeft ID = iota + 1
	MoveDown
	MoveUp
	MoveRight
	WordForward
	WordBackward
	WordEnd
	BigWordForward
	BigWordBackward
	BigWordEnd
	LineStart
	LineFirstNonBlank
	LineEnd
	LineLastNonBlank
	FileStart
	FileEnd
	NextLineStart

	DeleteChar
	DeleteCharBefore
	DeleteLine
	DeleteToLineEnd
	DeleteWord
	DeleteWordEnd
	DeleteWordBackward
	DeleteToLineStart
	JoinLines
	ToggleCase

	YankLine
	YankWord
	YankToLineEnd
	PutAfter
	PutBefore

	ChangeLine
	ChangeToLineEnd
	ChangeWord
	ChangeWordEnd
	SubstituteChar
	SubstituteLine
	ReplaceChar
	EnterReplace

	Undo
	Redo

	InsertBefore
	InsertLineStart
	Append
	AppendLineEnd
	OpenBelow
	OpenAbove

	VisualChar
	VisualLineMode
	VisualBlockMode

	CommandLine
	SearchForward
	SearchBackward
	SearchNext
	SearchPrev
	SearchWordForward
	SearchWordBackward

	WriteQuit
	QuitDiscard
	Cancel
)

var idNames = map[ID]string{
	MoveLeft:           "move left",
	MoveDown:           "move down",
	MoveUp:             "move up",
	MoveRight:          "move right",
	WordForward:        "next word",
	WordBackward:       "previous word",
	WordEnd:            "end of word",
	BigWordForward:     "next WORD",
	BigWordBackward:    "previous WORD",
	BigWordEnd:         "end of WORD",
	LineStart:          "start of line",
	LineFirstNonBlank:  "first non-blank",
	LineEnd:            "end of line",
	LineLastNonBlank:   "last non-blank",
	FileStart:          "first line",
	FileEnd:            "last line",
	NextLineStart:      "next line",
	DeleteChar:         "delete character",
	DeleteCharBefore:   "delete previous character",
	DeleteLine:         "delete line",
	DeleteToLineEnd:    "delete to end of line",
	DeleteWord:         "delete word",
	DeleteWordEnd:      "delete to end of word",
	DeleteWordBackward: "delete previous word",
	DeleteToLineStart:  "delete to start of line",
	JoinLines:          "join lines",
	ToggleCase:         "toggle case",
	YankLine:           "yank line",
	YankWord:           "yank word",
	YankToLineEnd:      "yank to end of line",
	PutAfter:           "put after",
	PutBefore:          "put before",
	ChangeLine:         "change line",
	ChangeToLineEnd:    "change to end of line",
	ChangeWord:         "change word",
	ChangeWordEnd:      "change to end of word",
	SubstituteChar:     "substitute character",
	SubstituteLine:     "substitute line",
	ReplaceChar:        "replace character",
	EnterReplace:       "replace mode",
	Undo:               "undo",
	Redo:               "redo",
	InsertBefore:       "insert",
	InsertLineStart:    "insert at line start",
	Append:             "append",
	AppendLineEnd:      "append at line end",
	OpenBelow:          "open line below",
	OpenAbove:          "open line above",
	VisualChar:         "visual",
	VisualLineMode:     "visual line",
	VisualBlockMode:    "visual block",
	CommandLine:        "command line",
	SearchForward:      "search forward",
	SearchBackward:     "search backward",
	SearchNext:         "next match",
	SearchPrev:         "previous match",
	SearchWordForward:  "search word forward",
	SearchWordBackward: "search word backward",
	WriteQuit:          "write and quit",
	QuitDiscard:        "quit without saving",
	Cancel:             "cancel",
}

func (id ID) String() string {
	if n, ok := idNames[id]; ok {
		return n
	}
	return "unknown"
}

// IsMotion reports whether id only moves the cursor.
func (id ID) IsMotion() bool {
	return id >= MoveLeft && id <= NextLineStart
}

// binding pairs a key sequence with its command.
type binding struct {
	keys string
	id   ID
}

// normalBindings is the Normal-mode surface. Keys are written compactly and
// split with ParseKeys.
var normalBindings = []binding{
	{"h", MoveLeft}, {"<Left>", MoveLeft}, {"<BS>", MoveLeft},
	{"j", MoveDown}, {"<Down>", MoveDown},
	{"k", MoveUp}, {"<Up>", MoveUp},
	{"l", MoveRight}, {"<Right>", MoveRight}, {" ", MoveRight},
	{"w", WordForward}, {"b", WordBackward}, {"e", WordEnd},
	{"W", BigWordForward}, {"B", BigWordBackward}, {"E", BigWordEnd},
	{"0", LineStart}, {"<Home>", LineStart},
	{"^", LineFirstNonBlank},
	{"$", LineEnd}, {"<End>", LineEnd},
	{"g_", LineLastNonBlank},
	{"gg", FileStart}, {"G", FileEnd},
	{"<Enter>", NextLineStart}, {"+", NextLineStart},

	{"x", DeleteChar}, {"<Del>", DeleteChar},
	{"X", DeleteCharBefore},
	{"dd", DeleteLine},
	{"D", DeleteToLineEnd}, {"d$", DeleteToLineEnd},
	{"dw", DeleteWord}, {"de", DeleteWordEnd}, {"db", DeleteWordBackward},
	{"d0", DeleteToLineStart},
	{"J", JoinLines},
	{"~", ToggleCase},

	{"yy", YankLine}, {"Y", YankLine},
	{"yw", YankWord}, {"y$", YankToLineEnd},
	{"p", PutAfter}, {"P", PutBefore},

	{"cc", ChangeLine}, {"S", SubstituteLine},
	{"C", ChangeToLineEnd}, {"c$", ChangeToLineEnd},
	{"cw", ChangeWord}, {"ce", ChangeWordEnd},
	{"s", SubstituteChar},
	{"r", ReplaceChar},
	{"R", EnterReplace},

	{"u", Undo}, {"<C-r>", Redo},

	{"i", InsertBefore}, {"I", InsertLineStart},
	{"a", Append}, {"A", AppendLineEnd},
	{"o", OpenBelow}, {"O", OpenAbove},

	{"v", VisualChar}, {"V", VisualLineMode}, {"<C-v>", VisualBlockMode},

	{":", CommandLine},
	{"/", SearchForward}, {"?", SearchBackward},
	{"n", SearchNext}, {"N", SearchPrev},
	{"*", SearchWordForward}, {"#", SearchWordBackward},

	{"ZZ", WriteQuit}, {"ZQ", QuitDiscard},
	{"<Esc>", Cancel}, {"<C-c>", Cancel},
}

// NewNormalTrie builds the Normal-mode command trie.
func NewNormalTrie() (*Trie, error) {
	t := NewTrie()
	for _, b := range normalBindings {
		keys, err := ParseKeys(b.keys)
		if err != nil {
			return nil, err
		}
		if err := t.Insert(keys, b.id); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// defaultTrie is immutable after init and shared by every interpreter.
var defaultTrie = mustNormalTrie()

func mustNormalTrie() *Trie {
	t, err := NewNormalTrie()
	if err != nil {
		panic(err)
	}
	return t
}

// Bindings returns every Normal-mode key sequence and its command name.
func Bindings() map[string]string {
	out := make(map[string]string, len(normalBindings))
	for _, b := range normalBindings {
		out[b.keys] = b.id.String()
	}
	return out
}
