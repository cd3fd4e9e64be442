package command

import "strings"

// Register is the single unnamed clipboard. Linewise content is a list of
// whole lines; characterwise content may still span lines.
type Register struct {
	Text     string `json:"text"`
	Linewise bool   `json:"linewise"`
	Set      bool   `json:"set"`
}

func (r *Register) storeChars(s string) {
	r.Text, r.Linewise, r.Set = s, false, true
}

func (r *Register) storeLines(lines []string) {
	r.Text, r.Linewise, r.Set = strings.Join(lines, "\n"), true, true
}

// Lines splits linewise content.
func (r Register) Lines() []string {
	return strings.Split(r.Text, "\n")
}
