package server

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/crystal-mush/gosoul/pkg/soul"
)

//go:embed help.txt
var defaultHelp string

// HelpFile holds parsed help entries. Entries are separated by lines
// starting with "& topicname"; consecutive topic lines share one body.
type HelpFile struct {
	Entries map[string]string // lowercase topic -> text content
}

// ParseHelp reads help entries from r.
func ParseHelp(r io.Reader) (*HelpFile, error) {
	hf := &HelpFile{Entries: make(map[string]string)}
	scanner := bufio.NewScanner(r)

	var currentTopics []string
	var buf strings.Builder

	saveEntry := func() {
		if len(currentTopics) == 0 {
			return
		}
		text := strings.TrimRight(buf.String(), "\n ")
		for _, topic := range currentTopics {
			hf.Entries[strings.ToLower(topic)] = text
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "& ") {
			topic := strings.TrimSpace(line[2:])
			if buf.Len() == 0 && len(currentTopics) > 0 {
				currentTopics = append(currentTopics, topic)
			} else {
				saveEntry()
				currentTopics = []string{topic}
				buf.Reset()
			}
		} else if len(currentTopics) > 0 {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	saveEntry()
	return hf, scanner.Err()
}

// DefaultHelp returns the built-in help entries.
func DefaultHelp() *HelpFile {
	hf, err := ParseHelp(strings.NewReader(defaultHelp))
	if err != nil {
		panic("server: embedded help: " + err.Error())
	}
	return hf
}

// LoadHelpFile parses a help file. Returns nil if the file cannot be opened.
func LoadHelpFile(path string) *HelpFile {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	hf, err := ParseHelp(f)
	if err != nil {
		log.Printf("help: reading %s: %v", path, err)
		return nil
	}
	log.Printf("help: loaded %d entries from %s", len(hf.Entries), path)
	return hf
}

// Lookup finds a help entry by topic name. Tries exact match first,
// then prefix match ("help adv" finds "adverbs").
func (hf *HelpFile) Lookup(topic string) string {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		topic = "help"
	}

	if text, ok := hf.Entries[topic]; ok {
		return text
	}

	var bestKey string
	for key := range hf.Entries {
		if strings.HasPrefix(key, topic) {
			if bestKey == "" || len(key) < len(bestKey) || (len(key) == len(bestKey) && key < bestKey) {
				bestKey = key
			}
		}
	}
	if bestKey != "" {
		return hf.Entries[bestKey]
	}
	return ""
}

// Topics lists every topic, sorted.
func (hf *HelpFile) Topics() []string {
	out := make([]string, 0, len(hf.Entries))
	for k := range hf.Entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// verbHelp describes the accepted forms of a soul verb.
func verbHelp(t *soul.Table, word string) (string, bool) {
	cands := t.VerbCandidates(word)
	if len(cands) == 0 {
		return "", false
	}
	v := cands[0]
	var b strings.Builder
	fmt.Fprintf(&b, "Usage:\n")
	for _, u := range v.Usage() {
		fmt.Fprintf(&b, "  %s\n", u)
	}
	if len(v.Synonyms) > 0 {
		fmt.Fprintf(&b, "Also: %s\n", strings.Join(v.Synonyms, ", "))
	}
	if v.DefaultAdverb != "" {
		fmt.Fprintf(&b, "Default adverb: %s\n", v.DefaultAdverb)
	}
	if v.DefaultBodypart != "" {
		fmt.Fprintf(&b, "Default bodypart: %s\n", v.DefaultBodypart)
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func cmdHelp(g *Game, actor soul.Entity, room string, a *soul.Action) {
	topic := strings.TrimSpace(a.Unparsed)
	if topic != "" {
		if text, ok := verbHelp(g.Soul().Table(), topic); ok {
			g.reply(actor, room, a.Verb, text)
			return
		}
	}
	if g.Help == nil {
		g.reply(actor, room, a.Verb, "No help available.")
		return
	}
	text := g.Help.Lookup(topic)
	if text == "" {
		g.reply(actor, room, a.Verb, fmt.Sprintf("No entry for '%s'.", topic))
		return
	}
	g.reply(actor, room, a.Verb, text)
}
