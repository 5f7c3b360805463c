package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/crystal-mush/gosoul/pkg/soul/verbdata"
	"github.com/crystal-mush/gosoul/pkg/validate"
)

func main() {
	verbsPath := flag.String("verbs", "", "Path to a vocabulary file (default: the built-in vocabulary)")
	asJSON := flag.Bool("json", false, "Print the report as JSON")
	fix := flag.Bool("fix", false, "Apply fixable findings in memory and check again")
	list := flag.Bool("list", false, "List every verb with its usage")
	showVerb := flag.String("verb", "", "Show details for one verb")
	minAbbrev := flag.Int("min-abbrev", 1, "Shortest verb abbreviation accepted")
	flag.Parse()

	var (
		f      *verbdata.File
		source = "(built-in)"
	)
	start := time.Now()
	if *verbsPath == "" {
		f = verbdata.Default()
	} else {
		var err error
		f, err = verbdata.Load(*verbsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
		source = *verbsPath
	}

	v := validate.New(f, soul.Options{MinVerbAbbrev: *minAbbrev})
	v.Run()
	if *fix {
		fixed := 0
		for _, cat := range []validate.Category{validate.CatDuplicate, validate.CatUnused} {
			fixed += v.ApplyAll(cat)
		}
		if !*asJSON {
			fmt.Printf("Applied %d fixes, checking again.\n", fixed)
		}
		v.Run()
	}

	r := validate.GenerateReport(v, source)
	if *asJSON {
		if err := r.WriteJSON(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Printf("Checked %s in %v\n", source, time.Since(start).Round(time.Microsecond))
		if err := r.WriteText(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
	}

	if t := v.Table(); t != nil && !*asJSON {
		if *list {
			fmt.Println()
			printVerbs(t)
		}
		if *showVerb != "" {
			fmt.Println()
			printVerb(t, *showVerb)
		}
	}

	if v.Errors() > 0 {
		os.Exit(1)
	}
}

func printVerbs(t *soul.Table) {
	fmt.Println("=== VERBS ===")
	for _, verb := range t.Verbs() {
		short, ok := validate.Shortest(t, verb)
		if !ok {
			short = "-"
		}
		fmt.Printf("%-12s %-6s %s\n", verb.Name, short, strings.Join(verb.Usage(), " | "))
	}
}

func printVerb(t *soul.Table, name string) {
	verb, ok := t.Verb(name)
	if !ok {
		fmt.Printf("No verb named %q.\n", name)
		return
	}
	fmt.Printf("=== VERB %s ===\n", verb.Name)
	if len(verb.Synonyms) > 0 {
		fmt.Printf("Synonyms:       %s\n", strings.Join(verb.Synonyms, ", "))
	}
	for i, u := range verb.Usage() {
		fmt.Printf("Pattern %d:      %s\n", i+1, u)
	}
	if verb.DefaultAdverb != "" {
		fmt.Printf("Default adverb: %s\n", verb.DefaultAdverb)
	}
	if short, ok := validate.Shortest(t, verb); ok {
		fmt.Printf("Shortest form:  %s\n", short)
	}
	fmt.Printf("Hostile:        %v\n", verb.Hostile)
}
