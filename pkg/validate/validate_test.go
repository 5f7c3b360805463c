package validate

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/crystal-mush/gosoul/pkg/soul/verbdata"
	"github.com/google/go-cmp/cmp"
)

const lintVocabulary = `
prepositions: [at, near, at]
adverbs: [happily, sadly, happily]
bodyparts: {nose: on the nose}
qualifiers:
  - name: fail
    self: "try to {action}, but fail"
    others: "tries to {action}, but fails"
verbs:
  - name: bounce
    patterns: [adv]
    msg: "bounce{s}[ {how}]"
  - name: bow
    patterns: ["adv [at] who"]
    msg: "bow{s}[ {how}]"
  - name: smirk
    adverb: sadly
    patterns: [""]
    msg: "smirk{s}"
  - name: fail
    patterns: [""]
    msg: "fail{s}"
`

// cleanVocabulary is lintVocabulary without the duplicate adverb, so the
// table builds.
func cleanVocabulary() string {
	return strings.Replace(lintVocabulary, ", happily]", "]", 1)
}

func parseVocab(t *testing.T, src string) *verbdata.File {
	t.Helper()
	f, err := verbdata.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return f
}

func byCategory(findings []Finding, cat Category) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Category == cat {
			out = append(out, f)
		}
	}
	return out
}

func TestDuplicateChecker(t *testing.T) {
	f := parseVocab(t, lintVocabulary)
	findings := (&DuplicateChecker{}).Check(f, nil)
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d: %+v", len(findings), findings)
	}
	got := map[string]Severity{}
	for _, fd := range findings {
		got[fd.Word] = fd.Severity
		if !fd.Fixable {
			t.Errorf("%s: expected fixable", fd.Word)
		}
	}
	if diff := cmp.Diff(map[string]Severity{"happily": SevError, "at": SevWarning}, got); diff != "" {
		t.Errorf("findings (-want +got):\n%s", diff)
	}
}

func TestDuplicateVerbName(t *testing.T) {
	f := parseVocab(t, `
verbs:
  - name: curtsey
    synonyms: [curtsy]
    msg: "curtsey{s}"
  - name: curtsy
    msg: "curtsy{s}"
`)
	findings := (&DuplicateChecker{}).Check(f, nil)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %+v", findings)
	}
	fd := findings[0]
	if fd.Fixable || fd.Verb != "curtsy" || fd.Line != 6 {
		t.Errorf("unexpected finding %+v", fd)
	}
}

func TestRunThenFix(t *testing.T) {
	f := parseVocab(t, lintVocabulary)
	v := New(f, soul.Options{})
	findings := v.Run()

	if v.Table() != nil {
		t.Fatal("table built despite a duplicate adverb")
	}
	if n := len(byCategory(findings, CatInvalid)); n != 1 {
		t.Fatalf("expected 1 invalid finding, got %d", n)
	}
	if v.Errors() != 2 {
		t.Errorf("Errors = %d, want 2", v.Errors())
	}
	if n := v.ApplyAll(CatDuplicate); n != 2 {
		t.Fatalf("ApplyAll fixed %d, want 2", n)
	}
	if diff := cmp.Diff([]string{"happily", "sadly"}, f.Adverbs); diff != "" {
		t.Errorf("adverbs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"at", "near"}, f.Prepositions); diff != "" {
		t.Errorf("prepositions (-want +got):\n%s", diff)
	}

	findings = v.Run()
	if v.Table() == nil || v.Errors() != 0 {
		t.Fatalf("table still broken: %+v", findings)
	}
	summary := v.Summary()
	want := map[Category]int{CatUnrendered: 2, CatReach: 1, CatOverlap: 1, CatUnused: 2}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("summary (-want +got):\n%s", diff)
	}
}

func TestUnrenderedChecker(t *testing.T) {
	f := parseVocab(t, cleanVocabulary())
	tbl, err := f.Table(soul.Options{})
	if err != nil {
		t.Fatal(err)
	}
	findings := (&UnrenderedChecker{}).Check(f, tbl)
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %+v", findings)
	}
	bow := findings[0]
	if bow.Verb != "bow" || bow.Word != "who" {
		t.Errorf("unexpected finding %+v", bow)
	}
	if diff := cmp.Diff([]Highlight{{Start: 9, End: 12}}, bow.CurrentHL); diff != "" {
		t.Errorf("highlight (-want +got):\n%s", diff)
	}
	if smirk := findings[1]; smirk.Verb != "smirk" || smirk.Word != "sadly" {
		t.Errorf("unexpected finding %+v", smirk)
	}
}

func TestReachAndOverlap(t *testing.T) {
	f := parseVocab(t, cleanVocabulary())
	tbl, err := f.Table(soul.Options{})
	if err != nil {
		t.Fatal(err)
	}
	reach := (&ReachChecker{}).Check(f, tbl)
	if len(reach) != 1 || reach[0].Verb != "bow" {
		t.Fatalf("reach = %+v", reach)
	}
	bounce, _ := tbl.Verb("bounce")
	if p, ok := Shortest(tbl, bounce); !ok || p != "b" {
		t.Errorf("Shortest(bounce) = %q, %v", p, ok)
	}
	smirk, _ := tbl.Verb("smirk")
	if p, ok := Shortest(tbl, smirk); !ok || p != "s" {
		t.Errorf("Shortest(smirk) = %q, %v", p, ok)
	}

	overlap := (&OverlapChecker{}).Check(f, tbl)
	if len(overlap) != 1 || overlap[0].Word != "fail" || overlap[0].Severity != SevWarning {
		t.Errorf("overlap = %+v", overlap)
	}
}

func TestUnusedFix(t *testing.T) {
	f := parseVocab(t, cleanVocabulary())
	v := New(f, soul.Options{})
	v.Run()
	var id string
	for _, fd := range byCategory(v.Findings(), CatUnused) {
		if fd.Word == "near" {
			id = fd.ID
		}
	}
	if id == "" {
		t.Fatal("unused preposition not reported")
	}
	if err := v.ApplyFix(id); err != nil {
		t.Fatal(err)
	}
	if err := v.ApplyFix(id); err == nil {
		t.Error("second ApplyFix succeeded")
	}
	if err := v.ApplyFix("nope"); err == nil {
		t.Error("unknown finding fixed")
	}
	if diff := cmp.Diff([]string{"at", "at"}, f.Prepositions); diff != "" {
		t.Errorf("prepositions (-want +got):\n%s", diff)
	}
}

func TestDefaultVocabularyLoads(t *testing.T) {
	v := New(verbdata.Default(), soul.Options{})
	findings := v.Run()
	if v.Errors() != 0 {
		for _, f := range findings {
			if f.Severity == SevError {
				t.Errorf("%d: %s", f.Line, f.Description)
			}
		}
	}
	if n := len(byCategory(findings, CatDuplicate)); n != 0 {
		t.Errorf("default vocabulary has %d duplicates", n)
	}
}

func TestReport(t *testing.T) {
	f := parseVocab(t, lintVocabulary)
	v := New(f, soul.Options{})
	v.Run()
	r := GenerateReport(v, "lint.yaml")

	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Errors     int                    `json:"errors"`
		Categories map[string]CategorySum `json:"categories"`
		Findings   []struct {
			Category string `json:"category"`
			Severity string `json:"severity"`
		} `json:"findings"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Errors != 2 || decoded.Categories["duplicate"].Fixable != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Findings[0].Severity != "error" {
		t.Errorf("first finding = %+v", decoded.Findings[0])
	}

	buf.Reset()
	if err := r.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "lint.yaml: error: adverb \"happily\" is declared more than once") {
		t.Errorf("text report:\n%s", buf.String())
	}
}
