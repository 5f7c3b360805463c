package server

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestMetricsFromDispatch(t *testing.T) {
	env := newTestEnv(t, nil)
	m := NewMetrics(time.Now())
	env.game.AttachMetrics(m)

	env.run(t, julie, "smile at bob")
	env.run(t, julie, "poke him")
	env.run(t, julie, "xyzzy")
	env.run(t, julie, "look")

	body := scrape(t, m)
	for _, want := range []string{
		`gosoul_commands_total{outcome="ok"} 2`,
		`gosoul_commands_total{outcome="unknown_verb"} 1`,
		`gosoul_commands_total{outcome="external"} 1`,
		`gosoul_pronoun_assumptions_total 1`,
		`gosoul_parse_seconds_count 4`,
		`gosoul_goroutines `,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape lacks %q", want)
		}
	}
	if strings.Contains(body, "gosoul_vocabulary_verbs 0\n") {
		t.Error("vocabulary size not published")
	}
}

func TestMetricsReloads(t *testing.T) {
	m := NewMetrics(time.Now())
	m.ObserveReload(nil)
	m.ObserveReload(errors.New("bad"))
	m.ObserveReload(errors.New("worse"))

	body := scrape(t, m)
	for _, want := range []string{
		`gosoul_vocabulary_reloads_total{result="ok"} 1`,
		`gosoul_vocabulary_reloads_total{result="error"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape lacks %q", want)
		}
	}
}
