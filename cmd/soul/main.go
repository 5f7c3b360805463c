package main

import (
	"bufio"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/buildkite/shellwords"
	"github.com/crystal-mush/gosoul/pkg/boltstore"
	"github.com/crystal-mush/gosoul/pkg/events"
	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/crystal-mush/gosoul/pkg/soul/verbdata"
	"github.com/crystal-mush/gosoul/pkg/server"
	"github.com/crystal-mush/gosoul/pkg/world"
)

//go:embed world.yaml
var demoWorld []byte

// consoleKey is the actor-index name under which the console remembers
// who it last played.
const consoleKey = "console"

// envDefault returns the environment variable value if set, otherwise the fallback.
func envDefault(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}

func main() {
	confFile := flag.String("conf", envDefault("SOUL_CONF", ""), "Path to engine config file (env: SOUL_CONF)")
	worldPath := flag.String("world", envDefault("SOUL_WORLD", ""), "Path to world file, default is a built-in demo (env: SOUL_WORLD)")
	verbsPath := flag.String("verbs", envDefault("SOUL_VERBS", ""), "Path to vocabulary file, default is the built-in one (env: SOUL_VERBS)")
	asName := flag.String("as", envDefault("SOUL_AS", ""), "Name of the character to play (env: SOUL_AS)")
	boltPath := flag.String("bolt", envDefault("SOUL_BOLT", ""), "Path to bbolt pronoun store (env: SOUL_BOLT)")
	sqlDBPath := flag.String("sqldb", envDefault("SOUL_SQLDB", ""), "Path to SQLite3 scrollback database (env: SOUL_SQLDB)")
	metricsAddr := flag.String("metrics", envDefault("SOUL_METRICS", ""), "Listen address for Prometheus metrics, e.g. :9100 (env: SOUL_METRICS)")
	flag.Parse()

	log.Printf("Welcome to %s", server.VersionString())

	// Load engine config if specified, otherwise use defaults
	var sc *server.SoulConf
	if *confFile != "" {
		var err error
		sc, err = server.LoadSoulConf(*confFile)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		log.Printf("Loaded config from %s", *confFile)
	} else {
		sc = server.DefaultSoulConf()
	}

	// Command-line flags override config file values
	overrides := []struct {
		flag string
		dst  *string
	}{
		{*worldPath, &sc.WorldFile},
		{*verbsPath, &sc.VerbsFile},
		{*boltPath, &sc.BoltPath},
		{*sqlDBPath, &sc.SQLPath},
		{*metricsAddr, &sc.MetricsAddr},
	}
	for _, o := range overrides {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}
	if err := sc.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	w, err := loadWorld(sc.WorldFile)
	if err != nil {
		log.Fatalf("Error loading world: %v", err)
	}

	opts := soul.Options{MinVerbAbbrev: sc.MinVerbAbbrev}
	var table *soul.Table
	if sc.VerbsFile != "" {
		table, err = verbdata.LoadTable(sc.VerbsFile, opts)
	} else {
		table, err = verbdata.Default().Table(opts)
	}
	if err != nil {
		log.Fatalf("Error loading vocabulary: %v", err)
	}

	game := server.NewGame(sc, w, table)
	if sc.HelpFile != "" {
		if hf := server.LoadHelpFile(sc.HelpFile); hf != nil {
			game.Help = hf
		} else {
			log.Printf("WARNING: cannot read help file %s, using built-in help", sc.HelpFile)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *boltstore.Store
	if sc.BoltPath != "" {
		store, err = boltstore.Open(sc.BoltPath)
		if err != nil {
			log.Fatalf("Error opening bolt database: %v", err)
		}
		defer store.Close()
		if sc.PronounRetention > 0 {
			cutoff := time.Now().Add(-time.Duration(sc.PronounRetention) * time.Second)
			if _, err := store.PruneBefore(cutoff); err != nil {
				log.Printf("WARNING: %v", err)
			}
		}
		if store.HasData() {
			if _, err := store.LoadAll(); err != nil {
				log.Printf("WARNING: %v", err)
			}
		}
		game.Store = store
	}

	if sc.SQLPath != "" {
		sqlStore, err := server.OpenSQLStore(sc.SQLPath, sc.SQLTimeout)
		if err != nil {
			log.Printf("WARNING: failed to open SQL database %s: %v", sc.SQLPath, err)
		} else {
			defer sqlStore.Close()
			sw, err := server.NewScrollbackWriter(sqlStore, game.Bus)
			if err != nil {
				log.Printf("WARNING: scrollback disabled: %v", err)
			} else {
				defer sw.Close()
				game.SQLDB = sqlStore
				server.StartRetentionCleanup(ctx, sqlStore, time.Duration(sc.ScrollbackRetention)*time.Second)
				log.Printf("Scrollback enabled, database: %s", sc.SQLPath)
			}
		}
	}

	if sc.MetricsAddr != "" {
		game.AttachMetrics(server.NewMetrics(time.Now()))
		mux := http.NewServeMux()
		mux.Handle("/metrics", game.Metrics.Handler())
		go func() {
			log.Printf("Metrics listening on %s", sc.MetricsAddr)
			if err := http.ListenAndServe(sc.MetricsAddr, mux); err != nil {
				log.Printf("metrics listener: %v", err)
			}
		}()
	}

	if sc.WatchVerbs && sc.VerbsFile != "" {
		if err := game.WatchVerbs(ctx, nil); err != nil {
			log.Printf("WARNING: %v", err)
		}
	}

	c := &console{game: game, store: store, out: os.Stdout}
	game.Bus.SubscribeGlobal(c)
	if err := c.become(pickActor(w, store, *asName)); err != nil {
		log.Fatalf("%v", err)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	c.prompt()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !c.handle(line) {
				return
			}
			c.prompt()
		}
	}
}

func loadWorld(path string) (*world.World, error) {
	if path == "" {
		return world.Parse(demoWorld)
	}
	return world.Load(path)
}

// pickActor chooses who to play: the flag, then whoever was played last,
// then the first player in the world.
func pickActor(w *world.World, store *boltstore.Store, name string) string {
	if name != "" {
		return name
	}
	if store != nil {
		if id, ok := store.LookupActor(consoleKey); ok {
			if e, ok := w.Entity(id); ok {
				return e.Name
			}
		}
	}
	for _, room := range w.Rooms() {
		for _, id := range w.Occupants(room) {
			if e, ok := w.Entity(id); ok && e.Kind == soul.KindPlayer {
				return e.Name
			}
		}
	}
	return ""
}

// console prints what the played character sees and runs meta-commands.
type console struct {
	game  *server.Game
	store *boltstore.Store
	out   io.Writer
	actor soul.Entity
}

// Receive implements events.Subscriber.
func (c *console) Receive(ev events.Event) {
	if ev.Observer != c.actor.ID || ev.Text == "" {
		return
	}
	switch ev.Type {
	case events.EvError:
		fmt.Fprintf(c.out, "%s\n", ev.Text)
		if hint, ok := ev.Data["kind"].(string); ok && hint == "unknown_verb" {
			fmt.Fprintln(c.out, "Type \"help\" for a list of topics.")
		}
	default:
		fmt.Fprintln(c.out, ev.Text)
	}
}

// Closed implements events.Subscriber.
func (c *console) Closed() bool { return false }

func (c *console) prompt() { fmt.Fprint(c.out, "> ") }

func (c *console) become(name string) error {
	if name == "" {
		return fmt.Errorf("no character to play")
	}
	e, ok := c.game.World.Find(name)
	if !ok {
		return fmt.Errorf("no character named %q", name)
	}
	if !e.Kind.Living() {
		return fmt.Errorf("%s cannot act", e.DisplayName())
	}
	c.actor = e
	if c.store != nil {
		if err := c.store.PutActor(consoleKey, e.ID, ""); err != nil {
			log.Printf("WARNING: %v", err)
		}
	}
	fmt.Fprintf(c.out, "You are now %s.\n", e.DisplayName())
	return nil
}

// handle runs one input line and reports whether to keep reading.
func (c *console) handle(line string) bool {
	if !strings.HasPrefix(line, "/") {
		if err := c.game.Dispatch(c.actor.ID, line); err != nil {
			log.Printf("dispatch: %v", err)
		}
		return true
	}

	words, err := shellwords.Split(line[1:])
	if err != nil || len(words) == 0 {
		fmt.Fprintln(c.out, "Meta-commands: /as <name>, /history [n], /reload, /backup <path>, /quit")
		return true
	}
	switch strings.ToLower(words[0]) {
	case "quit", "q":
		return false
	case "as":
		if len(words) < 2 {
			fmt.Fprintln(c.out, "Usage: /as <name>")
			break
		}
		if err := c.become(strings.Join(words[1:], " ")); err != nil {
			fmt.Fprintln(c.out, err)
		}
	case "history":
		n := 0
		if len(words) > 1 {
			if n, err = strconv.Atoi(words[1]); err != nil {
				fmt.Fprintln(c.out, "Usage: /history [n]")
				break
			}
		}
		c.history(n)
	case "reload":
		if c.game.Conf.VerbsFile == "" {
			fmt.Fprintln(c.out, "The built-in vocabulary cannot be reloaded.")
			break
		}
		if err := c.game.ReloadVerbs(); err != nil {
			fmt.Fprintf(c.out, "Reload failed, keeping the current verbs: %v\n", err)
			break
		}
		fmt.Fprintf(c.out, "Reloaded %d verbs.\n", len(c.game.Soul().Table().Verbs()))
	case "backup":
		if c.store == nil || len(words) < 2 {
			fmt.Fprintln(c.out, "Usage: /backup <path> (needs -bolt)")
			break
		}
		if err := c.store.Backup(words[1]); err != nil {
			fmt.Fprintln(c.out, err)
			break
		}
		fmt.Fprintf(c.out, "Pronoun store copied to %s (%d saves).\n", words[1], c.store.Saves())
	default:
		fmt.Fprintf(c.out, "Unknown meta-command /%s.\n", words[0])
	}
	return true
}

func (c *console) history(n int) {
	entries, err := c.game.History(c.actor.ID, n)
	if err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "Nothing yet.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(c.out, "[%s] %s\n", e.Time.Format("15:04:05"), e.Text)
	}
}
