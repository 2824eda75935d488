// Command jetdb is an interactive inspector for the index engine: it
// opens a page store, creates tables with indexes, inserts rows, and
// dumps an index's entries in sorted order. It is ambient tooling, not
// part of the core library.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/jetdb/jetdb/pkg/coltype"
	"github.com/jetdb/jetdb/pkg/index"
	"github.com/jetdb/jetdb/pkg/jetfmt"
	"github.com/jetdb/jetdb/pkg/pagestore"
	"github.com/jetdb/jetdb/pkg/table"
	"github.com/jetdb/jetdb/pkg/telemetry"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem(".help"),
	readline.PcItem(".open"),
	readline.PcItem(".create"),
	readline.PcItem(".insert"),
	readline.PcItem(".dump"),
	readline.PcItem(".tables"),
	readline.PcItem(".exit"),
)

const helpText = `
.open <path>                      open (or create) a Jet file
.create <table> <col:type> ...    create a table; first column gets a primary-key index
.insert <table> <col=value> ...   insert a row into the table's primary index
.dump <table>                     print the table's primary index entries in sorted order
.tables                           list created tables
.exit                             quit
`

// memCatalog is an in-memory stand-in for the on-disk catalog: looking up
// a table by name from the table-definition area is out of this
// module's core scope (§1), so the REPL tracks what it created itself.
type memCatalog struct {
	names []string
}

func (c *memCatalog) AddNewTable(name string, tdefPageNumber int32, tableType table.TableType) error {
	c.names = append(c.names, name)
	return nil
}

type session struct {
	store   *pagestore.FilePageStore
	catalog *memCatalog
	format  jetfmt.Format
	tables  map[string]*tableHandle
	path    string
	tel     telemetry.Telemetry
}

type tableHandle struct {
	columns []*coltype.Column
	primary *index.Index
}

func main() {
	version := flag.String("format", "2000", "Jet format version: 2000, 2003, or 2007")
	telemetryEnabled := flag.Bool("telemetry", false, "emit metrics and traces via the configured exporters")
	flag.Parse()

	var ver jetfmt.Version
	switch *version {
	case "2003":
		ver = jetfmt.Version2003
	case "2007":
		ver = jetfmt.Version2007
	default:
		ver = jetfmt.Version2000
	}
	format := jetfmt.MustLookup(ver)

	cfg := telemetry.DefaultConfig()
	cfg.Enabled = *telemetryEnabled
	cfg.LoadFromEnv()
	tel, err := telemetry.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry disabled: %v\n", err)
		tel = telemetry.NewNoop()
	}
	defer tel.Shutdown(context.Background())

	sess := &session{format: format, tables: make(map[string]*tableHandle), tel: tel}
	runInteractive(sess)
}

func runInteractive(sess *session) {
	fmt.Println("jetdb inspector")
	fmt.Println("Enter .help for usage hints.")

	historyFile := filepath.Join(os.TempDir(), ".jetdb_history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "jetdb> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing readline: %s\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	for {
		prompt := "jetdb> "
		if sess.path != "" {
			prompt = fmt.Sprintf("jetdb:%s> ", sess.path)
		}
		rl.SetPrompt(prompt)

		line, readErr := rl.Readline()
		if readErr != nil {
			if readErr == readline.ErrInterrupt {
				continue
			}
			if readErr == io.EOF {
				fmt.Println("Goodbye!")
				break
			}
			fmt.Fprintf(os.Stderr, "Error reading input: %s\n", readErr)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		if err := sess.dispatch(line); err != nil {
			if errors.Is(err, errExit) {
				fmt.Println("Goodbye!")
				break
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

var errExit = errors.New("exit")

func (s *session) dispatch(line string) error {
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case ".help":
		fmt.Print(helpText)
		return nil
	case ".exit":
		if s.store != nil {
			s.store.Close()
		}
		return errExit
	case ".open":
		return s.cmdOpen(args)
	case ".create":
		return s.cmdCreate(args)
	case ".insert":
		return s.cmdInsert(args)
	case ".dump":
		return s.cmdDump(args)
	case ".tables":
		for _, n := range s.catalog.names {
			fmt.Println(n)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", parts[0])
	}
}

func (s *session) cmdOpen(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: .open <path>")
	}
	store, err := pagestore.Open(args[0], s.format.PageSize, pagestore.WithTelemetry(s.tel))
	if err != nil {
		return err
	}
	if s.store != nil {
		s.store.Close()
	}
	s.store = store
	s.catalog = &memCatalog{}
	s.tables = make(map[string]*tableHandle)
	s.path = args[0]
	fmt.Printf("opened %s (page size %d)\n", args[0], s.format.PageSize)
	return nil
}

// cmdCreate parses "name COL:TYPE COL:TYPE ..." and creates a table with
// a single primary-key index on the first column.
func (s *session) cmdCreate(args []string) error {
	if s.store == nil {
		return errors.New("no database open; use .open first")
	}
	if len(args) < 2 {
		return errors.New("usage: .create <table> <col:type> ...")
	}
	name := args[0]
	var cols []*coltype.Column
	for _, spec := range args[1:] {
		colName, typeName, ok := strings.Cut(spec, ":")
		if !ok {
			return fmt.Errorf("malformed column spec %q, want name:type", spec)
		}
		dt, err := parseDataType(typeName)
		if err != nil {
			return err
		}
		cols = append(cols, coltype.NewColumn(strings.ToUpper(colName), dt, false))
	}

	indexes := []*table.Descriptor{{
		Name:       name + "_pk",
		PrimaryKey: true,
		Columns:    []index.IndexColumnSpec{{ColumnName: cols[0].Name(), Ascending: true}},
	}}

	tc := table.New(table.CatalogAndStorage{Store: s.store, Catalog: s.catalog}, name, cols, indexes, s.format, table.Options{},
		table.WithTelemetry(s.tel))
	if err := tc.CreateTable(); err != nil {
		return err
	}

	primaryDef := table.Descriptor{Name: indexes[0].Name, PrimaryKey: true, Columns: indexes[0].Columns}
	byName := map[string]*coltype.Column{strings.ToUpper(cols[0].Name()): cols[0]}
	colDefs, err := primaryDef.Validate(byName, s.format)
	if err != nil {
		return err
	}
	pn, err := s.store.ReservePageNumber()
	if err != nil {
		return err
	}
	primary := index.New(indexes[0].Name, true, 0, pagestore.InvalidPageNumber, colDefs, s.store, s.format,
		index.WithTelemetry(s.tel))
	primary.SetPageNumber(pn)
	if err := primary.Update(); err != nil {
		return err
	}

	s.tables[strings.ToUpper(name)] = &tableHandle{columns: cols, primary: primary}
	fmt.Printf("table %s created with %d columns\n", name, len(cols))
	return nil
}

func (s *session) cmdInsert(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: .insert <table> <col=value> ...")
	}
	th, ok := s.tables[strings.ToUpper(args[0])]
	if !ok {
		return fmt.Errorf("unknown table %q", args[0])
	}
	row := make(index.Row, len(th.columns))
	for _, kv := range args[1:] {
		colName, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("malformed assignment %q, want col=value", kv)
		}
		for i, c := range th.columns {
			if !strings.EqualFold(c.Name(), colName) {
				continue
			}
			if c.Type() == coltype.Text || c.Type() == coltype.Memo {
				row[i] = index.Value{Str: value}
			} else {
				n, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					return fmt.Errorf("column %s: %v", colName, err)
				}
				row[i] = index.Value{Int: n}
			}
		}
	}

	rowNumber := byte(th.primary.RowCount())
	if err := th.primary.AddRow(row, uint32(th.primary.PageNumber()), rowNumber); err != nil {
		return err
	}
	return th.primary.Update()
}

func (s *session) cmdDump(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: .dump <table>")
	}
	th, ok := s.tables[strings.ToUpper(args[0])]
	if !ok {
		return fmt.Errorf("unknown table %q", args[0])
	}
	fmt.Printf("%s: %d entries\n", args[0], th.primary.RowCount())
	cur := th.primary.Cursor()
	for ok := cur.SeekToFirst(); ok; ok = cur.Next() {
		e := cur.Entry()
		fmt.Printf("  page=%d row=%d\n", e.Page, e.Row)
	}
	return nil
}

func parseDataType(name string) (coltype.DataType, error) {
	switch strings.ToUpper(name) {
	case "INT":
		return coltype.Int, nil
	case "SHORT":
		return coltype.Short, nil
	case "LONG":
		return coltype.Long, nil
	case "TEXT":
		return coltype.Text, nil
	case "MEMO":
		return coltype.Memo, nil
	case "BOOLEAN":
		return coltype.Boolean, nil
	default:
		return coltype.Unknown, fmt.Errorf("unsupported column type %q", name)
	}
}
