package output

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	log "github.com/sirupsen/logrus"

	"github.com/monthlog/monthlog"
)

// SQLiteDesc describes the SQLite output.
var SQLiteDesc = monthlog.OutputDesc{
	Name:   "SQLite",
	New:    NewSQLite,
	Config: &SQLiteConfig{},
	Help: "Writes the report into a table of a local SQLite database file, named on the command line.\n" +
		"Each non-empty group of the report becomes a row with columns: month, position (1 to 12), " +
		"type (M or R), count and payloads (space-separated).\n",
}

// SQLiteConfig holds the configuration of the SQLite output.
type SQLiteConfig struct {
	TableName string   `help:"Table name to which to write the report rows." default:"report"`
	PreRun    []string `help:"List of SQL statements to run at startup (before table creation)."`
	PostRun   []string `help:"List of SQL statements to run at exit. (good place to create indexes if needed)."`
	Clear     bool     `help:"Whether DELETE should be run on TableName before writing. By default, if the target file already exists and has a table, this output will append to that table."`
	Vacuum    bool     `help:"Should we run VACUUM at the end? Note that PostRun can't take VACUUM commands because it's run inside a transaction."`
	Wal       bool     `help:"Send PRAGMA journal_mode=wal; before starting. This turns on write-ahead logging for the SQLite file."`
	PageSize  int64    `help:"The page size to use for SQLite. By default, we use whatever SQLite decides to use as default."`
}

func (cfg *SQLiteConfig) fillDefaults() {
	if cfg.TableName == "" {
		cfg.TableName = "report"
	}
}

// sqliteColumns are the columns of the report table, in order.
var sqliteColumns = []string{"month", "position", "type", "count", "payloads"}

// SQLite is an output storing the report in a SQLite table.
type SQLite struct {
	cfg *SQLiteConfig

	path  string
	conn  *sql.DB
	tx    *sql.Tx // main transaction
	nrows int64
	nrecs int64
}

// NewSQLite returns a SQLite output.
func NewSQLite(cfg monthlog.OutputParams) (monthlog.Output, error) {
	if cfg.DecodedConfig == nil {
		cfg.DecodedConfig = &SQLiteConfig{}
	}
	dcfg := cfg.DecodedConfig.(*SQLiteConfig)
	dcfg.fillDefaults()

	if !isPrintable(dcfg.TableName) {
		return nil, fmt.Errorf("TableName contains non-printable characters")
	}

	return &SQLite{cfg: dcfg}, nil
}

// isPrintable reports whether a string contains only printable runes.
func isPrintable(str string) bool {
	const firstPrintable = 32 // ASCII space

	for _, r := range str {
		if r < firstPrintable || r > unicode.MaxASCII {
			return false
		}
	}

	return true
}

// sqliteQuote returns a manually escaped string replacing single quotes with double-single quotes
func sqliteQuote(str string) string {
	return "'" + strings.ReplaceAll(str, "'", "''") + "'"
}

// runSQLCommands is an helper function that will run some commands on an SQL transaction.
func runSQLCommands(tx *sql.Tx, commands []string) error {
	for _, command := range commands {
		if _, err := tx.Exec(command); err != nil {
			return fmt.Errorf("%q: %v", command, err)
		}
	}
	return nil
}

// Open opens (or creates) the database file at name and starts the
// transaction the whole report is written in.
func (c *SQLite) Open(name string) error {
	var err error

	defer func() {
		if err != nil && c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
	}()

	c.path = name
	c.conn, err = sql.Open("sqlite3", name)
	if err != nil {
		return fmt.Errorf("sql.Open: %v", err)
	}

	// sql.Open is lazy, make sure the file can actually be opened.
	if err = c.conn.Ping(); err != nil {
		return err
	}

	if err = c.setDBSettings(); err != nil {
		return fmt.Errorf("set global settings: %v", err)
	}

	c.tx, err = c.conn.Begin()
	if err != nil {
		return fmt.Errorf("cannot start transaction: %v", err)
	}

	if err = runSQLCommands(c.tx, c.cfg.PreRun); err != nil {
		c.tx.Rollback()
		c.tx = nil
		return fmt.Errorf("cannot run pre-SQL commands: %v", err)
	}

	if err = c.setupTable(); err != nil {
		c.tx.Rollback()
		c.tx = nil
		return fmt.Errorf("setup table: %v", err)
	}

	return nil
}

func (c *SQLite) setDBSettings() error {
	if c.cfg.PageSize > 0 {
		if _, err := c.conn.Exec(fmt.Sprintf("PRAGMA page_size=%d", c.cfg.PageSize)); err != nil {
			return fmt.Errorf("PRAGMA page_size=%d failed: %v", c.cfg.PageSize, err)
		}
	}

	if c.cfg.Wal {
		if _, err := c.conn.Exec("PRAGMA journal_mode=wal"); err != nil {
			return fmt.Errorf("PRAGMA journal_mode=wal failed: %v", err)
		}
	}

	return nil
}

// setupTable creates the table if it doesn't exist yet and, if configured
// to do so, truncates it.
func (c *SQLite) setupTable() error {
	cols := make([]string, len(sqliteColumns))
	for i, col := range sqliteColumns {
		cols[i] = sqliteQuote(col)
	}

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		sqliteQuote(c.cfg.TableName), strings.Join(cols, ","))
	if _, err := c.tx.Exec(stmt); err != nil {
		return fmt.Errorf("create table: %v", err)
	}

	if c.cfg.Clear {
		if _, err := c.tx.Exec("DELETE FROM " + sqliteQuote(c.cfg.TableName)); err != nil {
			return fmt.Errorf("truncate table: %v", err)
		}
	}

	return nil
}

// Write inserts one row per non-empty group of rep.
func (c *SQLite) Write(rep *monthlog.Report) error {
	if c.tx == nil {
		return fmt.Errorf("database not open")
	}

	stmt := fmt.Sprintf("INSERT INTO %s VALUES(?,?,?,?,?)", sqliteQuote(c.cfg.TableName))
	insert, err := c.tx.Prepare(stmt)
	if err != nil {
		return fmt.Errorf("build insert statement: %v", err)
	}
	defer insert.Close()

	for i, sec := range rep.Sections {
		for _, g := range []monthlog.Group{sec.M, sec.R} {
			if g.Len() == 0 {
				continue
			}
			_, err := insert.Exec(sec.Month.Label, i+1, string(g.Type), g.Len(), strings.Join(g.Payloads, " "))
			if err != nil {
				return fmt.Errorf("cannot insert to SQLite file: %v", err)
			}
			c.nrows++
			c.nrecs += int64(g.Len())
		}
	}

	return nil
}

// Close commits the transaction and closes the database. It returns the
// absolute path of the database file.
func (c *SQLite) Close() (string, error) {
	if c.conn == nil {
		return "", nil
	}
	defer func() {
		c.conn.Close()
		c.conn = nil
	}()

	// Install a deferred rollback; if something errors out, we execute
	// tx.Rollback().
	commitDone := false
	defer func() {
		if !commitDone && c.tx != nil {
			c.tx.Rollback()
		}
	}()

	if c.tx == nil {
		return "", fmt.Errorf("no transaction to commit")
	}

	// Run final post-commands, if any are configured.
	if err := runSQLCommands(c.tx, c.cfg.PostRun); err != nil {
		return "", fmt.Errorf("cannot run post commands: %v", err)
	}

	if err := c.tx.Commit(); err != nil {
		return "", fmt.Errorf("cannot commit SQLite transaction: %v", err)
	}
	commitDone = true

	if c.cfg.Vacuum {
		if _, err := c.conn.Exec("VACUUM"); err != nil {
			return "", fmt.Errorf("cannot VACUUM SQLite file: %v", err)
		}
	}

	log.WithFields(log.Fields{"path": c.path, "rows": c.nrows}).Debug("report committed")

	pathname, err := filepath.Abs(c.path)
	if err != nil {
		return "", fmt.Errorf("taking absolute path failed: %v", err)
	}
	return pathname, nil
}

// Stats returns the output stats.
func (c *SQLite) Stats() monthlog.OutputStats {
	return monthlog.OutputStats{
		NumRecords: c.nrecs,
		CustomStats: map[string]string{
			"rows": fmt.Sprint(c.nrows),
		},
	}
}
