// Command phonedb compiles phone-number metadata and parses, validates and
// normalizes numbers against the compiled database.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/GlobalPhone/core/compiler"
	"github.com/FocuswithJustin/GlobalPhone/core/dbfile"
	apperrors "github.com/FocuswithJustin/GlobalPhone/core/errors"
	"github.com/FocuswithJustin/GlobalPhone/core/metadata"
	"github.com/FocuswithJustin/GlobalPhone/core/phone"
	"github.com/FocuswithJustin/GlobalPhone/core/sqlite"
	"github.com/FocuswithJustin/GlobalPhone/internal/logging"
	"github.com/FocuswithJustin/GlobalPhone/internal/validation"
)

const version = "0.1.0"

// Globals holds flags shared by every command.
type Globals struct {
	LogLevel  string `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log format (text, json)"`
	DB        string `name:"db" env:"PHONEDB_PATH" help:"Compiled database (JSON/YAML, optionally xz or gzip, or SQLite)" type:"path"`
	Territory string `short:"t" default:"US" env:"PHONEDB_TERRITORY" help:"Territory numbers are dialled from"`
	Decoder   string `default:"auto" enum:"auto,json,yaml" help:"Database decoder (auto picks by extension)"`

	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
	Stdin  io.Reader `kong:"-"`
}

// CLI defines the command-line interface for phonedb.
type CLI struct {
	Globals

	Compile   CompileCmd   `cmd:"" help:"Compile PhoneNumberMetadata.xml into a database"`
	Examples  ExamplesCmd  `cmd:"" help:"List example numbers from PhoneNumberMetadata.xml"`
	Parse     ParseCmd     `cmd:"" help:"Parse a phone number"`
	Validate  ValidateCmd  `cmd:"" help:"Check whether a phone number is valid"`
	Normalize NormalizeCmd `cmd:"" help:"Print the E.164 form of a phone number"`
	Batch     BatchCmd     `cmd:"" help:"Process one number per line of a file"`
	Info      InfoCmd      `cmd:"" help:"Describe the loaded database"`
	Verify    VerifyCmd    `cmd:"" help:"Verify a database file against its manifest"`
	SQLite    SQLiteGroup  `cmd:"" name:"sqlite" help:"SQLite database operations"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// SQLiteGroup contains SQLite operations.
type SQLiteGroup struct {
	Export SQLiteExportCmd `cmd:"" help:"Store the records of --db or a metadata XML file in SQLite"`
}

func (g *Globals) printf(format string, args ...any) {
	fmt.Fprintf(g.Stdout, format, args...)
}

func (g *Globals) printJSON(v any) error {
	enc := json.NewEncoder(g.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (g *Globals) initLogging() error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(g.LogFormat)
	if err != nil {
		return err
	}
	logging.SetOutput(g.Stderr)
	logging.InitLogger(level, format)
	return nil
}

// decoder picks the decoder for path. "auto" looks at the extension under
// any compression suffix.
func (g *Globals) decoder(path string) (phone.Decoder, error) {
	if g.Decoder != "auto" {
		return phone.DecoderFor(g.Decoder)
	}
	name := path
	if validation.FileTypeFromExtension(name).Compressed() {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if validation.FileTypeFromExtension(name) == validation.FileTypeYAML {
		return phone.YAMLDecoder{}, nil
	}
	return phone.JSONDecoder{}, nil
}

// isSQLite reports whether path names a SQLite database, by extension or by
// its header.
func isSQLite(path string) bool {
	if validation.FileTypeFromExtension(path) == validation.FileTypeSQLite {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	ft, err := validation.ValidateFileType(f, path)
	return err == nil && ft == validation.FileTypeSQLite
}

func (g *Globals) checkDB() error {
	if g.DB == "" {
		return fmt.Errorf("no database: use --db or set %s", phone.EnvDatabasePath)
	}
	if err := validation.ValidatePath(g.DB); err != nil {
		return fmt.Errorf("invalid database path: %w", err)
	}
	return nil
}

// loadRecords reads the raw region records of --db.
func (g *Globals) loadRecords(ctx context.Context) ([]any, error) {
	if err := g.checkDB(); err != nil {
		return nil, err
	}
	if isSQLite(g.DB) {
		return sqlite.LoadFile(ctx, g.DB)
	}
	dec, err := g.decoder(g.DB)
	if err != nil {
		return nil, err
	}
	data, _, err := dbfile.ReadFile(g.DB)
	if err != nil {
		return nil, err
	}
	return dec.Decode(string(data))
}

// database loads --db.
func (g *Globals) database(ctx context.Context) (*phone.Database, error) {
	if err := g.checkDB(); err != nil {
		return nil, err
	}
	if !isSQLite(g.DB) {
		dec, err := g.decoder(g.DB)
		if err != nil {
			return nil, err
		}
		return phone.LoadFile(g.DB, dec)
	}

	records, err := sqlite.LoadFile(ctx, g.DB)
	if err == nil {
		var db *phone.Database
		if db, err = phone.New(records); err == nil {
			logging.DatabaseLoaded(g.DB, len(db.Regions()), "", "driver", sqlite.DriverName())
			return db, nil
		}
	}
	logging.DatabaseError(g.DB, err)
	return nil, err
}

// service wraps --db in a phone.Service dialling from --territory.
func (g *Globals) service(ctx context.Context) (*phone.Service, error) {
	db, err := g.database(ctx)
	if err != nil {
		return nil, err
	}
	return phone.NewService(phone.WithDatabase(db), phone.WithDefaultTerritory(g.Territory)), nil
}

// CompileCmd compiles metadata XML into a database file.
type CompileCmd struct {
	Path     string `arg:"" help:"Path to PhoneNumberMetadata.xml (optionally xz or gzip)" type:"existingfile"`
	Out      string `short:"o" help:"Output path (stdout when empty)" type:"path"`
	Encoding string `default:"positional" enum:"named,positional" help:"Record encoding"`
	Codec    string `default:"json" enum:"json,yaml" help:"Output serialization"`
	Compress string `default:"none" enum:"none,xz,gzip" help:"Output compression"`
}

func (c *CompileCmd) Run(g *Globals) error {
	ctx := logging.WithOperation(context.Background(), "compile")
	if err := validation.ValidatePath(c.Path); err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}

	gen, err := compiler.LoadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}
	enc, err := compiler.ParseEncoding(c.Encoding)
	if err != nil {
		return err
	}
	records, err := gen.RecordData(enc)
	if err != nil {
		return fmt.Errorf("failed to compile: %w", err)
	}
	regions, err := metadata.NewRegions(records)
	if err != nil {
		return fmt.Errorf("compiled records do not decode: %w", err)
	}

	data, err := marshal(records, c.Codec)
	if err != nil {
		return err
	}
	if c.Out == "" {
		_, err := g.Stdout.Write(data)
		return err
	}

	compression, err := dbfile.ParseCompression(c.Compress)
	if err != nil {
		return err
	}
	if err := validation.ValidatePath(c.Out); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if err := dbfile.WriteFile(c.Out, data, compression); err != nil {
		return err
	}

	m := dbfile.NewManifest(data)
	m.Source = filepath.Base(c.Path)
	m.Encoding = string(enc)
	m.Codec = c.Codec
	m.Compression = compression
	m.Regions = len(regions)
	for _, r := range regions {
		m.Territories += len(r.Territories())
	}
	if err := dbfile.WriteManifest(c.Out, m); err != nil {
		return err
	}

	logging.InfoContext(ctx, "database written", "path", c.Out, "regions", m.Regions, "blake3", m.Fingerprint)
	g.printf("Compiled: %s\n", c.Out)
	g.printf("  Regions: %d\n", m.Regions)
	g.printf("  Territories: %d\n", m.Territories)
	g.printf("  Encoding: %s/%s\n", m.Encoding, m.Codec)
	g.printf("  Compression: %s\n", m.Compression)
	g.printf("  BLAKE3: %s\n", m.Fingerprint)
	g.printf("  Build ID: %s\n", m.ID)
	return nil
}

func marshal(records []any, codec string) ([]byte, error) {
	switch codec {
	case "yaml":
		return yaml.Marshal(records)
	case "json", "":
		data, err := json.Marshal(records)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return nil, apperrors.NewUnsupported("codec", codec)
}

// ExamplesCmd lists example numbers.
type ExamplesCmd struct {
	Path string `arg:"" help:"Path to PhoneNumberMetadata.xml" type:"existingfile"`
	JSON bool   `help:"Output as JSON"`
}

func (c *ExamplesCmd) Run(g *Globals) error {
	gen, err := compiler.LoadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}
	examples, err := gen.ExampleNumbers()
	if err != nil {
		return err
	}
	if c.JSON {
		return g.printJSON(examples)
	}
	for _, e := range examples {
		g.printf("%s\t%s\n", e.Territory, e.Number)
	}
	return nil
}

// numberView is the printable form of a parsed number.
type numberView struct {
	Raw            string `json:"raw"`
	Territory      string `json:"territory"`
	CountryCode    string `json:"country_code"`
	NationalNumber string `json:"national_number"`
	Valid          bool   `json:"valid"`
	Possible       bool   `json:"possible"`
	National       string `json:"national"`
	International  string `json:"international"`
	E164           string `json:"e164"`
}

func viewOf(n *phone.Number) numberView {
	return numberView{
		Raw:            n.Raw(),
		Territory:      n.Territory().Name(),
		CountryCode:    n.CountryCode(),
		NationalNumber: n.NationalNumber(),
		Valid:          n.IsValid(),
		Possible:       n.IsPossible(),
		National:       n.NationalString(),
		International:  n.InternationalString(),
		E164:           n.E164(),
	}
}

// ParseCmd parses a number and prints every derived form.
type ParseCmd struct {
	Text string `arg:"" help:"Phone number text"`
	JSON bool   `help:"Output as JSON"`
}

func (c *ParseCmd) Run(g *Globals) error {
	svc, err := g.service(logging.WithOperation(context.Background(), "parse"))
	if err != nil {
		return err
	}
	n, err := svc.Parse(c.Text, "")
	if err != nil {
		return err
	}

	v := viewOf(n)
	if c.JSON {
		return g.printJSON(v)
	}
	g.printf("Territory: %s (+%s)\n", v.Territory, v.CountryCode)
	g.printf("  National number: %s\n", v.NationalNumber)
	g.printf("  Valid: %v\n", v.Valid)
	g.printf("  Possible: %v\n", v.Possible)
	g.printf("  National: %s\n", v.National)
	g.printf("  International: %s\n", v.International)
	g.printf("  E.164: %s\n", v.E164)
	return nil
}

// ValidateCmd prints whether a number is valid.
type ValidateCmd struct {
	Text string `arg:"" help:"Phone number text"`
}

func (c *ValidateCmd) Run(g *Globals) error {
	svc, err := g.service(logging.WithOperation(context.Background(), "validate"))
	if err != nil {
		return err
	}
	g.printf("%v\n", svc.Validate(c.Text, ""))
	return nil
}

// NormalizeCmd prints the E.164 form of a number.
type NormalizeCmd struct {
	Text string `arg:"" help:"Phone number text"`
}

func (c *NormalizeCmd) Run(g *Globals) error {
	svc, err := g.service(logging.WithOperation(context.Background(), "normalize"))
	if err != nil {
		return err
	}
	e164, err := svc.Normalize(c.Text, "")
	if err != nil {
		return err
	}
	g.printf("%s\n", e164)
	return nil
}

// BatchCmd runs one operation over every line of a file.
type BatchCmd struct {
	Path    string `arg:"" help:"File with one number per line (- for stdin)"`
	Op      string `default:"normalize" enum:"normalize,validate,parse" help:"Operation per line"`
	Workers int    `short:"w" default:"4" help:"Concurrent workers"`
}

func (c *BatchCmd) Run(g *Globals) error {
	ctx := logging.WithOperation(context.Background(), "batch")
	svc, err := g.service(ctx)
	if err != nil {
		return err
	}
	lines, err := c.readLines(g)
	if err != nil {
		return err
	}

	results := make([]string, len(lines))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(c.Workers, 1))
	for i, line := range lines {
		i, line := i, line
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = c.process(svc, line)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, line := range lines {
		g.printf("%s\t%s\n", line, results[i])
	}
	logging.InfoContext(ctx, "batch complete", "lines", len(lines), "workers", c.Workers)
	return nil
}

func (c *BatchCmd) readLines(g *Globals) ([]string, error) {
	var r io.Reader = g.Stdin
	if c.Path != "-" {
		f, err := os.Open(c.Path)
		if err != nil {
			return nil, apperrors.NewIO("open", c.Path, err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewIO("read", c.Path, err)
	}
	return lines, nil
}

func (c *BatchCmd) process(svc *phone.Service, line string) string {
	switch c.Op {
	case "validate":
		return fmt.Sprint(svc.Validate(line, ""))
	case "parse":
		n, err := svc.Parse(line, "")
		if err != nil {
			return "error: " + err.Error()
		}
		return n.NationalString() + "\t" + n.InternationalString()
	default:
		e164, err := svc.Normalize(line, "")
		if err != nil {
			return "error: " + err.Error()
		}
		return e164
	}
}

// InfoCmd describes the loaded database.
type InfoCmd struct {
	JSON bool `help:"Output as JSON"`
}

type databaseInfo struct {
	Path        string       `json:"path"`
	Fingerprint string       `json:"blake3,omitempty"`
	Regions     int          `json:"regions"`
	Territories int          `json:"territories"`
	Codes       []regionInfo `json:"codes"`
	SQLite      *sqlite.Info `json:"sqlite,omitempty"`
}

type regionInfo struct {
	CountryCode string   `json:"country_code"`
	Territories []string `json:"territories"`
	Formats     int      `json:"formats"`
}

func (c *InfoCmd) Run(g *Globals) error {
	db, err := g.database(logging.WithOperation(context.Background(), "info"))
	if err != nil {
		return err
	}

	info := databaseInfo{
		Path:        g.DB,
		Fingerprint: db.Fingerprint(),
		Regions:     len(db.Regions()),
		Territories: db.TerritoryCount(),
	}
	if isSQLite(g.DB) {
		si := sqlite.GetInfo()
		info.SQLite = &si
	}
	for _, r := range db.Regions() {
		ri := regionInfo{CountryCode: r.CountryCode(), Formats: len(r.Formats())}
		for _, t := range r.Territories() {
			ri.Territories = append(ri.Territories, t.Name())
		}
		info.Codes = append(info.Codes, ri)
	}

	if c.JSON {
		return g.printJSON(info)
	}
	g.printf("Database: %s\n", info.Path)
	if info.Fingerprint != "" {
		g.printf("  BLAKE3: %s\n", info.Fingerprint)
	}
	if info.SQLite != nil {
		g.printf("  SQLite driver: %s (%s)\n", info.SQLite.DriverName, info.SQLite.DriverType)
	}
	g.printf("  Regions: %d\n", info.Regions)
	g.printf("  Territories: %d\n", info.Territories)
	for _, ri := range info.Codes {
		g.printf("  +%s\t%s\t%d formats\n", ri.CountryCode, strings.Join(ri.Territories, ","), ri.Formats)
	}
	return nil
}

// VerifyCmd checks a database file against its manifest.
type VerifyCmd struct {
	Path string `arg:"" help:"Path to database file" type:"existingfile"`
}

func (c *VerifyCmd) Run(g *Globals) error {
	m, err := dbfile.Verify(c.Path)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	g.printf("Verified: %s\n", c.Path)
	g.printf("  Build ID: %s\n", m.ID)
	g.printf("  BLAKE3: %s\n", m.Fingerprint)
	g.printf("  Regions: %d\n", m.Regions)
	return nil
}

// SQLiteExportCmd stores region records in a SQLite database.
type SQLiteExportCmd struct {
	Source   string `arg:"" optional:"" help:"PhoneNumberMetadata.xml to compile instead of --db" type:"existingfile"`
	Out      string `short:"o" required:"" help:"Output SQLite path" type:"path"`
	Encoding string `default:"positional" enum:"named,positional" help:"Record encoding when compiling XML"`
}

func (c *SQLiteExportCmd) Run(g *Globals) error {
	ctx := logging.WithOperation(context.Background(), "sqlite-export")

	var records []any
	meta := map[string]string{}
	if c.Source != "" {
		gen, err := compiler.LoadFile(c.Source)
		if err != nil {
			return fmt.Errorf("failed to load metadata: %w", err)
		}
		enc, err := compiler.ParseEncoding(c.Encoding)
		if err != nil {
			return err
		}
		if records, err = gen.RecordData(enc); err != nil {
			return err
		}
		meta[sqlite.MetaSource] = filepath.Base(c.Source)
		meta[sqlite.MetaEncoding] = string(enc)
	} else {
		var err error
		if records, err = g.loadRecords(ctx); err != nil {
			return err
		}
		meta[sqlite.MetaSource] = filepath.Base(g.DB)
		if data, _, err := dbfile.ReadFile(g.DB); err == nil && !isSQLite(g.DB) {
			meta[sqlite.MetaFingerprint] = dbfile.Fingerprint(data)
		}
	}
	if _, err := metadata.NewRegions(records); err != nil {
		return fmt.Errorf("records do not decode: %w", err)
	}

	if err := validation.ValidatePath(c.Out); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if err := sqlite.ExportFile(ctx, c.Out, records, meta); err != nil {
		return err
	}
	logging.InfoContext(ctx, "sqlite database written", "path", c.Out, "regions", len(records), "driver", sqlite.DriverName())
	g.printf("Exported: %s\n", c.Out)
	g.printf("  Regions: %d\n", len(records))
	g.printf("  Driver: %s\n", sqlite.DriverName())
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	g.printf("phonedb version %s\n", version)
	return nil
}

// run parses args and runs the selected command, writing results to stdout.
func run(args []string, stdout, stderr io.Writer, stdin io.Reader, options ...kong.Option) error {
	var cli CLI
	cli.Stdout = stdout
	cli.Stderr = stderr
	cli.Stdin = stdin

	options = append([]kong.Option{
		kong.Name("phonedb"),
		kong.Description("GlobalPhone - phone number metadata compiler and parser"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Bind(&cli.Globals),
	}, options...)

	parser, err := kong.New(&cli, options...)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	if err := cli.initLogging(); err != nil {
		return err
	}
	return ctx.Run()
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "phonedb: %v\n", err)
		os.Exit(1)
	}
}
