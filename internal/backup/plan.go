package backup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

// Mode selects how a restore brings a table to its target shape.
type Mode string

// Reconcile modes.
const (
	// ModeCaptured drops the table and recreates it from the definition
	// captured at the start of the restore. The shape does not change.
	ModeCaptured Mode = "captured"

	// ModeAlter runs the plan's ALTER TABLE statements against the existing
	// table, then clears its rows before the preserved rows go back in.
	ModeAlter Mode = "alter"

	// ModeRecreate drops the table and creates it from the plan's single
	// CREATE TABLE statement.
	ModeRecreate Mode = "recreate"
)

// TablePlan tells a restore how to reconcile one table.
type TablePlan struct {
	Mode       Mode     `yaml:"mode"`
	Statements []string `yaml:"statements,omitempty"`

	// Baseline is the CREATE TABLE text used when the table does not exist
	// yet. Without it a restore of a missing table fails with
	// ErrSchemaNotFound, except in ModeRecreate.
	Baseline string `yaml:"baseline,omitempty"`

	// BaselineIndices are created after the inserts when the table was
	// built from Baseline, since there were no captured indices to restore.
	BaselineIndices []string `yaml:"baseline_indices,omitempty"`
}

// mode returns the effective mode; empty means ModeCaptured.
func (p TablePlan) mode() Mode {
	if p.Mode == "" {
		return ModeCaptured
	}
	return p.Mode
}

// canCreate reports whether the plan can build the table from nothing.
func (p TablePlan) canCreate() bool {
	return p.mode() == ModeRecreate || p.Baseline != ""
}

// Plan holds per-table reconcile instructions. Tables without an entry are
// restored in ModeCaptured with no baseline.
type Plan struct {
	Tables map[string]TablePlan `yaml:"tables"`
}

// For returns the plan entry for table.
func (p Plan) For(table string) TablePlan {
	return p.Tables[table]
}

// WithBaseline returns a copy of p whose entries fall back to the given
// baseline table and index definitions where they have none of their own.
func (p Plan) WithBaseline(tables map[string]string, indices map[string][]string) Plan {
	out := Plan{Tables: make(map[string]TablePlan, len(types.StandardTableNames))}
	for name, tp := range p.Tables {
		out.Tables[name] = tp
	}
	for _, name := range types.StandardTableNames {
		tp := out.Tables[name]
		if tp.Baseline == "" {
			tp.Baseline = tables[name]
			if len(tp.BaselineIndices) == 0 {
				tp.BaselineIndices = slices.Clone(indices[name])
			}
		}
		out.Tables[name] = tp
	}
	return out
}

// identPat matches one SQL identifier, bare or quoted.
const identPat = `(?:"(?:[^"]|"")+"|` + "`[^`]+`" + `|\[[^\]]+\]|[A-Za-z_][A-Za-z0-9_$]*)`

// targetPat matches an optionally schema-qualified table name and captures
// the table part.
const targetPat = `(?:` + identPat + `\s*\.\s*)?(` + identPat + `)`

var (
	alterTableRe  = regexp.MustCompile(`(?is)^\s*ALTER\s+TABLE\s+` + targetPat)
	createTableRe = regexp.MustCompile(`(?is)^\s*CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?` + targetPat)
	createIndexRe = regexp.MustCompile(`(?is)^\s*CREATE\s+(?:UNIQUE\s+)?INDEX\s+(?:IF\s+NOT\s+EXISTS\s+)?` +
		identPat + `(?:\s*\.\s*` + identPat + `)?\s+ON\s+(` + identPat + `)`)
)

// targetTable returns the table stmt acts on when stmt matches re.
func targetTable(re *regexp.Regexp, stmt string) (string, bool) {
	m := re.FindStringSubmatch(stmt)
	if m == nil {
		return "", false
	}
	return unquoteIdent(m[1]), true
}

func unquoteIdent(id string) string {
	if len(id) < 2 {
		return id
	}
	switch first, last := id[0], id[len(id)-1]; {
	case first == '"' && last == '"':
		return strings.ReplaceAll(id[1:len(id)-1], `""`, `"`)
	case first == '`' && last == '`', first == '[' && last == ']':
		return id[1 : len(id)-1]
	}
	return id
}

// checkTarget reports an error unless stmt matches re and acts on table.
// SQLite table names are case-insensitive.
func checkTarget(re *regexp.Regexp, stmt, table, what string) error {
	got, ok := targetTable(re, stmt)
	if !ok {
		return fmt.Errorf("%s is not a %s statement", what, kindOf(re))
	}
	if !strings.EqualFold(got, table) {
		return fmt.Errorf("%s targets table %q, not %s", what, got, table)
	}
	return nil
}

func kindOf(re *regexp.Regexp) string {
	switch re {
	case alterTableRe:
		return "ALTER TABLE"
	case createTableRe:
		return "CREATE TABLE"
	default:
		return "CREATE INDEX"
	}
}

// Validate checks every entry. Errors wrap ErrInvalidPlan.
func (p Plan) Validate() error {
	var errs []error
	for name, tp := range p.Tables {
		if !types.IsStandardTable(name) {
			errs = append(errs, fmt.Errorf("%w: %w %q", types.ErrInvalidPlan, types.ErrInvalidTable, name))
			continue
		}
		if err := tp.validate(name); err != nil {
			errs = append(errs, fmt.Errorf("%w: table %s: %w", types.ErrInvalidPlan, name, err))
		}
	}
	return errors.Join(errs...)
}

// validate checks the entry for table. Every statement must act on table
// itself, so a plan that would touch another table fails here rather than at
// commit.
func (p TablePlan) validate(table string) error {
	switch p.mode() {
	case ModeCaptured:
		if len(p.Statements) > 0 {
			return errors.New("captured mode takes no statements")
		}
	case ModeAlter:
		if len(p.Statements) == 0 {
			return errors.New("alter mode needs at least one ALTER TABLE statement")
		}
		for i, s := range p.Statements {
			if err := checkTarget(alterTableRe, s, table, fmt.Sprintf("statement %d", i)); err != nil {
				return err
			}
		}
	case ModeRecreate:
		if len(p.Statements) != 1 {
			return errors.New("recreate mode needs exactly one CREATE TABLE statement")
		}
		if err := checkTarget(createTableRe, p.Statements[0], table, "statement 0"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown mode %q", p.Mode)
	}
	if p.Baseline != "" {
		if err := checkTarget(createTableRe, p.Baseline, table, "baseline"); err != nil {
			return err
		}
	}
	for i, s := range p.BaselineIndices {
		if err := checkTarget(createIndexRe, s, table, fmt.Sprintf("baseline index %d", i)); err != nil {
			return err
		}
	}
	return nil
}

// ParsePlan decodes a YAML plan and validates it. Unknown keys are rejected.
func ParsePlan(r io.Reader) (Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Plan{}, fmt.Errorf("%w: %w", types.ErrInvalidPlan, err)
	}
	for name, tp := range p.Tables {
		tp.Mode = Mode(strings.ToLower(string(tp.Mode)))
		p.Tables[name] = tp
	}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// LoadPlan reads and validates a YAML plan file.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("reading plan: %w", err)
	}
	return ParsePlan(bytes.NewReader(data))
}
