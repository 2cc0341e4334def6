package viewer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// API is the subset of the metadata client the session needs.
type API interface {
	FetchMetadata(ctx context.Context, path string, fields []string) (map[string]string, error)
	CommonFields(ctx context.Context) ([]string, error)
	Fields(ctx context.Context) ([]string, error)
}

// ErrQuit is returned by Execute when the user asks to leave.
var ErrQuit = errors.New("quit")

const helpText = `Commands:
  load <container/key>     fetch and display a document's attributes
  search [term]            filter rows by name or value (no term clears)
  show <name>...|all       make columns visible
  hide <name>...           hide columns
  toggle <name>            flip a column's visibility
  columns                  list loaded columns and their visibility
  reset                    restore the default columns
  mode [all|custom]        show or set the loading mode
  custom <a, b, ...>       set the custom field list
  pick <name>              add or remove one custom field
  fields [all]             list default (or all) attribute names
  dismiss                  hide the error notice
  help                     show this help
  quit                     exit
`

// Session drives the viewer from text commands, one per line.
type Session struct {
	api   API
	table *Table
	cfg   LoadConfig
	out   io.Writer
	path  string
}

// NewSession creates a session rendering to out.
func NewSession(api API, table *Table, out io.Writer) *Session {
	return &Session{api: api, table: table, out: out}
}

// Table returns the session's table model.
func (s *Session) Table() *Table {
	return s.table
}

// Config returns the session's loading configuration.
func (s *Session) Config() *LoadConfig {
	return &s.cfg
}

// Run reads commands from in until EOF or quit. prompt is printed before
// each command when non-empty.
func (s *Session) Run(ctx context.Context, in io.Reader, prompt string) error {
	sc := bufio.NewScanner(in)
	for {
		if prompt != "" {
			fmt.Fprint(s.out, prompt)
		}
		if !sc.Scan() {
			return sc.Err()
		}
		if err := s.Execute(ctx, sc.Text()); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Execute runs one command line. Usage errors are returned; API failures
// become the table notice instead.
func (s *Session) Execute(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "load":
		if rest == "" {
			if s.path == "" {
				return errors.New("usage: load <container/key>")
			}
			rest = s.path
		}
		return s.load(ctx, rest)
	case "search":
		s.table.SetSearch(rest)
		return s.render()
	case "show":
		if len(args) == 0 {
			return errors.New("usage: show <name>... | show all")
		}
		if len(args) == 1 && args[0] == "all" {
			s.table.ShowAll()
		} else {
			s.table.Show(args...)
		}
		return s.render()
	case "hide":
		if len(args) == 0 {
			return errors.New("usage: hide <name>...")
		}
		s.table.Hide(args...)
		return s.render()
	case "toggle":
		if len(args) != 1 {
			return errors.New("usage: toggle <name>")
		}
		s.table.Toggle(args[0])
		return s.render()
	case "columns":
		return s.columns()
	case "reset":
		s.table.ResetColumns()
		return s.render()
	case "mode":
		if rest != "" {
			m, err := ParseMode(rest)
			if err != nil {
				return err
			}
			s.cfg.Mode = m
		}
		_, err := fmt.Fprintln(s.out, s.cfg.Summary())
		return err
	case "custom":
		s.cfg.SetCustomFields(rest)
		s.cfg.Mode = ModeCustom
		_, err := fmt.Fprintln(s.out, s.cfg.Summary())
		return err
	case "pick":
		if len(args) != 1 {
			return errors.New("usage: pick <name>")
		}
		s.cfg.ToggleField(args[0])
		_, err := fmt.Fprintf(s.out, "%s: %s\n", s.cfg.Summary(), strings.Join(s.cfg.CustomFields(), ", "))
		return err
	case "fields":
		return s.fields(ctx, rest == "all")
	case "dismiss":
		s.table.DismissNotice()
		return s.render()
	case "help", "?":
		_, err := io.WriteString(s.out, helpText)
		return err
	case "quit", "exit":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (s *Session) load(ctx context.Context, path string) error {
	s.path = path
	data, err := s.api.FetchMetadata(ctx, path, s.cfg.Fields())
	if err != nil {
		s.table.Fail(err.Error())
	} else {
		s.table.Load(data)
	}
	return s.render()
}

func (s *Session) columns() error {
	cols := s.table.Columns()
	if len(cols) == 0 {
		_, err := fmt.Fprintln(s.out, "No columns loaded.")
		return err
	}
	for _, c := range cols {
		mark := " "
		if c.Visible {
			mark = "x"
		}
		if _, err := fmt.Fprintf(s.out, "[%s] %s\n", mark, c.Name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) fields(ctx context.Context, all bool) error {
	list := s.api.CommonFields
	if all {
		list = s.api.Fields
	}
	names, err := list(ctx)
	if err != nil {
		s.table.Fail(err.Error())
		return s.render()
	}
	_, err = fmt.Fprintln(s.out, strings.Join(names, ", "))
	return err
}

func (s *Session) render() error {
	return s.table.Render(s.out)
}
