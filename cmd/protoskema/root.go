package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/protoskema"
)

type globalFlags struct {
	schema         string
	typeName       string
	strictEquality bool
	logLevel       string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "protoskema",
		Short: "Encode and decode tag/varint messages from a JSON or YAML schema",
		Long: `protoskema reflects message types from a schema document and uses them
to convert between JSON and the binary wire format.

Examples:
  protoskema inspect --schema user.json --type User
  echo '{"id":7,"name":"x"}' | protoskema encode --schema user.json --type User --hex
  protoskema decode --schema user.json --type User --hex --in msg.hex`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogger(cmd.ErrOrStderr(), g.logLevel)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&g.schema, "schema", "s", "", "schema document (.json, .yaml or .yml)")
	pf.StringVarP(&g.typeName, "type", "t", "", "fully qualified message type name")
	pf.BoolVar(&g.strictEquality, "strict-equality", false, "compare values against defaults without coercion")
	pf.StringVar(&g.logLevel, "log-level", "warn", "log level (debug, info, warn, error, disabled)")

	root.AddCommand(newInspectCmd(g), newEncodeCmd(g), newDecodeCmd(g))
	return root
}

func setupLogger(w io.Writer, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	l := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(lvl).With().Timestamp().Logger()
	protoskema.SetLogger(l)
	return nil
}

func (g *globalFlags) loadRoot() (*protoskema.Root, error) {
	if g.schema == "" {
		return nil, fmt.Errorf("--schema is required")
	}
	data, err := os.ReadFile(g.schema)
	if err != nil {
		return nil, err
	}
	opt := protoskema.LoadOpt{OnDuplicateKey: protoskema.Warn}
	if g.strictEquality {
		opt.Root.Equality = protoskema.EqualStrict
	}
	switch strings.ToLower(filepath.Ext(g.schema)) {
	case ".yaml", ".yml":
		return protoskema.LoadYAML(data, opt)
	default:
		return protoskema.LoadJSON(data, opt)
	}
}

func (g *globalFlags) loadType() (*protoskema.Type, error) {
	if g.typeName == "" {
		return nil, fmt.Errorf("--type is required")
	}
	root, err := g.loadRoot()
	if err != nil {
		return nil, err
	}
	t := root.LookupType(g.typeName)
	if t == nil {
		return nil, fmt.Errorf("type %q not found in %s", g.typeName, g.schema)
	}
	return t, nil
}

// readInput reads path, or stdin for "" and "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
