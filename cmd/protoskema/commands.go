package main

import (
	"bytes"
	"encoding/hex"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/protoskema"
	"github.com/reoring/protoskema/codec"
	"github.com/reoring/protoskema/wire"
)

func newInspectCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a type as JSON Schema or as its schema document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := g.loadType()
			if err != nil {
				return err
			}
			var v any
			switch format {
			case "jsonschema":
				s, err := t.JSONSchema()
				if err != nil {
					return err
				}
				v = s
			case "schema":
				v = t.ToJSON()
			default:
				return fmt.Errorf("unknown format %q (want jsonschema or schema)", format)
			}
			out, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "jsonschema", "output format: jsonschema or schema")
	return cmd
}

type codecFlags struct {
	in        string
	hex       bool
	delimited bool
}

func (c *codecFlags) bind(cmd *cobra.Command, hexUsage string) {
	cmd.Flags().StringVar(&c.in, "in", "-", "input file, - for stdin")
	cmd.Flags().BoolVar(&c.hex, "hex", false, hexUsage)
	cmd.Flags().BoolVar(&c.delimited, "delimited", false, "messages carry a varint length prefix")
}

func newEncodeCmd(g *globalFlags) *cobra.Command {
	c := &codecFlags{}
	var discard bool
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a JSON message into the wire format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := g.loadType()
			if err != nil {
				return err
			}
			data, err := readInput(cmd, c.in)
			if err != nil {
				return err
			}
			m, err := codec.UnmarshalJSON(t, data, codec.Options{DiscardUnknown: discard})
			if err != nil {
				return err
			}
			w := wire.NewWriter()
			if c.delimited {
				_, err = t.EncodeDelimited(m, w)
			} else {
				_, err = t.Encode(m, w)
			}
			if err != nil {
				return err
			}
			out := w.Finish()
			if c.hex {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out))
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	c.bind(cmd, "write hex text instead of raw bytes")
	cmd.Flags().BoolVar(&discard, "discard-unknown", false, "ignore JSON keys that name no field")
	return cmd
}

func newDecodeCmd(g *globalFlags) *cobra.Command {
	c := &codecFlags{}
	var opt codec.Options
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode wire format bytes into JSON",
		Long: `Decode wire format bytes into JSON. With --delimited every
length-prefixed message in the input is decoded and printed on its own line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := g.loadType()
			if err != nil {
				return err
			}
			data, err := readInput(cmd, c.in)
			if err != nil {
				return err
			}
			if c.hex {
				data, err = hex.DecodeString(string(bytes.Join(bytes.Fields(data), nil)))
				if err != nil {
					return fmt.Errorf("hex input: %w", err)
				}
			}
			r := wire.NewReader(data)
			for {
				m, err := decodeOne(t, r, c.delimited)
				if err != nil {
					return err
				}
				out, err := codec.MarshalJSON(m, opt)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(out)); err != nil {
					return err
				}
				if !c.delimited || r.Remaining() == 0 {
					return nil
				}
			}
		},
	}
	c.bind(cmd, "read hex text instead of raw bytes")
	cmd.Flags().BoolVar(&opt.EmitDefaults, "emit-defaults", false, "print unset scalar fields with their defaults")
	cmd.Flags().BoolVar(&opt.EnumsAsNumbers, "enum-numbers", false, "print enum values as numbers")
	return cmd
}

func decodeOne(t *protoskema.Type, r *wire.Reader, delimited bool) (*protoskema.Message, error) {
	if delimited {
		return t.DecodeDelimited(r)
	}
	return t.DecodeReader(r)
}
