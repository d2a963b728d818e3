package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

// render writes v as indented JSON or as YAML. YAML output goes through the
// JSON encoding so both formats share field names and order.
func render(w io.Writer, outputFormat string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode output")
	}

	switch strings.ToLower(outputFormat) {
	case formatJSON:
		_, err = fmt.Fprintf(w, "%s\n", raw)
		return err
	case formatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return errors.Wrap(err, "failed to convert output to yaml")
		}
		blockStyle(&doc)

		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return errors.Wrap(err, "failed to encode yaml")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, "failed to encode yaml")
		}
		_, err = w.Write(buf.Bytes())
		return err
	default:
		return errors.InvalidArgumentf("unknown output format %q (expected yaml or json)", outputFormat)
	}
}

// blockStyle drops the flow and quoting styles the JSON parse left behind
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// readText returns the item text from --file, a positional argument, or
// stdin when the argument is "-" or missing
func readText(args []string, file string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case file != "":
		data, err = os.ReadFile(file)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read %s", file)
		}
	case len(args) > 0 && args[0] != "-":
		data = []byte(strings.Join(args, " "))
	default:
		data, err = io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(err, "failed to read stdin")
		}
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.InvalidArgument("item text is empty")
	}
	return text, nil
}
