package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func outputFormat() string {
	return strings.ToLower(viper.GetString("output.format"))
}

// printResult writes v as indented JSON or as YAML. YAML output goes through
// JSON first so both formats share the json field names.
func printResult(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if format != "yaml" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var generic any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(jsonNumbers(generic)); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return enc.Close()
}

// jsonNumbers converts json.Number leaves to int64 or float64 so YAML prints
// them unquoted.
func jsonNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = jsonNumbers(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = jsonNumbers(val)
		}
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	default:
		return v
	}
}

// printLine writes v as a single line of JSON.
func printLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
