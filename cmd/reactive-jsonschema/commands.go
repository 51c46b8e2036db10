package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-json-experiment/json"

	"charm.land/log/v2"

	reactive "github.com/kaptinlin/reactive-jsonschema"
)

// runCommandLoop reads one command per line from stdin until EOF:
//
//	set <path> <json-value>
//	add <parent-path> [key] <json-value>
//	remove <path>
//	get <path>
func runCommandLoop(rt *reactive.Runtime, logger *log.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := dispatch(rt, logger, line); err != nil {
			logger.Error("command failed", "line", line, "err", err)
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}

func dispatch(rt *reactive.Runtime, logger *log.Logger, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "get":
		if len(fields) != 2 {
			return fmt.Errorf("usage: get <path>")
		}
		value, ok := rt.GetValue(fields[1])
		if !ok {
			return fmt.Errorf("no value at %s", fields[1])
		}
		out, err := json.Marshal(value)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil

	case "set":
		if len(fields) < 3 {
			return fmt.Errorf("usage: set <path> <json-value>")
		}
		value, err := decodeJSON(strings.Join(fields[2:], " "))
		if err != nil {
			return err
		}
		if !rt.SetValue(fields[1], value) {
			return fmt.Errorf("set %s: rejected", fields[1])
		}
		return nil

	case "add":
		if len(fields) < 2 {
			return fmt.Errorf("usage: add <parent-path> [key] <json-value>")
		}
		parent := fields[1]
		key := ""
		valueFields := fields[2:]
		if len(valueFields) > 1 {
			key = valueFields[0]
			valueFields = valueFields[1:]
		}
		var value any
		if len(valueFields) > 0 {
			v, err := decodeJSON(strings.Join(valueFields, " "))
			if err != nil {
				return err
			}
			value = v
		}
		if !rt.AddChild(parent, key, value) {
			return fmt.Errorf("add %s: rejected", parent)
		}
		return nil

	case "remove":
		if len(fields) != 2 {
			return fmt.Errorf("usage: remove <path>")
		}
		if !rt.RemoveValue(fields[1]) {
			return fmt.Errorf("remove %s: rejected", fields[1])
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func decodeJSON(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid json value %q: %w", raw, err)
	}
	return v, nil
}
