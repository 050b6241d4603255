// Package config implements the line-based configuration file format
// shared by training and game runs: directives are whitespace-tokenized,
// case-folded, `#`-commented, and applied to a config struct whose
// fields a caller can "freeze" in advance so a file can never override
// an explicit setting. Unrecognized directives are handed to a
// caller-supplied extension hook instead of failing the parse.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/niceyeti/gridagent/geometry"
)

// ExtensionHook receives any directive this package does not recognize,
// along with its whitespace-separated argument fields.
type ExtensionHook func(tag string, fields []string) error

func noopHook(string, []string) error { return nil }

// tokenizeLine case-folds and splits one config line, reporting false
// for blank lines and comments.
func tokenizeLine(raw string) ([]string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || strings.HasPrefix(raw, "#") {
		return nil, false
	}
	return strings.Fields(raw), true
}

func scanDirectives(r io.Reader, apply func(lineNo int, tag string, args []string) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields, ok := tokenizeLine(scanner.Text())
		if !ok {
			continue
		}
		if err := apply(lineNo, fields[0], fields[1:]); err != nil {
			return fmt.Errorf("config: line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

func parseInt(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected 1 integer argument, got %d", len(args))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("expected an integer, got %q", args[0])
	}
	return n, nil
}

func parseFloat(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected 1 float argument, got %d", len(args))
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("expected a float, got %q", args[0])
	}
	return v, nil
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("expected a float, got %q", a)
		}
		out[i] = v
	}
	return out, nil
}

func parseIntPair(args []string) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected 2 integer arguments, got %d", len(args))
	}
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("expected an integer, got %q", args[0])
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("expected an integer, got %q", args[1])
	}
	return x, y, nil
}

func parseVec2D(args []string) (geometry.Vec2D, error) {
	x, y, err := parseIntPair(args)
	return geometry.Vec2D{X: x, Y: y}, err
}

func parseObstacle(args []string) (geometry.Obstacle, error) {
	if len(args) != 4 {
		return geometry.Obstacle{}, fmt.Errorf("obstacle: expected 4 integer arguments (ox oy ex ey), got %d", len(args))
	}
	var vals [4]int
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return geometry.Obstacle{}, fmt.Errorf("obstacle: expected an integer, got %q", a)
		}
		vals[i] = n
	}
	return geometry.Obstacle{
		Origin: geometry.Vec2D{X: vals[0], Y: vals[1]},
		Extent: geometry.Vec2D{X: vals[2], Y: vals[3]},
	}, nil
}
