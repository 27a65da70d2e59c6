package device

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type ActionKind string

const (
	ActionTap   ActionKind = "tap"
	ActionSwipe ActionKind = "swipe"
	ActionSleep ActionKind = "sleep"
	ActionShell ActionKind = "shell"
)

const defaultSwipeDuration = 300 * time.Millisecond

// Action is one UI step. Only the fields of its Kind are meaningful.
// Invalid is set by ParseSequence for steps that cannot be executed; the
// executor skips those with a warning.
type Action struct {
	Kind ActionKind

	X, Y           int
	X1, Y1, X2, Y2 int
	Duration       time.Duration // swipe gesture length, or sleep length
	Command        []string

	// Delay overrides the executor's default pause after tap, swipe and shell.
	Delay *time.Duration

	Invalid string
}

func (a Action) String() string {
	switch a.Kind {
	case ActionTap:
		return fmt.Sprintf("tap(%d,%d)", a.X, a.Y)
	case ActionSwipe:
		return fmt.Sprintf("swipe(%d,%d->%d,%d,%s)", a.X1, a.Y1, a.X2, a.Y2, a.Duration)
	case ActionSleep:
		return fmt.Sprintf("sleep(%s)", a.Duration)
	case ActionShell:
		return fmt.Sprintf("shell(%s)", strings.Join(a.Command, " "))
	default:
		return fmt.Sprintf("%s(?)", a.Kind)
	}
}

// ParseSequence turns raw configuration steps into actions. It never fails:
// a malformed step comes back with Invalid set so the sequence keeps its
// shape and the executor can report the step index.
func ParseSequence(raw []map[string]any) []Action {
	out := make([]Action, 0, len(raw))
	for _, step := range raw {
		out = append(out, parseStep(step))
	}
	return out
}

func parseStep(step map[string]any) Action {
	kind := strings.ToLower(strings.TrimSpace(stringField(step, "action")))
	if kind == "" {
		kind = strings.ToLower(strings.TrimSpace(stringField(step, "type")))
	}
	if kind == "" {
		return Action{Invalid: "missing action"}
	}
	a := Action{Kind: ActionKind(kind)}

	if d, ok, err := secondsField(step, "delay"); err != nil {
		a.Invalid = "delay: " + err.Error()
		return a
	} else if ok {
		a.Delay = &d
	}

	var err error
	switch a.Kind {
	case ActionTap:
		if a.X, err = intField(step, "x"); err == nil {
			a.Y, err = intField(step, "y")
		}
	case ActionSwipe:
		coords := []*int{&a.X1, &a.Y1, &a.X2, &a.Y2}
		for i, key := range []string{"x1", "y1", "x2", "y2"} {
			if *coords[i], err = intField(step, key); err != nil {
				break
			}
		}
		if err == nil {
			a.Duration = defaultSwipeDuration
			if _, present := step["duration_ms"]; present {
				var ms int
				if ms, err = intField(step, "duration_ms"); err == nil {
					a.Duration = time.Duration(ms) * time.Millisecond
				}
			}
		}
	case ActionSleep:
		var ok bool
		a.Duration, ok, err = secondsField(step, "seconds")
		if err == nil && !ok {
			a.Duration, _, err = secondsField(step, "duration")
		}
	case ActionShell:
		a.Command, err = commandField(step["command"])
	default:
		err = fmt.Errorf("unknown action %q", kind)
	}
	if err != nil {
		a.Invalid = err.Error()
	}
	return a
}

func stringField(step map[string]any, key string) string {
	if s, ok := step[key].(string); ok {
		return s
	}
	return ""
}

func intField(step map[string]any, key string) (int, error) {
	v, ok := step[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return int(f), nil
}

func secondsField(step map[string]any, key string) (time.Duration, bool, error) {
	v, ok := step[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, false, err
	}
	if f < 0 {
		return 0, false, fmt.Errorf("negative %s", key)
	}
	return time.Duration(f * float64(time.Second)), true, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

func commandField(v any) ([]string, error) {
	switch c := v.(type) {
	case string:
		if args := strings.Fields(c); len(args) > 0 {
			return args, nil
		}
	case []string:
		if len(c) > 0 {
			return c, nil
		}
	case []any:
		args := make([]string, 0, len(c))
		for _, part := range c {
			args = append(args, fmt.Sprint(part))
		}
		if len(args) > 0 {
			return args, nil
		}
	}
	return nil, fmt.Errorf("missing command")
}
