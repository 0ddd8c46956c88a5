// Package scene evaluates scene scripts that declare instanced mesh types.
// Scripts are zygomys programs run in a sandbox with two extra builtins:
//
//	(instance_type name source effect max_amount)
//	(sdf shape) // the source string "sdf:<shape>"
//
// zygomys comments start with //.
package scene

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/Faultbox/meshpack/internal/config"
	"github.com/Faultbox/meshpack/internal/logger"
)

// DefaultTimeout bounds script evaluation when the context has no deadline.
// Builtins stop the interpreter once the context is done; a loop that never
// calls one keeps its goroutine until it ends on its own.
const DefaultTimeout = 5 * time.Second

// ScriptError is a parse or runtime error reported by the interpreter.
type ScriptError struct {
	Line    int
	Message string
}

func (e *ScriptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("scene script line %d: %s", e.Line, e.Message)
	}
	return "scene script: " + e.Message
}

type evalResult struct {
	types []config.TypeConfig
	err   error
}

// Evaluate runs source and returns the declared types in call order.
func Evaluate(ctx context.Context, source string) ([]config.TypeConfig, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during scene evaluation: %v", r)}
			}
		}()
		types, err := evaluate(ctx, source)
		ch <- evalResult{types: types, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("scene evaluation: %w", ctx.Err())
		}
		return res.types, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("scene evaluation: %w", ctx.Err())
	}
}

// EvaluateFile reads and evaluates a script file.
func EvaluateFile(ctx context.Context, path string) ([]config.TypeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene script: %w", err)
	}
	types, err := Evaluate(ctx, string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Named("scene").Info("scene script loaded", zap.String("path", path), zap.Int("types", len(types)))
	return types, nil
}

func evaluate(ctx context.Context, source string) ([]config.TypeConfig, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	var types []config.TypeConfig
	registerBuiltins(ctx, env, &types)

	if err := env.LoadString(source); err != nil {
		return nil, parseError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseError(err)
	}
	return types, nil
}

func registerBuiltins(ctx context.Context, env *zygo.Zlisp, types *[]config.TypeConfig) {
	env.AddFunction("instance_type", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := ctx.Err(); err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("%s requires name, source, effect and max_amount, got %d arguments", name, len(args))
		}
		var tc config.TypeConfig
		var err error
		if tc.Name, err = toString(args[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: name: %w", name, err)
		}
		if tc.Source, err = toString(args[1]); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: source: %w", name, err)
		}
		if tc.Effect, err = toString(args[2]); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: effect: %w", name, err)
		}
		if tc.MaxAmount, err = toInt(args[3]); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: max_amount: %w", name, err)
		}
		if tc.MaxAmount <= 0 {
			return zygo.SexpNull, fmt.Errorf("%s: max_amount must be positive, got %d", name, tc.MaxAmount)
		}
		*types = append(*types, tc)
		return zygo.SexpNull, nil
	})

	env.AddFunction("sdf", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := ctx.Err(); err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires a shape name", name)
		}
		shape, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return &zygo.SexpStr{S: "sdf:" + shape}, nil
	})
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// linePattern matches interpreter messages of the form "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

func parseError(err error) error {
	msg := strings.TrimSpace(err.Error())
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return &ScriptError{Line: line, Message: strings.TrimSpace(m[2])}
	}
	return &ScriptError{Message: msg}
}
