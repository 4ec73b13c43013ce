// Package cli runs the calculator without a terminal UI: one-shot
// evaluation of a command-line expression and a line-oriented mode for
// piped input.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codefionn/rechenwerk/internal/cache"
	"github.com/codefionn/rechenwerk/internal/engine"
	"github.com/codefionn/rechenwerk/internal/history"
	"github.com/codefionn/rechenwerk/internal/logger"
)

// CLI evaluates expressions and prints the formatted results
type CLI struct {
	eng    *engine.Engine
	memo   *cache.Cache
	store  *history.Store
	out    io.Writer
	errOut io.Writer
}

// New creates a CLI runner. memo may be nil to skip result memoization;
// store may be nil when history is disabled.
func New(eng *engine.Engine, memo *cache.Cache, store *history.Store) *CLI {
	return &CLI{
		eng:    eng,
		memo:   memo,
		store:  store,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// Run evaluates a single expression and prints its display value. The
// caller reports the error.
func (c *CLI) Run(expr string) error {
	res, err := c.evaluate(expr)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, res.Display)
	return nil
}

// RunPipe evaluates expressions line by line from r. Empty lines are
// skipped and evaluation errors go to stderr without stopping the loop.
func (c *CLI) RunPipe(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		res, err := c.evaluate(line)
		if err != nil {
			fmt.Fprintf(c.errOut, "Error: %v\n", err)
			continue
		}

		fmt.Fprintln(c.out, res.Display)
	}

	return scanner.Err()
}

// evaluate runs expr through the memo and the engine. A memo hit skips
// both the engine and the history insert, matching the server path.
func (c *CLI) evaluate(expr string) (engine.Result, error) {
	expr = strings.TrimSpace(expr)
	if c.memo != nil {
		if res, ok := c.memo.Get(expr); ok {
			return res, nil
		}
	}

	res, err := c.eng.Evaluate(expr)
	if err != nil {
		return res, err
	}
	if c.memo != nil {
		c.memo.Put(expr, res)
	}

	if c.store != nil {
		if _, err := c.store.Add(res); err != nil {
			logger.Warn("Failed to record history entry: %v", err)
		}
	}

	return res, nil
}
