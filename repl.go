package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

func repl(env *env) error {
	var names []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		names = append(names, readline.PcItem(cmd.name))
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "> ",
		AutoComplete: readline.NewPrefixCompleter(names...),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF {
			return nil
		}
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return err
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		result, err := env.eval(line)
		printResult(rl.Stdout(), result, err)
	}
}

// batch evaluates one command per line of r, stopping at the first error.
// Blank lines and lines starting with # are skipped.
func batch(env *env, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	var n int
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		result, err := env.eval(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		if result != "" {
			fmt.Fprintln(w, result)
		}
	}
	return scanner.Err()
}

func printResult(w io.Writer, result string, err error) {
	if err != nil {
		fmt.Fprintln(w, err)
		return
	}
	if result != "" {
		fmt.Fprintln(w, result)
	}
}
