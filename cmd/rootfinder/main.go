package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/wyfcoding/hpcmontecarlo/internal/roots/domain"
)

func main() {
	fs := pflag.NewFlagSet("rootfinder", pflag.ExitOnError)
	a := fs.Float64P("a", "a", 0, "coefficient of x^2")
	b := fs.Float64P("b", "b", 0, "coefficient of x")
	c := fs.Float64P("c", "c", 0, "constant term")
	_ = fs.Parse(os.Args[1:])

	if !fs.Changed("a") || !fs.Changed("b") || !fs.Changed("c") {
		in := bufio.NewReader(os.Stdin)
		fmt.Println("Enter the coefficients for the polynomial ax^2+bx+c.")
		for _, p := range []struct {
			name string
			v    *float64
		}{{"a", a}, {"b", b}, {"c", c}} {
			if fs.Changed(p.name) {
				continue
			}
			v, err := prompt(in, os.Stdout, p.name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "rootfinder: %v\n", err)
				os.Exit(1)
			}
			*p.v = v
		}
	}

	roots, err := domain.SolveQuadratic(*a, *b, *c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rootfinder: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("The first root is %v.\n", roots.X1)
	fmt.Printf("The second root is %v.\n", roots.X2)
}

func prompt(r *bufio.Reader, w io.Writer, name string) (float64, error) {
	fmt.Fprintf(w, "%s = ", name)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return 0, fmt.Errorf("read %s: %w", name, err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}
