package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/vaultpass/passgen-go/internal/form"
)

var (
	magenta = color.New(color.FgMagenta).SprintfFunc()
	blue    = color.New(color.FgBlue).SprintfFunc()
	red     = color.New(color.FgRed).SprintfFunc()
	green   = color.New(color.FgGreen, color.Bold).SprintfFunc()
)

type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) password(pw string) {
	fmt.Fprintln(p.w, green("%s", pw))
}

func (p *printer) info(format string, args ...any) {
	fmt.Fprintln(p.w, blue(format, args...))
}

func (p *printer) fail(err error) {
	fmt.Fprintln(p.w, red("%v", err))
}

// state prints the class toggles and the current password.
func (p *printer) state(st form.State) {
	check := func(on bool) string {
		if on {
			return "x"
		}
		return " "
	}
	sel := st.Selection
	fmt.Fprintf(p.w, "[%s] %s  [%s] %s  [%s] %s  [%s] %s\n",
		check(sel.Uppercase), magenta("(u)ppercase"),
		check(sel.Lowercase), magenta("(l)owercase"),
		check(sel.Digits), magenta("(d)igits"),
		check(sel.Symbols), magenta("(s)ymbols"),
	)
	if st.Generated {
		fmt.Fprintf(p.w, "Password » %s\n", green("%s", st.Password))
	}
}
