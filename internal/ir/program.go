// Package ir generates and optimises the flat, label-addressed three-address
// intermediate representation described in spec.md §4.4 and §6. The IR is
// kept as literal text: every instruction is exactly the line that would be
// printed in a dump, so the generator, the optimiser, and the VM's loader
// all agree on one canonical grammar instead of three separate encodings.
package ir

import "strings"

// Program is a flat, ordered sequence of IR lines.
type Program struct {
	Lines []string
}

// String renders the program as it would appear in a compiler dump: one
// instruction or label per line.
func (p *Program) String() string {
	return strings.Join(p.Lines, "\n")
}

func (p *Program) emit(line string) {
	p.Lines = append(p.Lines, line)
}

func (p *Program) emitLabel(name string) {
	p.Lines = append(p.Lines, name+":")
}
