package domain

import (
	"strings"
	"time"
)

// Depfile records the observed inputs and outputs of one build step. It is
// persisted under a fixed per-target filename so an external scheduler can
// decide staleness; the encoding is byte-stable for identical lists.
type Depfile struct {
	Inputs  []string
	Outputs []string
}

// Encode renders the depfile in make-rule form:
//
//	out1 out2: in1 in2
//
// List order is preserved as given; spaces and backslashes in paths are
// escaped so the rule stays parseable.
func (d Depfile) Encode() []byte {
	var b strings.Builder
	for i, out := range d.Outputs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(escapeDepPath(out))
	}
	b.WriteString(": ")
	for i, in := range d.Inputs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(escapeDepPath(in))
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// ParseDepfile parses the make-rule form produced by Encode.
func ParseDepfile(data []byte) Depfile {
	rule := strings.TrimSuffix(string(data), "\n")
	outs, ins, found := strings.Cut(rule, ": ")
	if !found {
		// Tolerate a rule with no separator as an inputs-only list.
		return Depfile{Inputs: splitDepPaths(rule)}
	}
	return Depfile{
		Inputs:  splitDepPaths(ins),
		Outputs: splitDepPaths(outs),
	}
}

// ParseCompilerDeps parses the newline-delimited dependency listing emitted
// by the codegen stage alongside the bundle. Entries are file URIs or bare
// paths, one per line.
func ParseCompilerDeps(data []byte) []string {
	var inputs []string
	for line := range strings.Lines(string(data)) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "file://")
		inputs = append(inputs, line)
	}
	return inputs
}

func escapeDepPath(p string) string {
	p = strings.ReplaceAll(p, `\`, `\\`)
	return strings.ReplaceAll(p, " ", `\ `)
}

func splitDepPaths(s string) []string {
	var paths []string
	var cur strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ' ':
			if cur.Len() > 0 {
				paths = append(paths, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		paths = append(paths, cur.String())
	}
	return paths
}

// TargetRecord is the driver-side record of a target's last successful run,
// used for the optional input-digest staleness check.
type TargetRecord struct {
	TargetName  string    `json:"target_name,omitzero"`
	InputDigest string    `json:"input_digest,omitzero"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
}
