/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"
)

// logStreamer prints the growing log of one engine line by line. Only whole
// lines are printed until the engine is done.
type logStreamer struct {
	out     io.Writer
	prefix  string
	offset  int
	pending string
}

func newLogStreamer(out io.Writer, prefix string) *logStreamer {
	return &logStreamer{out: out, prefix: prefix}
}

// update prints what log gained since the last call. final flushes a
// trailing partial line.
func (s *logStreamer) update(log string, final bool) {
	if len(log) > s.offset {
		s.pending += log[s.offset:]
		s.offset = len(log)
	}

	for {
		i := strings.IndexByte(s.pending, '\n')
		if i < 0 {
			break
		}
		s.printLine(s.pending[:i])
		s.pending = s.pending[i+1:]
	}

	if final && s.pending != "" {
		s.printLine(s.pending)
		s.pending = ""
	}
}

func (s *logStreamer) printLine(line string) {
	line = strings.TrimRight(line, "\r")
	line = strings.ReplaceAll(line, "\r", "")
	fmt.Fprintln(s.out, s.prefix+line)
}
