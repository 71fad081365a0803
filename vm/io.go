package vm

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

// ioStreams is the buffered stdin/stdout pair the print/readLine family
// of externals shares: unbuffered per-call writes would make a tight print
// loop needlessly slow. The streams are process-wide mutable settings
// replaceable at runtime via the input()/output() externals, or from the
// host via SetInput/SetOutput.
type ioStreams struct {
	w   *bufio.Writer
	r   *bufio.Reader
	eof bool
}

func newIOStreams() ioStreams {
	return ioStreams{
		w: bufio.NewWriter(os.Stdout),
		r: bufio.NewReader(os.Stdin),
	}
}

func (s *ioStreams) write(text string) {
	s.w.WriteString(text)
}

func (s *ioStreams) flush() {
	s.w.Flush()
}

// readLine reads up to and including the next '\n', stripping it (and a
// preceding '\r' for CRLF input), reporting io.EOF once the stream is
// exhausted with nothing left to return.
func (s *ioStreams) readLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if err == io.EOF && line == "" {
		s.eof = true
		return "", io.EOF
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}

func (s *ioStreams) atEOF() bool {
	if s.eof {
		return true
	}
	_, err := s.r.Peek(1)
	return err == io.EOF
}

// SetOutput redirects the print/println/output stream, flushing anything
// buffered for the previous writer first.
func (in *Instance) SetOutput(w io.Writer) {
	in.out.flush()
	in.out.w = bufio.NewWriter(w)
}

// SetInput redirects the readLine/eof stream.
func (in *Instance) SetInput(r io.Reader) {
	in.out.r = bufio.NewReader(r)
	in.out.eof = false
}

// reopenOutput implements the output(path) external: all subsequent print
// output goes to the named file; a failed reopen is a runtime fault.
func (in *Instance) reopenOutput(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return runtimeErrorf("failed to reopen output: %v", errors.Cause(err))
	}
	in.SetOutput(f)
	return nil
}

// reopenInput implements the input(path) external.
func (in *Instance) reopenInput(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return runtimeErrorf("failed to reopen input: %v", errors.Cause(err))
	}
	in.SetInput(f)
	return nil
}
