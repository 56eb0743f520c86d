package bezray

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedBPT is wrapped by all BPT parse errors.
var ErrMalformedBPT = errors.New("bezray: malformed bpt")

// ParseBPT parses a BPT model, a primitive B-rep format: a patch count on
// the first line, then for each patch a "n m" bidegree line followed by
// (n+1)*(m+1) control points, one "x y z" triple per line, in row-major
// order (u rows, v columns).
//
// Blank lines are skipped. Bidegrees must be at least 1 in each direction;
// a degree-zero entry describes a point or curve, not a surface patch, and
// is rejected. Any structural or numeric defect is reported as an error
// wrapping [ErrMalformedBPT] with the offending line number.
func ParseBPT(r io.Reader) ([]Patch, error) {
	sc := &bptScanner{s: bufio.NewScanner(r)}

	fields, err := sc.next()
	if err != nil {
		return nil, err
	}
	if len(fields) != 1 {
		return nil, sc.errorf("want patch count, got %d fields", len(fields))
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return nil, sc.errorf("bad patch count %q", fields[0])
	}

	patches := make([]Patch, 0, count)
	for pi := 0; pi < count; pi++ {
		fields, err := sc.next()
		if err != nil {
			return nil, err
		}
		if len(fields) != 2 {
			return nil, sc.errorf("patch %d: want bidegree \"n m\", got %d fields", pi, len(fields))
		}
		n, errN := strconv.Atoi(fields[0])
		m, errM := strconv.Atoi(fields[1])
		if errN != nil || errM != nil || n < 1 || m < 1 {
			return nil, sc.errorf("patch %d: bad bidegree %q %q", pi, fields[0], fields[1])
		}

		net := make([][]Vec3, n+1)
		for i := 0; i <= n; i++ {
			net[i] = make([]Vec3, m+1)
			for j := 0; j <= m; j++ {
				fields, err := sc.next()
				if err != nil {
					return nil, err
				}
				if len(fields) != 3 {
					return nil, sc.errorf("patch %d: want 3 coordinates, got %d fields", pi, len(fields))
				}
				var c [3]float64
				for k, f := range fields {
					c[k], err = strconv.ParseFloat(f, 64)
					if err != nil {
						return nil, sc.errorf("patch %d: bad coordinate %q", pi, f)
					}
				}
				net[i][j] = V3(c[0], c[1], c[2])
			}
		}

		p, err := NewPatch(net)
		if err != nil {
			return nil, fmt.Errorf("%w: patch %d: %v", ErrMalformedBPT, pi, err)
		}
		patches = append(patches, p)
	}
	return patches, nil
}

// LoadBPT reads a BPT model from a file.
func LoadBPT(path string) ([]Patch, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, fmt.Errorf("bezray: load bpt: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	patches, err := ParseBPT(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return patches, nil
}

// bptScanner wraps bufio.Scanner with line accounting and blank skipping.
type bptScanner struct {
	s    *bufio.Scanner
	line int
}

func (sc *bptScanner) next() ([]string, error) {
	for sc.s.Scan() {
		sc.line++
		fields := strings.Fields(sc.s.Text())
		if len(fields) == 0 {
			continue
		}
		return fields, nil
	}
	if err := sc.s.Err(); err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrMalformedBPT, err)
	}
	return nil, sc.errorf("unexpected end of input")
}

func (sc *bptScanner) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedBPT, sc.line, fmt.Sprintf(format, args...))
}
