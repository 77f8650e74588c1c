// Package dataset reads clustering problems from a text stream and writes
// the resulting means back out.
//
// The input format is a sequence of whitespace separated tokens:
//
//	k n
//	x y z      (k lines of initial means)
//	x y z      (n lines of points)
//
// Line breaks carry no meaning beyond separating tokens.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/aryankumar/pkmeans/internal/kmeans"
	"github.com/aryankumar/pkmeans/internal/util"
)

// Largest slice capacity reserved from the header counts before any
// coordinates have been read.
const maxPrealloc = 1 << 16

// Dataset is a parsed clustering problem.
type Dataset struct {
	Means  []kmeans.Point
	Points []kmeans.Point
}

// K returns the number of clusters.
func (d *Dataset) K() int {
	return len(d.Means)
}

// N returns the number of points.
func (d *Dataset) N() int {
	return len(d.Points)
}

// ParseError reports a token that could not be read.
type ParseError struct {
	// Token is the 1-based index of the offending token in the stream.
	Token int
	// Field describes what the token was expected to be.
	Field string
	Err   error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("token %d (%s): %v", e.Token, e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes every ParseError match util.ErrInvalidInput.
func (e *ParseError) Is(target error) bool {
	return target == util.ErrInvalidInput
}

// Read parses a dataset from r.
func Read(r io.Reader) (*Dataset, error) {
	sc := &scanner{s: bufio.NewScanner(r)}
	sc.s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.s.Split(bufio.ScanWords)

	k, err := sc.int("k")
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, &ParseError{Token: sc.pos, Field: "k", Err: fmt.Errorf("cluster count must be positive, got %d", k)}
	}

	n, err := sc.int("n")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, &ParseError{Token: sc.pos, Field: "n", Err: fmt.Errorf("point count must not be negative, got %d", n)}
	}

	// The header is not trusted for allocation; a truncated stream must fail
	// with a ParseError, not by exhausting memory.
	ds := &Dataset{
		Means:  make([]kmeans.Point, 0, min(k, maxPrealloc)),
		Points: make([]kmeans.Point, 0, min(n, maxPrealloc)),
	}

	for i := 0; i < k; i++ {
		p, err := sc.point("mean", i)
		if err != nil {
			return nil, err
		}
		ds.Means = append(ds.Means, p)
	}
	for i := 0; i < n; i++ {
		p, err := sc.point("point", i)
		if err != nil {
			return nil, err
		}
		ds.Points = append(ds.Points, p)
	}

	return ds, nil
}

// WriteMeans writes one line per mean with every coordinate printed as
// "%5.2f ".
func WriteMeans(w io.Writer, means []kmeans.Point) error {
	bw := bufio.NewWriter(w)
	for _, m := range means {
		for j := 0; j < kmeans.Dim; j++ {
			if _, err := fmt.Fprintf(bw, "%5.2f ", m[j]); err != nil {
				return fmt.Errorf("failed to write means: %w", err)
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write means: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write means: %w", err)
	}
	return nil
}

// Write serialises ds in the input format, so that Read(Write(ds)) yields ds
// back up to float formatting.
func Write(w io.Writer, ds *Dataset) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d\n", ds.K(), ds.N())
	for _, set := range [][]kmeans.Point{ds.Means, ds.Points} {
		for _, p := range set {
			fmt.Fprintf(bw, "%s %s %s\n",
				strconv.FormatFloat(p[0], 'g', -1, 64),
				strconv.FormatFloat(p[1], 'g', -1, 64),
				strconv.FormatFloat(p[2], 'g', -1, 64))
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return nil
}

type scanner struct {
	s   *bufio.Scanner
	pos int
}

func (sc *scanner) next(field string) (string, error) {
	sc.pos++
	if !sc.s.Scan() {
		err := sc.s.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return "", &ParseError{Token: sc.pos, Field: field, Err: err}
	}
	return sc.s.Text(), nil
}

func (sc *scanner) int(field string) (int, error) {
	tok, err := sc.next(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &ParseError{Token: sc.pos, Field: field, Err: err}
	}
	return v, nil
}

func (sc *scanner) point(kind string, index int) (kmeans.Point, error) {
	var p kmeans.Point
	for j := 0; j < kmeans.Dim; j++ {
		field := fmt.Sprintf("%s %d coordinate %d", kind, index, j)
		tok, err := sc.next(field)
		if err != nil {
			return p, err
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return p, &ParseError{Token: sc.pos, Field: field, Err: err}
		}
		p[j] = v
	}
	return p, nil
}
