package kmeans

import (
	"fmt"
	"math"
)

// Dim is the dimension of every point and mean.
const Dim = 3

// Point is a vector in Dim-dimensional space.
type Point [Dim]float64

// SqDist returns the squared Euclidean distance between p and q.
func (p Point) SqDist(q Point) float64 {
	var d float64
	for j := 0; j < Dim; j++ {
		diff := p[j] - q[j]
		d += diff * diff
	}
	return d
}

// String implements fmt.Stringer.
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p[0], p[1], p[2])
}

// Nearest returns the index of the mean closest to p. Ties go to the lower
// index: a later mean replaces the current best only if it is strictly
// closer. It returns -1 if means is empty.
func Nearest(p Point, means []Point) int {
	best := -1
	var dmin float64
	for c := range means {
		d := p.SqDist(means[c])
		if best < 0 || d < dmin {
			best = c
			dmin = d
		}
	}
	return best
}

// Assign reassigns every point to its nearest mean, serially, and returns the
// number of points whose cluster changed. assignment must have one entry per
// point.
func Assign(points, means []Point, assignment []int) int {
	flips := 0
	for i := range points {
		c := Nearest(points[i], means)
		if assignment[i] != c {
			assignment[i] = c
			flips++
		}
	}
	return flips
}

// MaxDeviation returns the largest absolute coordinate difference between two
// sets of means, or +Inf if their lengths differ.
func MaxDeviation(a, b []Point) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var max float64
	for c := range a {
		for j := 0; j < Dim; j++ {
			if d := math.Abs(a[c][j] - b[c][j]); d > max {
				max = d
			}
		}
	}
	return max
}
