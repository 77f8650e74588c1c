package kmeans

import "errors"

// ErrNoMeans is returned when Run is called without initial means.
var ErrNoMeans = errors.New("at least one initial mean is required")
