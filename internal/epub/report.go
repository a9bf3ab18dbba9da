package epub

import (
	"fmt"

	"go.uber.org/multierr"
)

// Stage names used when recording anomalies.
const (
	StageManifest = "manifest"
	StageMetadata = "metadata"
	StageToc      = "toc"
	StageChapter  = "chapter"
	StageCover    = "cover"
)

// Anomaly is a feature-local failure that degraded the result without
// invalidating the book.
type Anomaly struct {
	Stage string
	Err   error
}

func (a Anomaly) Error() string {
	return fmt.Sprintf("%s: %v", a.Stage, a.Err)
}

func (a Anomaly) Unwrap() error {
	return a.Err
}

// Report tells a caller whether an extraction failed outright (Fatal) or
// completed with degraded features (Anomalies).
type Report struct {
	Fatal     error
	Anomalies []Anomaly
}

// Add records a feature-local failure.
func (r *Report) Add(stage string, err error) {
	if r == nil || err == nil {
		return
	}
	r.Anomalies = append(r.Anomalies, Anomaly{Stage: stage, Err: err})
}

// Addf records a feature-local failure described by a format string.
func (r *Report) Addf(stage, format string, args ...any) {
	r.Add(stage, fmt.Errorf(format, args...))
}

// OK reports that the extraction neither failed nor degraded.
func (r *Report) OK() bool {
	return r.Fatal == nil && len(r.Anomalies) == 0
}

// Degraded reports that the extraction succeeded with at least one anomaly.
func (r *Report) Degraded() bool {
	return r.Fatal == nil && len(r.Anomalies) > 0
}

// Err combines all anomalies into one error, nil when there are none.
func (r *Report) Err() error {
	var err error
	for _, a := range r.Anomalies {
		err = multierr.Append(err, a)
	}
	return err
}
