package call

import (
	"github.com/uzbit/tracetuner-sub000/lut"
	"github.com/uzbit/tracetuner-sub000/peaks"
	"github.com/uzbit/tracetuner-sub000/spacing"
	"github.com/uzbit/tracetuner-sub000/trace"
)

// Peaks builds the resolved peak lists of one read: detection, boundary
// expansion, optional respacing and resolution. The returned curve is the
// base spacing estimated from the preliminary calls.
func Peaks(r trace.Read, opt trace.Options) (*trace.Data, spacing.Curve, error) {
	d, err := trace.NewData(r, opt.Dyes)
	if err != nil {
		return nil, nil, trace.WithRead(err, r.Name)
	}
	curve := spacing.Estimate(r.Coordinates, r.Channels[:]...)
	if err = peaks.Detect(d, opt); err != nil {
		return nil, nil, err
	}
	if err = peaks.Expand(d, opt); err != nil {
		return nil, nil, err
	}
	if opt.Respace {
		if _, err = peaks.Respace(d, curve, opt); err != nil {
			return nil, nil, err
		}
	}
	if err = peaks.Resolve(d, curve, opt); err != nil {
		return nil, nil, err
	}
	return d, curve, nil
}

// Process runs the whole pipeline on one read: Peaks followed by the
// calling passes. On error nothing of the read is returned.
func Process(r trace.Read, opt trace.Options, table *lut.Table) (*trace.Data, *Stats, error) {
	d, curve, err := Peaks(r, opt)
	if err != nil {
		return nil, nil, err
	}
	e := New(d, opt, curve, table)
	if err = e.Run(); err != nil {
		return nil, nil, err
	}
	return d, e.Stats, nil
}
