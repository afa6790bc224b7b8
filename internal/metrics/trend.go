package metrics

import (
	"sort"

	"centerview/internal/record"
)

// TrendBucket is one period (and optional segment) in the trend
// series. Total counts every check-in whose arrival falls in the
// bucket, active or completed; Successful and Failed count completed
// outcomes only.
type TrendBucket struct {
	Period     string  `json:"period"`
	Segment    *string `json:"segment,omitempty"`
	Total      int     `json:"total"`
	Successful int     `json:"successful"`
	Failed     int     `json:"failed"`
}

// TrendSummary holds grand totals for the filtered window. The
// success rate denominator is completed check-ins only.
// ActiveCheckins is global, not window-filtered: it is the number of
// check-ins in the snapshot with no completion timestamp.
type TrendSummary struct {
	TotalCheckins  int     `json:"total_checkins"`
	Successful     int     `json:"successful"`
	Failed         int     `json:"failed"`
	SuccessRate    float64 `json:"success_rate"`
	ActiveCheckins int     `json:"active_checkins"`
}

// TrendResponse wraps the bucketed series and its summary.
type TrendResponse struct {
	GroupBy   GroupBy       `json:"group_by"`
	SegmentBy SegmentBy     `json:"segment_by"`
	Series    []TrendBucket `json:"series"`
	Summary   TrendSummary  `json:"summary"`
}

// periodLabel truncates an arrival to the start of its day or hour,
// rendered as a stable sortable string. Timestamps are taken as-is;
// there is no timezone conversion.
func periodLabel(c record.Checkin, g GroupBy) string {
	if g == GroupByHour {
		return c.ArrivedAt.Format("2006-01-02 15")
	}
	return c.ArrivedAt.Format(dateLayout)
}

// inWindow checks the arrival date against the inclusive [from, to]
// bounds. Empty bounds are unbounded.
func inWindow(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

// segmentLabel resolves the segment for a check-in, or ok=false when
// segmentation is active and the subject reference cannot be
// resolved. Orphaned check-ins are excluded from segmented buckets
// but still counted in the unsegmented summary; see DESIGN.md.
func segmentLabel(
	c record.Checkin,
	subjects map[string]record.Subject,
	by SegmentBy,
) (string, bool) {
	if by == SegmentNone {
		return "", true
	}
	s, ok := subjects[c.SubjectID]
	if !ok {
		return "", false
	}
	if by == SegmentType {
		return s.TypePrimary, true
	}
	return s.Name, true
}

// BuildTrend buckets check-ins by period (and optional segment) and
// computes the window summary. An empty window is an empty series,
// not an error.
func BuildTrend(
	checkins []record.Checkin,
	subjects []record.Subject,
	opts TrendOptions,
) (TrendResponse, error) {
	opts, err := opts.normalize()
	if err != nil {
		return TrendResponse{}, err
	}

	subjectsByID := make(map[string]record.Subject, len(subjects))
	for _, s := range subjects {
		subjectsByID[s.ID] = s
	}

	type key struct {
		period  string
		segment string
	}
	buckets := make(map[key]*TrendBucket)
	var summary TrendSummary

	for _, c := range checkins {
		if c.Active() {
			summary.ActiveCheckins++
		}
		date := c.ArrivedAt.Format(dateLayout)
		if !inWindow(date, opts.From, opts.To) {
			continue
		}

		summary.TotalCheckins++
		switch {
		case c.Completed(record.OutcomeSuccessful):
			summary.Successful++
		case c.Completed(record.OutcomeFailed):
			summary.Failed++
		}

		segment, ok := segmentLabel(c, subjectsByID, opts.SegmentBy)
		if !ok {
			continue
		}

		k := key{period: periodLabel(c, opts.GroupBy), segment: segment}
		b, exists := buckets[k]
		if !exists {
			b = &TrendBucket{Period: k.period}
			if opts.SegmentBy != SegmentNone {
				seg := segment
				b.Segment = &seg
			}
			buckets[k] = b
		}
		b.Total++
		switch {
		case c.Completed(record.OutcomeSuccessful):
			b.Successful++
		case c.Completed(record.OutcomeFailed):
			b.Failed++
		}
	}

	summary.SuccessRate = successRate(
		summary.Successful, summary.Successful+summary.Failed,
	)

	series := make([]TrendBucket, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool {
		if series[i].Period != series[j].Period {
			return series[i].Period < series[j].Period
		}
		return segmentOf(series[i]) < segmentOf(series[j])
	})

	return TrendResponse{
		GroupBy:   opts.GroupBy,
		SegmentBy: opts.SegmentBy,
		Series:    series,
		Summary:   summary,
	}, nil
}

func segmentOf(b TrendBucket) string {
	if b.Segment == nil {
		return ""
	}
	return *b.Segment
}
