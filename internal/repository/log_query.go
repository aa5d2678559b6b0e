package repository

import (
	"encoding/json"
	"strings"
)

// buildLogQuery appends the created_at window, newest-first ordering and limit to base.
func buildLogQuery(base string, f LogFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !f.From.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, f.To.UTC())
	}

	q := base
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY timestamp DESC, created_at DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return q, args
}

// marshalSeries stores a sample series as a JSON array; nil becomes "[]".
func marshalSeries(vals []float64) (string, error) {
	if vals == nil {
		vals = []float64{}
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalSeries(s string) ([]float64, error) {
	if s == "" {
		return []float64{}, nil
	}
	var vals []float64
	if err := json.Unmarshal([]byte(s), &vals); err != nil {
		return nil, err
	}
	return vals, nil
}
