package mdb

import (
	"context"
	"iter"
	"slices"
	"strings"
)

// ListTables runs mdb-tables and returns the user table names in the order
// the command lists them. Names are trimmed and empty fragments dropped.
//
// The command has finished by the time ListTables returns; the sequence
// splits the buffered output as it is ranged over and may be ranged over
// again.
func (r *Reader) ListTables(ctx context.Context) (iter.Seq[string], error) {
	boundary := newBoundary()

	out, err := r.run(ctx, r.commands.Tables, "-d", boundary, r.path)
	if err != nil {
		return nil, err
	}

	return splitTrimmed(strings.TrimSpace(out), boundary), nil
}

// Tables is ListTables collected into a slice.
func (r *Reader) Tables(ctx context.Context) ([]string, error) {
	seq, err := r.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	tables := slices.Collect(seq)
	r.log.Debugf("listed %d tables", len(tables))
	return tables, nil
}

// splitTrimmed yields the whitespace-trimmed, non-empty fragments of s
// separated by sep.
func splitTrimmed(s, sep string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for part := range strings.SplitSeq(s, sep) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if !yield(part) {
				return
			}
		}
	}
}
