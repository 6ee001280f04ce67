package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type staticQuerier struct {
	drifts []Drift
	err    error
}

func (q staticQuerier) FindDrift(ctx context.Context) ([]Drift, error) {
	return q.drifts, q.err
}

func TestReconcilerReportsDrift(t *testing.T) {
	r := NewReconciler(staticQuerier{drifts: []Drift{
		{ProductID: 3, LiveStock: 10, LedgerStock: 12},
	}}, nil)

	drifts, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	require.EqualValues(t, 3, drifts[0].ProductID)
}

func TestReconcilerCleanRun(t *testing.T) {
	r := NewReconciler(staticQuerier{}, nil)
	drifts, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, drifts)
}

func TestReconcilerQueryError(t *testing.T) {
	r := NewReconciler(staticQuerier{err: errors.New("connection reset")}, nil)
	_, err := r.Run(context.Background())
	require.Error(t, err)
}
