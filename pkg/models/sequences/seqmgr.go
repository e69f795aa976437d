package sequences

import (
	"context"
)

//go:generate mockgen -source=pkg/models/sequences/seqmgr.go -destination=pkg/mock/sequences/seqmgr_mock.go -package=mock_sequences
type SequenceMgr interface {
	ListSequences(ctx context.Context) ([]*Sequence, error)
	NextVal(ctx context.Context, seqName string) (int64, error)
	NextValList(ctx context.Context, seqName string, count int) ([]int64, error)
	CurrVal(ctx context.Context, seqName string) (int64, error)

	CreateSequence(ctx context.Context, seqName string, start, step int64) error
}
