package qdb

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/pg-sharding/spqr-sequencer/pkg/spqrlog"
)

// EtcdQDB stores each counter row as JSON under /sequences/<name>. The
// compare-and-swap is an etcd transaction guarded on the revision of the
// key observed together with the expected value.
type EtcdQDB struct {
	cli     *clientv3.Client
	timeout time.Duration
}

var _ XQDB = &EtcdQDB{}

const (
	sequenceNamespace = "/sequences/"
)

func sequenceNodePath(key string) string {
	return path.Join(sequenceNamespace, key)
}

func NewEtcdQDB(addr string, timeout time.Duration) (*EtcdQDB, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   []string{addr},
		DialTimeout: timeout,
		DialOptions: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
	})
	if err != nil {
		return nil, err
	}

	spqrlog.Zero.Debug().
		Str("address", addr).
		Uint("client", spqrlog.GetPointer(cli)).
		Msg("etcdqdb: NewEtcdQDB")

	return &EtcdQDB{
		cli:     cli,
		timeout: timeout,
	}, nil
}

func (q *EtcdQDB) Client() *clientv3.Client {
	return q.cli
}

func decodeSequenceRow(name string, data []byte) (*SequenceRow, error) {
	row := &SequenceRow{}
	if err := json.Unmarshal(data, row); err != nil {
		return nil, err
	}
	row.Name = name
	return row, nil
}

func (q *EtcdQDB) GetSequenceRow(ctx context.Context, name string) (*SequenceRow, error) {
	spqrlog.Zero.Debug().Str("sequence", name).Msg("etcdqdb: get sequence row")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	t := time.Now()
	resp, err := q.cli.Get(ctx, sequenceNodePath(name))
	spqrlog.SLogger.ReportStatement(spqrlog.StmtTypeSelect, "get "+sequenceNodePath(name), time.Since(t))
	if err != nil {
		return nil, err
	}
	if resp.Count == 0 {
		return nil, ErrSequenceNotFound
	}
	return decodeSequenceRow(name, resp.Kvs[0].Value)
}

func (q *EtcdQDB) CompareAndSwapSequence(ctx context.Context, name string, oldValue, newValue int64, modified time.Time) (bool, error) {
	spqrlog.Zero.Debug().
		Str("sequence", name).
		Int64("old", oldValue).
		Int64("new", newValue).
		Msg("etcdqdb: compare and swap sequence")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	key := sequenceNodePath(name)
	t := time.Now()
	defer func() {
		spqrlog.SLogger.ReportStatement(spqrlog.StmtTypeUpdate, "txn "+key, time.Since(t))
	}()

	resp, err := q.cli.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if resp.Count == 0 {
		return false, nil
	}
	kv := resp.Kvs[0]
	row, err := decodeSequenceRow(name, kv.Value)
	if err != nil {
		return false, err
	}
	if row.Value != oldValue {
		return false, nil
	}

	row.Value = newValue
	row.Modified = modified
	data, err := json.Marshal(row)
	if err != nil {
		return false, err
	}

	txn, err := q.cli.Txn(ctx).
		If(clientv3.Compare(clientv3.ModRevision(key), "=", kv.ModRevision)).
		Then(clientv3.OpPut(key, string(data))).
		Commit()
	if err != nil {
		return false, err
	}
	return txn.Succeeded, nil
}

func (q *EtcdQDB) CreateSequence(ctx context.Context, row *SequenceRow) error {
	spqrlog.Zero.Debug().Interface("sequence", row).Msg("etcdqdb: create sequence")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	key := sequenceNodePath(row.Name)
	txn, err := q.cli.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, string(data))).
		Commit()
	if err != nil {
		return err
	}
	if !txn.Succeeded {
		return ErrSequenceExists
	}
	return nil
}

func (q *EtcdQDB) ListSequences(ctx context.Context) ([]*SequenceRow, error) {
	spqrlog.Zero.Debug().Msg("etcdqdb: list all sequences")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	resp, err := q.cli.Get(ctx, sequenceNamespace, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	ret := make([]*SequenceRow, 0, len(resp.Kvs))
	for _, e := range resp.Kvs {
		row, err := decodeSequenceRow(strings.TrimPrefix(string(e.Key), sequenceNamespace), e.Value)
		if err != nil {
			return nil, err
		}
		ret = append(ret, row)
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Name < ret[j].Name
	})

	spqrlog.Zero.Debug().
		Int("count", len(ret)).
		Msg("etcdqdb: list all sequences")

	return ret, nil
}

func (q *EtcdQDB) InitSchema(_ context.Context) error {
	return nil
}

func (q *EtcdQDB) Close() error {
	return q.cli.Close()
}
