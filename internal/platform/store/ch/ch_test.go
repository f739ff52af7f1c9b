package ch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"loteria/internal/platform/testkit"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

type fakeBatch struct {
	driver.Batch
	rows    [][]any
	failAt  int
	sent    bool
	aborted bool
}

func (b *fakeBatch) Append(v ...any) error {
	if b.failAt > 0 && len(b.rows)+1 == b.failAt {
		return errors.New("bad column")
	}
	b.rows = append(b.rows, v)
	return nil
}
func (b *fakeBatch) Send() error  { b.sent = true; return nil }
func (b *fakeBatch) Abort() error { b.aborted = true; return nil }

type fakeConn struct {
	driver.Conn
	pingErr  error
	execs    []string
	prepared []string
	batch    *fakeBatch
	closed   bool
}

func (c *fakeConn) Ping(context.Context) error { return c.pingErr }
func (c *fakeConn) Close() error               { c.closed = true; return nil }
func (c *fakeConn) Exec(_ context.Context, q string, _ ...any) error {
	c.execs = append(c.execs, q)
	return nil
}
func (c *fakeConn) PrepareBatch(_ context.Context, q string, _ ...driver.PrepareBatchOption) (driver.Batch, error) {
	c.prepared = append(c.prepared, q)
	return c.batch, nil
}

func TestOpen_BadDSN(t *testing.T) {
	t.Parallel()
	if _, err := Open(context.Background(), Config{URL: "clickhouse://host:9000/db?dial_timeout=nope"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOpen_PingFailureCloses(t *testing.T) {
	testkit.Serial(t)
	fc := &fakeConn{pingErr: errors.New("refused")}
	var seen *clickhouse.Options
	testkit.Swap(t, &openConn, func(o *clickhouse.Options) (driver.Conn, error) {
		seen = o
		return fc, nil
	})

	_, err := Open(context.Background(), Config{URL: "clickhouse://default:@localhost:9000/loteria", Role: "mirror"})
	if err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}
	if !fc.closed {
		t.Fatalf("connection should be closed after failed ping")
	}
	if seen == nil || len(seen.ClientInfo.Products) == 0 || seen.ClientInfo.Products[1].Version != "mirror" {
		t.Fatalf("client info not stamped: %+v", seen)
	}
}

func TestInsertAndExec(t *testing.T) {
	testkit.Serial(t)
	fc := &fakeConn{batch: &fakeBatch{}}
	testkit.Swap(t, &openConn, func(*clickhouse.Options) (driver.Conn, error) { return fc, nil })

	c, err := Open(context.Background(), Config{URL: "clickhouse://localhost:9000/loteria"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := c.Exec(context.Background(), "TRUNCATE TABLE states"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if err := c.Insert(context.Background(), "states", nil); err != nil || len(fc.prepared) != 0 {
		t.Fatalf("empty insert should be a no-op")
	}
	rows := [][]any{{"SP", "Sao Paulo", "Sudeste"}, {"RJ", "Rio de Janeiro", "Sudeste"}}
	if err := c.Insert(context.Background(), "states", rows); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(fc.batch.rows) != 2 || !fc.batch.sent || fc.prepared[0] != "INSERT INTO states" {
		t.Fatalf("batch mismatch: %+v prepared=%v", fc.batch, fc.prepared)
	}
	if len(fc.execs) != 1 {
		t.Fatalf("execs = %v", fc.execs)
	}
	if err := c.Close(); err != nil || !fc.closed {
		t.Fatalf("close: %v", err)
	}
}

func TestInsert_AppendErrorAborts(t *testing.T) {
	t.Parallel()
	fb := &fakeBatch{failAt: 2}
	c := &CH{conn: &fakeConn{batch: fb}}
	err := c.Insert(context.Background(), "winners", [][]any{{int64(1)}, {int64(2)}})
	if err == nil || !fb.aborted || fb.sent {
		t.Fatalf("expected abort on append failure, err=%v batch=%+v", err, fb)
	}
}

func TestBuildClientInfo(t *testing.T) {
	t.Parallel()
	ci := BuildClientInfo(" mirror ", "")
	if ci.Products[0].Name != "loteria" || ci.Products[0].Version != "unknown" {
		t.Fatalf("tag default mismatch: %+v", ci.Products[0])
	}
	if ci.Products[1].Version != "mirror" {
		t.Fatalf("role not trimmed: %+v", ci.Products[1])
	}
	var nilCH *CH
	if nilCH.Close() != nil {
		t.Fatalf("nil close must be safe")
	}
}
