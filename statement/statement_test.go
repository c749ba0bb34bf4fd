package statement

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idb/driver"
	"idb/shared/logger"
)

func newTestStatement(conn *fakeConn) *Statement {
	return NewWithConn(conn, WithLogger(logger.NewNoOpLogger()))
}

func TestNewAcquiresFromPool(t *testing.T) {
	conn := newFakeConn()
	st, err := New(context.Background(), conn.pool(), WithLogger(logger.NewNoOpLogger()))
	require.NoError(t, err)
	assert.False(t, st.IsClosed())
	st.Close()
	assert.Equal(t, 1, conn.releaseCalls)
}

func TestNewPoolFailure(t *testing.T) {
	cause := errors.New("pool exhausted")
	_, err := New(context.Background(), fakePool{err: cause})
	assert.ErrorIs(t, err, driver.ErrConnection)
	assert.ErrorIs(t, err, cause)
}

func TestPrepareReplacesPriorStatementAndCursor(t *testing.T) {
	conn := newFakeConn()
	conn.cols = []string{"id"}
	conn.rows = [][]any{{int64(1)}}
	st := newTestStatement(conn)
	ctx := context.Background()

	require.NoError(t, st.Prepare(ctx, "SELECT id FROM t"))
	require.NoError(t, st.Execute(ctx))
	require.NoError(t, st.Prepare(ctx, "SELECT id FROM u"))

	require.Len(t, conn.stmts, 2)
	assert.Equal(t, 1, conn.stmts[0].closeCalls)
	assert.Equal(t, 0, conn.stmts[1].closeCalls)
	require.Len(t, conn.cursors, 1)
	assert.Equal(t, 1, conn.cursors[0].closeCalls)

	st.Close()
	assert.Equal(t, 1, conn.stmts[1].closeCalls)
}

func TestPrepareFailureReleasesConnection(t *testing.T) {
	conn := newFakeConn()
	conn.prepareErr = errors.New("syntax error")
	st := newTestStatement(conn)

	err := st.Prepare(context.Background(), "SELEC nope")
	assert.ErrorIs(t, err, driver.ErrStatement)
	assert.Equal(t, 1, conn.releaseCalls)
	assert.True(t, st.IsClosed())
}

func TestExecuteBeforePrepareIsUsageError(t *testing.T) {
	conn := newFakeConn()
	st := newTestStatement(conn)

	_, err := st.ExecuteUpdate(context.Background(), 1)
	assert.ErrorIs(t, err, driver.ErrUsage)
	// protocol violations do not tear the handle down
	assert.Equal(t, 0, conn.releaseCalls)

	err = st.Execute(context.Background())
	assert.ErrorIs(t, err, driver.ErrUsage)
}

func TestExecuteUpdateScenario(t *testing.T) {
	conn := newFakeConn()
	conn.affected = 1
	id := int64(7)
	conn.insertID = &id
	st := newTestStatement(conn)
	ctx := context.Background()

	require.NoError(t, st.Prepare(ctx, "INSERT INTO t(x) VALUES(?)"))
	n, err := st.ExecuteUpdate(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(42), conn.stmts[0].binds[1])

	got, ok, err := st.LastInsertID()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), got)
}

func TestLastInsertIDWithoutKeys(t *testing.T) {
	conn := newFakeConn()
	conn.affected = 2
	st := newTestStatement(conn)
	ctx := context.Background()

	require.NoError(t, st.Prepare(ctx, "UPDATE t SET x=?"))
	_, err := st.ExecuteUpdate(ctx, 1)
	require.NoError(t, err)

	_, ok, err := st.LastInsertID()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueryScenario(t *testing.T) {
	conn := newFakeConn()
	conn.cols = []string{"id", "name"}
	conn.rows = [][]any{{int64(7), "a"}}
	st := newTestStatement(conn)
	ctx := context.Background()

	require.NoError(t, st.Prepare(ctx, "SELECT id,name FROM t WHERE id=?"))
	require.NoError(t, st.Execute(ctx, 7))

	row, err := st.NextRow()
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, []string{"id", "name"}, row.Columns())
	id, ok := row.Int64("id")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
	name, ok := row.String("name")
	assert.True(t, ok)
	assert.Equal(t, "a", name)

	row, err = st.NextRow()
	require.NoError(t, err)
	assert.Nil(t, row)
	// exhaustion auto-closes the cursor
	assert.Equal(t, 1, conn.cursors[0].closeCalls)

	// once closed, further reads report exhaustion
	row, err = st.NextRow()
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestResultsDistinguishesNoQueryFromEmpty(t *testing.T) {
	conn := newFakeConn()
	conn.cols = []string{"id"}
	st := newTestStatement(conn)
	ctx := context.Background()

	rows, err := st.Results()
	require.NoError(t, err)
	assert.Nil(t, rows)

	require.NoError(t, st.Prepare(ctx, "SELECT id FROM t WHERE 1=0"))
	require.NoError(t, st.Execute(ctx))

	rows, err = st.Results()
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestResultsCollectsAllRows(t *testing.T) {
	conn := newFakeConn()
	conn.cols = []string{"n"}
	conn.rows = [][]any{{int64(1)}, {int64(2)}, {int64(3)}}
	st := newTestStatement(conn)
	ctx := context.Background()

	require.NoError(t, st.Prepare(ctx, "SELECT n FROM t"))
	require.NoError(t, st.Execute(ctx))

	rows, err := st.Results()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	n, _ := rows[2].Int64("n")
	assert.Equal(t, int64(3), n)
}

func TestFirstColumn(t *testing.T) {
	conn := newFakeConn()
	conn.cols = []string{"count"}
	conn.rows = [][]any{{int64(42)}}
	st := newTestStatement(conn)
	ctx := context.Background()

	require.NoError(t, st.Prepare(ctx, "SELECT COUNT(*) FROM t"))
	require.NoError(t, st.Execute(ctx))

	n, ok, err := FirstColumn[int64](st)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	_, ok, err = FirstColumn[int64](st)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFirstColumnTypeMismatch(t *testing.T) {
	conn := newFakeConn()
	conn.cols = []string{"name"}
	conn.rows = [][]any{{"a"}}
	st := newTestStatement(conn)
	ctx := context.Background()

	require.NoError(t, st.Prepare(ctx, "SELECT name FROM t"))
	require.NoError(t, st.Execute(ctx))

	_, _, err := FirstColumn[int64](st)
	assert.ErrorIs(t, err, driver.ErrResult)
}

func TestCommitRollbackNoopWhenClean(t *testing.T) {
	conn := newFakeConn()
	st := newTestStatement(conn)

	st.Commit()
	st.Rollback()

	assert.Equal(t, 0, conn.commitCalls)
	assert.Equal(t, 0, conn.rollbackCalls)
}

func TestTransactionCommit(t *testing.T) {
	conn := newFakeConn()
	conn.affected = 1
	st := newTestStatement(conn)
	ctx := context.Background()

	require.NoError(t, st.StartTransaction())
	assert.False(t, conn.AutoCommit())

	require.NoError(t, st.Prepare(ctx, "UPDATE t SET x=?"))
	_, err := st.ExecuteUpdate(ctx, 1)
	require.NoError(t, err)

	st.Commit()
	assert.Equal(t, 1, conn.commitCalls)
	assert.True(t, conn.AutoCommit())

	// a second commit has nothing to do
	st.Commit()
	assert.Equal(t, 1, conn.commitCalls)
}

func TestRollbackThenCommitNoop(t *testing.T) {
	conn := newFakeConn()
	conn.affected = 1
	st := newTestStatement(conn)
	ctx := context.Background()

	require.NoError(t, st.StartTransaction())
	require.NoError(t, st.Prepare(ctx, "UPDATE t SET x=?"))
	_, err := st.ExecuteUpdate(ctx, 1)
	require.NoError(t, err)

	st.Rollback()
	assert.Equal(t, 1, conn.rollbackCalls)
	assert.True(t, conn.AutoCommit())

	st.Commit()
	assert.Equal(t, 0, conn.commitCalls)
}

func TestStartTransactionTwiceTolerated(t *testing.T) {
	conn := newFakeConn()
	st := newTestStatement(conn)

	require.NoError(t, st.StartTransaction())
	require.NoError(t, st.StartTransaction())
	assert.Equal(t, 1, conn.beginCalls)
}

func TestCloseRollsBackDirtyTransaction(t *testing.T) {
	conn := newFakeConn()
	conn.execErr = errors.New("deadlock")
	st := newTestStatement(conn)
	ctx := context.Background()

	require.NoError(t, st.StartTransaction())
	require.NoError(t, st.Prepare(ctx, "UPDATE t SET x=?"))
	_, err := st.ExecuteUpdate(ctx, 1)
	require.Error(t, err)

	// the failed execute already routed through Close
	assert.Equal(t, 1, conn.rollbackCalls)
	assert.Equal(t, 1, conn.releaseCalls)
	assert.True(t, conn.AutoCommit())
}

func TestCloseIdempotent(t *testing.T) {
	conn := newFakeConn()
	st := newTestStatement(conn)

	for i := 0; i < 3; i++ {
		assert.NoError(t, st.Close())
	}
	assert.Equal(t, 1, conn.releaseCalls)
	assert.True(t, st.IsClosed())
}

func TestCommitFailureReportedNotPropagated(t *testing.T) {
	conn := newFakeConn()
	conn.commitErr = errors.New("server gone")
	capture := logger.NewCapture()
	st := NewWithConn(conn, WithLogger(capture))

	require.NoError(t, st.StartTransaction())
	st.Commit()

	assert.Equal(t, 1, conn.commitCalls)
	assert.Equal(t, 1, capture.Count("error"))

	// dirty was cleared before the attempt, so Close does not rollback
	st.Close()
	assert.Equal(t, 0, conn.rollbackCalls)
	assert.Equal(t, 1, conn.releaseCalls)
}

func TestQueryFailureReleasesConnection(t *testing.T) {
	conn := newFakeConn()
	conn.queryErr = errors.New("table missing")
	st := newTestStatement(conn)
	ctx := context.Background()

	require.NoError(t, st.Prepare(ctx, "SELECT * FROM nope"))
	err := st.Execute(ctx)
	assert.ErrorIs(t, err, driver.ErrStatement)
	assert.Equal(t, 1, conn.releaseCalls)
}

func TestConcurrentRollbackRunsOnce(t *testing.T) {
	conn := newFakeConn()
	st := newTestStatement(conn)
	require.NoError(t, st.StartTransaction())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Rollback()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, conn.rollbackCalls)
}

func TestOperationsAfterClose(t *testing.T) {
	conn := newFakeConn()
	st := newTestStatement(conn)
	st.Close()

	assert.ErrorIs(t, st.StartTransaction(), driver.ErrUsage)
	assert.ErrorIs(t, st.Prepare(context.Background(), "SELECT 1"), driver.ErrUsage)
	assert.NoError(t, st.Close())
}
