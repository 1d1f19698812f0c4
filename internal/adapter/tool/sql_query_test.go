package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parts-assistant/internal/domain/entity"
	"parts-assistant/internal/infrastructure/salesdb"
)

type fakeConn struct {
	resultSet  *salesdb.ResultSet
	queryErr   error
	closeCount int
}

func (c *fakeConn) Query(ctx context.Context, query string) (*salesdb.ResultSet, error) {
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	return c.resultSet, nil
}

func (c *fakeConn) Close() error {
	c.closeCount++
	return nil
}

type fakeConnector struct {
	conn         *fakeConn
	connectErr   error
	connectCount int
}

func (f *fakeConnector) Connect(ctx context.Context) (salesdb.Conn, error) {
	f.connectCount++
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return f.conn, nil
}

func callSQLTool(t *testing.T, connector *fakeConnector, query string) entity.SQLQueryResult {
	t.Helper()
	sqlTool := NewSQLQueryTool(connector, nopLogger{})

	out, err := sqlTool.Call(context.Background(), fmt.Sprintf(`{"query":%q}`, query))
	require.NoError(t, err)

	var result entity.SQLQueryResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	return result
}

func TestSQLQueryTool_RejectsNonSelectWithoutConnecting(t *testing.T) {
	connector := &fakeConnector{conn: &fakeConn{}}

	result := callSQLTool(t, connector, "DELETE FROM iLines WHERE id = 1")

	assert.False(t, result.Success)
	assert.Equal(t, "Only SELECT queries are allowed for security reasons", result.Error)
	assert.NotNil(t, result.Results)
	assert.Empty(t, result.Results)
	assert.Equal(t, 0, connector.connectCount, "rejected query must not open a connection")
}

func TestSQLQueryTool_AcceptsSelectWithWhitespaceAndCase(t *testing.T) {
	conn := &fakeConn{resultSet: &salesdb.ResultSet{
		Fields: []entity.SQLField{{Name: "part", Type: "VARCHAR"}},
		Rows:   []map[string]interface{}{{"part": "brake pad"}},
	}}
	connector := &fakeConnector{conn: conn}

	result := callSQLTool(t, connector, "  SeLeCt part FROM iLines")

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.RowCount)
	assert.Equal(t, 1, conn.closeCount)
}

func TestSQLQueryTool_TruncatesLargeResult(t *testing.T) {
	rows := make([]map[string]interface{}, 0, 25)
	for i := 0; i < 25; i++ {
		rows = append(rows, map[string]interface{}{"id": i})
	}
	conn := &fakeConn{resultSet: &salesdb.ResultSet{Rows: rows}}
	connector := &fakeConnector{conn: conn}

	result := callSQLTool(t, connector, "SELECT id FROM iLines")

	assert.True(t, result.Success)
	assert.Len(t, result.Results, entity.MaxSQLRows)
	assert.Equal(t, entity.MaxSQLRows, result.RowCount)
	assert.True(t, result.ResultsLimited)
	assert.Equal(t, 25, result.TotalRowCount)
	assert.Equal(t, 1, conn.closeCount)
}

func TestSQLQueryTool_SmallResultIsNotFlaggedAsLimited(t *testing.T) {
	conn := &fakeConn{resultSet: &salesdb.ResultSet{
		Rows: []map[string]interface{}{{"id": 1.0}, {"id": 2.0}, {"id": 3.0}},
	}}
	connector := &fakeConnector{conn: conn}

	result := callSQLTool(t, connector, "SELECT id FROM iHeads")

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.RowCount)
	assert.False(t, result.ResultsLimited)
	assert.Zero(t, result.TotalRowCount)
}

func TestSQLQueryTool_ClosesConnectionOnQueryError(t *testing.T) {
	conn := &fakeConn{queryErr: errors.New("table 'iLinez' doesn't exist")}
	connector := &fakeConnector{conn: conn}

	result := callSQLTool(t, connector, "SELECT * FROM iLinez")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "iLinez")
	assert.Equal(t, 1, conn.closeCount, "connection must be closed exactly once on failure")
}

func TestSQLQueryTool_ConnectErrorBecomesResultError(t *testing.T) {
	connector := &fakeConnector{connectErr: errors.New("dial tcp: connection refused")}

	result := callSQLTool(t, connector, "SELECT 1")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "connection refused")
}
