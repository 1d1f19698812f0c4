package tool

import (
	"context"
	"encoding/json"
	"strings"

	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/domain/entity"
	"parts-assistant/internal/infrastructure/salesdb"
)

var _ output.ToolPort = (*SQLQueryTool)(nil)

// SQLQueryTool executes read-only queries against the auto-parts sales
// database. The SELECT check is a trimmed, case-folded prefix test: a
// shallow guard against writes, not a SQL parser and not a security
// boundary.
type SQLQueryTool struct {
	connector salesdb.Connector
	logger    output.LoggerPort
}

func NewSQLQueryTool(connector salesdb.Connector, logger output.LoggerPort) *SQLQueryTool {
	return &SQLQueryTool{
		connector: connector,
		logger:    logger,
	}
}

func (t *SQLQueryTool) Name() string {
	return entity.ToolSQLQuery.String()
}

func (t *SQLQueryTool) Description() string {
	return "Execute SQL queries on the ap_autopart database, specifically on the iLines and iHeads tables. Use this to retrieve data about auto parts sales. SELECT statements only."
}

func (t *SQLQueryTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The SQL query to execute (SELECT statements only for security). Should query the iLines or iHeads tables in the ap_autopart database.",
			},
		},
		"required": []string{"query"},
	}
}

func (t *SQLQueryTool) Call(ctx context.Context, input string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return encodeResult(entity.SQLQueryResult{
			Success: false,
			Error:   "invalid arguments: " + err.Error(),
			Results: []map[string]interface{}{},
		}), nil
	}

	query := args.Query

	// Guard first: no connection is opened for a rejected statement.
	trimmed := strings.ToLower(strings.TrimSpace(query))
	if !strings.HasPrefix(trimmed, "select") {
		return encodeResult(entity.SQLQueryResult{
			Success: false,
			Query:   query,
			Error:   "Only SELECT queries are allowed for security reasons",
			Results: []map[string]interface{}{},
		}), nil
	}

	conn, err := t.connector.Connect(ctx)
	if err != nil {
		t.logger.Error("sql tool connection failed", "error", err.Error())
		return encodeResult(entity.SQLQueryResult{
			Success: false,
			Query:   query,
			Error:   err.Error(),
			Results: []map[string]interface{}{},
		}), nil
	}
	// Closed exactly once, on success and failure alike.
	defer conn.Close()

	rs, err := conn.Query(ctx, query)
	if err != nil {
		t.logger.Error("sql tool query failed", "error", err.Error())
		return encodeResult(entity.SQLQueryResult{
			Success: false,
			Query:   query,
			Error:   err.Error(),
			Results: []map[string]interface{}{},
		}), nil
	}

	result := entity.SQLQueryResult{
		Success: true,
		Query:   query,
		Results: rs.Rows,
		Fields:  rs.Fields,
	}
	if total := len(rs.Rows); total > entity.MaxSQLRows {
		result.Results = rs.Rows[:entity.MaxSQLRows]
		result.ResultsLimited = true
		result.TotalRowCount = total
	}
	result.RowCount = len(result.Results)

	t.logger.Info("sql tool query executed", "rows", result.RowCount, "limited", result.ResultsLimited)
	return encodeResult(result), nil
}
