package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"

	"leavers/internal/frame"
)

// Exporter writes the encoded model table to ClickHouse for downstream SQL
// exploration. The export is optional; the pipeline's core artifacts stay
// on disk.
type Exporter struct {
	conn clickhouse.Conn

	database string
}

type ExportOptions struct {
	Addr     string
	Database string
	Username string
	Password string
}

func NewExporter(opts ExportOptions) (*Exporter, error) {
	conn, e := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
	})
	if e != nil {
		return nil, fmt.Errorf("connecting to clickhouse: %w", e)
	}

	return &Exporter{conn: conn, database: opts.Database}, nil
}

func (ex *Exporter) Close() error {
	return ex.conn.Close()
}

func chType(dt frame.DataTypes) string {
	switch dt {
	case frame.DTfloat:
		return "Float64"
	case frame.DTint:
		return "Int64"
	default:
		return "String"
	}
}

// Save creates (or replaces) the table and batch-inserts every row of df.
func (ex *Exporter) Save(ctx context.Context, table string, df *frame.DF) error {
	full := ex.database + "." + table

	var defs []string
	for _, name := range df.ColumnNames() {
		c, _ := df.Column(name)
		defs = append(defs, fmt.Sprintf("`%s` %s", name, chType(c.VectorType())))
	}

	if e := ex.conn.Exec(ctx, "DROP TABLE IF EXISTS "+full); e != nil {
		return fmt.Errorf("dropping %s: %w", full, e)
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s) ENGINE = MergeTree ORDER BY tuple()",
		full, strings.Join(defs, ", "))
	if e := ex.conn.Exec(ctx, ddl); e != nil {
		return fmt.Errorf("creating %s: %w", full, e)
	}

	batch, e := ex.conn.PrepareBatch(ctx, "INSERT INTO "+full)
	if e != nil {
		return fmt.Errorf("preparing insert into %s: %w", full, e)
	}

	names := df.ColumnNames()
	for row := 0; row < df.RowCount(); row++ {
		vals := make([]any, len(names))
		for ind, name := range names {
			c, _ := df.Column(name)
			switch c.VectorType() {
			case frame.DTfloat:
				vals[ind] = c.ElementFloat(row)
			case frame.DTint:
				vals[ind] = int64(c.ElementInt(row))
			default:
				vals[ind] = c.ElementString(row)
			}
		}

		if e = batch.Append(vals...); e != nil {
			return fmt.Errorf("appending row %d: %w", row, e)
		}
	}

	return batch.Send()
}
