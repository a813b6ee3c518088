package benchmark

import (
	"fmt"
	"testing"

	"github.com/coregx/sqldialect"
)

func wideSpec(columns int) *sqldialect.TableSpec {
	spec := &sqldialect.TableSpec{Name: "wide", PrimaryKey: []string{"c0"}}
	for i := 0; i < columns; i++ {
		name := fmt.Sprintf("c%d", i)
		spec.Columns = append(spec.Columns, sqldialect.Column{Name: name, Type: sqldialect.String})
		if i%4 == 1 {
			spec.Indexed = append(spec.Indexed, name)
		}
	}
	return spec
}

func upsertRequest(columns, rows int) *sqldialect.UpsertRequest {
	req := &sqldialect.UpsertRequest{Table: "wide", PrimaryKey: []string{"c0"}}
	for i := 0; i < columns; i++ {
		req.Columns = append(req.Columns, fmt.Sprintf("c%d", i))
	}
	for r := 0; r < rows; r++ {
		row := make([]any, columns)
		for i := range row {
			row[i] = fmt.Sprintf("v%d-%d", r, i)
		}
		req.Rows = append(req.Rows, row)
	}
	return req
}

func BenchmarkGenerateDDL_20Columns(b *testing.B) {
	d := sqldialect.NewMySQLDialect()
	spec := wideSpec(20)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sqldialect.GenerateDDL(d, spec); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuildUpsert(b *testing.B) {
	d := sqldialect.NewMySQLDialect()
	for _, rows := range []int{1, 10, 100, 1000} {
		req := upsertRequest(8, rows)
		b.Run(fmt.Sprintf("%drows", rows), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := sqldialect.BuildUpsert(d, req); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkBuildSelect_Range(b *testing.B) {
	d := sqldialect.NewMySQLDialect()
	where := sqldialect.And(sqldialect.Ge("age", 21), sqldialect.Lt("age", 40), sqldialect.Eq("lastName", "Lee"))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		stmt, err := sqldialect.BuildSelect(d, "Person", where)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := stmt.Positional(d); err != nil {
			b.Fatal(err)
		}
	}
}
