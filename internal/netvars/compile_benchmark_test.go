package netvars

import (
	"fmt"
	"testing"
)

func BenchmarkCompile(b *testing.B) {
	rows := make([]Row, 0, 200)
	for i := 0; i < 200; i++ {
		r := Row{Line: i + 2, Name: fmt.Sprintf("field%d", i), CType: "uint16_t", StorageType: "U16"}
		if i%3 == 0 {
			r.Enabler = "CONFIG_OPT"
		}
		if i%7 == 0 {
			r.CType = "char[32]"
			r.StorageType = "STRING"
		}
		rows = append(rows, r)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Compile(rows, "Bench", "bench.csv"); err != nil {
			b.Fatalf("Compile: %v", err)
		}
	}
}
