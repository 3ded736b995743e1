package parser

import (
	"fmt"
	"strings"
	"testing"
)

var benchQueries = map[string]string{
	"short":  "MBBS doctor in Mumbai",
	"medium": "Senior Resident Cardiology 5-7 years 8 lakh Mumbai full-time Apollo Hospital",
	"typo":   "docter nurce surgon in hospitel",
	"long":   strings.Repeat("experienced staff nurse for ICU in Pune private hospital ", 40),
}

func BenchmarkParseJobQuery(b *testing.B) {
	for name, q := range benchQueries {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(q)))
			for i := 0; i < b.N; i++ {
				_ = ParseJobQuery(q)
			}
		})
	}
}

func BenchmarkParseJobQueryParallel(b *testing.B) {
	q := benchQueries["medium"]
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = ParseJobQuery(q)
		}
	})
}

func BenchmarkParseJobQueryVaryingSize(b *testing.B) {
	base := "junior resident pediatrics kolkata 2 years 40k "
	for _, size := range []int{50, 500, 5000} {
		q := strings.Repeat(base, size/len(base)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(q)))
			for i := 0; i < b.N; i++ {
				_ = ParseJobQuery(q)
			}
		})
	}
}
