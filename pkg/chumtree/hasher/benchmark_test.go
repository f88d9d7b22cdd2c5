package hasher

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"
)

func BenchmarkHash(b *testing.B) {
	for _, size := range []int{4 * 1024, BlockSize, 8 * BlockSize} {
		data := make([]byte, size)
		rand.New(rand.NewSource(1)).Read(data)

		b.Run(fmt.Sprintf("%dKiB", size/1024), func(b *testing.B) {
			b.SetBytes(int64(size))
			b.ReportAllocs()
			for range b.N {
				if _, err := Hash(bytes.NewReader(data), nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
