// Package parallel 提供分块 fork-join 归约原语。
// 区间 [0,n) 按固定块大小切分，局部结果按块序号存放并按顺序合并，
// 因此同一输入在任意并发度下得到逐位相同的结果。
package parallel

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// DefaultBlockSize 默认分块大小
const DefaultBlockSize = 4096

// Block 表示区间 [Start, End) 及其块序号
type Block struct {
	Index int
	Start int
	End   int
}

// Len 块内元素个数
func (b Block) Len() int {
	return b.End - b.Start
}

// Options 归约选项
type Options struct {
	// 并发 worker 数，<= 0 时取 GOMAXPROCS
	Workers int
	// 每块元素数，<= 0 时取 DefaultBlockSize
	BlockSize int
}

// Size 返回生效的块大小
func (o Options) Size() int {
	if o.BlockSize <= 0 {
		return DefaultBlockSize
	}
	return o.BlockSize
}

func (o Options) workers(blocks int) int {
	w := o.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if w > blocks {
		w = blocks
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Blocks 将 [0,n) 按 size 切分，最后一块可能不满
func Blocks(n, size int) []Block {
	if n <= 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultBlockSize
	}
	count := (n + size - 1) / size
	blocks := make([]Block, count)
	for i := range blocks {
		start := i * size
		blocks[i] = Block{Index: i, Start: start, End: min(start+size, n)}
	}
	return blocks
}

// ForEach 并行处理每个块，fn 之间不得共享可变状态
func ForEach(ctx context.Context, n int, opts Options, fn func(Block)) error {
	blocks := Blocks(n, opts.Size())
	return run(ctx, blocks, opts.workers(len(blocks)), func(b Block) { fn(b) })
}

// MapReduce 对每个块调用 mapFn 得到局部结果，再按块序用 combine 合并。
// n <= 0 时返回零值。
func MapReduce[T any](ctx context.Context, n int, opts Options, mapFn func(Block) T, combine func(T, T) T) (T, error) {
	var zero T
	blocks := Blocks(n, opts.Size())
	if len(blocks) == 0 {
		return zero, nil
	}

	partials := make([]T, len(blocks))
	err := run(ctx, blocks, opts.workers(len(blocks)), func(b Block) {
		partials[b.Index] = mapFn(b)
	})
	if err != nil {
		return zero, err
	}

	acc := partials[0]
	for _, p := range partials[1:] {
		acc = combine(acc, p)
	}
	return acc, nil
}

// run 启动 workers 个协程，从原子计数器领取块序号直到耗尽。
// 每领取一块前检查 ctx，取消后立即返回 ctx.Err()。
func run(ctx context.Context, blocks []Block, workers int, fn func(Block)) error {
	if len(blocks) == 0 {
		return ctx.Err()
	}
	g, gctx := errgroup.WithContext(ctx)
	var next atomic.Int64
	for range workers {
		g.Go(func() error {
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				i := int(next.Add(1) - 1)
				if i >= len(blocks) {
					return nil
				}
				fn(blocks[i])
			}
		})
	}
	return g.Wait()
}
