// Command primecount-demo is a thin driver over the public kernel
// API — it is NOT the CLI front-end described in spec.md §1's
// Non-goals (no expression parsing, no algorithm dispatch, no
// checkpoint persistence): it exercises exactly one named kernel
// against explicit x/y/z/a/c arguments.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kimwalisch/primecount-go/internal/imath"
	primecount "github.com/kimwalisch/primecount-go"
)

func main() {
	kernel := flag.String("kernel", "", "Kernel to run: A, B, P2, P3, or S2_trivial")
	x := flag.Uint64("x", 0, "x")
	y := flag.Uint64("y", 0, "y")
	z := flag.Uint64("z", 0, "z")
	a := flag.Int64("a", 0, "a (prime-index threshold)")
	c := flag.Int64("c", 0, "c (prime-index threshold)")
	threads := flag.Int("threads", 0, "worker threads (0 = default)")
	printStatus := flag.Bool("status", false, "print throttled progress to stderr")
	verbose := flag.Bool("v", false, "verbose per-kernel logging")

	flag.Parse()

	if *kernel == "" || *x == 0 {
		fmt.Fprintln(os.Stderr, "usage: primecount-demo -kernel {A,B,P2,P3,S2_trivial} -x N [-y N] [-z N] [-a N] [-c N] [-threads N]")
		os.Exit(2)
	}

	primecount.SetNumThreads(*threads)
	primecount.SetPrintStatus(*printStatus)
	primecount.SetVerboseLog(*verbose)

	ctx := context.Background()
	xi := imath.FromUint64(*x)

	var result fmt.Stringer
	var err error

	switch *kernel {
	case "A":
		var v imath.Int128
		v, err = primecount.A(ctx, xi, *y, *threads, nil)
		result = stringerOf(v)
	case "B":
		var v imath.Int128
		v, err = primecount.B(xi, *y, *threads, nil)
		result = stringerOf(v)
	case "P2":
		var v imath.Int128
		v, err = primecount.P2(xi, *y, *a, *threads, nil)
		result = stringerOf(v)
	case "P3":
		var v int64
		v, err = primecount.P3(ctx, *x, *a, *threads, nil)
		result = int64Stringer(v)
	case "S2_trivial":
		var v imath.Int128
		v, err = primecount.S2Trivial(ctx, xi, *y, *z, *c, *threads, nil)
		result = stringerOf(v)
	default:
		fmt.Fprintf(os.Stderr, "unknown kernel %q\n", *kernel)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Println(result.String())
}

func stringerOf(v imath.Int128) fmt.Stringer { return v }

type int64Stringer int64

func (s int64Stringer) String() string { return fmt.Sprintf("%d", int64(s)) }
