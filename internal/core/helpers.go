package core

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// BatchOptions configures CheckAll.
type BatchOptions struct {
	// Workers is the number of parallel workers. Defaults to runtime.NumCPU().
	Workers int

	// NewClient builds the client owned by one worker. Defaults to DefaultClient.
	NewClient func() *Client

	Credentials Credentials

	// Progress is called from the worker goroutine before a package is
	// checked, with n counting from 1.
	Progress func(n, total int, pkg Package)
}

// CheckAll checks every package in parallel and returns one Result per
// package, in input order. A failure affects only its own package and is
// wrapped in a *PackageError.
func CheckAll(ctx context.Context, pkgs []Package, opts BatchOptions) []Result {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pkgs) {
		workers = len(pkgs)
	}
	newClient := opts.NewClient
	if newClient == nil {
		newClient = DefaultClient
	}

	results := make([]Result, len(pkgs))
	jobs := make(chan int)
	var current atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			client := newClient()
			for i := range jobs {
				pkg := pkgs[i]
				n := current.Add(1)
				if opts.Progress != nil {
					opts.Progress(int(n), len(pkgs), pkg)
				}
				results[i] = checkOne(ctx, pkg, opts.Credentials, client)
			}
		}()
	}

	for i := range pkgs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

func checkOne(ctx context.Context, pkg Package, creds Credentials, client *Client) Result {
	res := Result{Package: pkg}

	checker, err := New(pkg.Config, creds)
	if err != nil {
		res.Err = &PackageError{Name: pkg.Name, Err: err}
		return res
	}

	latest, err := checker.Check(ctx, client)
	if err != nil {
		res.Err = &PackageError{Name: pkg.Name, Err: err}
		return res
	}

	res.Latest = TrimResult(latest)
	res.URLs = BuildURLs(checker.URLs(), res.Latest)
	return res
}
