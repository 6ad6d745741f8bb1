package engine_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/hydrate/pkg/engine"
	"github.com/piwi3910/hydrate/pkg/materialize"
)

// Example demonstrates a full convergence run over a small tree using a
// function materializer in place of the platform opener.
func Example() {
	root, err := os.MkdirTemp("", "hydrate-example")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(root)

	placeholder := filepath.Join(root, "Music.cloudf")
	if err := os.WriteFile(placeholder, nil, 0o644); err != nil {
		fmt.Println("error:", err)
		return
	}

	scanner, err := engine.NewScanner(root, engine.DefaultSuffix)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	filter, err := engine.NewFilter("")
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	// The platform "materializes" a placeholder by deleting it.
	mat := materialize.Func(func(_ context.Context, path string) error {
		return os.Remove(path)
	})

	waiter := engine.NewWaiter(engine.WaiterConfig{
		PollInterval: 5 * time.Millisecond,
		Timeout:      time.Second,
	}, mat)
	pool := engine.NewPool(2, waiter)
	loop := engine.NewLoop(scanner, filter, pool, engine.LoopConfig{})

	report, err := loop.Run(context.Background())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Printf("converged=%t succeeded=%d\n", report.Converged, report.Succeeded)
	// Output: converged=true succeeded=1
}
