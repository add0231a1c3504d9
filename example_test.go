package runloopthread_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/joeycumines/go-runloopthread"
)

func Example() {
	thread, err := runloopthread.New(runloopthread.WithName("worker"))
	if err != nil {
		panic(err)
	}
	defer thread.Close()

	// work may be submitted before the thread is started
	_ = thread.Async(func() { fmt.Println("queued before start") })

	if err := thread.Start(); err != nil {
		panic(err)
	}

	sum, err := runloopthread.Call(thread, func() int { return 1 + 2 })
	if err != nil {
		panic(err)
	}
	fmt.Println("sum:", sum)

	if err := thread.Stop(context.Background()); err != nil {
		panic(err)
	}
	fmt.Println("state:", thread.State())

	err = thread.Async(func() {})
	fmt.Println("rejected:", errors.Is(err, runloopthread.ErrNotRunning))

	// Output:
	// queued before start
	// sum: 3
	// state: Stopped
	// rejected: true
}

func ExampleAsyncThen() {
	thread, err := runloopthread.New(runloopthread.WithStartThread(true))
	if err != nil {
		panic(err)
	}
	defer thread.Close()

	done := make(chan struct{})
	_ = runloopthread.AsyncThen(thread,
		func() string { return "computed" },
		func(result string) {
			fmt.Println("handler:", result, thread.IsCurrentThread())
			close(done)
		},
	)
	<-done

	_ = thread.Stop(context.Background())

	// Output:
	// handler: computed true
}

func ExampleThread_Sync() {
	thread, err := runloopthread.New(runloopthread.WithStartThread(true))
	if err != nil {
		panic(err)
	}
	defer thread.Close()
	defer thread.Stop(context.Background())

	var x int
	if err := thread.Sync(func() { x = 1 }); err != nil {
		panic(err)
	}
	fmt.Println("x:", x)

	// Output:
	// x: 1
}

func ExampleThread_RequestStop() {
	thread, err := runloopthread.New(runloopthread.WithStartThread(true))
	if err != nil {
		panic(err)
	}
	defer thread.Close()

	thread.RequestStop()
	<-thread.Done()
	fmt.Println(thread.State())

	// Output:
	// Stopped
}
