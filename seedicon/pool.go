// MIT License
//
// Portions copyright (c) 2017 Ivan Pusic
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

const queueLength = 256

type job func()

type worker struct {
	idle chan *worker
	jobs chan job
	stop chan struct{}
}

func newWorker(idle chan *worker) *worker {
	return &worker{
		idle: idle,
		jobs: make(chan job),
		stop: make(chan struct{}),
	}
}

func (w *worker) start() {
	go func() {
		for {
			// free again, hand ourselves back to the dispatcher
			w.idle <- w

			select {
			case job := <-w.jobs:
				job()
			case <-w.stop:
				w.stop <- struct{}{}
				return
			}
		}
	}()
}

// dispatcher hands queued jobs to the first idle worker
type dispatcher struct {
	idle  chan *worker
	queue chan job
	stop  chan struct{}
}

func newDispatcher(idle chan *worker, queue chan job) *dispatcher {
	d := &dispatcher{
		idle:  idle,
		queue: queue,
		stop:  make(chan struct{}),
	}
	for i := 0; i < cap(d.idle); i++ {
		newWorker(d.idle).start()
	}
	go d.dispatch()
	return d
}

func (d *dispatcher) dispatch() {
	for {
		select {
		case job := <-d.queue:
			worker := <-d.idle
			worker.jobs <- job
		case <-d.stop:
			for i := 0; i < cap(d.idle); i++ {
				worker := <-d.idle
				worker.stop <- struct{}{}
				<-worker.stop
			}
			d.stop <- struct{}{}
			return
		}
	}
}

// pool runs named tasks on a fixed number of workers. A failing task is
// logged and counted, it never stops the others.
type pool struct {
	queue      chan job
	dispatcher *dispatcher
	wg         sync.WaitGroup
	failed     atomic.Int64
}

func newPool(workers int) *pool {
	if workers < 1 {
		workers = 1
	}
	queue := make(chan job, queueLength)
	return &pool{
		queue:      queue,
		dispatcher: newDispatcher(make(chan *worker, workers), queue),
	}
}

// Enqueue schedules task, blocking while the queue is full.
func (p *pool) Enqueue(name string, task func() error) {
	p.wg.Add(1)
	p.queue <- func() {
		defer p.wg.Done()
		if err := task(); err != nil {
			p.failed.Add(1)
			slog.Error("seedicon: task failed", "task", name, "err", err)
		}
	}
}

// Wait blocks until every enqueued task ran and returns how many failed.
func (p *pool) Wait() int {
	p.wg.Wait()
	return int(p.failed.Load())
}

// Release stops the workers. The pool cannot be used afterwards.
func (p *pool) Release() {
	p.dispatcher.stop <- struct{}{}
	<-p.dispatcher.stop
}
