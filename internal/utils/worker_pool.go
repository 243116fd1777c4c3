package utils

import (
	"log"
	"sync"
)

// WorkerPool 通用协程池
// 通知生成、实时推送这类 best-effort 副作用都经由它执行，
// 单个任务 panic 不会影响触发它的请求
type WorkerPool struct {
	JobQueue  chan func()
	WorkerNum int
	wg        sync.WaitGroup
	quit      chan bool
}

var (
	GlobalWorkerPool *WorkerPool
	poolOnce         sync.Once
)

// InitGlobalWorkerPool 初始化全局协程池
func InitGlobalWorkerPool(workerNum int, queueSize int) {
	poolOnce.Do(func() {
		GlobalWorkerPool = NewWorkerPool(workerNum, queueSize)
		GlobalWorkerPool.Start()
	})
}

// NewWorkerPool 创建一个新的协程池
func NewWorkerPool(workerNum int, queueSize int) *WorkerPool {
	return &WorkerPool{
		JobQueue:  make(chan func(), queueSize),
		WorkerNum: workerNum,
		quit:      make(chan bool),
	}
}

// Start 启动协程池
func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			for {
				select {
				case job := <-p.JobQueue:
					func() {
						defer func() {
							if r := recover(); r != nil {
								log.Printf("worker %d panic: %v", workerID, r)
							}
						}()
						job()
					}()
				case <-p.quit:
					return
				}
			}
		}(i)
	}
}

// Submit 提交任务到协程池，队列满时阻塞直到有空位
func (p *WorkerPool) Submit(job func()) {
	p.JobQueue <- job
}

// Submit 提交到全局协程池，池未初始化时同步执行
func Submit(job func()) {
	if GlobalWorkerPool == nil {
		job()
		return
	}
	GlobalWorkerPool.Submit(job)
}

// Stop 停止协程池
func (p *WorkerPool) Stop() {
	close(p.quit)
	p.wg.Wait()
}
